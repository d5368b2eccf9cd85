// Package work produces the work items handed to dispatch workers. A Generator
// walks an ordered index domain and hands out contiguous chunks of at most the
// requested size while tracking how much of the domain has been produced.
//
// Generators are single-owner state machines. Concurrent callers must
// serialize Generate themselves; the dispatchers in core/dispatch do so.
package work
