// Package scheduler decides where and how large the next batch should be and
// gates dispatch with per-device load accounting.
//
// Admission is advisory: IsAvailable never blocks, it only reports whether a
// dispatch would stay within capacity. Callers pair every Dispatched with
// exactly one Completed for the same device and amount. Policies are built
// from configuration through a factory registry keyed by type name.
package scheduler
