package work

import "fmt"

// Generator hands out contiguous chunks of an ordered domain.
type Generator[T any] interface {
	// HasMore reports whether any domain remains to be generated.
	HasMore() bool
	// Offset is the cumulative amount already generated.
	Offset() int
	// Generate returns the next chunk of at most n elements together with the
	// number of elements it covers. It panics with a *ProtocolError when
	// HasMore is false or n is not positive.
	Generate(n int) (count int, work T)
}

// FixedSize holds the progress of a generator whose total amount of work is
// known up front. Concrete generators embed it and call Advance from Generate.
type FixedSize struct {
	total  int
	offset int
}

// NewFixedSize returns progress tracking for total elements.
func NewFixedSize(total int) FixedSize {
	if total < 0 {
		total = 0
	}
	return FixedSize{total: total}
}

// Total returns the size of the domain.
func (f *FixedSize) Total() int { return f.total }

// Offset returns how many elements were generated so far.
func (f *FixedSize) Offset() int { return f.offset }

// Remaining returns how many elements are left.
func (f *FixedSize) Remaining() int { return f.total - f.offset }

// HasMore reports whether Offset < Total.
func (f *FixedSize) HasMore() bool { return f.offset < f.total }

// Reset rewinds progress to the beginning of the domain.
func (f *FixedSize) Reset() { f.offset = 0 }

// Advance claims the next min(n, Remaining) elements and returns the offset at
// which the claimed chunk starts along with its length.
func (f *FixedSize) Advance(n int) (from, count int) {
	if n <= 0 {
		violation("generate", fmt.Errorf("%w: %d", ErrInvalidBatch, n))
	}
	if !f.HasMore() {
		violation("generate", fmt.Errorf("%w at offset %d", ErrExhausted, f.offset))
	}
	count = min(n, f.Remaining())
	from = f.offset
	f.offset += count
	return from, count
}
