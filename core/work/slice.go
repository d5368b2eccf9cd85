package work

import "fmt"

// Slice is a half-open index range [Start, Stop) walked with Step.
type Slice struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
	Step  int `json:"step"`
}

// NewSlice validates start < stop and returns a unit-step slice.
func NewSlice(start, stop int) (Slice, error) {
	if start >= stop {
		return Slice{}, fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, start, stop)
	}
	return Slice{Start: start, Stop: stop, Step: 1}, nil
}

// Len returns the number of indices covered by the slice.
func (s Slice) Len() int {
	step := s.Step
	if step <= 0 {
		step = 1
	}
	if s.Stop <= s.Start {
		return 0
	}
	return (s.Stop - s.Start + step - 1) / step
}

func (s Slice) String() string { return fmt.Sprintf("[%d, %d)", s.Start, s.Stop) }

// SliceGenerator splits [start, stop) into consecutive unit-step slices.
type SliceGenerator struct {
	FixedSize
	start int
	stop  int
}

// NewSliceGenerator returns a generator over [start, stop). It fails with
// ErrEmptyRange when start >= stop.
func NewSliceGenerator(start, stop int) (*SliceGenerator, error) {
	if start >= stop {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, start, stop)
	}
	return &SliceGenerator{FixedSize: NewFixedSize(stop - start), start: start, stop: stop}, nil
}

// Start returns the first index of the domain.
func (g *SliceGenerator) Start() int { return g.start }

// Stop returns the exclusive end of the domain.
func (g *SliceGenerator) Stop() int { return g.stop }

// Generate returns the next slice of at most n indices.
func (g *SliceGenerator) Generate(n int) (int, Slice) {
	from, count := g.Advance(n)
	lo := g.start + from
	return count, Slice{Start: lo, Stop: lo + count, Step: 1}
}

var _ Generator[Slice] = (*SliceGenerator)(nil)
