package reduce

import (
	"errors"
	"fmt"

	"github.com/kilianp07/batchflow/core/device"
)

// ErrNotSingle is returned by Single when the run produced other than one batch.
var ErrNotSingle = errors.New("reduce: expected exactly one result")

// Number is the set of payloads Sum can add.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Sum adds all results.
func Sum[N Number]() func([]N) (N, error) {
	return func(rs []N) (N, error) {
		var total N
		for _, r := range rs {
			total += r
		}
		return total, nil
	}
}

// Collect returns the results as they were received.
func Collect[R any]() func([]R) ([]R, error) {
	return func(rs []R) ([]R, error) {
		return append([]R(nil), rs...), nil
	}
}

// Single applies transform to the only result of a run.
func Single[R, Q any](transform func(R) Q) func([]R) (Q, error) {
	return func(rs []R) (Q, error) {
		if len(rs) != 1 {
			var zero Q
			return zero, fmt.Errorf("%w: got %d", ErrNotSingle, len(rs))
		}
		return transform(rs[0]), nil
	}
}

// CatReducer concatenates derivative maps along dim.
func CatReducer(dim int) func([]DerivMap) (DerivMap, error) {
	return func(rs []DerivMap) (DerivMap, error) {
		return Cat(rs, dim)
	}
}

// CatOnReducer relocates every result to dev before concatenating along dim.
// Use it when workers ran on other devices than the one results are merged on.
func CatOnReducer(dim int, dev device.Device) func([]DerivMap) (DerivMap, error) {
	return func(rs []DerivMap) (DerivMap, error) {
		moved := make([]DerivMap, len(rs))
		for i, r := range rs {
			moved[i] = MoveDevice(r, dev)
		}
		return Cat(moved, dim)
	}
}
