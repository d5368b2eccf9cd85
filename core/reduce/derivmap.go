package reduce

import (
	"fmt"
	"sort"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/tensor"
)

// DerivMap holds the derivative of each outer quantity with respect to each
// inner quantity, restricted to one batch.
type DerivMap map[string]map[string]*tensor.Tensor

// Set stores t under (outer, inner), allocating the inner map when needed.
func (m DerivMap) Set(outer, inner string, t *tensor.Tensor) {
	row, ok := m[outer]
	if !ok {
		row = make(map[string]*tensor.Tensor)
		m[outer] = row
	}
	row[inner] = t
}

// Get returns the tensor stored under (outer, inner).
func (m DerivMap) Get(outer, inner string) (*tensor.Tensor, bool) {
	t, ok := m[outer][inner]
	return t, ok
}

// Len returns the number of (outer, inner) pairs.
func (m DerivMap) Len() int {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	return n
}

// Pair identifies one derivative block.
type Pair struct {
	Outer string
	Inner string
}

// Pairs lists the key pairs in sorted order.
func (m DerivMap) Pairs() []Pair {
	pairs := make([]Pair, 0, m.Len())
	for o, row := range m {
		for i := range row {
			pairs = append(pairs, Pair{Outer: o, Inner: i})
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Outer != pairs[b].Outer {
			return pairs[a].Outer < pairs[b].Outer
		}
		return pairs[a].Inner < pairs[b].Inner
	})
	return pairs
}

// Cat concatenates, for every (outer, inner) pair, the tensors of all results
// along dim in input order. The key set of the output is the union of the
// inputs; a pair missing from some results is merged over the results that
// carry it.
func Cat(results []DerivMap, dim int) (DerivMap, error) {
	groups := make(map[Pair][]*tensor.Tensor)
	for _, r := range results {
		for o, row := range r {
			for i, t := range row {
				p := Pair{Outer: o, Inner: i}
				groups[p] = append(groups[p], t)
			}
		}
	}
	out := make(DerivMap, len(groups))
	for p, ts := range groups {
		merged, err := tensor.Concat(dim, ts...)
		if err != nil {
			return nil, fmt.Errorf("concatenate d%s/d%s: %w", p.Outer, p.Inner, err)
		}
		out.Set(p.Outer, p.Inner, merged)
	}
	return out, nil
}

// MoveDevice returns a map with every tensor relocated to dev. Keys are
// preserved and the input is left untouched.
func MoveDevice(m DerivMap, dev device.Device) DerivMap {
	out := make(DerivMap, len(m))
	for o, row := range m {
		moved := make(map[string]*tensor.Tensor, len(row))
		for i, t := range row {
			moved[i] = t.To(dev)
		}
		out[o] = moved
	}
	return out
}

// NoOp returns m unchanged.
func NoOp(m DerivMap) DerivMap { return m }
