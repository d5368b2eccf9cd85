// Package tensor provides the minimal two-dimensional numeric block used as a
// result payload: a gonum dense matrix tagged with the device it lives on.
// Rows are the batch dimension; only concatenation and relocation are offered.
package tensor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/batchflow/core/device"
)

var (
	// ErrShape is returned when tensors cannot be combined because their
	// non-concatenated dimension differs.
	ErrShape = errors.New("tensor shape mismatch")
	// ErrDevice is returned when tensors living on different devices are combined.
	ErrDevice = errors.New("tensor device mismatch")
	// ErrDim is returned for a concatenation dimension other than 0 or 1.
	ErrDim = errors.New("invalid concatenation dimension")
	// ErrEmpty is returned when there is nothing to concatenate.
	ErrEmpty = errors.New("no tensors")
)

// Tensor is a dense rows x cols block resident on a device.
type Tensor struct {
	data *mat.Dense
	dev  device.Device
}

// New allocates a rows x cols tensor on dev. data is used as backing storage
// in row-major order when not nil, as in mat.NewDense.
func New(dev device.Device, rows, cols int, data []float64) *Tensor {
	return &Tensor{data: mat.NewDense(rows, cols, data), dev: dev}
}

// FromDense wraps an existing matrix without copying it.
func FromDense(dev device.Device, m *mat.Dense) *Tensor {
	return &Tensor{data: m, dev: dev}
}

// Dims returns the number of rows and columns.
func (t *Tensor) Dims() (rows, cols int) { return t.data.Dims() }

// Device returns where the tensor lives.
func (t *Tensor) Device() device.Device { return t.dev }

// At returns the element at row i, column j.
func (t *Tensor) At(i, j int) float64 { return t.data.At(i, j) }

// Dense exposes the underlying matrix. Callers must not mutate it while the
// tensor is shared.
func (t *Tensor) Dense() *mat.Dense { return t.data }

// RawData returns a row-major copy of the values.
func (t *Tensor) RawData() []float64 {
	r, c := t.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, t.data.RawRowView(i)...)
	}
	return out
}

// To returns a copy of t placed on dev. When t already lives on dev it is
// returned unchanged.
func (t *Tensor) To(dev device.Device) *Tensor {
	if t.dev == dev {
		return t
	}
	return &Tensor{data: mat.DenseCopyOf(t.data), dev: dev}
}

// Equal reports whether both tensors live on the same device and hold the
// same values.
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.dev == o.dev && mat.Equal(t.data, o.data)
}

func (t *Tensor) String() string {
	r, c := t.Dims()
	return fmt.Sprintf("tensor(%dx%d@%s)", r, c, t.dev)
}

// Concat joins ts along dim (0 stacks rows, 1 appends columns). All inputs must
// share the device and the other dimension. The output is a fresh tensor, even
// for a single input.
func Concat(dim int, ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, ErrEmpty
	}
	if dim != 0 && dim != 1 {
		return nil, fmt.Errorf("%w: %d", ErrDim, dim)
	}
	dev := ts[0].dev
	rows, cols := ts[0].Dims()
	total := 0
	for i, t := range ts {
		if t.dev != dev {
			return nil, fmt.Errorf("%w: input %d on %s, expected %s", ErrDevice, i, t.dev, dev)
		}
		r, c := t.Dims()
		switch dim {
		case 0:
			if c != cols {
				return nil, fmt.Errorf("%w: input %d has %d columns, expected %d", ErrShape, i, c, cols)
			}
			total += r
		case 1:
			if r != rows {
				return nil, fmt.Errorf("%w: input %d has %d rows, expected %d", ErrShape, i, r, rows)
			}
			total += c
		}
	}

	var out *mat.Dense
	if dim == 0 {
		out = mat.NewDense(total, cols, nil)
	} else {
		out = mat.NewDense(rows, total, nil)
	}
	at := 0
	for _, t := range ts {
		r, c := t.Dims()
		if dim == 0 {
			out.Slice(at, at+r, 0, cols).(*mat.Dense).Copy(t.data)
			at += r
		} else {
			out.Slice(0, rows, at, at+c).(*mat.Dense).Copy(t.data)
			at += c
		}
	}
	return &Tensor{data: out, dev: dev}, nil
}
