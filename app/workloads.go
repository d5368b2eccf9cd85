package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/reduce"
	"github.com/kilianp07/batchflow/core/tensor"
	"github.com/kilianp07/batchflow/core/work"
)

// Params describes the domain a workload runs over.
type Params struct {
	Start int
	Stop  int
	// Cols is the number of inputs of the jacobian workload.
	Cols int
}

// Result summarizes a finished workload run.
type Result struct {
	Workload string
	RunID    string
	Batches  int
	Value    string
}

// Workload runs one built-in computation through the service.
type Workload func(ctx context.Context, s *Service, p Params) (Result, error)

var workloads = map[string]Workload{
	"product":  RunProduct,
	"jacobian": RunJacobian,
}

// RegisterWorkload adds a workload identified by name.
func RegisterWorkload(name string, w Workload) { workloads[name] = w }

// Workloads lists the registered workload names.
func Workloads() []string {
	names := make([]string, 0, len(workloads))
	for n := range workloads {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunWorkload runs the named workload.
func (s *Service) RunWorkload(ctx context.Context, name string, p Params) (Result, error) {
	w, ok := workloads[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown workload %q", name)
	}
	return w(ctx, s, p)
}

func runOn[T, R, Q any](ctx context.Context, s *Service, gen work.Generator[T], worker dispatch.Worker[T, R], reducer dispatch.Reducer[R, Q]) (Q, Result, error) {
	r, err := dispatch.New(worker, reducer, s.Scheduler, s.cfg.Dispatch)
	if err != nil {
		var zero Q
		return zero, Result{}, err
	}
	Attach(s, r)
	q, err := r.Run(ctx, gen)
	var res Result
	if hist := r.History(); len(hist) > 0 {
		last := hist[len(hist)-1]
		res.RunID, res.Batches = last.ID, last.Batches
	}
	return q, res, err
}

// ProductWorker returns start*stop*step for a slice.
func ProductWorker(_ context.Context, s work.Slice) (int, error) {
	return s.Start * s.Stop * s.Step, nil
}

// RunProduct sums start*stop*step over the batches of [p.Start, p.Stop).
func RunProduct(ctx context.Context, s *Service, p Params) (Result, error) {
	gen, err := work.NewSliceGenerator(p.Start, p.Stop)
	if err != nil {
		return Result{}, err
	}
	total, res, err := runOn[work.Slice, int, int](ctx, s, gen, ProductWorker, reduce.Sum[int]())
	if err != nil {
		return res, err
	}
	res.Workload = "product"
	res.Value = strconv.Itoa(total)
	return res, nil
}

// JacobianWorker returns a worker computing the derivatives of y_i = x_(i mod cols)
// over a slice of outputs: d y / d x holds one row per output with a single one.
func JacobianWorker(cols int) dispatch.Worker[work.Slice, reduce.DerivMap] {
	return func(_ context.Context, s work.Slice) (reduce.DerivMap, error) {
		if cols <= 0 {
			return nil, fmt.Errorf("jacobian: cols must be positive, got %d", cols)
		}
		rows := s.Len()
		data := make([]float64, rows*cols)
		ones := make([]float64, rows)
		for r := 0; r < rows; r++ {
			data[r*cols+(s.Start+r)%cols] = 1
			ones[r] = 1
		}
		m := reduce.DerivMap{}
		m.Set("y", "x", tensor.New(device.CPU, rows, cols, data))
		m.Set("y", "b", tensor.New(device.CPU, rows, 1, ones))
		return m, nil
	}
}

// RunJacobian assembles the derivative map of [p.Start, p.Stop) batch by batch.
func RunJacobian(ctx context.Context, s *Service, p Params) (Result, error) {
	gen, err := work.NewSliceGenerator(p.Start, p.Stop)
	if err != nil {
		return Result{}, err
	}
	cols := p.Cols
	if cols == 0 {
		cols = 4
	}
	m, res, err := runOn[work.Slice, reduce.DerivMap, reduce.DerivMap](ctx, s, gen, JacobianWorker(cols), reduce.CatReducer(0))
	if err != nil {
		return res, err
	}
	res.Workload = "jacobian"
	out := ""
	for _, pair := range m.Pairs() {
		t, _ := m.Get(pair.Outer, pair.Inner)
		r, c := t.Dims()
		out += fmt.Sprintf("d%s/d%s: %dx%d on %s\n", pair.Outer, pair.Inner, r, c, t.Device())
	}
	res.Value = out
	return res, nil
}
