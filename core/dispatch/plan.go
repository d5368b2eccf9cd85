package dispatch

import (
	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/core/work"
)

// PlannedBatch is one entry of a dry-run plan.
type PlannedBatch[T any] struct {
	Index  int
	Device device.Device
	Offset int
	Count  int
	Work   T
}

// Plan walks gen to exhaustion using the device and batch size choices of
// sched, capped by budget when positive. Nothing is executed and the load of
// sched is left untouched, so the plan matches what a sequential run would
// produce.
func Plan[T any](gen work.Generator[T], sched scheduler.Scheduler, budget int) []PlannedBatch[T] {
	var plan []PlannedBatch[T]
	for gen.HasMore() {
		dev := sched.NextDevice()
		size := sched.NextBatchSize()
		if budget > 0 && size > budget {
			size = budget
		}
		offset := gen.Offset()
		count, item := gen.Generate(size)
		plan = append(plan, PlannedBatch[T]{Index: len(plan), Device: dev, Offset: offset, Count: count, Work: item})
	}
	return plan
}
