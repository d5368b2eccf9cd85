package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/work"
)

func TestPlan(t *testing.T) {
	sched := newSimple(t, 345, 345)
	plan := Plan[work.Slice](newRange(t, 50, 2000), sched, 0)
	require.Len(t, plan, 6)
	assert.Equal(t, 0, plan[0].Offset)
	assert.Equal(t, work.Slice{Start: 50, Stop: 395, Step: 1}, plan[0].Work)
	assert.Equal(t, 1605, plan[5].Offset)
	assert.Equal(t, 225, plan[5].Count)
	for i, p := range plan {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, device.CPU, p.Device)
	}
	assert.Equal(t, 0, sched.Load(device.CPU))
}

func TestPlanBudget(t *testing.T) {
	plan := Plan[work.Slice](newRange(t, 0, 10), newSimple(t, 345, 345), 4)
	require.Len(t, plan, 3)
	assert.Equal(t, []int{4, 4, 2}, []int{plan[0].Count, plan[1].Count, plan[2].Count})
}
