package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/work"
)

func samplePlan() []dispatch.PlannedBatch[work.Slice] {
	return []dispatch.PlannedBatch[work.Slice]{
		{Index: 0, Device: device.CPU, Offset: 0, Count: 345, Work: work.Slice{Start: 50, Stop: 395, Step: 1}},
		{Index: 1, Device: device.MustParse("gpu:1"), Offset: 345, Count: 5, Work: work.Slice{Start: 395, Stop: 400, Step: 1}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samplePlan()); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "batch,device,offset,count,start,stop\n0,cpu,0,345,50,395\n1,gpu:1,345,5,395,400\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, samplePlan()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out []PlanEntry
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[1].Device != "gpu:1" || out[1].Stop != 400 {
		t.Fatalf("unexpected entries %+v", out)
	}
}
