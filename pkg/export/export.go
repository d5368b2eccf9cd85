package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/work"
)

// PlanEntry is the serialized form of one planned batch.
type PlanEntry struct {
	Batch  int    `json:"batch"`
	Device string `json:"device"`
	Offset int    `json:"offset"`
	Count  int    `json:"count"`
	Start  int    `json:"start"`
	Stop   int    `json:"stop"`
}

// Entries flattens a dry-run plan over an index range.
func Entries(plan []dispatch.PlannedBatch[work.Slice]) []PlanEntry {
	out := make([]PlanEntry, len(plan))
	for i, p := range plan {
		out[i] = PlanEntry{
			Batch:  p.Index,
			Device: p.Device.String(),
			Offset: p.Offset,
			Count:  p.Count,
			Start:  p.Work.Start,
			Stop:   p.Work.Stop,
		}
	}
	return out
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, plan []dispatch.PlannedBatch[work.Slice]) error {
	enc := json.NewEncoder(w)
	return enc.Encode(Entries(plan))
}

// WriteCSV writes the plan to w in CSV format with a header row.
func WriteCSV(w io.Writer, plan []dispatch.PlannedBatch[work.Slice]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"batch", "device", "offset", "count", "start", "stop"}); err != nil {
		return err
	}
	for _, e := range Entries(plan) {
		rec := []string{
			strconv.Itoa(e.Batch),
			e.Device,
			strconv.Itoa(e.Offset),
			strconv.Itoa(e.Count),
			strconv.Itoa(e.Start),
			strconv.Itoa(e.Stop),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
