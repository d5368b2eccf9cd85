package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/core/work"
	"github.com/kilianp07/batchflow/pkg/export"
)

var scheduleOpts struct {
	start  int
	stop   int
	format string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the batches a run would dispatch, without executing them",
	RunE:  printSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleOpts.start, "start", 0, "first index of the range")
	scheduleCmd.Flags().IntVar(&scheduleOpts.stop, "stop", 0, "end of the range (exclusive)")
	scheduleCmd.Flags().StringVarP(&scheduleOpts.format, "format", "f", "table", "output format (table, csv, json)")
	_ = scheduleCmd.MarkFlagRequired("stop")
	rootCmd.AddCommand(scheduleCmd)
}

func printSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(cfg.Scheduler)
	if err != nil {
		return err
	}
	gen, err := work.NewSliceGenerator(scheduleOpts.start, scheduleOpts.stop)
	if err != nil {
		return err
	}
	plan := dispatch.Plan[work.Slice](gen, sched, cfg.Dispatch.BatchBudget)

	switch scheduleOpts.format {
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), plan)
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), plan)
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", scheduleOpts.format)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH\tDEVICE\tOFFSET\tCOUNT\tRANGE")
	for _, p := range plan {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", p.Index, p.Device, p.Offset, p.Count, p.Work)
	}
	return w.Flush()
}
