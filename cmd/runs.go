package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batchflow/core/runlog"
)

var runsOpts struct {
	status string
	since  time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs recorded in the run log",
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsOpts.status, "status", "", "only show runs with this status (ok, failed, canceled)")
	runsCmd.Flags().DurationVar(&runsOpts.since, "since", 0, "only show runs started within this duration")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := runlog.New(cfg.RunLog)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no runlog backend configured")
	}
	defer func() { _ = store.Close() }()

	q := runlog.Query{Status: runsOpts.status}
	if runsOpts.since > 0 {
		q.Start = time.Now().Add(-runsOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMODE\tSTATUS\tBATCHES\tUNITS\tDURATION")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Started.Format(time.RFC3339), r.Mode,
			r.Status, r.Batches, r.Units, r.Duration().Round(time.Millisecond))
	}
	return w.Flush()
}
