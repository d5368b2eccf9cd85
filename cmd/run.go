package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batchflow/app"
	"github.com/kilianp07/batchflow/infra/logger"
)

var runOpts struct {
	start    int
	stop     int
	workload string
	cols     int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload over an index range",
	RunE:  runWorkload,
}

func init() {
	runCmd.Flags().IntVar(&runOpts.start, "start", 0, "first index of the range")
	runCmd.Flags().IntVar(&runOpts.stop, "stop", 0, "end of the range (exclusive)")
	runCmd.Flags().StringVarP(&runOpts.workload, "workload", "w", "product",
		"workload to run ("+strings.Join(app.Workloads(), ", ")+")")
	runCmd.Flags().IntVar(&runOpts.cols, "cols", 4, "inputs of the jacobian workload")
	_ = runCmd.MarkFlagRequired("stop")
	rootCmd.AddCommand(runCmd)
}

func runWorkload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	res, err := svc.RunWorkload(ctx, runOpts.workload, app.Params{
		Start: runOpts.start,
		Stop:  runOpts.stop,
		Cols:  runOpts.cols,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d batches\n", res.RunID, res.Batches)
	fmt.Fprintln(out, strings.TrimRight(res.Value, "\n"))
	return nil
}
