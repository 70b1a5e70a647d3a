package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/extractd/bootstrap"
	"github.com/kbukum/extractd/extract"
)

type runFlags struct {
	rows        int
	cancelAfter time.Duration
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one batch through the extractors and exit",
		Long: `Processes --rows rows through every configured extractor and prints the
final run as JSON. SIGINT or --cancel-after requests cancellation; the
current row and the completion phase still finish.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			app, err := bootstrap.NewApp(cfg, bootstrap.WithoutSummary())
			if err != nil {
				return err
			}
			coordinator, err := registerCore(app)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				run, err := coordinator.Process(flags.rows)
				if err != nil {
					return err
				}
				return awaitRun(ctx, run, flags.cancelAfter, cmd.OutOrStdout())
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.rows, "rows", 5, "Number of rows in the batch")
	f.DurationVar(&flags.cancelAfter, "cancel-after", 0, "Request cancellation after this long (0 disables)")
	return cmd
}

// awaitRun blocks until run is terminal, requesting cancellation when ctx
// ends or cancelAfter elapses. It writes the final RunInfo to out and returns
// the run's failure, if any. A cancelled run is not an error.
func awaitRun(ctx context.Context, run *extract.Run, cancelAfter time.Duration, out io.Writer) error {
	var deadline <-chan time.Time
	if cancelAfter > 0 {
		timer := time.NewTimer(cancelAfter)
		defer timer.Stop()
		deadline = timer.C
	}

	interrupted := ctx.Done()
	for waiting := true; waiting; {
		select {
		case <-run.Done():
			waiting = false
		case <-deadline:
			run.Cancel()
			deadline = nil
		case <-interrupted:
			run.Cancel()
			interrupted = nil
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run.Info()); err != nil {
		return err
	}
	return run.Err()
}
