package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/extractd/bootstrap"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction control API over HTTP",
		Long: `Starts the HTTP service:

  GET /start/:n      start a run over n rows (still_running | started)
  GET /active        true | false
  GET /cancel        cancelled | not_run
  GET /runs/current  the recorded run as JSON

The service stops on SIGINT/SIGTERM; an active run is cancelled and its
in-flight hooks are aborted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			coordinator, err := registerCore(app)
			if err != nil {
				return err
			}
			if _, err := registerServer(app, coordinator); err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
