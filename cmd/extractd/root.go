package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/extractd/config"
	"github.com/kbukum/extractd/version"
)

const serviceName = "extractd"

type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Concurrent, cancellable row extraction",
		Long: "extractd fans batches of rows out to independent extractors, one row at a time,\n" +
			"with single-flight execution and cooperative cancellation.",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to config.yml (searched in ./cmd/extractd, ./config and . when empty)")
	pf.StringVar(&flags.envFile, "env-file", "", "Path to a .env file overlay")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the application config from file, .env and EXTRACTD_* variables.
func (f *rootFlags) load() (*AppConfig, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
