package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-enrich/pkg/config"
	"github.com/ekaya-inc/ekaya-enrich/pkg/console"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
)

func newConsoleCmd() *cobra.Command {
	var serverURL string
	var noColumns bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the enrichment workspace in the terminal",
		Long: `Open the enrichment workspace in the terminal. The console talks to a
running "ekaya-enrich serve" instance; logs go to console.log_file since the
terminal is taken by the UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, Version)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if serverURL != "" {
				cfg.Console.ServerURL = serverURL
			}

			logger, err := logging.NewFileLogger(cfg.Console.LogFile, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return console.Run(cmd.Context(), console.Options{
				ServerURL:              cfg.Console.ServerURL,
				EnableColumnEnrichment: cfg.Console.EnableColumnEnrichment && !noColumns,
				PreviewLimit:           cfg.Preview.DefaultLimit,
			}, logger)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "ekaya-enrich server URL (overrides console.server_url)")
	cmd.Flags().BoolVar(&noColumns, "no-columns", false, "hide column description enrichment")
	return cmd
}
