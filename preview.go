package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/client"
	"github.com/ekaya-inc/ekaya-enrich/pkg/config"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// previewPasswordEnv holds the password for non-interactive previews.
const previewPasswordEnv = "ENRICH_PASSWORD"

func newPreviewCmd() *cobra.Command {
	var serverURL, username string
	var ref models.TableRef
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the first rows of a table",
		Long: `Sign in to a running ekaya-enrich server and print a table preview.
The password is read from the ` + previewPasswordEnv + ` environment variable.`,
		Example: "  ENRICH_PASSWORD=... ekaya-enrich preview --user ana --catalog main --schema sales --table orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, Version)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if serverURL == "" {
				serverURL = cfg.Console.ServerURL
			}
			if limit <= 0 {
				limit = cfg.Preview.DefaultLimit
			}
			password := os.Getenv(previewPasswordEnv)
			if password == "" {
				return errors.New(previewPasswordEnv + " is not set")
			}

			api, err := client.NewClient(serverURL, zap.NewNop())
			if err != nil {
				return err
			}
			if _, err := api.Login(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			defer func() { _ = api.Logout(cmd.Context()) }()

			preview, err := api.PreviewTable(cmd.Context(), ref, limit)
			if err != nil {
				return fmt.Errorf("preview failed: %w", err)
			}
			renderPreview(cmd.OutOrStdout(), preview)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "ekaya-enrich server URL (default: console.server_url)")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Databricks username")
	cmd.Flags().StringVar(&ref.Catalog, "catalog", "", "catalog name")
	cmd.Flags().StringVar(&ref.Schema, "schema", "", "schema name")
	cmd.Flags().StringVar(&ref.Table, "table", "", "table name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "rows to fetch (default: preview.default_limit)")
	for _, name := range []string{"user", "catalog", "schema", "table"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func renderPreview(w io.Writer, p *models.TablePreview) {
	if len(p.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(p.Columns))
	for i, col := range p.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range p.Rows {
		out := make(table.Row, len(p.Columns))
		for i, col := range p.Columns {
			out[i] = formatCell(row[col])
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(p.Rows))
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
