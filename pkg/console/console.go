// Package console is the terminal client: it renders the enrichment
// workspace with tview and drives it through the HTTP API.
package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/client"
	"github.com/ekaya-inc/ekaya-enrich/pkg/workspace"
)

// Options configure the console.
type Options struct {
	ServerURL              string
	EnableColumnEnrichment bool
	PreviewLimit           int
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options, logger *zap.Logger) error {
	api, err := client.NewClient(opts.ServerURL, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := workspace.NewStore(workspace.Options{
		EnableColumnEnrichment: opts.EnableColumnEnrichment,
		PreviewLimit:           opts.PreviewLimit,
	})
	store.SetRunner(workspace.NewRunner(ctx, api, store.Dispatch, logger))

	app := tview.NewApplication()
	v := newView(app, store.Dispatch, opts.EnableColumnEnrichment)
	store.Subscribe(func(workspace.State) {
		queueUpdate(app, func() {
			v.render(store.State())
		})
	})

	var mountOnce sync.Once
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		mountOnce.Do(func() {
			go store.Dispatch(workspace.Init{})
		})
		return false
	})

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	logger.Info("Starting console", zap.String("server", opts.ServerURL))
	app.SetRoot(v.pages, true).SetInputCapture(v.handleKey)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
