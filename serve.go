package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/audit"
	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/config"
	dbx "github.com/ekaya-inc/ekaya-enrich/pkg/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/handlers"
	"github.com/ekaya-inc/ekaya-enrich/pkg/llm"
	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
	"github.com/ekaya-inc/ekaya-enrich/pkg/middleware"
	"github.com/ekaya-inc/ekaya-enrich/pkg/retry"
	"github.com/ekaya-inc/ekaya-enrich/pkg/services"
	"github.com/ekaya-inc/ekaya-enrich/ui"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, Version)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("workspace", cfg.Databricks.WorkspaceURL()),
		zap.String("warehouse_id", cfg.Databricks.WarehouseID()),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	// One token source authorises both warehouse statements and model serving.
	tokens := dbx.NewTokenSource(ctx, cfg.Databricks.WorkspaceURL(), cfg.Databricks.ClientID, cfg.Databricks.ClientSecret)
	sqlHTTP := dbx.NewHTTPClient(ctx, tokens)
	servingHTTP := oauth2.NewClient(ctx, tokens)
	servingHTTP.Timeout = cfg.Timeouts.Generate()

	dbClient, err := dbx.NewClient(&dbx.Config{
		WorkspaceURL: cfg.Databricks.WorkspaceURL(),
		WarehouseID:  cfg.Databricks.WarehouseID(),
		PollInterval: cfg.Databricks.PollInterval(),
		MaxPolls:     cfg.Databricks.MaxPolls,
		HTTPClient:   sqlHTTP,
		Retry:        retry.DefaultConfig(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create Databricks client: %w", err)
	}

	llmClient, err := llm.NewClientFromConfig(cfg, servingHTTP, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	catalog := databricks.NewCatalog(dbClient, logger)

	catalogService := services.NewCatalogService(catalog, services.CatalogServiceConfig{
		Timeout:      cfg.Timeouts.Metadata(),
		DefaultLimit: cfg.Preview.DefaultLimit,
		MaxLimit:     cfg.Preview.MaxLimit,
	}, logger)
	enrichmentService := services.NewEnrichmentService(catalog, llmClient, services.EnrichmentServiceConfig{
		Temperature:     cfg.LLM.Temperature,
		ReadTimeout:     cfg.Timeouts.Read(),
		GenerateTimeout: cfg.Timeouts.Generate(),
		UpdateTimeout:   cfg.Timeouts.Update(),
	}, logger)

	registry := auth.NewRegistry(cfg.Session.TTL())
	cookies := auth.NewCookies(cfg.Session.Secret, cfg.Session.TTL(), auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain))
	authService := services.NewAuthService(dbClient, registry, logger)
	authMiddleware := auth.NewMiddleware(registry, cookies, logger)
	auditor := audit.NewSecurityAuditor(logger)

	assets, err := ui.DistFS()
	if err != nil {
		return fmt.Errorf("failed to open frontend build: %w", err)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger,
		handlers.ReadinessCheck{Name: "databricks_auth", Check: func(ctx context.Context) error {
			return dbx.CheckToken(ctx, tokens)
		}},
		handlers.ReadinessCheck{Name: "llm_model", Check: func(context.Context) error {
			if llmClient.GetModel() == "" {
				return errors.New("no model configured")
			}
			return nil
		}},
	).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, cookies, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCatalogHandler(catalogService, handlers.PreviewLimits{
		Default: cfg.Preview.DefaultLimit,
		Max:     cfg.Preview.MaxLimit,
	}, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewEnrichmentHandler(enrichmentService, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSPAHandler(assets, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger)(middleware.Recover(logger)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting ekaya-enrich",
			zap.String("addr", server.Addr),
			zap.Bool("tls", cfg.TLSCertPath != ""),
			zap.String("version", cfg.Version))
		var err error
		if cfg.TLSCertPath != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := registry.Sweep(); n > 0 {
					logger.Debug("Swept expired sessions", zap.Int("count", n))
				}
			}
		}
	})

	return g.Wait()
}
