package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	sqlutil "github.com/ekaya-inc/ekaya-enrich/pkg/sql"
)

// CatalogService browses catalogs, schemas and tables and previews table rows.
type CatalogService interface {
	ListCatalogs(ctx context.Context) ([]string, error)
	ListSchemas(ctx context.Context, catalog string) ([]string, error)
	ListTables(ctx context.Context, catalog, schema string) ([]models.TableInfo, error)
	// PreviewTable returns the first limit rows. A zero limit uses the configured default.
	PreviewTable(ctx context.Context, ref models.TableRef, limit int) (*models.TablePreview, error)
}

// CatalogServiceConfig bounds catalog operations.
type CatalogServiceConfig struct {
	// Timeout applies to every listing and preview.
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

type catalogService struct {
	explorer datasource.CatalogExplorer
	reader   datasource.TableReader
	cfg      CatalogServiceConfig
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service backed by catalog.
func NewCatalogService(catalog datasource.Catalog, cfg CatalogServiceConfig, logger *zap.Logger) CatalogService {
	if cfg.MaxLimit <= 0 || cfg.MaxLimit > datasource.MaxQueryLimit {
		cfg.MaxLimit = datasource.MaxQueryLimit
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(100, cfg.MaxLimit)
	}
	return &catalogService{
		explorer: catalog,
		reader:   catalog,
		cfg:      cfg,
		logger:   logger.Named("catalog-service"),
	}
}

func (s *catalogService) ListCatalogs(ctx context.Context) ([]string, error) {
	return withTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) ([]string, error) {
		catalogs, err := s.explorer.ListCatalogs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list catalogs: %w", err)
		}
		return catalogs, nil
	})
}

func (s *catalogService) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	if err := sqlutil.ValidateIdentifier("catalog", catalog); err != nil {
		return nil, err
	}
	return withTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) ([]string, error) {
		schemas, err := s.explorer.ListSchemas(ctx, catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to list schemas in %s: %w", catalog, err)
		}
		return schemas, nil
	})
}

func (s *catalogService) ListTables(ctx context.Context, catalog, schema string) ([]models.TableInfo, error) {
	if err := sqlutil.ValidateIdentifier("catalog", catalog); err != nil {
		return nil, err
	}
	if err := sqlutil.ValidateIdentifier("schema", schema); err != nil {
		return nil, err
	}

	names, err := withTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) ([]string, error) {
		return s.explorer.ListTables(ctx, catalog, schema)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s.%s: %w", catalog, schema, err)
	}

	tables := make([]models.TableInfo, 0, len(names))
	for _, name := range names {
		ref := models.TableRef{Catalog: catalog, Schema: schema, Table: name}
		tables = append(tables, models.TableInfo{
			Name:     name,
			Catalog:  catalog,
			Schema:   schema,
			FullName: ref.FullName(),
		})
	}
	return tables, nil
}

func (s *catalogService) PreviewTable(ctx context.Context, ref models.TableRef, limit int) (*models.TablePreview, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit < 1 || limit > s.cfg.MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", apperrors.ErrInvalidRequest, s.cfg.MaxLimit)
	}

	result, err := withTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) (*datasource.QueryResult, error) {
		return s.reader.SelectRows(ctx, ref, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to preview %s: %w", ref.FullName(), err)
	}

	s.logger.Debug("Previewed table",
		zap.String("table", ref.FullName()),
		zap.Int("limit", limit),
		zap.Int("rows", len(result.Rows)))

	return &models.TablePreview{
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: len(result.Rows),
	}, nil
}
