package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

func newTestCatalogService(catalog *mockCatalog) CatalogService {
	return NewCatalogService(catalog, CatalogServiceConfig{
		Timeout:      time.Second,
		DefaultLimit: 100,
		MaxLimit:     1000,
	}, zap.NewNop())
}

func TestCatalogService_ListCatalogs(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{catalogs: []string{"main", "samples"}})

	catalogs, err := svc.ListCatalogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "samples"}, catalogs)
}

func TestCatalogService_ListCatalogs_Timeout(t *testing.T) {
	svc := NewCatalogService(&mockCatalog{blockUntilDone: true}, CatalogServiceConfig{Timeout: 10 * time.Millisecond}, zap.NewNop())

	_, err := svc.ListCatalogs(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamTimeout)
}

func TestCatalogService_ListSchemas_InvalidCatalog(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{})

	_, err := svc.ListSchemas(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestCatalogService_ListSchemas_Error(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{listErr: errors.New("warehouse stopped")})

	_, err := svc.ListSchemas(context.Background(), "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse stopped")
	assert.NotErrorIs(t, err, apperrors.ErrUpstreamTimeout)
}

func TestCatalogService_ListTables(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{tables: []string{"orders", "customers"}})

	tables, err := svc.ListTables(context.Background(), "main", "sales")
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, models.TableInfo{Name: "orders", Catalog: "main", Schema: "sales", FullName: "main.sales.orders"}, tables[0])
}

func TestCatalogService_ListTables_Empty(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{tables: []string{}})

	tables, err := svc.ListTables(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestCatalogService_PreviewTable(t *testing.T) {
	catalog := &mockCatalog{rows: &datasource.QueryResult{
		Columns: []string{"id", "status"},
		Rows: []map[string]any{
			{"id": "1", "status": "shipped"},
			{"id": "2", "status": nil},
		},
	}}
	svc := newTestCatalogService(catalog)
	ref := models.TableRef{Catalog: "main", Schema: "sales", Table: "orders"}

	preview, err := svc.PreviewTable(context.Background(), ref, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, catalog.capturedLimit, "zero limit uses the default")
	assert.Equal(t, []string{"id", "status"}, preview.Columns)
	assert.Equal(t, 2, preview.RowCount)
	assert.Nil(t, preview.Rows[1]["status"])
}

func TestCatalogService_PreviewTable_LimitBounds(t *testing.T) {
	svc := newTestCatalogService(&mockCatalog{})
	ref := models.TableRef{Catalog: "main", Schema: "sales", Table: "orders"}

	for _, limit := range []int{-1, 1001} {
		_, err := svc.PreviewTable(context.Background(), ref, limit)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest, "limit %d", limit)
	}

	_, err := svc.PreviewTable(context.Background(), ref, 1000)
	assert.NoError(t, err)
}
