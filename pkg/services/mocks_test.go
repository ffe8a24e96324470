package services

import (
	"context"
	"sync"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-enrich/pkg/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

func strPtr(s string) *string { return &s }

// mockCatalog is a configurable in-memory datasource.Catalog.
type mockCatalog struct {
	catalogs      []string
	schemas       []string
	tables        []string
	rows          *datasource.QueryResult
	columns       []models.ColumnInfo
	tableComment  *string
	tableComments []datasource.TableComment

	listErr        error
	selectErr      error
	describeErr    error
	commentErr     error
	siblingsErr    error
	setTableErr    error
	setColumnErr   error
	blockUntilDone bool

	mu               sync.Mutex
	capturedLimit    int
	capturedTable    string
	capturedColumns  []string
	capturedComments map[string]string
}

func (m *mockCatalog) ListCatalogs(ctx context.Context) ([]string, error) {
	if m.blockUntilDone {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.catalogs, m.listErr
}

func (m *mockCatalog) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	return m.schemas, m.listErr
}

func (m *mockCatalog) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	return m.tables, m.listErr
}

func (m *mockCatalog) SelectRows(ctx context.Context, ref models.TableRef, limit int) (*datasource.QueryResult, error) {
	m.mu.Lock()
	m.capturedLimit = limit
	m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	if m.rows == nil {
		return &datasource.QueryResult{Columns: []string{}, Rows: []map[string]any{}}, nil
	}
	return m.rows, nil
}

func (m *mockCatalog) DescribeColumns(ctx context.Context, ref models.TableRef) ([]models.ColumnInfo, error) {
	return m.columns, m.describeErr
}

func (m *mockCatalog) GetTableComment(ctx context.Context, ref models.TableRef) (*string, error) {
	return m.tableComment, m.commentErr
}

func (m *mockCatalog) ListTableComments(ctx context.Context, ref models.TableRef, limit int) ([]datasource.TableComment, error) {
	return m.tableComments, m.siblingsErr
}

func (m *mockCatalog) SetTableComment(ctx context.Context, ref models.TableRef, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capturedTable = comment
	return m.setTableErr
}

func (m *mockCatalog) SetColumnComment(ctx context.Context, ref models.TableRef, column, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setColumnErr != nil {
		return m.setColumnErr
	}
	m.capturedColumns = append(m.capturedColumns, column)
	if m.capturedComments == nil {
		m.capturedComments = make(map[string]string)
	}
	m.capturedComments[column] = comment
	return nil
}

// mockVerifier returns a fixed identity or error.
type mockVerifier struct {
	identity *databricks.Identity
	err      error

	capturedUsername string
}

func (m *mockVerifier) VerifyCredentials(ctx context.Context, username, password string) (*databricks.Identity, error) {
	m.capturedUsername = username
	return m.identity, m.err
}
