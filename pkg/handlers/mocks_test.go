package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// mockCatalogService is a configurable services.CatalogService.
type mockCatalogService struct {
	catalogs []string
	schemas  []string
	tables   []models.TableInfo
	preview  *models.TablePreview
	err      error

	capturedCatalog string
	capturedRef     models.TableRef
	capturedLimit   int
}

func (m *mockCatalogService) ListCatalogs(ctx context.Context) ([]string, error) {
	return m.catalogs, m.err
}

func (m *mockCatalogService) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	m.capturedCatalog = catalog
	return m.schemas, m.err
}

func (m *mockCatalogService) ListTables(ctx context.Context, catalog, schema string) ([]models.TableInfo, error) {
	m.capturedCatalog = catalog
	return m.tables, m.err
}

func (m *mockCatalogService) PreviewTable(ctx context.Context, ref models.TableRef, limit int) (*models.TablePreview, error) {
	m.capturedRef = ref
	m.capturedLimit = limit
	return m.preview, m.err
}

// mockEnrichmentService is a configurable services.EnrichmentService.
type mockEnrichmentService struct {
	description *models.TableDescription
	columns     []models.ColumnMetadata
	generated   string
	generatedCs []models.GeneratedColumnDescription
	err         error

	capturedRef          models.TableRef
	capturedDescription  string
	capturedDescriptions map[string]string
}

func (m *mockEnrichmentService) GetTableDescription(ctx context.Context, ref models.TableRef) (*models.TableDescription, error) {
	m.capturedRef = ref
	return m.description, m.err
}

func (m *mockEnrichmentService) GetColumnMetadata(ctx context.Context, ref models.TableRef) ([]models.ColumnMetadata, error) {
	m.capturedRef = ref
	return m.columns, m.err
}

func (m *mockEnrichmentService) GenerateTableDescription(ctx context.Context, ref models.TableRef) (string, error) {
	m.capturedRef = ref
	return m.generated, m.err
}

func (m *mockEnrichmentService) GenerateColumnDescriptions(ctx context.Context, ref models.TableRef) ([]models.GeneratedColumnDescription, error) {
	m.capturedRef = ref
	return m.generatedCs, m.err
}

func (m *mockEnrichmentService) UpdateTableDescription(ctx context.Context, ref models.TableRef, description string) error {
	m.capturedRef = ref
	m.capturedDescription = description
	return m.err
}

func (m *mockEnrichmentService) UpdateColumnDescriptions(ctx context.Context, ref models.TableRef, descriptions map[string]string) error {
	m.capturedRef = ref
	m.capturedDescriptions = descriptions
	return m.err
}

// mockAuthService is a services.AuthService backed by a real registry.
type mockAuthService struct {
	registry *auth.Registry
	user     models.User
	err      error

	loggedOut []string
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.registry.Create(m.user), nil
}

func (m *mockAuthService) Session(id string) (*models.Session, error) {
	return m.registry.Get(id)
}

func (m *mockAuthService) Logout(id string) {
	m.loggedOut = append(m.loggedOut, id)
	m.registry.Delete(id)
}

// testSessions bundles the session plumbing shared by handler tests.
type testSessions struct {
	registry   *auth.Registry
	cookies    *auth.Cookies
	middleware *auth.Middleware
}

func newTestSessions() *testSessions {
	registry := auth.NewRegistry(time.Hour)
	cookies := auth.NewCookies("handler-test-secret", time.Hour, auth.CookieSettings{})
	return &testSessions{
		registry:   registry,
		cookies:    cookies,
		middleware: auth.NewMiddleware(registry, cookies, zap.NewNop()),
	}
}

// signedInCookie creates a session and returns the cookie that carries it.
func (s *testSessions) signedInCookie(t *testing.T) *http.Cookie {
	t.Helper()
	session := s.registry.Create(models.User{Username: "ada@example.com", Name: "ada", Email: "ada@example.com"})
	rec := httptest.NewRecorder()
	require.NoError(t, s.cookies.Set(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), session.ID))
	result := rec.Result()
	defer result.Body.Close()
	require.NotEmpty(t, result.Cookies())
	return result.Cookies()[0]
}
