package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

func TestParseTableRef(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/table-description?catalog=main&schema=sales&table=orders", nil)
	rec := httptest.NewRecorder()

	ref, ok := ParseTableRef(rec, req, zap.NewNop())
	require.True(t, ok)
	assert.Equal(t, models.TableRef{Catalog: "main", Schema: "sales", Table: "orders"}, ref)
}

func TestParseTableRef_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/table-description?catalog=main&table=%20", nil)
	rec := httptest.NewRecorder()

	_, ok := ParseTableRef(rec, req, zap.NewNop())
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing_parameters", body["error"])
	assert.Equal(t, "Missing required query parameter: schema, table", body["detail"])
}

func TestParseTableRef_DecodesPercentEncoding(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/column-metadata?catalog=main&schema=sales&table=order%20lines", nil)
	rec := httptest.NewRecorder()

	ref, ok := ParseTableRef(rec, req, zap.NewNop())
	require.True(t, ok)
	assert.Equal(t, "order lines", ref.Table)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{"absent uses default", "", 100, true},
		{"explicit", "?limit=25", 25, true},
		{"max", "?limit=1000", 1000, true},
		{"zero", "?limit=0", 0, false},
		{"too large", "?limit=1001", 0, false},
		{"not a number", "?limit=ten", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/table-preview"+tt.query, nil)
			rec := httptest.NewRecorder()

			got, ok := ParseLimit(rec, req, 100, 1000, zap.NewNop())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
