package console

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/workspace"
)

func strPtr(s string) *string { return &s }

func TestLevelOptions(t *testing.T) {
	level := workspace.Level{Options: []string{"main", "dev"}, Selected: "dev"}

	options, idx := levelOptions(level, "")
	assert.Equal(t, []string{"main", "dev"}, options)
	assert.Equal(t, 1, idx)

	options, idx = levelOptions(level, tablePlaceholder)
	assert.Equal(t, []string{tablePlaceholder, "main", "dev"}, options)
	assert.Equal(t, 2, idx)

	_, idx = levelOptions(workspace.Level{Options: []string{"t1"}}, tablePlaceholder)
	assert.Equal(t, 0, idx, "placeholder is shown when nothing is selected")

	_, idx = levelOptions(workspace.Level{}, "")
	assert.Equal(t, -1, idx)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "abc", formatValue("abc"))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "true", formatValue(true))
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01T10:00:00Z", formatValue(ts))
}

func TestPreviewGrid(t *testing.T) {
	header, rows := previewGrid(nil)
	assert.Nil(t, header)
	assert.Nil(t, rows)

	p := &models.TablePreview{
		Columns: []string{"id", "status"},
		Rows: []map[string]any{
			{"id": "1", "status": "open"},
			{"id": "2", "status": nil},
		},
		RowCount: 2,
	}
	header, rows = previewGrid(p)
	assert.Equal(t, []string{"id", "status"}, header)
	assert.Equal(t, [][]string{{"1", "open"}, {"2", "NULL"}}, rows)
}

func TestStatusText(t *testing.T) {
	s := workspace.New(workspace.Options{})
	assert.Contains(t, statusText(s), "F5 generate")

	s.Loading = true
	assert.Contains(t, statusText(s), "Loading")

	s.Table.Generating = true
	assert.Contains(t, statusText(s), "Generating")

	s.Banner.Success = "Table description updated successfully"
	assert.Contains(t, statusText(s), "updated successfully")

	s.Banner.Error = "Loading tables failed: [boom]"
	text := statusText(s)
	assert.Contains(t, text, "Error:")
	assert.Contains(t, text, "[boom[]", "messages are escaped for tview")
}

func TestCoverageText(t *testing.T) {
	assert.Contains(t, coverageText(workspace.ColumnDoc{}, 10), "No columns")

	doc := workspace.ColumnDoc{Columns: []models.ColumnMetadata{
		{Name: "id", Description: strPtr("Primary key")},
		{Name: "status", IsMissing: true},
		{Name: "amount", Description: strPtr("Order total")},
		{Name: "note", IsMissing: true},
	}}
	text := coverageText(doc, 10)
	assert.Contains(t, text, "2/4 documented (50%), 2 missing")
	assert.Equal(t, 5, strings.Count(text, "█"))
	assert.Equal(t, 5, strings.Count(text, "░"))
}

func TestCurrentText(t *testing.T) {
	assert.Contains(t, currentText(nil, true), "No description")
	assert.Contains(t, currentText(strPtr("n/a"), true), "No description")
	assert.Equal(t, "Orders placed online", currentText(strPtr("Orders placed online"), false))
}

func TestHeaderText(t *testing.T) {
	s := workspace.New(workspace.Options{})
	s.Session.User = &models.User{Username: "ana@example.com"}
	assert.Contains(t, headerText(s), "ana@example.com")

	s.Session.User.Name = "Ana"
	s.Selector.Catalog.Selected = "main"
	s.Selector.Schema.Selected = "sales"
	s.Selector.Table.Selected = "orders"
	text := headerText(s)
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "main.sales.orders")
}
