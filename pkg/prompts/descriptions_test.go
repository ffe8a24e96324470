package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestBuildTableDescriptionPrompt(t *testing.T) {
	prompt := BuildTableDescriptionPrompt(TableDescriptionInput{
		Catalog: "main",
		Schema:  "sales",
		Table:   "orders",
		OtherTables: []TableContext{
			{Table: "customers", Description: strPtr("People who buy things")},
		},
		Columns: []ColumnContext{
			{Name: "status", Type: "string", SampleValues: []string{"shipped", "pending"}},
		},
	})

	assert.Contains(t, prompt, "Current Table: orders")
	assert.Contains(t, prompt, "Schema: sales")
	assert.Contains(t, prompt, "Catalog: main")
	assert.Contains(t, prompt, `"table": "customers"`)
	assert.Contains(t, prompt, `"People who buy things"`)
	assert.Contains(t, prompt, `"shipped"`)
	assert.Contains(t, prompt, `{"table_description": "your description here"}`)
}

func TestBuildTableDescriptionPrompt_EmptyContext(t *testing.T) {
	prompt := BuildTableDescriptionPrompt(TableDescriptionInput{Catalog: "c", Schema: "s", Table: "t"})
	assert.Contains(t, prompt, "## Other tables in the schema with descriptions\n[]")
	assert.NotContains(t, prompt, "null\n")
}

func TestBuildColumnDescriptionsPrompt(t *testing.T) {
	prompt := BuildColumnDescriptionsPrompt(ColumnDescriptionInput{
		Catalog:          "main",
		Schema:           "sales",
		Table:            "orders",
		TableDescription: "All web store orders",
		Documented: []ColumnContext{
			{Name: "id", Type: "bigint", Description: strPtr("Order identifier")},
		},
		Missing: []ColumnContext{
			{Name: "status", Type: "string", SampleValues: []string{"shipped"}},
			{Name: "notes", Type: "string"},
		},
	})

	assert.Contains(t, prompt, "All web store orders")
	assert.Contains(t, prompt, `"Order identifier"`)
	assert.Contains(t, prompt, `"name": "status"`)
	assert.Contains(t, prompt, `"name": "notes"`)
	assert.Contains(t, prompt, `"status": [`)
	assert.NotContains(t, prompt, `"notes": [`, "columns without samples are omitted from the sample map")
	assert.Contains(t, prompt, `{"columns": [{"name": "col1"`)
}

func TestBuildColumnDescriptionsPrompt_NoTableDescription(t *testing.T) {
	prompt := BuildColumnDescriptionsPrompt(ColumnDescriptionInput{Table: "t", TableDescription: "  "})
	assert.Contains(t, prompt, "## Table description\nNo description")
}

func TestSampleValues(t *testing.T) {
	rows := []map[string]any{
		{"status": "shipped"},
		{"status": nil},
		{"status": "shipped"},
		{"status": "pending"},
		{},
		{"status": "returned"},
		{"status": "lost"},
		{"status": "cancelled"},
		{"status": "refunded"},
	}

	got := SampleValues(rows, "status")
	assert.Equal(t, []string{"shipped", "pending", "returned", "lost", "cancelled"}, got)
	assert.Empty(t, SampleValues(rows, "missing"))
	assert.True(t, strings.Contains(SystemMessage, "Unity Catalog"))
}
