// Package prompts builds the model prompts used to draft table and column descriptions.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-enrich/pkg/jsonutil"
)

// MaxSampleValues is the number of distinct sample values shown per column.
const MaxSampleValues = 5

// SystemMessage frames every description request.
const SystemMessage = `You are a data documentation expert writing descriptions for tables and columns in a Databricks Unity Catalog.
Descriptions are read by analysts browsing the catalog, so describe business meaning rather than repeating the name or type.`

// TableContext is another table in the schema, shown so new descriptions match existing style.
type TableContext struct {
	Table       string  `json:"table"`
	Description *string `json:"description"`
}

// ColumnContext describes one column of the target table.
type ColumnContext struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  *string  `json:"description"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// TableDescriptionInput is everything the table prompt needs.
type TableDescriptionInput struct {
	Catalog     string
	Schema      string
	Table       string
	OtherTables []TableContext
	Columns     []ColumnContext
}

// ColumnDescriptionInput is everything the column prompt needs.
type ColumnDescriptionInput struct {
	Catalog          string
	Schema           string
	Table            string
	TableDescription string
	// Documented are columns that already have descriptions.
	Documented []ColumnContext
	// Missing are the columns to describe; SampleValues may be empty.
	Missing []ColumnContext
}

// TableDescriptionResponse is the JSON shape requested by BuildTableDescriptionPrompt.
type TableDescriptionResponse struct {
	TableDescription string `json:"table_description"`
}

// ColumnDescriptionResponse is the JSON shape requested by BuildColumnDescriptionsPrompt.
type ColumnDescriptionResponse struct {
	Columns []struct {
		Name        string                  `json:"name"`
		Description jsonutil.FlexibleString `json:"description"`
	} `json:"columns"`
}

// BuildTableDescriptionPrompt asks for one description of the whole table,
// consistent in style with the other tables of the schema.
func BuildTableDescriptionPrompt(in TableDescriptionInput) string {
	var sb strings.Builder

	sb.WriteString("# Table Description\n\n")
	sb.WriteString(fmt.Sprintf("Current Table: %s\n", in.Table))
	sb.WriteString(fmt.Sprintf("Schema: %s\n", in.Schema))
	sb.WriteString(fmt.Sprintf("Catalog: %s\n\n", in.Catalog))

	sb.WriteString("## Other tables in the schema with descriptions\n")
	sb.WriteString(toJSON(nonNilTables(in.OtherTables)))
	sb.WriteString("\n\n")

	sb.WriteString("## Columns (with existing descriptions and sample values)\n")
	sb.WriteString(toJSON(nonNilColumns(in.Columns)))
	sb.WriteString("\n\n")

	sb.WriteString("## Task\n")
	sb.WriteString("Write a clear and elaborate description of this table summarizing its purpose and content.\n")
	sb.WriteString("Keep it consistent with the style of the other tables in the schema.\n\n")

	sb.WriteString("## Response Format\n")
	sb.WriteString("Return ONLY a JSON object in this exact format:\n")
	sb.WriteString(`{"table_description": "your description here"}`)
	sb.WriteString("\n\nDo not include any other text, markdown, or explanation.\n")

	return sb.String()
}

// BuildColumnDescriptionsPrompt asks for descriptions of the missing columns only.
func BuildColumnDescriptionsPrompt(in ColumnDescriptionInput) string {
	var sb strings.Builder

	sb.WriteString("# Column Descriptions\n\n")
	sb.WriteString(fmt.Sprintf("Table: %s\n", in.Table))
	sb.WriteString(fmt.Sprintf("Schema: %s\n", in.Schema))
	sb.WriteString(fmt.Sprintf("Catalog: %s\n\n", in.Catalog))

	sb.WriteString("## Table description\n")
	if strings.TrimSpace(in.TableDescription) == "" {
		sb.WriteString("No description\n\n")
	} else {
		sb.WriteString(in.TableDescription)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Other columns with descriptions\n")
	documented := make([]ColumnContext, 0, len(in.Documented))
	for _, col := range in.Documented {
		documented = append(documented, ColumnContext{Name: col.Name, Type: col.Type, Description: col.Description})
	}
	sb.WriteString(toJSON(documented))
	sb.WriteString("\n\n")

	sb.WriteString("## Columns needing descriptions\n")
	type nameType struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	missing := make([]nameType, 0, len(in.Missing))
	samples := make(map[string][]string, len(in.Missing))
	for _, col := range in.Missing {
		missing = append(missing, nameType{Name: col.Name, Type: col.Type})
		if len(col.SampleValues) > 0 {
			samples[col.Name] = col.SampleValues
		}
	}
	sb.WriteString(toJSON(missing))
	sb.WriteString("\n\n")

	sb.WriteString("## Sample values for columns needing descriptions\n")
	sb.WriteString(toJSON(samples))
	sb.WriteString("\n\n")

	sb.WriteString("## Task\n")
	sb.WriteString("Write a clear, concise description for each column needing one.\n")
	sb.WriteString("Keep descriptions consistent with the style of the existing ones.\n")
	sb.WriteString("Use each column name exactly once.\n\n")

	sb.WriteString("## Response Format\n")
	sb.WriteString("Return ONLY a JSON object in this exact format:\n")
	sb.WriteString(`{"columns": [{"name": "col1", "description": "..."}, {"name": "col2", "description": "..."}]}`)
	sb.WriteString("\n\nDo not include any other text, markdown, or explanation.\n")

	return sb.String()
}

// SampleValues collects up to MaxSampleValues distinct non-null values of column
// from rows, in row order.
func SampleValues(rows []map[string]any, column string) []string {
	values := make([]string, 0, MaxSampleValues)
	seen := make(map[string]bool)
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if seen[s] {
			continue
		}
		seen[s] = true
		values = append(values, s)
		if len(values) >= MaxSampleValues {
			break
		}
	}
	return values
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nonNilTables(t []TableContext) []TableContext {
	if t == nil {
		return []TableContext{}
	}
	return t
}

func nonNilColumns(c []ColumnContext) []ColumnContext {
	if c == nil {
		return []ColumnContext{}
	}
	return c
}
