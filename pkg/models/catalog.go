package models

// TableRef identifies a table by its three-level Unity Catalog name.
type TableRef struct {
	Catalog string `json:"catalog"`
	Schema  string `json:"schema"`
	Table   string `json:"table"`
}

// FullName returns the dotted catalog.schema.table name (unquoted).
func (r TableRef) FullName() string {
	return r.Catalog + "." + r.Schema + "." + r.Table
}

// TableInfo is a table listed in a schema.
type TableInfo struct {
	Name     string `json:"name"`
	Catalog  string `json:"catalog"`
	Schema   string `json:"schema"`
	FullName string `json:"full_name"`
}

// TablePreview holds the first rows of a table.
// Values are strings as returned by the warehouse, or nil for NULL.
type TablePreview struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// ColumnInfo is a column as reported by DESCRIBE TABLE.
type ColumnInfo struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Comment *string `json:"comment,omitempty"`
}
