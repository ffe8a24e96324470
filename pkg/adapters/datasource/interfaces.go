package datasource

import (
	"context"

	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// MaxQueryLimit is the hard cap on rows returned by SelectRows.
const MaxQueryLimit = 1000

// CatalogExplorer browses Unity Catalog metadata.
type CatalogExplorer interface {
	// ListCatalogs returns the names of catalogs visible to the service principal.
	ListCatalogs(ctx context.Context) ([]string, error)

	// ListSchemas returns the schema names in a catalog.
	ListSchemas(ctx context.Context, catalog string) ([]string, error)

	// ListTables returns the table names in catalog.schema.
	ListTables(ctx context.Context, catalog, schema string) ([]string, error)
}

// TableReader reads table contents and descriptive metadata.
type TableReader interface {
	// SelectRows returns up to limit rows of the table (capped at MaxQueryLimit).
	SelectRows(ctx context.Context, ref models.TableRef, limit int) (*QueryResult, error)

	// DescribeColumns returns the table's columns in declaration order.
	// Partition and detail sections of DESCRIBE output are excluded.
	DescribeColumns(ctx context.Context, ref models.TableRef) ([]models.ColumnInfo, error)

	// GetTableComment returns the stored table comment, or nil when unset
	// or when the table is not in information_schema.
	GetTableComment(ctx context.Context, ref models.TableRef) (*string, error)

	// ListTableComments returns up to limit other tables of the schema with their comments.
	ListTableComments(ctx context.Context, ref models.TableRef, limit int) ([]TableComment, error)
}

// CommentWriter persists approved descriptions.
type CommentWriter interface {
	// SetTableComment replaces the table comment.
	SetTableComment(ctx context.Context, ref models.TableRef, comment string) error

	// SetColumnComment replaces one column comment.
	SetColumnComment(ctx context.Context, ref models.TableRef, column, comment string) error
}

// Catalog combines every capability the services need.
type Catalog interface {
	CatalogExplorer
	TableReader
	CommentWriter
}

// QueryResult contains the rows of a query keyed by column name.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// TableComment is a table name with its comment, used as style context for generation.
type TableComment struct {
	Table       string  `json:"table"`
	Description *string `json:"description"`
}
