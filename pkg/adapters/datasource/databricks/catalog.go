// Package databricks implements the datasource interfaces on a Databricks SQL warehouse.
package databricks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/adapters/datasource"
	dbx "github.com/ekaya-inc/ekaya-enrich/pkg/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
	"github.com/ekaya-inc/ekaya-enrich/pkg/sql"
)

// StatementRunner executes SQL on a warehouse. *databricks.Client implements it.
type StatementRunner interface {
	ExecuteStatement(ctx context.Context, statement string, params ...dbx.Parameter) (*dbx.Result, error)
}

// Result column names differ between warehouse versions; the first present wins.
var (
	catalogNameColumns = []string{"catalog", "catalogName", "name"}
	schemaNameColumns  = []string{"databaseName", "schema", "schemaName", "namespace", "name"}
	tableNameColumns   = []string{"tableName", "table_name", "name"}
)

// Catalog browses and annotates Unity Catalog objects through SQL statements.
type Catalog struct {
	runner StatementRunner
	logger *zap.Logger
}

// NewCatalog creates a Catalog. If logger is nil, a no-op logger is used.
func NewCatalog(runner StatementRunner, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		runner: runner,
		logger: logger.Named("catalog"),
	}
}

var _ datasource.Catalog = (*Catalog)(nil)

// ListCatalogs returns the names of catalogs visible to the service principal.
func (c *Catalog) ListCatalogs(ctx context.Context) ([]string, error) {
	result, err := c.runner.ExecuteStatement(ctx, "SHOW CATALOGS")
	if err != nil {
		return nil, fmt.Errorf("show catalogs: %w", err)
	}
	return nonNil(result.StringColumn(catalogNameColumns...)), nil
}

// ListSchemas returns the schema names in a catalog.
func (c *Catalog) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	if err := sql.ValidateIdentifier("catalog", catalog); err != nil {
		return nil, err
	}

	result, err := c.runner.ExecuteStatement(ctx, "SHOW SCHEMAS IN "+sql.QuoteIdentifier(catalog))
	if err != nil {
		return nil, fmt.Errorf("show schemas in %s: %w", catalog, err)
	}
	return nonNil(result.StringColumn(schemaNameColumns...)), nil
}

// ListTables returns the table names in catalog.schema.
func (c *Catalog) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	if err := validateAll(map[string]string{"catalog": catalog, "schema": schema}); err != nil {
		return nil, err
	}

	result, err := c.runner.ExecuteStatement(ctx, "SHOW TABLES IN "+sql.QualifiedName(catalog, schema))
	if err != nil {
		return nil, fmt.Errorf("show tables in %s.%s: %w", catalog, schema, err)
	}
	return nonNil(result.StringColumn(tableNameColumns...)), nil
}

// SelectRows returns up to limit rows of the table.
func (c *Catalog) SelectRows(ctx context.Context, ref models.TableRef, limit int) (*datasource.QueryResult, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > datasource.MaxQueryLimit {
		limit = datasource.MaxQueryLimit
	}

	stmt := fmt.Sprintf("SELECT * FROM %s LIMIT %d", qualified(ref), limit)
	result, err := c.runner.ExecuteStatement(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", ref.FullName(), err)
	}

	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}
	return &datasource.QueryResult{
		Columns: columns,
		Rows:    result.Records(),
	}, nil
}

// DescribeColumns returns the table's columns in declaration order.
// DESCRIBE TABLE appends partition and detail sections after a blank or "#" row;
// reading stops there.
func (c *Catalog) DescribeColumns(ctx context.Context, ref models.TableRef) ([]models.ColumnInfo, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	result, err := c.runner.ExecuteStatement(ctx, "DESCRIBE TABLE "+qualified(ref))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", ref.FullName(), err)
	}

	nameIdx := indexOr(result.ColumnIndex("col_name"), 0)
	typeIdx := indexOr(result.ColumnIndex("data_type"), 1)
	commentIdx := indexOr(result.ColumnIndex("comment"), 2)

	columns := make([]models.ColumnInfo, 0, len(result.Rows))
	for _, row := range result.Rows {
		name := strings.TrimSpace(cell(row, nameIdx))
		if name == "" || strings.HasPrefix(name, "#") {
			break
		}
		col := models.ColumnInfo{
			Name: name,
			Type: cell(row, typeIdx),
		}
		if commentIdx < len(row) {
			if s, ok := row[commentIdx].(string); ok {
				col.Comment = &s
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// GetTableComment returns the stored table comment, or nil when unset.
func (c *Catalog) GetTableComment(ctx context.Context, ref models.TableRef) (*string, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(
		"SELECT comment FROM %s WHERE table_schema = :schema AND table_name = :table",
		sql.QualifiedName(ref.Catalog, "information_schema", "tables"))
	result, err := c.runner.ExecuteStatement(ctx, stmt,
		dbx.StringParam("schema", ref.Schema),
		dbx.StringParam("table", ref.Table))
	if err != nil {
		return nil, fmt.Errorf("read comment of %s: %w", ref.FullName(), err)
	}

	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return nil, nil
	}
	if s, ok := result.Rows[0][0].(string); ok {
		return &s, nil
	}
	return nil, nil
}

// ListTableComments returns up to limit other tables of the schema with their comments.
func (c *Catalog) ListTableComments(ctx context.Context, ref models.TableRef, limit int) ([]datasource.TableComment, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	stmt := fmt.Sprintf(
		"SELECT table_name, comment FROM %s WHERE table_schema = :schema AND table_name != :table LIMIT %d",
		sql.QualifiedName(ref.Catalog, "information_schema", "tables"), limit)
	result, err := c.runner.ExecuteStatement(ctx, stmt,
		dbx.StringParam("schema", ref.Schema),
		dbx.StringParam("table", ref.Table))
	if err != nil {
		return nil, fmt.Errorf("list table comments in %s.%s: %w", ref.Catalog, ref.Schema, err)
	}

	nameIdx := indexOr(result.ColumnIndex("table_name"), 0)
	commentIdx := indexOr(result.ColumnIndex("comment"), 1)

	comments := make([]datasource.TableComment, 0, len(result.Rows))
	for _, row := range result.Rows {
		tc := datasource.TableComment{Table: cell(row, nameIdx)}
		if commentIdx < len(row) {
			if s, ok := row[commentIdx].(string); ok {
				tc.Description = &s
			}
		}
		comments = append(comments, tc)
	}
	return comments, nil
}

// SetTableComment replaces the table comment.
func (c *Catalog) SetTableComment(ctx context.Context, ref models.TableRef, comment string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	stmt := fmt.Sprintf("COMMENT ON TABLE %s IS %s", qualified(ref), sql.QuoteLiteral(comment))
	if _, err := c.runner.ExecuteStatement(ctx, stmt); err != nil {
		return fmt.Errorf("comment on %s: %w", ref.FullName(), err)
	}

	c.logger.Info("Updated table comment", zap.String("table", ref.FullName()))
	return nil
}

// SetColumnComment replaces one column comment.
func (c *Catalog) SetColumnComment(ctx context.Context, ref models.TableRef, column, comment string) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := sql.ValidateIdentifier("column", column); err != nil {
		return err
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s COMMENT %s",
		qualified(ref), sql.QuoteIdentifier(column), sql.QuoteLiteral(comment))
	if _, err := c.runner.ExecuteStatement(ctx, stmt); err != nil {
		return fmt.Errorf("comment on column %s of %s: %w", column, ref.FullName(), err)
	}

	c.logger.Info("Updated column comment",
		zap.String("table", ref.FullName()),
		zap.String("column", column))
	return nil
}

func qualified(ref models.TableRef) string {
	return sql.QualifiedName(ref.Catalog, ref.Schema, ref.Table)
}

func validateRef(ref models.TableRef) error {
	return validateAll(map[string]string{"catalog": ref.Catalog, "schema": ref.Schema, "table": ref.Table})
}

func validateAll(names map[string]string) error {
	for _, kind := range []string{"catalog", "schema", "table"} {
		name, ok := names[kind]
		if !ok {
			continue
		}
		if err := sql.ValidateIdentifier(kind, name); err != nil {
			return err
		}
	}
	return nil
}

func indexOr(idx, fallback int) int {
	if idx < 0 {
		return fallback
	}
	return idx
}

func cell(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
