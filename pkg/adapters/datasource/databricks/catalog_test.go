package databricks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
	dbx "github.com/ekaya-inc/ekaya-enrich/pkg/databricks"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

type executedStatement struct {
	sql    string
	params []dbx.Parameter
}

// fakeRunner records statements and answers from a queue of results.
type fakeRunner struct {
	executed []executedStatement
	results  []*dbx.Result
	err      error
}

func (f *fakeRunner) ExecuteStatement(_ context.Context, statement string, params ...dbx.Parameter) (*dbx.Result, error) {
	f.executed = append(f.executed, executedStatement{sql: statement, params: params})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &dbx.Result{}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func (f *fakeRunner) lastSQL() string {
	return f.executed[len(f.executed)-1].sql
}

var ordersRef = models.TableRef{Catalog: "main", Schema: "sales", Table: "orders"}

func TestListCatalogs_ColumnFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		column string
	}{
		{"catalog", "catalog"},
		{"catalogName", "catalogName"},
		{"name", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{results: []*dbx.Result{{
				Columns: []string{tt.column},
				Rows:    [][]any{{"main"}, {"hive_metastore"}, {nil}},
			}}}
			catalogs, err := NewCatalog(runner, nil).ListCatalogs(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"main", "hive_metastore"}, catalogs)
			assert.Equal(t, "SHOW CATALOGS", runner.lastSQL())
		})
	}
}

func TestListCatalogs_EmptyIsNotNil(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{Columns: []string{"catalog"}}}}
	catalogs, err := NewCatalog(runner, nil).ListCatalogs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, catalogs)
	assert.Empty(t, catalogs)
}

func TestListSchemas(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"databaseName"},
		Rows:    [][]any{{"default"}, {"sales"}},
	}}}
	schemas, err := NewCatalog(runner, nil).ListSchemas(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sales"}, schemas)
	assert.Equal(t, "SHOW SCHEMAS IN `main`", runner.lastSQL())
}

func TestListSchemas_RejectsInvalidCatalog(t *testing.T) {
	runner := &fakeRunner{}
	_, err := NewCatalog(runner, nil).ListSchemas(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
	assert.Empty(t, runner.executed, "no statement is sent")
}

func TestListTables(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"database", "tableName", "isTemporary"},
		Rows:    [][]any{{"sales", "orders", "false"}, {"sales", "customers", "false"}},
	}}}
	tables, err := NewCatalog(runner, nil).ListTables(context.Background(), "main", "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "customers"}, tables)
	assert.Equal(t, "SHOW TABLES IN `main`.`sales`", runner.lastSQL())
}

func TestSelectRows(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"id", "status"},
		Rows:    [][]any{{"1", "shipped"}, {"2", nil}},
	}}}
	result, err := NewCatalog(runner, nil).SelectRows(context.Background(), ordersRef, 100)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM `main`.`sales`.`orders` LIMIT 100", runner.lastSQL())
	assert.Equal(t, []string{"id", "status"}, result.Columns)
	assert.Equal(t, []map[string]any{
		{"id": "1", "status": "shipped"},
		{"id": "2", "status": nil},
	}, result.Rows)
}

func TestSelectRows_ClampsLimit(t *testing.T) {
	runner := &fakeRunner{}
	_, err := NewCatalog(runner, nil).SelectRows(context.Background(), ordersRef, 50000)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `main`.`sales`.`orders` LIMIT 1000", runner.lastSQL())
}

func TestDescribeColumns_StopsAtPartitionSection(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"col_name", "data_type", "comment"},
		Rows: [][]any{
			{"id", "bigint", "Order identifier"},
			{"status", "string", nil},
			{"order_date", "date", ""},
			{"", "", ""},
			{"# Partition Information", "", ""},
			{"# col_name", "data_type", "comment"},
			{"order_date", "date", ""},
		},
	}}}

	columns, err := NewCatalog(runner, nil).DescribeColumns(context.Background(), ordersRef)
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "DESCRIBE TABLE `main`.`sales`.`orders`", runner.lastSQL())
	assert.Equal(t, "id", columns[0].Name)
	assert.Equal(t, "bigint", columns[0].Type)
	require.NotNil(t, columns[0].Comment)
	assert.Equal(t, "Order identifier", *columns[0].Comment)
	assert.Nil(t, columns[1].Comment)
	require.NotNil(t, columns[2].Comment)
	assert.Equal(t, "", *columns[2].Comment)
}

func TestGetTableComment_UsesParameters(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"comment"},
		Rows:    [][]any{{"All web store orders"}},
	}}}

	comment, err := NewCatalog(runner, nil).GetTableComment(context.Background(), ordersRef)
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, "All web store orders", *comment)

	stmt := runner.executed[0]
	assert.Equal(t, "SELECT comment FROM `main`.`information_schema`.`tables` WHERE table_schema = :schema AND table_name = :table", stmt.sql)
	require.Len(t, stmt.params, 2)
	assert.Equal(t, "sales", *stmt.params[0].Value)
	assert.Equal(t, "orders", *stmt.params[1].Value)
}

func TestGetTableComment_NullAndMissing(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{
		{Columns: []string{"comment"}, Rows: [][]any{{nil}}},
		{Columns: []string{"comment"}},
	}}
	catalog := NewCatalog(runner, nil)

	comment, err := catalog.GetTableComment(context.Background(), ordersRef)
	require.NoError(t, err)
	assert.Nil(t, comment)

	comment, err = catalog.GetTableComment(context.Background(), ordersRef)
	require.NoError(t, err)
	assert.Nil(t, comment)
}

func TestListTableComments(t *testing.T) {
	runner := &fakeRunner{results: []*dbx.Result{{
		Columns: []string{"table_name", "comment"},
		Rows:    [][]any{{"customers", "People who buy things"}, {"returns", nil}},
	}}}

	comments, err := NewCatalog(runner, nil).ListTableComments(context.Background(), ordersRef, 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "customers", comments[0].Table)
	assert.Equal(t, "People who buy things", *comments[0].Description)
	assert.Nil(t, comments[1].Description)
	assert.Contains(t, runner.lastSQL(), "table_name != :table LIMIT 10")
}

func TestSetTableComment_EscapesLiteral(t *testing.T) {
	runner := &fakeRunner{}
	err := NewCatalog(runner, nil).SetTableComment(context.Background(), ordersRef, `Orders' ledger \ archive`)
	require.NoError(t, err)
	assert.Equal(t, "COMMENT ON TABLE `main`.`sales`.`orders` IS 'Orders\\' ledger \\\\ archive'", runner.lastSQL())
}

func TestSetColumnComment(t *testing.T) {
	runner := &fakeRunner{}
	err := NewCatalog(runner, nil).SetColumnComment(context.Background(), ordersRef, "order_id", "Primary key")
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE `main`.`sales`.`orders` ALTER COLUMN `order_id` COMMENT 'Primary key'", runner.lastSQL())
}

func TestCatalog_PropagatesRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("warehouse stopped")}
	_, err := NewCatalog(runner, nil).ListTables(context.Background(), "main", "sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "show tables in main.sales")
	assert.Contains(t, err.Error(), "warehouse stopped")
}
