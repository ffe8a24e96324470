package databricks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-enrich/pkg/logging"
	"github.com/ekaya-inc/ekaya-enrich/pkg/retry"
)

// Statement states reported by the SQL Statement Execution API.
const (
	StatePending   = "PENDING"
	StateRunning   = "RUNNING"
	StateSucceeded = "SUCCEEDED"
	StateFailed    = "FAILED"
	StateCanceled  = "CANCELED"
	StateClosed    = "CLOSED"
)

const cancelTimeout = 5 * time.Second

// Parameter is a named statement parameter referenced as :name in SQL text.
type Parameter struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
	Type  string  `json:"type,omitempty"`
}

// StringParam returns a STRING parameter.
func StringParam(name, value string) Parameter {
	return Parameter{Name: name, Value: &value, Type: "STRING"}
}

type statementRequest struct {
	Statement     string      `json:"statement"`
	WarehouseID   string      `json:"warehouse_id"`
	WaitTimeout   string      `json:"wait_timeout"`
	OnWaitTimeout string      `json:"on_wait_timeout"`
	Disposition   string      `json:"disposition"`
	Format        string      `json:"format"`
	Parameters    []Parameter `json:"parameters,omitempty"`
}

type statementResponse struct {
	StatementID string          `json:"statement_id"`
	Status      statementStatus `json:"status"`
	Manifest    *manifest       `json:"manifest,omitempty"`
	Result      *resultChunk    `json:"result,omitempty"`
}

type statementStatus struct {
	State string `json:"state"`
	Error *struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	} `json:"error,omitempty"`
}

type manifest struct {
	Format string `json:"format"`
	Schema struct {
		ColumnCount int `json:"column_count"`
		Columns     []struct {
			Name     string `json:"name"`
			TypeName string `json:"type_name"`
			Position int    `json:"position"`
		} `json:"columns"`
	} `json:"schema"`
	TotalChunkCount int `json:"total_chunk_count"`
	TotalRowCount   int `json:"total_row_count"`
}

type resultChunk struct {
	ChunkIndex     int         `json:"chunk_index"`
	RowCount       int         `json:"row_count"`
	DataArray      [][]*string `json:"data_array"`
	NextChunkIndex *int        `json:"next_chunk_index,omitempty"`
}

// Result is the complete output of a statement. Values are strings as
// returned by the JSON_ARRAY format, or nil for SQL NULL.
type Result struct {
	StatementID string
	Columns     []string
	Rows        [][]any
}

// Records returns each row as a column name to value map.
func (r *Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = nil
			}
		}
		records = append(records, rec)
	}
	return records
}

// ColumnIndex returns the position of the first of names present in the result, or -1.
func (r *Result) ColumnIndex(names ...string) int {
	for _, name := range names {
		for i, col := range r.Columns {
			if col == name {
				return i
			}
		}
	}
	return -1
}

// StringColumn returns the non-empty string values of the first column matching
// one of names, in row order.
func (r *Result) StringColumn(names ...string) []string {
	idx := r.ColumnIndex(names...)
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		if idx >= len(row) {
			continue
		}
		if s, ok := row[idx].(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values
}

// ExecuteStatement runs statement on the warehouse and returns every row.
// Submission is retried on transient failures. A statement still running after
// the synchronous wait is polled every PollInterval up to MaxPolls times.
func (c *Client) ExecuteStatement(ctx context.Context, statement string, params ...Parameter) (*Result, error) {
	start := time.Now()

	endpoint, err := c.endpoint("api", "2.0", "sql", "statements")
	if err != nil {
		return nil, err
	}

	req := &statementRequest{
		Statement:     statement,
		WarehouseID:   c.warehouseID,
		WaitTimeout:   "50s",
		OnWaitTimeout: "CONTINUE",
		Disposition:   "INLINE",
		Format:        "JSON_ARRAY",
		Parameters:    params,
	}

	c.logger.Debug("Executing statement",
		zap.String("sql", logging.SanitizeQuery(statement)),
		zap.Int("params", len(params)))

	resp, err := retry.DoIfRetryableWithResult(ctx, c.retryConfig, func() (*statementResponse, error) {
		var out statementResponse
		if err := c.doJSON(ctx, "POST", endpoint, req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit statement: %w", err)
	}

	resp, err = c.waitForCompletion(ctx, resp)
	if err != nil {
		return nil, err
	}

	result, err := c.collectResult(ctx, resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Statement completed",
		zap.String("statement_id", resp.StatementID),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (c *Client) waitForCompletion(ctx context.Context, resp *statementResponse) (*statementResponse, error) {
	polls := 0
	for resp.Status.State == StatePending || resp.Status.State == StateRunning {
		if polls >= c.maxPolls {
			return nil, fmt.Errorf("statement %s: %w", resp.StatementID, ErrMaxPollsExceeded)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			c.cancelStatement(resp.StatementID)
			return nil, ctx.Err()
		}
		polls++

		c.logger.Debug("Polling statement",
			zap.String("statement_id", resp.StatementID),
			zap.Int("poll", polls),
			zap.Int("max_polls", c.maxPolls))

		endpoint, err := c.endpoint("api", "2.0", "sql", "statements", resp.StatementID)
		if err != nil {
			return nil, err
		}
		var next statementResponse
		if err := c.doJSON(ctx, "GET", endpoint, nil, &next); err != nil {
			if ctx.Err() != nil {
				c.cancelStatement(resp.StatementID)
			}
			return nil, fmt.Errorf("poll statement %s: %w", resp.StatementID, err)
		}
		if next.StatementID == "" {
			next.StatementID = resp.StatementID
		}
		resp = &next
	}

	if resp.Status.State != StateSucceeded {
		stmtErr := &StatementError{StatementID: resp.StatementID, State: resp.Status.State}
		if resp.Status.Error != nil {
			stmtErr.ErrorCode = resp.Status.Error.ErrorCode
			stmtErr.Message = resp.Status.Error.Message
		}
		return nil, stmtErr
	}
	return resp, nil
}

// cancelStatement asks the warehouse to stop a statement whose caller has gone
// away. It runs on its own short deadline since the caller's context is done.
func (c *Client) cancelStatement(statementID string) {
	if statementID == "" {
		return
	}
	endpoint, err := c.endpoint("api", "2.0", "sql", "statements", statementID, "cancel")
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := c.doJSON(ctx, "POST", endpoint, struct{}{}, nil); err != nil {
		c.logger.Warn("Failed to cancel statement",
			zap.String("statement_id", statementID),
			zap.String("error", logging.SanitizeError(err)))
		return
	}
	c.logger.Debug("Cancelled statement", zap.String("statement_id", statementID))
}

func (c *Client) collectResult(ctx context.Context, resp *statementResponse) (*Result, error) {
	result := &Result{StatementID: resp.StatementID}
	if resp.Manifest != nil {
		for _, col := range resp.Manifest.Schema.Columns {
			result.Columns = append(result.Columns, col.Name)
		}
	}

	chunk := resp.Result
	for chunk != nil {
		for _, row := range chunk.DataArray {
			values := make([]any, len(row))
			for i, v := range row {
				if v != nil {
					values[i] = *v
				}
			}
			result.Rows = append(result.Rows, values)
		}

		if chunk.NextChunkIndex == nil {
			break
		}

		endpoint, err := c.endpoint("api", "2.0", "sql", "statements", resp.StatementID, "result", "chunks", strconv.Itoa(*chunk.NextChunkIndex))
		if err != nil {
			return nil, err
		}
		var next resultChunk
		if err := c.doJSON(ctx, "GET", endpoint, nil, &next); err != nil {
			return nil, fmt.Errorf("fetch chunk %d of statement %s: %w", *chunk.NextChunkIndex, resp.StatementID, err)
		}
		chunk = &next
	}

	return result, nil
}
