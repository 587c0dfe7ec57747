package tools

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type QueryInput struct {
	SQL    string        `json:"sql" jsonschema:"required" jsonschema_description:"Read-only SQL query to execute"`
	Params []interface{} `json:"params,omitempty" jsonschema_description:"Positional parameters bound to ? placeholders"`
}

type QueryOutput struct {
	Rows     []map[string]interface{} `json:"rows" jsonschema_description:"Query result rows"`
	RowCount int                      `json:"row_count" jsonschema_description:"Number of rows returned"`
	Message  string                   `json:"message" jsonschema_description:"Success message"`
}

func GetQueryTool(sess *state.Session, policy query.Policy) *ToolDefinition[QueryInput, QueryOutput] {
	return NewToolDefinition[QueryInput, QueryOutput](
		"query",
		"Execute a read-only SQL query with positional parameters and return the rows.",
		func(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
			return queryHandler(ctx, req, input, sess, policy)
		},
	)
}

func queryHandler(ctx context.Context, req *mcp.CallToolRequest, input QueryInput, sess *state.Session, policy query.Policy) (*mcp.CallToolResult, QueryOutput, error) {
	// Gate before touching the connection: a rejected statement must not
	// trigger a connect or any driver call.
	if err := policy.Enforce(input.SQL, query.ReadOnly); err != nil {
		return nil, QueryOutput{}, err
	}

	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := conn.QueryContext(ctx, input.SQL, input.Params...)
	if err != nil {
		logger.LogDatabaseOperation("QUERY", input.SQL, 0, err)
		return nil, QueryOutput{}, fmt.Errorf("query execution error: %v", err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	logger.LogDatabaseOperation("QUERY", input.SQL, int64(len(results)), nil)

	output := QueryOutput{
		Rows:     results,
		RowCount: len(results),
		Message:  fmt.Sprintf("Query completed successfully (%d rows returned)", len(results)),
	}
	result, err := jsonResult(output)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return result, output, nil
}

// scanRows reads every row into name-keyed maps, converting byte slices to
// strings so the values serialize as JSON text rather than base64.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting columns: %v", err)
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}
	return results, nil
}
