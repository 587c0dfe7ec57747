package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type ExecuteInput struct {
	SQL    string        `json:"sql" jsonschema:"required" jsonschema_description:"SQL statement to execute (INSERT, UPDATE, DELETE, DDL)"`
	Params []interface{} `json:"params,omitempty" jsonschema_description:"Positional parameters bound to ? placeholders"`
}

type ExecuteOutput struct {
	RowsAffected int64  `json:"rows_affected" jsonschema_description:"Number of rows affected by the statement"`
	LastInsertID int64  `json:"last_insert_id" jsonschema_description:"Auto-increment id of the last inserted row, if any"`
	Message      string `json:"message" jsonschema_description:"Success message"`
}

func GetExecuteTool(sess *state.Session, policy query.Policy) *ToolDefinition[ExecuteInput, ExecuteOutput] {
	return NewToolDefinition[ExecuteInput, ExecuteOutput](
		"execute",
		"Execute a mutating SQL statement (INSERT, UPDATE, DELETE, DDL) with positional parameters.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, ExecuteOutput, error) {
			return executeHandler(ctx, req, input, sess, policy)
		},
	)
}

func executeHandler(ctx context.Context, req *mcp.CallToolRequest, input ExecuteInput, sess *state.Session, policy query.Policy) (*mcp.CallToolResult, ExecuteOutput, error) {
	if err := policy.Enforce(input.SQL, query.Mutating); err != nil {
		return nil, ExecuteOutput{}, err
	}

	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		return nil, ExecuteOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := conn.ExecContext(ctx, input.SQL, input.Params...)
	if err != nil {
		logger.LogDatabaseOperation("EXECUTE", input.SQL, 0, err)
		return nil, ExecuteOutput{}, fmt.Errorf("statement execution error: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		rowsAffected = 0
	}
	lastInsertID, err := result.LastInsertId()
	if err != nil {
		lastInsertID = 0
	}

	operation := statementVerb(input.SQL)
	logger.LogDatabaseOperation(operation, input.SQL, rowsAffected, nil)

	message := fmt.Sprintf("%s statement completed successfully", operation)
	if rowsAffected > 0 {
		message = fmt.Sprintf("%s statement completed successfully (%d rows affected)", operation, rowsAffected)
	}

	output := ExecuteOutput{
		RowsAffected: rowsAffected,
		LastInsertID: lastInsertID,
		Message:      message,
	}
	toolResult, err := jsonResult(output)
	if err != nil {
		return nil, ExecuteOutput{}, err
	}
	return toolResult, output, nil
}

func statementVerb(sql string) string {
	lower := strings.ToLower(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(lower, "insert"):
		return "INSERT"
	case strings.HasPrefix(lower, "update"):
		return "UPDATE"
	case strings.HasPrefix(lower, "delete"):
		return "DELETE"
	case strings.HasPrefix(lower, "create"):
		return "CREATE"
	case strings.HasPrefix(lower, "alter"):
		return "ALTER"
	case strings.HasPrefix(lower, "drop"):
		return "DROP"
	default:
		return "STATEMENT"
	}
}
