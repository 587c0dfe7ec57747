package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type ListTablesInput struct{}

type ListTablesOutput struct {
	Tables []string `json:"tables" jsonschema_description:"Table names in the active database"`
	Count  int      `json:"count" jsonschema_description:"Number of tables"`
}

func GetListTablesTool(sess *state.Session) *ToolDefinition[ListTablesInput, ListTablesOutput] {
	return NewToolDefinition[ListTablesInput, ListTablesOutput](
		"list_tables",
		"List all tables in the active database.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, ListTablesOutput, error) {
			return listTablesHandler(ctx, req, input, sess)
		},
	)
}

func listTablesHandler(ctx context.Context, req *mcp.CallToolRequest, input ListTablesInput, sess *state.Session) (*mcp.CallToolResult, ListTablesOutput, error) {
	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := conn.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name`)
	if err != nil {
		return nil, ListTablesOutput{}, fmt.Errorf("query error: %v", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ListTablesOutput{}, fmt.Errorf("scan error: %v", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, ListTablesOutput{}, fmt.Errorf("rows iteration error: %v", err)
	}

	output := ListTablesOutput{Tables: tables, Count: len(tables)}
	result, err := jsonResult(output)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}
	return result, output, nil
}
