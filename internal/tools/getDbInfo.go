package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type GetDBInfoInput struct{}

type GetDBInfoOutput struct {
	DatabaseName string `json:"database_name" jsonschema_description:"Name of the active database"`
	Version      string `json:"version" jsonschema_description:"MySQL server version"`
	TableCount   int    `json:"table_count" jsonschema_description:"Number of tables in the active database"`
}

func GetDbInfoTool(sess *state.Session) *ToolDefinition[GetDBInfoInput, GetDBInfoOutput] {
	return NewToolDefinition[GetDBInfoInput, GetDBInfoOutput](
		"get_db_info",
		"Get general information about the connected database.",
		func(ctx context.Context, req *mcp.CallToolRequest, input GetDBInfoInput) (*mcp.CallToolResult, GetDBInfoOutput, error) {
			return getDBInfoHandler(ctx, req, input, sess)
		},
	)
}

func getDBInfoHandler(ctx context.Context, req *mcp.CallToolRequest, input GetDBInfoInput, sess *state.Session) (*mcp.CallToolResult, GetDBInfoOutput, error) {
	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		return nil, GetDBInfoOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var output GetDBInfoOutput

	if err := conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&output.DatabaseName); err != nil {
		return nil, GetDBInfoOutput{}, fmt.Errorf("failed to get database name: %v", err)
	}
	if err := conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&output.Version); err != nil {
		return nil, GetDBInfoOutput{}, fmt.Errorf("failed to get version: %v", err)
	}
	if err := conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()`).Scan(&output.TableCount); err != nil {
		return nil, GetDBInfoOutput{}, fmt.Errorf("failed to get table count: %v", err)
	}

	output.Version = "MySQL " + output.Version

	result, err := jsonResult(output)
	if err != nil {
		return nil, GetDBInfoOutput{}, err
	}
	return result, output, nil
}
