package tools

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type DescribeTableInput struct {
	Table string `json:"table" jsonschema:"required" jsonschema_description:"Name of the table to describe"`
}

type ColumnInfo struct {
	Name         string `json:"name" jsonschema_description:"Column name"`
	DataType     string `json:"data_type" jsonschema_description:"Column data type"`
	IsNullable   bool   `json:"is_nullable" jsonschema_description:"Whether the column accepts NULL"`
	IsPrimaryKey bool   `json:"is_primary_key" jsonschema_description:"Whether the column is part of the primary key"`
	DefaultValue string `json:"default_value,omitempty" jsonschema_description:"Column default value"`
}

type DescribeTableOutput struct {
	Table    string       `json:"table" jsonschema_description:"Described table name"`
	Columns  []ColumnInfo `json:"columns" jsonschema_description:"Column metadata"`
	RowCount int64        `json:"row_count" jsonschema_description:"Current number of rows in the table"`
}

func GetDescribeTableTool(sess *state.Session) *ToolDefinition[DescribeTableInput, DescribeTableOutput] {
	return NewToolDefinition[DescribeTableInput, DescribeTableOutput](
		"describe_table",
		"Get column metadata and row count for the named table.",
		func(ctx context.Context, req *mcp.CallToolRequest, input DescribeTableInput) (*mcp.CallToolResult, DescribeTableOutput, error) {
			return describeTableHandler(ctx, req, input, sess)
		},
	)
}

func describeTableHandler(ctx context.Context, req *mcp.CallToolRequest, input DescribeTableInput, sess *state.Session) (*mcp.CallToolResult, DescribeTableOutput, error) {
	table := strings.TrimSpace(input.Table)
	if table == "" {
		return nil, DescribeTableOutput{}, fmt.Errorf("table name must not be empty")
	}

	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		return nil, DescribeTableOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	columns, err := getTableColumns(ctx, conn, table)
	if err != nil {
		logger.LogDatabaseOperation("DESCRIBE_TABLE", table, 0, err)
		return nil, DescribeTableOutput{}, fmt.Errorf("get columns error: %v", err)
	}
	if len(columns) == 0 {
		return nil, DescribeTableOutput{}, fmt.Errorf("table %q not found in the active database", table)
	}

	// COUNT takes the table name in identifier position, so it cannot be
	// bound as a parameter; it goes through identifier quoting instead.
	var rowCount int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", query.QuoteIdentifier(table))
	if err := conn.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		logger.LogDatabaseOperation("DESCRIBE_TABLE", table, 0, err)
		return nil, DescribeTableOutput{}, fmt.Errorf("count rows error: %v", err)
	}

	logger.LogDatabaseOperation("DESCRIBE_TABLE", table, int64(len(columns)), nil)

	output := DescribeTableOutput{
		Table:    table,
		Columns:  columns,
		RowCount: rowCount,
	}
	result, err := jsonResult(output)
	if err != nil {
		return nil, DescribeTableOutput{}, err
	}
	return result, output, nil
}

func getTableColumns(ctx context.Context, conn *sql.DB, table string) ([]ColumnInfo, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			CASE WHEN IS_NULLABLE = 'YES' THEN TRUE ELSE FALSE END,
			CASE WHEN COLUMN_KEY = 'PRI' THEN TRUE ELSE FALSE END,
			COALESCE(COLUMN_DEFAULT, '')
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = DATABASE()
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %v", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.IsPrimaryKey, &col.DefaultValue); err != nil {
			return nil, fmt.Errorf("scan error: %v", err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
