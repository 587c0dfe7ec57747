package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

type ConnectInput struct {
	Host     *string `json:"host,omitempty" jsonschema_description:"Database host (defaults to current session value, MYSQL_HOST, or 127.0.0.1)"`
	Port     *int    `json:"port,omitempty" jsonschema_description:"Database port (defaults to current session value, MYSQL_PORT, or 3306)"`
	User     *string `json:"user,omitempty" jsonschema_description:"Database user (defaults to current session value, MYSQL_USER, or root)"`
	Password *string `json:"password,omitempty" jsonschema_description:"Database password"`
	Database *string `json:"database,omitempty" jsonschema_description:"Database name"`
	URL      string  `json:"url,omitempty" jsonschema_description:"mysql:// connection URL, exclusive with the field arguments"`
}

type ConnectOutput struct {
	Message  string `json:"message" jsonschema_description:"Connection result message"`
	Host     string `json:"host" jsonschema_description:"Connected host"`
	Database string `json:"database" jsonschema_description:"Active database"`
}

func GetConnectTool(sess *state.Session) *ToolDefinition[ConnectInput, ConnectOutput] {
	return NewToolDefinition[ConnectInput, ConnectOutput](
		"connect",
		"Connect to a MySQL database, merging the given fields over the current session credentials.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ConnectInput) (*mcp.CallToolResult, ConnectOutput, error) {
			return connectHandler(ctx, req, input, sess)
		},
	)
}

func connectHandler(ctx context.Context, req *mcp.CallToolRequest, input ConnectInput, sess *state.Session) (*mcp.CallToolResult, ConnectOutput, error) {
	creds, err := resolveConnectInput(input, sess, os.Getenv)
	if err != nil {
		return nil, ConnectOutput{}, err
	}
	if err := creds.Validate(); err != nil {
		return nil, ConnectOutput{}, fmt.Errorf("no usable credentials: %v", err)
	}

	// Replace credentials first, then connect eagerly so a bad host or
	// password is reported to the caller that supplied it.
	sess.Reconfigure(creds)
	if _, err := sess.EnsureConnection(ctx); err != nil {
		return nil, ConnectOutput{}, err
	}

	output := ConnectOutput{
		Message:  fmt.Sprintf("Connected to %s:%d/%s as %s", creds.Host, creds.Port, creds.Database, creds.User),
		Host:     creds.Host,
		Database: creds.Database,
	}
	result, err := jsonResult(output)
	if err != nil {
		return nil, ConnectOutput{}, err
	}
	return result, output, nil
}

// resolveConnectInput turns the tool arguments into full credentials. A URL
// argument is a complete replacement; field arguments merge over the current
// session credentials, then the environment, then defaults.
func resolveConnectInput(input ConnectInput, sess *state.Session, getenv func(string) string) (config.Credentials, error) {
	if input.URL != "" {
		if input.Host != nil || input.Port != nil || input.User != nil || input.Password != nil || input.Database != nil {
			return config.Credentials{}, fmt.Errorf("url cannot be combined with host/port/user/password/database arguments")
		}
		return config.ParseURL(input.URL)
	}

	explicit := config.Partial{
		Host:     input.Host,
		Port:     input.Port,
		User:     input.User,
		Password: input.Password,
		Database: input.Database,
	}

	var session config.Partial
	if current, ok := sess.Credentials(); ok {
		session = config.Partial{
			Host:     &current.Host,
			Port:     &current.Port,
			User:     &current.User,
			Password: &current.Password,
			Database: &current.Database,
		}
	}

	return config.Resolve(explicit, session, getenv), nil
}
