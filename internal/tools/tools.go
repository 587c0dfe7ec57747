package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

// Options selects the registered tool surface.
type Options struct {
	// ReadOnly hides the execute tool entirely.
	ReadOnly bool
	// Policy decides which leading keywords pass the read-only gate.
	Policy query.Policy
}

// RegisterTools wires every tool to the given session. The set is registered
// once at startup and is immutable afterwards.
func RegisterTools(s *mcp.Server, sess *state.Session, opts Options) {
	// Connect Tool
	GetConnectTool(sess).Register(s)
	// Query Tool (read-only)
	GetQueryTool(sess, opts.Policy).Register(s)
	// Execute Tool (only if not read-only)
	if !opts.ReadOnly {
		GetExecuteTool(sess, opts.Policy).Register(s)
	}
	// List Tables Tool
	GetListTablesTool(sess).Register(s)
	// Describe Table Tool
	GetDescribeTableTool(sess).Register(s)
	// Get DB Info Tool
	GetDbInfoTool(sess).Register(s)
}
