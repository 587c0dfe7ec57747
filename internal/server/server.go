package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
	"github.com/franHR11/pcpro-mcp-mysql/internal/tools"
)

type MCPServerConfig struct {
	Version   string
	ReadOnly  bool
	AllowShow bool
	URL       string // Optional: mysql:// URL overriding the environment credentials
}

// NewMCPServer assembles the MCP server: one session seeded with startup
// credentials, the tool surface registered once. The first tool that needs
// the database triggers the actual connect.
func NewMCPServer(cfg MCPServerConfig) (*mcp.Server, *state.Session, error) {
	impl := &mcp.Implementation{Name: "pcpro-mcp-mysql", Version: cfg.Version}
	srv := mcp.NewServer(impl, nil)

	creds := config.FromEnv()
	if cfg.URL != "" {
		parsed, err := config.ParseURL(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		creds = parsed
	}

	sess := state.GetOrCreateSession("default")
	sess.Reconfigure(creds)

	policy := query.DefaultPolicy()
	if cfg.AllowShow {
		policy = query.PolicyWithShow()
	}

	tools.RegisterTools(srv, sess, tools.Options{ReadOnly: cfg.ReadOnly, Policy: policy})

	return srv, sess, nil
}

func RunStdioServer(cfg MCPServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, _, err := NewMCPServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer state.CloseAll()

	logger.Info("MySQL MCP server running over stdio", map[string]interface{}{"read_only": cfg.ReadOnly})

	return srv.Run(ctx, &mcp.StdioTransport{})
}

func RunHTTPServer(cfg MCPServerConfig, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, _, err := NewMCPServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer state.CloseAll()

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return srv
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Info("MySQL MCP server listening", map[string]interface{}{"addr": addr, "read_only": cfg.ReadOnly})

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
