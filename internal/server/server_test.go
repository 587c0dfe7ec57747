package server

import (
	"strings"
	"testing"

	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

func TestNewMCPServerRejectsBadURL(t *testing.T) {
	_, _, err := NewMCPServer(MCPServerConfig{Version: "test", URL: "postgres://root@localhost/app"})
	if err == nil || !strings.Contains(err.Error(), "invalid URL protocol") {
		t.Fatalf("expected invalid protocol error, got %v", err)
	}
}

func TestNewMCPServerSeedsSessionFromURL(t *testing.T) {
	t.Cleanup(func() { state.CloseSession("default") })

	srv, sess, err := NewMCPServer(MCPServerConfig{Version: "test", URL: "mysql://app:pw@db.local:3307/shop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv == nil {
		t.Fatal("expected a server")
	}

	creds, ok := sess.Credentials()
	if !ok {
		t.Fatal("expected the session to be configured")
	}
	if creds.Host != "db.local" || creds.Port != 3307 || creds.Database != "shop" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if sess.Connected() {
		t.Error("expected no eager connection at startup")
	}
}
