package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/franHR11/pcpro-mcp-mysql/internal/client"
	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
	"github.com/franHR11/pcpro-mcp-mysql/internal/logger"
)

// Session owns the current credentials and at most one live connection for
// one client interaction lifetime. The pair is replaced atomically under a
// single mutex so a reconfigure cannot race a concurrent connect.
type Session struct {
	ID string

	mu    sync.Mutex
	creds *config.Credentials
	conn  *sql.DB

	open OpenFunc
}

// OpenFunc opens a database handle for the given credentials. The default
// dials MySQL through internal/client; tests substitute an in-memory opener.
type OpenFunc func(ctx context.Context, creds config.Credentials) (*sql.DB, error)

func defaultOpener(ctx context.Context, creds config.Credentials) (*sql.DB, error) {
	c, err := client.New(ctx, creds)
	if err != nil {
		return nil, err
	}
	return c.DB, nil
}

func NewSession(id string) *Session {
	return NewSessionWithOpener(id, defaultOpener)
}

// NewSessionWithOpener creates a session whose connections come from a
// custom opener.
func NewSessionWithOpener(id string, open OpenFunc) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	return &Session{ID: id, open: open}
}

// Reconfigure closes any existing connection and stores the new credentials.
// It does not reconnect: the next EnsureConnection performs the real connect
// so connect errors surface to the caller that triggered them.
func (s *Session) Reconfigure(creds config.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logger.Warn("failed to close previous connection", map[string]interface{}{"session": s.ID, "error": err.Error()})
		}
		s.conn = nil
	}
	s.creds = &creds
}

// EnsureConnection returns the live connection, opening one lazily on first
// use. Calling it while connected returns the existing handle without a new
// connect attempt. A failed connect clears the handle so the next call
// retries cleanly.
func (s *Session) EnsureConnection(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}
	if s.creds == nil {
		return nil, fmt.Errorf("no database credentials configured: call connect or set MYSQL_* environment variables")
	}
	if err := s.creds.Validate(); err != nil {
		return nil, fmt.Errorf("incomplete credentials: %w", err)
	}

	conn, err := s.open(ctx, *s.creds)
	if err != nil {
		s.conn = nil
		logger.LogConnectionEvent("connect", s.ID, err)
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	s.conn = conn
	logger.LogConnectionEvent("connect", s.ID, nil)
	return s.conn, nil
}

// Credentials returns a copy of the current credentials, if any. Used by the
// connect tool to merge partial arguments over the session's current values.
func (s *Session) Credentials() (config.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return config.Credentials{}, false
	}
	return *s.creds, true
}

// Connected reports whether a live connection is currently held.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Close tears down the connection but keeps the credentials, returning the
// session to its configured-disconnected state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Global session registry, one entry per protocol session.
var (
	sessions = make(map[string]*Session)
	mu       sync.RWMutex
)

// GetOrCreateSession retrieves an existing session or registers a new one.
func GetOrCreateSession(sessionID string) *Session {
	mu.RLock()
	if s, ok := sessions[sessionID]; ok {
		mu.RUnlock()
		return s
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if s, ok := sessions[sessionID]; ok {
		return s
	}
	s := NewSession(sessionID)
	sessions[s.ID] = s
	return s
}

// CloseSession cleans up a session's resources on disconnect.
func CloseSession(sessionID string) {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := sessions[sessionID]; ok {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close session connection", map[string]interface{}{"session": sessionID, "error": err.Error()})
		}
		delete(sessions, sessionID)
	}
}

// CloseAll tears down every registered session, for process shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close session connection", map[string]interface{}{"session": id, "error": err.Error()})
		}
		delete(sessions, id)
	}
}
