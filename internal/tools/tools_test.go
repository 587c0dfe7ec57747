package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
	"github.com/franHR11/pcpro-mcp-mysql/internal/query"
	"github.com/franHR11/pcpro-mcp-mysql/internal/state"
)

// countingOpener records connect attempts; it backs sessions whose tests
// must prove the driver was never invoked.
type countingOpener struct {
	calls int
}

func (c *countingOpener) open(ctx context.Context, creds config.Credentials) (*sql.DB, error) {
	c.calls++
	return sqliteDB()
}

func sqliteDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// One pooled connection, or each pool slot would see its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)
	return db, nil
}

func newTestSession(t *testing.T) *state.Session {
	t.Helper()
	s := state.NewSessionWithOpener("tools-"+t.Name(), func(ctx context.Context, creds config.Credentials) (*sql.DB, error) {
		return sqliteDB()
	})
	s.Reconfigure(config.Credentials{Host: "localhost", User: "root", Database: "app"})
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUsersTable(t *testing.T, sess *state.Session) {
	t.Helper()
	ctx := context.Background()
	conn, err := sess.EnsureConnection(ctx)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	stmts := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"INSERT INTO users (name) VALUES ('ada')",
		"INSERT INTO users (name) VALUES ('grace')",
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed statement failed: %v", err)
		}
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected text content in result")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestQueryRejectsMutatingStatementWithoutDriverCall(t *testing.T) {
	opener := &countingOpener{}
	sess := state.NewSessionWithOpener("gate-test", opener.open)
	sess.Reconfigure(config.Credentials{Host: "localhost", User: "root", Database: "app"})

	_, _, err := queryHandler(context.Background(), nil, QueryInput{SQL: "DROP TABLE t"}, sess, query.DefaultPolicy())
	if err == nil || !strings.Contains(err.Error(), "only read-only queries are permitted") {
		t.Fatalf("expected read-only rejection, got %v", err)
	}
	if opener.calls != 0 {
		t.Errorf("expected no connect attempt for a rejected statement, got %d", opener.calls)
	}
}

func TestQueryReturnsRowsAndMatchingTextRendering(t *testing.T) {
	sess := newTestSession(t)
	seedUsersTable(t, sess)

	result, output, err := queryHandler(context.Background(), nil,
		QueryInput{SQL: "SELECT id, name FROM users ORDER BY id"}, sess, query.DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.RowCount != 2 || len(output.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", output)
	}
	if output.Rows[0]["name"] != "ada" || output.Rows[1]["name"] != "grace" {
		t.Errorf("unexpected row values: %+v", output.Rows)
	}

	// The text rendering must deserialize to the same row set as the
	// structured payload.
	var decoded QueryOutput
	if err := json.Unmarshal([]byte(textContent(t, result)), &decoded); err != nil {
		t.Fatalf("text content is not valid JSON: %v", err)
	}
	if decoded.RowCount != output.RowCount || len(decoded.Rows) != len(output.Rows) {
		t.Errorf("text and structured payloads diverge: %+v vs %+v", decoded, output)
	}
	for i := range output.Rows {
		if decoded.Rows[i]["name"] != output.Rows[i]["name"] {
			t.Errorf("row %d diverges: %v vs %v", i, decoded.Rows[i], output.Rows[i])
		}
	}
}

func TestQueryBindsPositionalParams(t *testing.T) {
	sess := newTestSession(t)
	seedUsersTable(t, sess)

	_, output, err := queryHandler(context.Background(), nil,
		QueryInput{SQL: "SELECT name FROM users WHERE id = ?", Params: []interface{}{2}}, sess, query.DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.RowCount != 1 || output.Rows[0]["name"] != "grace" {
		t.Errorf("unexpected result: %+v", output)
	}
}

func TestExecuteRejectsSelect(t *testing.T) {
	sess := newTestSession(t)

	_, _, err := executeHandler(context.Background(), nil,
		ExecuteInput{SQL: "SELECT * FROM users"}, sess, query.DefaultPolicy())
	if err == nil || !strings.Contains(err.Error(), "query tool") {
		t.Fatalf("expected redirect to the query tool, got %v", err)
	}
}

func TestExecuteInsertReportsRowsAffected(t *testing.T) {
	sess := newTestSession(t)
	seedUsersTable(t, sess)

	_, output, err := executeHandler(context.Background(), nil,
		ExecuteInput{SQL: "INSERT INTO users (name) VALUES (?)", Params: []interface{}{"margaret"}}, sess, query.DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.RowsAffected != 1 {
		t.Errorf("expected 1 row affected, got %d", output.RowsAffected)
	}
	if output.LastInsertID != 3 {
		t.Errorf("expected last insert id 3, got %d", output.LastInsertID)
	}
	if !strings.Contains(output.Message, "INSERT") {
		t.Errorf("expected INSERT verb in message, got %q", output.Message)
	}
}

func TestDescribeTableRejectsEmptyNameBeforeDriverCall(t *testing.T) {
	opener := &countingOpener{}
	sess := state.NewSessionWithOpener("describe-test", opener.open)
	sess.Reconfigure(config.Credentials{Host: "localhost", User: "root", Database: "app"})

	for _, table := range []string{"", "   ", "\t\n"} {
		_, _, err := describeTableHandler(context.Background(), nil, DescribeTableInput{Table: table}, sess)
		if err == nil || !strings.Contains(err.Error(), "must not be empty") {
			t.Errorf("expected validation error for %q, got %v", table, err)
		}
	}
	if opener.calls != 0 {
		t.Errorf("expected no connect attempt for empty table names, got %d", opener.calls)
	}
}

func TestResolveConnectInput(t *testing.T) {
	env := func(key string) string {
		return map[string]string{
			"MYSQL_HOST":     "env-host",
			"MYSQL_USER":     "env-user",
			"MYSQL_DATABASE": "env-db",
		}[key]
	}

	t.Run("url is exclusive with field arguments", func(t *testing.T) {
		sess := state.NewSessionWithOpener("connect-test", nil)
		host := "somewhere"
		_, err := resolveConnectInput(ConnectInput{URL: "mysql://root@localhost/app", Host: &host}, sess, env)
		if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
			t.Errorf("expected exclusivity error, got %v", err)
		}
	})

	t.Run("url replaces credentials wholesale", func(t *testing.T) {
		sess := state.NewSessionWithOpener("connect-test", nil)
		creds, err := resolveConnectInput(ConnectInput{URL: "mysql://app:pw@db.local:3307/shop"}, sess, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := config.Credentials{Host: "db.local", Port: 3307, User: "app", Password: "pw", Database: "shop"}
		if creds != want {
			t.Errorf("expected %+v, got %+v", want, creds)
		}
	})

	t.Run("fields fall back to env when no session credentials exist", func(t *testing.T) {
		sess := state.NewSessionWithOpener("connect-test", nil)
		db := "arg-db"
		creds, err := resolveConnectInput(ConnectInput{Database: &db}, sess, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Database != "arg-db" || creds.Host != "env-host" || creds.User != "env-user" {
			t.Errorf("unexpected merge: %+v", creds)
		}
	})

	t.Run("fields merge over current session credentials", func(t *testing.T) {
		sess := state.NewSessionWithOpener("connect-test", nil)
		sess.Reconfigure(config.Credentials{Host: "session-host", Port: 3310, User: "session-user", Password: "pw", Database: "session-db"})
		db := "other-db"
		creds, err := resolveConnectInput(ConnectInput{Database: &db}, sess, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Database != "other-db" {
			t.Errorf("expected explicit database, got %q", creds.Database)
		}
		if creds.Host != "session-host" || creds.User != "session-user" || creds.Password != "pw" || creds.Port != 3310 {
			t.Errorf("expected untouched fields from the session, got %+v", creds)
		}
	})
}

func TestConnectReplacesOpenConnection(t *testing.T) {
	opener := &countingOpener{}
	sess := state.NewSessionWithOpener("reconnect-test", opener.open)
	sess.Reconfigure(config.Credentials{Host: "localhost", User: "root", Database: "first"})
	t.Cleanup(func() { sess.Close() })

	old, err := sess.EnsureConnection(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	db := "second"
	_, output, err := connectHandler(context.Background(), nil, ConnectInput{Database: &db}, sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Database != "second" {
		t.Errorf("expected new database in output, got %q", output.Database)
	}
	if err := old.Ping(); err == nil {
		t.Error("expected the previous connection to be closed")
	}
	if opener.calls != 2 {
		t.Errorf("expected a second connect attempt, got %d", opener.calls)
	}
}
