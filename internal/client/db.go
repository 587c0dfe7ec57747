package client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/franHR11/pcpro-mcp-mysql/internal/config"
)

// DBClient wraps a single database handle opened from resolved credentials.
type DBClient struct {
	DB *sql.DB
}

// New opens and verifies a MySQL connection. A failed ping closes the handle
// so the caller never holds a half-open connection.
func New(ctx context.Context, creds config.Credentials) (*DBClient, error) {
	db, err := sql.Open("mysql", creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql at %s:%d: %w", creds.Host, creds.Port, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DBClient{DB: db}, nil
}

func (c *DBClient) Close() error {
	return c.DB.Close()
}
