package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultUser = "root"
	DefaultPort = 3306
)

// Credentials holds everything needed to open a MySQL connection.
// Password is always present (possibly empty) so a merge never silently
// falls back to a stale value.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Partial is a set of optionally-supplied credential fields, as they arrive
// from tool arguments or a session-scoped config object. Nil means "not
// supplied" and falls through to the next source.
type Partial struct {
	Host     *string
	Port     *int
	User     *string
	Password *string
	Database *string
}

// Validate checks the invariants required at connect time.
func (c Credentials) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

// DSN renders the credentials in go-sql-driver format.
func (c Credentials) DSN() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, port, c.Database)
}

// Resolve merges credential sources field by field, highest priority first:
// explicit tool arguments, session config, environment, hard-coded defaults.
// Pure: getenv is injected so resolution stays deterministic under test.
func Resolve(explicit, session Partial, getenv func(string) string) Credentials {
	return Credentials{
		Host:     resolveString(explicit.Host, session.Host, getenv("MYSQL_HOST"), DefaultHost),
		Port:     resolvePort(explicit.Port, session.Port, getenv("MYSQL_PORT")),
		User:     resolveString(explicit.User, session.User, getenv("MYSQL_USER"), DefaultUser),
		Password: resolveString(explicit.Password, session.Password, getenv("MYSQL_PASSWORD"), ""),
		Database: resolveString(explicit.Database, session.Database, getenv("MYSQL_DATABASE"), ""),
	}
}

// FromEnv resolves credentials from the process environment alone.
func FromEnv() Credentials {
	return Resolve(Partial{}, Partial{}, os.Getenv)
}

func resolveString(explicit, session *string, env, fallback string) string {
	if explicit != nil {
		return *explicit
	}
	if session != nil {
		return *session
	}
	if env != "" {
		return env
	}
	return fallback
}

func resolvePort(explicit, session *int, env string) int {
	if explicit != nil {
		return *explicit
	}
	if session != nil {
		return *session
	}
	if env != "" {
		if p, err := strconv.Atoi(env); err == nil {
			return p
		}
	}
	return DefaultPort
}

// ParseURL parses a single mysql:// connection URL into structured
// credentials. Any other scheme is rejected; malformed URLs fail with a
// descriptive error rather than a guessed partial result.
func ParseURL(rawURL string) (Credentials, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to parse connection URL: %v", err)
	}
	if u.Scheme != "mysql" {
		return Credentials{}, fmt.Errorf("invalid URL protocol: %q (expected mysql)", u.Scheme)
	}
	if u.Hostname() == "" {
		return Credentials{}, fmt.Errorf("connection URL is missing a host")
	}

	creds := Credentials{
		Host:     u.Hostname(),
		Port:     DefaultPort,
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		creds.User = u.User.Username()
		creds.Password, _ = u.User.Password()
	}
	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Credentials{}, fmt.Errorf("invalid port in connection URL: %q", portStr)
		}
		creds.Port = port
	}
	return creds, nil
}

// LoggingConfig controls the server log output.
type LoggingConfig struct {
	Level      string
	OutputFile string
	MaxSizeMB  int64
	Console    bool
}

// LoggingFromEnv reads logging settings from the environment. Console output
// stays off by default because stdout carries the stdio transport.
func LoggingFromEnv() LoggingConfig {
	cfg := LoggingConfig{
		Level:      os.Getenv("LOG_LEVEL"),
		OutputFile: os.Getenv("LOG_FILE"),
		MaxSizeMB:  10,
	}
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if sizeStr := os.Getenv("LOG_MAX_SIZE_MB"); sizeStr != "" {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil && size > 0 {
			cfg.MaxSizeMB = size
		}
	}
	return cfg
}
