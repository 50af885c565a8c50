package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

var supportedPGQueryKeys = map[string]struct{}{
	"application_name":     {},
	"channel_binding":      {},
	"client_encoding":      {},
	"connect_timeout":      {},
	"gssencmode":           {},
	"host":                 {},
	"keepalives":           {},
	"keepalives_count":     {},
	"keepalives_idle":      {},
	"keepalives_interval":  {},
	"krbsrvname":           {},
	"options":              {},
	"passfile":             {},
	"service":              {},
	"sslcert":              {},
	"sslcrl":               {},
	"sslkey":               {},
	"sslmode":              {},
	"sslpassword":          {},
	"sslrootcert":          {},
	"target_session_attrs": {},
}

// Detect picks the backing driver for rawURL and returns the address that
// driver should open. An empty URL selects the in-memory store.
func Detect(rawURL string) (Driver, string, error) {
	trimmed := strings.TrimSpace(rawURL)
	lower := strings.ToLower(trimmed)
	switch {
	case trimmed == "" || lower == "memory" || lower == "memory://":
		return DriverMemory, "", nil
	case strings.HasPrefix(lower, "sqlite://"):
		return DriverSQLite, trimmed[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "sqlite:"):
		return DriverSQLite, trimmed[len("sqlite:"):], nil
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || lower == ":memory:":
		return DriverSQLite, trimmed, nil
	case strings.HasPrefix(lower, "postgres://"),
		strings.HasPrefix(lower, "postgresql://"),
		strings.HasPrefix(lower, "postgresql+psycopg://"),
		strings.HasPrefix(lower, "prisma+postgres://"):
		return DriverPostgres, normalizeDatabaseURL(trimmed), nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", redact(trimmed))
}

func Connect(ctx context.Context, rawURL string) (*pgxpool.Pool, error) {
	normalized := normalizeDatabaseURL(rawURL)
	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// OpenSQLite opens path with WAL and a busy timeout, creating its directory.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases vanish when their last connection closes.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}

func normalizeDatabaseURL(rawURL string) string {
	normalized := strings.TrimSpace(rawURL)
	if strings.HasPrefix(normalized, "prisma+postgres://") {
		normalized = strings.Replace(normalized, "prisma+postgres://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql+psycopg://") {
		normalized = strings.Replace(normalized, "postgresql+psycopg://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql://") {
		normalized = strings.Replace(normalized, "postgresql://", "postgres://", 1)
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return normalized
	}

	queries := parsed.Query()
	filtered := make(url.Values)
	for key, values := range queries {
		if _, ok := supportedPGQueryKeys[key]; ok {
			for _, v := range values {
				filtered.Add(key, v)
			}
		}
	}
	parsed.RawQuery = filtered.Encode()
	return parsed.String()
}

func redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	return parsed.Redacted()
}
