package database

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/XSAM/otelsql"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"todoboard/internal/config"
)

// BuildSQLiteDSN returns a file DSN with foreign keys enforced, so folder
// and file deletes cascade the same way they do on PostgreSQL.
func BuildSQLiteDSN(c config.SQLiteConfig) (string, error) {
	if c.Path == "" {
		return "", fmt.Errorf("invalid sqlite config: path is required")
	}
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	return "file:" + c.Path + "?" + q.Encode(), nil
}

// NewSQLite opens the single-user offline store.
func NewSQLite(c config.SQLiteConfig) (*sql.DB, error) {
	dsn, err := BuildSQLiteDSN(c)
	if err != nil {
		return nil, err
	}

	db, err := openTraced("sqlite3", dsn, otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, err
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	return db, nil
}
