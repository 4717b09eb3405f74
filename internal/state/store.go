// Package state provides phone book persistence on SQLite.
// It owns the storage handle, the embedded schema migrations and
// every query against the contacts, messages and calls tables.
package state

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/leapstack-labs/phonebook/pkg/core"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// toMillis converts t to the stored representation (UTC unix milliseconds).
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// fromMillis converts a stored timestamp back to a UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nowMillis returns the current time truncated to storage precision.
func nowMillis() time.Time {
	return fromMillis(toMillis(time.Now()))
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likeEscaper escapes LIKE wildcards so the keyword matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsFold matches rows whose column contains keyword, ignoring
// case. Both sides go through the same Unicode fold.
func containsFold(column, keyword string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(foldString(keyword)) + "%"
	return squirrel.Expr(foldFunc+"("+column+") LIKE ? ESCAPE '\\'", pattern)
}

func notFound(entity string, id int64) error {
	return &core.NotFoundError{Entity: entity, ID: id}
}
