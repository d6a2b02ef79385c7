// Package sql is the relational driver. Every key is a TEXT column of one
// table; each Set drops and re-adds the column and inserts a new row, so the
// newest write is the only non-null value the column holds. Older rows stay
// behind as null padding.
//
// Keys become column identifiers, so only names matching KeyPattern are
// accepted. Identifiers are always quoted, which keeps keys case-sensitive.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/unkn0wn-root/botdb/driver"
)

const (
	// Table is left unquoted in statements, so postgres folds it to "ultroid".
	Table = "Ultroid"
	// bootstrapColumn exists only so the table has at least one column.
	bootstrapColumn = "ultroidcli"

	codeUndefinedColumn = "42703"
	codeUndefinedTable  = "42P01"
)

var (
	// KeyPattern is the accepted key shape: a postgres identifier of at most
	// 63 bytes.
	KeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

	createTable = "CREATE TABLE IF NOT EXISTS " + Table + " (ultroidCli varchar(70))"
)

type SQL struct {
	db *sql.DB
}

var (
	_ driver.Driver        = (*SQL)(nil)
	_ driver.Pinger        = (*SQL)(nil)
	_ driver.UsageReporter = (*SQL)(nil)
)

// Open connects to dsn with the pgx driver, verifies the connection and
// creates the bootstrap table.
func Open(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// one connection, like the rest of the drivers
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	d, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an open handle and creates the bootstrap table. The driver takes
// ownership of db.
func New(ctx context.Context, db *sql.DB) (*SQL, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("sql driver: create table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (p *SQL) Name() string { return "SQL" }

// ValidKey reports whether key can be stored as a column.
func ValidKey(key string) bool {
	return KeyPattern.MatchString(key) && !strings.EqualFold(key, bootstrapColumn)
}

func quote(key string) string { return `"` + key + `"` }

func (p *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if !ValidKey(key) {
		return "", false, nil // cannot have been stored
	}
	col := quote(key)
	q := "SELECT " + col + " FROM " + Table + " WHERE " + col + " IS NOT NULL LIMIT 1"
	var out string
	err := p.db.QueryRowContext(ctx, q).Scan(&out)
	switch {
	case errors.Is(err, sql.ErrNoRows), isCode(err, codeUndefinedColumn):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return out, true, nil
}

// Set replaces the column for key and inserts value as a new row.
func (p *SQL) Set(ctx context.Context, key, value string) (bool, error) {
	if !ValidKey(key) {
		return false, fmt.Errorf("%w: %q is not a column identifier", driver.ErrInvalidKey, key)
	}
	col := quote(key)
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	stmts := []struct {
		q    string
		args []any
	}{
		{"ALTER TABLE " + Table + " DROP COLUMN IF EXISTS " + col, nil},
		{"ALTER TABLE " + Table + " ADD COLUMN " + col + " TEXT", nil},
		{"INSERT INTO " + Table + " (" + col + ") VALUES ($1)", []any{value}},
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.q, s.args...); err != nil {
			_ = tx.Rollback()
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *SQL) Delete(ctx context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	_, err := p.db.ExecContext(ctx, "ALTER TABLE "+Table+" DROP COLUMN "+quote(key))
	if isCode(err, codeUndefinedColumn) {
		return false, nil // nothing to delete
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *SQL) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position",
		strings.ToLower(Table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name == bootstrapColumn {
			continue
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// FlushAll drops the table and recreates it empty.
func (p *SQL) FlushAll(ctx context.Context) (bool, error) {
	if _, err := p.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+Table); err != nil {
		return false, err
	}
	if _, err := p.db.ExecContext(ctx, createTable); err != nil {
		return false, err
	}
	return true, nil
}

// Usage is pg_relation_size of the table, in bytes.
func (p *SQL) Usage(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, "SELECT pg_relation_size('"+Table+"')").Scan(&n)
	if isCode(err, codeUndefinedTable) {
		return 0, nil
	}
	return n, err
}

func (p *SQL) Ping(ctx context.Context) (bool, error) {
	if err := p.db.PingContext(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *SQL) Close(_ context.Context) error {
	return p.db.Close()
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
