package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"jobmatch/internal/config"
	"jobmatch/internal/database"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB is the embedded backend. Stores write postgres-style $N placeholders;
// they are rewritten to sqlite's ?N form so the same statements run on both.
type DB struct {
	sqlDB *sql.DB
}

func Open(ctx context.Context, path string) (database.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// A single connection keeps writes serialized and makes :memory: usable.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return &DB{sqlDB: sqldb}, nil
}

func (d *DB) Driver() string {
	return config.DriverSQLite
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.sqlDB == nil {
		return fmt.Errorf("nil db")
	}
	return d.sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if d == nil || d.sqlDB == nil {
		return 0, fmt.Errorf("nil db")
	}
	return execResult(d.sqlDB.ExecContext(ctx, Rebind(query), args...))
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if d == nil || d.sqlDB == nil {
		return nil, fmt.Errorf("nil db")
	}
	r, err := d.sqlDB.QueryContext(ctx, Rebind(query), args...)
	if err != nil {
		return nil, mapError(err)
	}
	return sqlRows{rows: r}, nil
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if d == nil || d.sqlDB == nil {
		return errRow{err: fmt.Errorf("nil db")}
	}
	return sqlRow{row: d.sqlDB.QueryRowContext(ctx, Rebind(query), args...)}
}

func (d *DB) Begin(ctx context.Context) (database.Tx, error) {
	if d == nil || d.sqlDB == nil {
		return nil, fmt.Errorf("nil db")
	}
	tx, err := d.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (d *DB) SQLDB() *sql.DB {
	if d == nil {
		return nil
	}
	return d.sqlDB
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execResult(t.tx.ExecContext(ctx, Rebind(query), args...))
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.QueryContext(ctx, Rebind(query), args...)
	if err != nil {
		return nil, mapError(err)
	}
	return sqlRows{rows: r}, nil
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return sqlRow{row: t.tx.QueryRowContext(ctx, Rebind(query), args...)}
}

func (t sqlTx) Commit(_ context.Context) error {
	return mapError(t.tx.Commit())
}

func (t sqlTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Close() {
	_ = r.rows.Close()
}

func (r sqlRows) Next() bool {
	return r.rows.Next()
}

func (r sqlRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r sqlRows) Err() error {
	return mapError(r.rows.Err())
}

type sqlRow struct {
	row *sql.Row
}

func (r sqlRow) Scan(dest ...any) error {
	return mapError(r.row.Scan(dest...))
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error {
	return r.err
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites $1, $2 ... into ?1, ?2 ...
func Rebind(query string) string {
	return placeholderRe.ReplaceAllString(query, "?$1")
}

func execResult(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *msqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", database.ErrUniqueViolation, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %w", database.ErrForeignKeyViolation, err)
	default:
		return err
	}
}
