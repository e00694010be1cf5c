package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"jobmatch/internal/config"

	"go.uber.org/zap"
)

//go:embed sql
var files embed.FS

const advisoryLockKey int64 = 746295114

// Runner applies versioned migrations for one dialect. FS defaults to the
// embedded migrations and Dir to sql/<dialect>.
type Runner struct {
	FS      fs.FS
	Dir     string
	Dialect string
	Logger  *zap.Logger
}

func NewRunner(dialect string, logger *zap.Logger) Runner {
	return Runner{Dialect: dialect, Logger: logger}
}

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	dialect := strings.TrimSpace(r.Dialect)
	if dialect != config.DriverPostgres && dialect != config.DriverSQLite {
		return fmt.Errorf("unsupported migration dialect %q", r.Dialect)
	}

	fsys := r.FS
	if fsys == nil {
		fsys = files
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		dir = path.Join("sql", dialect)
	}

	migs, err := loadMigrations(fsys, dir)
	if err != nil {
		return err
	}

	if len(migs) == 0 {
		return nil
	}

	if err := ensureSchemaMigrations(ctx, db, dialect); err != nil {
		return err
	}

	if dialect == config.DriverPostgres {
		if err := advisoryLock(ctx, db, advisoryLockKey); err != nil {
			return err
		}
		defer func() {
			_ = advisoryUnlock(context.Background(), db, advisoryLockKey)
		}()
	}

	applied, err := getApplied(ctx, db)
	if err != nil {
		return err
	}

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, m := range migs {
		if a, ok := applied[m.Version]; ok {
			if a.Checksum != m.Checksum {
				return fmt.Errorf("migration checksum mismatch: version=%d name=%s", m.Version, m.Name)
			}
			continue
		}

		if err := applyOne(ctx, db, dialect, m); err != nil {
			return err
		}
		logger.Info("migration applied", zap.Int64("version", m.Version), zap.String("name", m.Name))
	}

	return nil
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  int64
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		m := fileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sqlText := strings.TrimSpace(string(b))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		h := sha256.Sum256([]byte(sqlText))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: name,
			SQL:      sqlText,
			Checksum: hex.EncodeToString(h[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}

	return migs, nil
}

func ensureSchemaMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	tsType := "TIMESTAMPTZ"
	if dialect == config.DriverSQLite {
		tsType = "TIMESTAMP"
	}
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at `+tsType+` NOT NULL
)`)
	return err
}

func advisoryLock(ctx context.Context, db *sql.DB, key int64) error {
	_, err := db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, key)
	return err
}

func advisoryUnlock(ctx context.Context, db *sql.DB, key int64) error {
	_, err := db.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, key)
	return err
}

func getApplied(ctx context.Context, db *sql.DB) (map[int64]appliedMigration, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]appliedMigration{}
	for rows.Next() {
		var v int64
		var c string
		if err := rows.Scan(&v, &c); err != nil {
			return nil, err
		}
		out[v] = appliedMigration{Version: v, Checksum: c}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func applyOne(ctx context.Context, db *sql.DB, dialect string, m Migration) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration failed: version=%d file=%s: %w", m.Version, m.Filename, err)
	}

	insert := `INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`
	if dialect == config.DriverSQLite {
		insert = `INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES (?, ?, ?, ?)`
	}

	appliedAt := time.Now().UTC()
	_, err = tx.ExecContext(ctx, insert, m.Version, m.Name, m.Checksum, appliedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}
