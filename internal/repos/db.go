package repos

import (
	"context"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package globals
var gooseMu sync.Mutex

// OpenDB opens the SQLite database and brings the schema up to date.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: SQLite has a single writer and ":memory:" is per connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err = db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, err
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts a few demo products when the catalog is empty.
// Safe to run on every startup.
func SeedIfEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := formatTS(time.Now())
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range []struct {
		name, desc string
		qty        int
	}{
		{"Game Boy Color", "Handheld console", 8},
		{"NES Console", "Classic 8-bit console", 0},
		{"Philco 1939", "Vintage vacuum tube radio", 2},
	} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products(name, description, quantity, is_deleted, created_at)
			VALUES (?, ?, ?, 0, ?)
		`, p.name, p.desc, p.qty, now); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}
