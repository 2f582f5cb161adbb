// Package apply executes a rendered schema layout against a database.
package apply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mizuchilabs/sqlite-layout/pkg/schema"
)

// ErrExec wraps failures reported by the database while applying.
var ErrExec = errors.New("apply: execute")

// Options configures how a layout is applied
type Options struct {
	IfNotExists bool
	DryRun      bool
	BackupPath  string // Path to create backup (empty = no backup)
}

// Apply renders stmt and executes it inside one transaction. It returns the
// rendered script, which is all that happens on a dry run. Layout errors are
// returned unchanged from the schema package.
func Apply(ctx context.Context, db *sql.DB, stmt schema.Statement, opts Options) (string, error) {
	// The transaction comes from database/sql, not from BEGIN/END markers.
	script, err := schema.Build(stmt, schema.Options{IfNotExists: opts.IfNotExists})
	if err != nil {
		return "", err
	}

	if opts.DryRun {
		return script, nil
	}

	if opts.BackupPath != "" {
		if err := backup(ctx, db, opts.BackupPath); err != nil {
			return "", err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin transaction: %w", ErrExec, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return "", fmt.Errorf("%w: %w\nSQL: %s", ErrExec, err, script)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %w", ErrExec, err)
	}
	return script, nil
}

func backup(ctx context.Context, db *sql.DB, path string) error {
	_ = os.Remove(path)                             // Ignore error if doesn't exist
	safePath := strings.ReplaceAll(path, "'", "''") // Escape single quotes for SQL
	if _, err := db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", safePath)); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	return nil
}
