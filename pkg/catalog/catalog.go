// Package catalog reads the tables and views a live SQLite database holds.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// Database is the catalog of one connection, keyed by object name.
type Database struct {
	Tables map[string]*Table
	Views  map[string]*View
}

func newDatabase() *Database {
	return &Database{
		Tables: make(map[string]*Table),
		Views:  make(map[string]*View),
	}
}

// Table describes a stored table as SQLite reports it.
type Table struct {
	Schema       string // "main" or "temp"
	Name         string
	SQL          string
	WithoutRowid bool
	Strict       bool
	Columns      []Column
}

// View describes a stored view.
type View struct {
	Schema  string
	Name    string
	SQL     string
	Columns []Column
}

// Column is one row of PRAGMA table_xinfo.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    *string
	PrimaryKey int
	Hidden     int
}

// Hidden values reported for generated columns.
const (
	HiddenVirtual = 2
	HiddenStored  = 3
)

// Generated reports whether the column is computed.
func (c Column) Generated() bool {
	return c.Hidden == HiddenVirtual || c.Hidden == HiddenStored
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	return columnNames(t.Columns)
}

// ColumnNames returns the output column names of the view.
func (v *View) ColumnNames() []string {
	return columnNames(v.Columns)
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Object returns the kind ("table" or "view") of the named object, or "" when
// the catalog holds neither.
func (d *Database) Object(name string) string {
	if _, ok := d.Tables[name]; ok {
		return "table"
	}
	if _, ok := d.Views[name]; ok {
		return "view"
	}
	return ""
}

var baseFS fs.FS

// SetBaseFS sets the filesystem FromDirectory reads from.
// Pass nil to revert to the OS filesystem.
func SetBaseFS(fsys fs.FS) {
	baseFS = fsys
}

// FromDB reads the catalog of an open database.
func FromDB(ctx context.Context, db *sql.DB) (*Database, error) {
	return extract(ctx, db)
}

// FromSQL executes script against a private in-memory database and reads the
// resulting catalog.
func FromSQL(ctx context.Context, script string) (*Database, error) {
	db, err := openMemory()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	if _, err := db.ExecContext(ctx, script); err != nil {
		return nil, fmt.Errorf("execute schema SQL: %w", err)
	}
	return extract(ctx, db)
}

// FromDirectory executes every .sql file below dir, in lexical path order,
// against one in-memory database and reads the resulting catalog.
func FromDirectory(ctx context.Context, dir string) (*Database, error) {
	files, err := sqlFiles(dir)
	if err != nil {
		return nil, err
	}

	db, err := openMemory()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	for _, path := range files {
		content, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return nil, fmt.Errorf("execute %s: %w", filepath.Base(path), err)
		}
	}
	return extract(ctx, db)
}

func openMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory database: %w", err)
	}
	// Each connection would get a fresh database.
	db.SetMaxOpenConns(1)
	return db, nil
}

func readFile(path string) ([]byte, error) {
	if baseFS != nil {
		return fs.ReadFile(baseFS, path)
	}
	return os.ReadFile(filepath.Clean(path))
}

func sqlFiles(dir string) ([]string, error) {
	var files []string
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".sql") {
			return err
		}
		files = append(files, path)
		return nil
	}

	var err error
	if baseFS != nil {
		err = fs.WalkDir(baseFS, dir, walk)
	} else {
		err = filepath.WalkDir(dir, walk)
	}
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

type object struct {
	schema       string
	name         string
	typ          string
	withoutRowid bool
	strict       bool
	sql          string
}

func extract(ctx context.Context, db *sql.DB) (*Database, error) {
	objects, err := listObjects(ctx, db)
	if err != nil {
		return nil, err
	}

	d := newDatabase()
	for _, o := range objects {
		if err := definition(ctx, db, &o); err != nil {
			return nil, err
		}
		cols, err := columns(ctx, db, o.schema, o.name)
		if err != nil {
			return nil, err
		}

		switch o.typ {
		case "table":
			d.Tables[o.name] = &Table{
				Schema:       o.schema,
				Name:         o.name,
				SQL:          o.sql,
				WithoutRowid: o.withoutRowid,
				Strict:       o.strict,
				Columns:      cols,
			}
		case "view":
			d.Views[o.name] = &View{
				Schema:  o.schema,
				Name:    o.name,
				SQL:     o.sql,
				Columns: cols,
			}
		}
	}
	return d, nil
}

// listObjects collects every user table and view of the main and temp
// schemas. The rows are closed before any other query runs.
func listObjects(ctx context.Context, db *sql.DB) ([]object, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA table_list`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var objects []object
	for rows.Next() {
		var o object
		var ncol, wr, strict int
		if err := rows.Scan(&o.schema, &o.name, &o.typ, &ncol, &wr, &strict); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan table list: %w", err)
		}
		if o.schema != "main" && o.schema != "temp" {
			continue
		}
		if o.typ != "table" && o.typ != "view" {
			continue
		}
		if strings.HasPrefix(o.name, "sqlite_") {
			continue
		}
		o.withoutRowid = wr == 1
		o.strict = strict == 1
		objects = append(objects, o)
	}
	_ = rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	slices.SortFunc(objects, func(a, b object) int {
		return strings.Compare(a.schema+"."+a.name, b.schema+"."+b.name)
	})
	return objects, nil
}

func definition(ctx context.Context, db *sql.DB, o *object) error {
	query := fmt.Sprintf(`SELECT sql FROM %q.sqlite_master WHERE type = ? AND name = ?`, o.schema)
	var text sql.NullString
	if err := db.QueryRowContext(ctx, query, o.typ, o.name).Scan(&text); err != nil {
		return fmt.Errorf("read definition of %s: %w", o.name, err)
	}
	o.sql = text.String
	return nil
}

func columns(ctx context.Context, db *sql.DB, schema, name string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA %q.table_xinfo(%q)", schema, name))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", name, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cols []Column
	for rows.Next() {
		var cid, notnull, pk, hidden int
		var c Column
		var dflt sql.NullString
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notnull, &dflt, &pk, &hidden); err != nil {
			return nil, fmt.Errorf("scan columns of %s: %w", name, err)
		}
		c.NotNull = notnull == 1
		c.PrimaryKey = pk
		c.Hidden = hidden
		if dflt.Valid {
			c.Default = &dflt.String
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
