// Package schema describes SQLite schemas and renders them as DDL whose exact
// length is known before a single byte is written.
package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Schema is a complete initialization script: every table followed by
// every view.
type Schema struct {
	tables []Table
	views  []View
}

// NewSchema returns a schema holding the given tables.
func NewSchema(tables ...Table) Schema {
	return Schema{tables: slices.Clone(tables)}
}

func (s Schema) Tables() []Table { return slices.Clone(s.tables) }
func (s Schema) Views() []View   { return slices.Clone(s.views) }

// Table returns the table with the given name.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.tables {
		if t.name == name {
			return t, true
		}
	}
	return Table{}, false
}

// View returns the view with the given name.
func (s Schema) View(name string) (View, bool) {
	for _, v := range s.views {
		if v.name == name {
			return v, true
		}
	}
	return View{}, false
}

func (s Schema) AddTable(t Table) Schema {
	s.tables = append(slices.Clip(s.tables), t)
	return s
}

func (s Schema) AddView(v View) Schema {
	s.views = append(slices.Clip(s.views), v)
	return s
}

func (s Schema) check() error {
	if len(s.tables) == 0 {
		return ErrSchemaWithoutTables
	}
	for _, t := range s.tables {
		if err := t.check(); err != nil {
			return err
		}
	}
	for _, v := range s.views {
		if err := v.check(); err != nil {
			return err
		}
	}

	// Tables and views share one namespace.
	seen := make(map[string]struct{}, len(s.tables)+len(s.views))
	for _, t := range s.tables {
		if err := claim(seen, t.name); err != nil {
			return err
		}
	}
	for _, v := range s.views {
		if err := claim(seen, v.name); err != nil {
			return err
		}
	}
	return nil
}

func claim(seen map[string]struct{}, name string) error {
	key := foldName(name)
	if _, dup := seen[key]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	seen[key] = struct{}{}
	return nil
}

// foldName lowers ASCII letters only. SQLite compares identifiers that way,
// so "É" and "é" name different objects.
func foldName(name string) string {
	var b []byte
	for i := 0; i < len(name); i++ {
		if c := name[i]; 'A' <= c && c <= 'Z' {
			if b == nil {
				b = []byte(name)
			}
			b[i] = c + ('a' - 'A')
		}
	}
	if b == nil {
		return name
	}
	return string(b)
}

func (s Schema) statementLen(ifNotExists bool) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n := 0
	for _, t := range s.tables {
		n += t.length(ifNotExists) + 1
	}
	for _, v := range s.views {
		n += v.length(ifNotExists) + 1
	}
	return n, nil
}

func (s Schema) writeStatement(sb *strings.Builder, ifNotExists bool) error {
	if err := s.check(); err != nil {
		return err
	}
	for _, t := range s.tables {
		t.write(sb, ifNotExists)
		sb.WriteByte(';')
	}
	for _, v := range s.views {
		v.write(sb, ifNotExists)
		sb.WriteByte(';')
	}
	return nil
}
