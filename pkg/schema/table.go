package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Table is a CREATE TABLE statement.
// It can be rendered on its own or as part of a Schema.
type Table struct {
	name         string
	columns      []Column
	withoutRowid bool
	strict       bool
}

// NewTable returns a rowid table with the given columns.
func NewTable(name string, columns ...Column) Table {
	return Table{name: name, columns: slices.Clone(columns)}
}

func (t Table) Name() string       { return t.name }
func (t Table) NumColumns() int    { return len(t.columns) }
func (t Table) WithoutRowid() bool { return t.withoutRowid }
func (t Table) Strict() bool       { return t.strict }

// Columns returns a copy of the column definitions.
func (t Table) Columns() []Column { return slices.Clone(t.columns) }

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// HasColumn checks if the table has a column by name.
func (t Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column returns the column with the given name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKeyColumn returns the first column carrying a primary key.
func (t Table) PrimaryKeyColumn() (Column, bool) {
	for _, c := range t.columns {
		if c.pk != nil {
			return c, true
		}
	}
	return Column{}, false
}

func (t Table) WithName(name string) Table {
	t.name = name
	return t
}

// AddColumn returns a copy of t with col appended.
func (t Table) AddColumn(col Column) Table {
	t.columns = append(slices.Clip(t.columns), col)
	return t
}

// WithColumns returns a copy of t with its columns replaced.
func (t Table) WithColumns(columns ...Column) Table {
	t.columns = slices.Clone(columns)
	return t
}

func (t Table) WithWithoutRowid(on bool) Table {
	t.withoutRowid = on
	return t
}

func (t Table) WithStrict(on bool) Table {
	t.strict = on
	return t
}

func (t Table) check() error {
	// The primary key scan runs before anything else.
	var pk *Column
	for i := range t.columns {
		if t.columns[i].pk != nil {
			if pk != nil {
				return ErrMultiplePrimaryKeys
			}
			pk = &t.columns[i]
		}
	}
	if t.name == "" {
		return ErrEmptyTableName
	}
	if len(t.columns) == 0 {
		return ErrNoColumns
	}
	if t.withoutRowid && pk == nil {
		return ErrWithoutRowidNoPrimaryKey
	}
	for _, c := range t.columns {
		if err := c.check(); err != nil {
			return err
		}
	}
	if t.withoutRowid && pk.pk.autoincrement {
		return ErrWithoutRowidAutoincrement
	}

	generated := 0
	seen := make(map[string]struct{}, len(t.columns))
	for _, c := range t.columns {
		if t.strict && c.typ == Numeric {
			return fmt.Errorf("%w: column %q", ErrStrictAffinity, c.name)
		}
		if c.generated != nil {
			generated++
		}
		key := foldName(c.name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumnName, c.name)
		}
		seen[key] = struct{}{}
	}
	if generated == len(t.columns) {
		return ErrAllColumnsGenerated
	}
	return nil
}

func (t Table) length(ifNotExists bool) int {
	n := 13 // "CREATE TABLE "
	if ifNotExists {
		n += 14 // "IF NOT EXISTS "
	}
	n += len(t.name) + 2 // " ("
	for _, c := range t.columns {
		n += c.length()
	}
	n += len(t.columns) - 1 // separating commas
	n++                     // ")"
	if t.withoutRowid {
		n += 14 // " WITHOUT ROWID"
	}
	if t.withoutRowid && t.strict {
		n++ // ","
	}
	if t.strict {
		n += 7 // " STRICT"
	}
	return n
}

func (t Table) write(sb *strings.Builder, ifNotExists bool) {
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(t.name)
	sb.WriteString(" (")
	for i, c := range t.columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		c.write(sb)
	}
	sb.WriteByte(')')
	if t.withoutRowid {
		sb.WriteString(" WITHOUT ROWID")
	}
	if t.withoutRowid && t.strict {
		sb.WriteByte(',')
	}
	if t.strict {
		sb.WriteString(" STRICT")
	}
}

// Len returns the length of the CREATE TABLE text without existence guard
// or terminating semicolon.
func (t Table) Len() (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.length(false), nil
}

func (t Table) Write(sb *strings.Builder) error {
	if err := t.check(); err != nil {
		return err
	}
	t.write(sb, false)
	return nil
}

func (t Table) statementLen(ifNotExists bool) (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.length(ifNotExists) + 1, nil
}

func (t Table) writeStatement(sb *strings.Builder, ifNotExists bool) error {
	if err := t.check(); err != nil {
		return err
	}
	t.write(sb, ifNotExists)
	sb.WriteByte(';')
	return nil
}
