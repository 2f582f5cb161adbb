package schema

import (
	"slices"
	"strings"
)

// ViewColumn names one output column of a View.
type ViewColumn struct {
	name string
}

func NewViewColumn(name string) ViewColumn { return ViewColumn{name: name} }

func (vc ViewColumn) Name() string { return vc.name }

// View is a CREATE VIEW statement. The select body is copied verbatim.
//
// A view either has no output column list, or a declared one which must not
// be empty. The two are kept apart: WithColumns() with no arguments declares
// an empty list and fails with ErrEmptyViewColumns, WithoutColumns removes
// the list altogether.
type View struct {
	name      string
	temporary bool
	declared  bool
	columns   []ViewColumn
	body      string
}

// NewView returns a permanent view without an output column list.
func NewView(name, selectBody string) View {
	return View{name: name, body: selectBody}
}

func (v View) Name() string    { return v.name }
func (v View) Temporary() bool { return v.temporary }
func (v View) Select() string  { return v.body }

// Columns returns the declared output columns and whether a list is declared.
func (v View) Columns() ([]ViewColumn, bool) {
	return slices.Clone(v.columns), v.declared
}

func (v View) WithName(name string) View {
	v.name = name
	return v
}

func (v View) WithTemporary(on bool) View {
	v.temporary = on
	return v
}

func (v View) WithSelect(body string) View {
	v.body = body
	return v
}

// WithColumns declares the output column list, replacing any previous one.
func (v View) WithColumns(columns ...ViewColumn) View {
	v.declared = true
	v.columns = slices.Clone(columns)
	return v
}

// AddColumn appends to the output column list, declaring it if needed.
func (v View) AddColumn(col ViewColumn) View {
	v.declared = true
	v.columns = append(slices.Clip(v.columns), col)
	return v
}

func (v View) WithoutColumns() View {
	v.declared = false
	v.columns = nil
	return v
}

func (v View) check() error {
	if v.name == "" {
		return ErrEmptyViewName
	}
	if v.body == "" {
		return ErrEmptySelect
	}
	if v.declared && len(v.columns) == 0 {
		return ErrEmptyViewColumns
	}
	for _, c := range v.columns {
		if c.name == "" {
			return ErrEmptyViewColumnName
		}
	}
	return nil
}

func (v View) length(ifNotExists bool) int {
	n := 7 // "CREATE "
	if v.temporary {
		n += 10 // "TEMPORARY "
	}
	n += 5 // "VIEW "
	if ifNotExists {
		n += 14 // "IF NOT EXISTS "
	}
	n += len(v.name)
	if v.declared {
		n += 2 // " ("
		for _, c := range v.columns {
			n += len(c.name)
		}
		n += 2 * (len(v.columns) - 1) // ", "
		n++                           // ")"
	}
	n += 4 + len(v.body) // " AS "
	return n
}

func (v View) write(sb *strings.Builder, ifNotExists bool) {
	sb.WriteString("CREATE ")
	if v.temporary {
		sb.WriteString("TEMPORARY ")
	}
	sb.WriteString("VIEW ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(v.name)
	if v.declared {
		sb.WriteString(" (")
		for i, c := range v.columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.name)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(" AS ")
	sb.WriteString(v.body)
}

// Len returns the length of the CREATE VIEW text without existence guard
// or terminating semicolon.
func (v View) Len() (int, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.length(false), nil
}

func (v View) Write(sb *strings.Builder) error {
	if err := v.check(); err != nil {
		return err
	}
	v.write(sb, false)
	return nil
}

func (v View) statementLen(ifNotExists bool) (int, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.length(ifNotExists) + 1, nil
}

func (v View) writeStatement(sb *strings.Builder, ifNotExists bool) error {
	if err := v.check(); err != nil {
		return err
	}
	v.write(sb, ifNotExists)
	sb.WriteByte(';')
	return nil
}
