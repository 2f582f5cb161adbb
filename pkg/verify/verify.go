// Package verify compares a schema layout against the catalog of a live
// SQLite database. It only reads from the database.
package verify

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mizuchilabs/sqlite-layout/pkg/catalog"
	"github.com/mizuchilabs/sqlite-layout/pkg/schema"
)

// ErrCatalog wraps failures to read the database catalog.
var ErrCatalog = errors.New("verify: read catalog")

// Kind classifies a discrepancy.
type Kind string

const (
	MissingTable Kind = "MISSING_TABLE"
	MissingView  Kind = "MISSING_VIEW"
	WrongKind    Kind = "WRONG_KIND"
	Temporary    Kind = "TEMPORARY"
	ColumnCount  Kind = "COLUMN_COUNT"
	ColumnDiff   Kind = "COLUMN"
	WithoutRowid Kind = "WITHOUT_ROWID"
	Strict       Kind = "STRICT"
	Definition   Kind = "DEFINITION"
)

var kindOrder = map[Kind]int{
	MissingTable: 1,
	MissingView:  2,
	WrongKind:    3,
	Temporary:    4,
	ColumnCount:  5,
	ColumnDiff:   6,
	WithoutRowid: 7,
	Strict:       8,
	Definition:   9,
}

// Discrepancy is one difference between the layout and the database.
type Discrepancy struct {
	Kind        Kind
	Object      string
	Description string
	Want        string
	Got         string
}

func (d Discrepancy) String() string {
	if d.Want == "" && d.Got == "" {
		return fmt.Sprintf("%s %s: %s", d.Kind, d.Object, d.Description)
	}
	return fmt.Sprintf("%s %s: %s (want %s, got %s)", d.Kind, d.Object, d.Description, d.Want, d.Got)
}

// Report is the outcome of a verification.
type Report struct {
	Discrepancies []Discrepancy
}

// OK reports whether the database matches the layout.
func (r *Report) OK() bool {
	return len(r.Discrepancies) == 0
}

func (r *Report) String() string {
	if r.OK() {
		return "no discrepancies"
	}
	lines := make([]string, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Verify reads the catalog of db and compares it against s.
// An invalid layout is reported with the schema package's own error.
func Verify(ctx context.Context, db *sql.DB, s schema.Schema) (*Report, error) {
	if _, err := schema.Len(s, schema.Options{}); err != nil {
		return nil, err
	}

	cat, err := catalog.FromDB(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	found, err := Compare(cat, s)
	if err != nil {
		return nil, err
	}
	return &Report{Discrepancies: found}, nil
}

// Compare lists the discrepancies between a catalog and a layout, ordered by
// kind and then by object name. Objects the layout does not mention are
// ignored.
func Compare(cat *catalog.Database, s schema.Schema) ([]Discrepancy, error) {
	var found []Discrepancy

	for _, t := range s.Tables() {
		ds, err := compareTable(cat, t)
		if err != nil {
			return nil, err
		}
		found = append(found, ds...)
	}
	for _, v := range s.Views() {
		ds, err := compareView(cat, v)
		if err != nil {
			return nil, err
		}
		found = append(found, ds...)
	}

	sortDiscrepancies(found)
	return found, nil
}

func compareTable(cat *catalog.Database, t schema.Table) ([]Discrepancy, error) {
	want, err := render(t)
	if err != nil {
		return nil, err
	}

	got, ok := cat.Tables[t.Name()]
	if !ok {
		if kind := cat.Object(t.Name()); kind != "" {
			return []Discrepancy{wrongKind(t.Name(), "table", kind)}, nil
		}
		return []Discrepancy{{
			Kind:        MissingTable,
			Object:      t.Name(),
			Description: "table does not exist",
		}}, nil
	}

	var ds []Discrepancy
	if got.Schema != "main" {
		ds = append(ds, Discrepancy{
			Kind:        Temporary,
			Object:      t.Name(),
			Description: "table lives in the wrong schema",
			Want:        "main",
			Got:         got.Schema,
		})
	}
	if len(got.Columns) != t.NumColumns() {
		ds = append(ds, Discrepancy{
			Kind:        ColumnCount,
			Object:      t.Name(),
			Description: "column count differs",
			Want:        fmt.Sprint(t.NumColumns()),
			Got:         fmt.Sprint(len(got.Columns)),
		})
	} else {
		for i, col := range t.Columns() {
			ds = append(ds, compareColumn(t, col, got.Columns[i])...)
		}
	}
	if got.WithoutRowid != t.WithoutRowid() {
		ds = append(ds, flag(WithoutRowid, t.Name(), "without rowid flag differs", t.WithoutRowid(), got.WithoutRowid))
	}
	if got.Strict != t.Strict() {
		ds = append(ds, flag(Strict, t.Name(), "strict flag differs", t.Strict(), got.Strict))
	}
	if !sameDefinition(want, got.SQL) {
		ds = append(ds, Discrepancy{
			Kind:        Definition,
			Object:      t.Name(),
			Description: "stored definition differs",
			Want:        want,
			Got:         got.SQL,
		})
	}
	return ds, nil
}

func compareColumn(t schema.Table, want schema.Column, got catalog.Column) []Discrepancy {
	object := t.Name() + "." + want.Name()
	var ds []Discrepancy
	add := func(what, w, g string) {
		ds = append(ds, Discrepancy{Kind: ColumnDiff, Object: object, Description: what, Want: w, Got: g})
	}

	if !sameName(want.Name(), got.Name) {
		add("column name differs", want.Name(), got.Name)
		return ds
	}
	if !strings.EqualFold(want.Type().String(), got.Type) {
		add("column type differs", want.Type().String(), got.Type)
	}
	if want.IsPrimaryKey() != (got.PrimaryKey > 0) {
		add("primary key differs", fmt.Sprint(want.IsPrimaryKey()), fmt.Sprint(got.PrimaryKey > 0))
	}
	if _, notNull := want.NotNull(); notNull != got.NotNull && !implicitNotNull(t, want) {
		add("not null differs", fmt.Sprint(notNull), fmt.Sprint(got.NotNull))
	}
	if g, ok := want.Generated(); ok != got.Generated() {
		add("generated differs", fmt.Sprint(ok), fmt.Sprint(got.Generated()))
	} else if ok {
		mode, _ := g.Mode()
		stored := got.Hidden == catalog.HiddenStored
		if (mode == schema.Stored) != stored {
			gotMode := schema.Virtual
			if stored {
				gotMode = schema.Stored
			}
			add("generated mode differs", mode.String(), gotMode.String())
		}
	}
	return ds
}

// implicitNotNull reports whether SQLite marks c NOT NULL on its own. That is
// every key column of a WITHOUT ROWID table, and every key column of a STRICT
// table except the rowid alias.
func implicitNotNull(t schema.Table, c schema.Column) bool {
	pk, ok := c.PrimaryKey()
	if !ok {
		return false
	}
	if t.WithoutRowid() {
		return true
	}
	rowidAlias := c.Type() == schema.Integer && pk.Order() == schema.Ascending
	return t.Strict() && !rowidAlias
}

func compareView(cat *catalog.Database, v schema.View) ([]Discrepancy, error) {
	want, err := render(v)
	if err != nil {
		return nil, err
	}

	got, ok := cat.Views[v.Name()]
	if !ok {
		if kind := cat.Object(v.Name()); kind != "" {
			return []Discrepancy{wrongKind(v.Name(), "view", kind)}, nil
		}
		return []Discrepancy{{
			Kind:        MissingView,
			Object:      v.Name(),
			Description: "view does not exist",
		}}, nil
	}

	var ds []Discrepancy
	if temp := got.Schema == "temp"; temp != v.Temporary() {
		ds = append(ds, flag(Temporary, v.Name(), "temporary placement differs", v.Temporary(), temp))
	}
	if cols, declared := v.Columns(); declared {
		if len(cols) != len(got.Columns) {
			ds = append(ds, Discrepancy{
				Kind:        ColumnCount,
				Object:      v.Name(),
				Description: "output column count differs",
				Want:        fmt.Sprint(len(cols)),
				Got:         fmt.Sprint(len(got.Columns)),
			})
		} else {
			for i, c := range cols {
				if !sameName(c.Name(), got.Columns[i].Name) {
					ds = append(ds, Discrepancy{
						Kind:        ColumnDiff,
						Object:      v.Name() + "." + c.Name(),
						Description: "output column name differs",
						Want:        c.Name(),
						Got:         got.Columns[i].Name,
					})
				}
			}
		}
	}
	if !sameDefinition(want, got.SQL) {
		ds = append(ds, Discrepancy{
			Kind:        Definition,
			Object:      v.Name(),
			Description: "stored definition differs",
			Want:        want,
			Got:         got.SQL,
		})
	}
	return ds, nil
}

func render(p schema.Part) (string, error) {
	n, err := p.Len()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(n)
	if err := p.Write(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func wrongKind(name, want, got string) Discrepancy {
	return Discrepancy{
		Kind:        WrongKind,
		Object:      name,
		Description: "object has the wrong kind",
		Want:        want,
		Got:         got,
	}
}

func flag(kind Kind, object, what string, want, got bool) Discrepancy {
	return Discrepancy{Kind: kind, Object: object, Description: what, Want: fmt.Sprint(want), Got: fmt.Sprint(got)}
}

// sortDiscrepancies orders by kind, then by object.
func sortDiscrepancies(ds []Discrepancy) {
	slices.SortStableFunc(ds, func(a, b Discrepancy) int {
		if c := cmp.Compare(kindOrder[a.Kind], kindOrder[b.Kind]); c != 0 {
			return c
		}
		return cmp.Compare(a.Object, b.Object)
	})
}
