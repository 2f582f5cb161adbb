package document

import (
	"encoding/xml"
	"fmt"

	"github.com/mizuchilabs/sqlite-layout/pkg/schema"
)

// The document model mirrors the schema tree with one attribute per scalar
// and one child element per repeated entity. Vocabulary values are stored by
// name so documents stay readable.

// Namespace is the XML namespace of the root element. Documents without one
// are accepted.
const Namespace = "https://crates.io/crates/sqlayout"

type schemaDoc struct {
	XMLName   xml.Name   `xml:"schema" yaml:"-" msgpack:"-"`
	Namespace string     `xml:"xmlns,attr,omitempty" yaml:"-" msgpack:"-"`
	Tables    []tableDoc `xml:"table" yaml:"tables" msgpack:"tables"`
	Views     []viewDoc  `xml:"view" yaml:"views,omitempty" msgpack:"views,omitempty"`
}

type tableDoc struct {
	Name         string      `xml:"name,attr" yaml:"name" msgpack:"name"`
	WithoutRowid bool        `xml:"without_rowid,attr,omitempty" yaml:"without_rowid,omitempty" msgpack:"without_rowid,omitempty"`
	Strict       bool        `xml:"strict,attr,omitempty" yaml:"strict,omitempty" msgpack:"strict,omitempty"`
	Columns      []columnDoc `xml:"column" yaml:"columns" msgpack:"columns"`
}

type columnDoc struct {
	Name       string        `xml:"name,attr" yaml:"name" msgpack:"name"`
	Type       string        `xml:"type,attr" yaml:"type" msgpack:"type"`
	PrimaryKey *primaryKey   `xml:"pk" yaml:"pk,omitempty" msgpack:"pk,omitempty"`
	Unique     *conflictDoc  `xml:"unique" yaml:"unique,omitempty" msgpack:"unique,omitempty"`
	ForeignKey *foreignKey   `xml:"fk" yaml:"fk,omitempty" msgpack:"fk,omitempty"`
	NotNull    *conflictDoc  `xml:"not_null" yaml:"not_null,omitempty" msgpack:"not_null,omitempty"`
	Generated  *generatedDoc `xml:"generated" yaml:"generated,omitempty" msgpack:"generated,omitempty"`
}

type primaryKey struct {
	Order         string `xml:"order,attr,omitempty" yaml:"order,omitempty" msgpack:"order,omitempty"`
	OnConflict    string `xml:"on_conflict,attr,omitempty" yaml:"on_conflict,omitempty" msgpack:"on_conflict,omitempty"`
	Autoincrement bool   `xml:"autoincrement,attr,omitempty" yaml:"autoincrement,omitempty" msgpack:"autoincrement,omitempty"`
}

type conflictDoc struct {
	OnConflict string `xml:"on_conflict,attr,omitempty" yaml:"on_conflict,omitempty" msgpack:"on_conflict,omitempty"`
}

type foreignKey struct {
	Table      string `xml:"foreign_table,attr" yaml:"foreign_table" msgpack:"foreign_table"`
	Column     string `xml:"foreign_column,attr" yaml:"foreign_column" msgpack:"foreign_column"`
	OnDelete   string `xml:"on_delete,attr,omitempty" yaml:"on_delete,omitempty" msgpack:"on_delete,omitempty"`
	OnUpdate   string `xml:"on_update,attr,omitempty" yaml:"on_update,omitempty" msgpack:"on_update,omitempty"`
	Deferrable bool   `xml:"deferrable,attr,omitempty" yaml:"deferrable,omitempty" msgpack:"deferrable,omitempty"`
}

type generatedDoc struct {
	Expression string `xml:"expression,attr" yaml:"expression" msgpack:"expression"`
	Mode       string `xml:"mode,attr,omitempty" yaml:"mode,omitempty" msgpack:"mode,omitempty"`
}

type viewDoc struct {
	Name       string          `xml:"name,attr" yaml:"name" msgpack:"name"`
	Temporary  bool            `xml:"temporary,attr,omitempty" yaml:"temporary,omitempty" msgpack:"temporary,omitempty"`
	Select     string          `xml:"select,attr" yaml:"select" msgpack:"select"`
	ColumnList bool            `xml:"column_list,attr,omitempty" yaml:"column_list,omitempty" msgpack:"column_list,omitempty"`
	Columns    []viewColumnDoc `xml:"column" yaml:"columns,omitempty" msgpack:"columns,omitempty"`
}

type viewColumnDoc struct {
	Name string `xml:"name,attr" yaml:"name" msgpack:"name"`
}

type named interface {
	Valid() bool
	Name() string
	String() string
}

func nameOf(v named) (string, error) {
	if !v.Valid() {
		return "", fmt.Errorf("%w: %s", schema.ErrInvalidVariant, v)
	}
	return v.Name(), nil
}

func fromSchema(s schema.Schema) (*schemaDoc, error) {
	doc := &schemaDoc{Namespace: Namespace}
	for _, t := range s.Tables() {
		td := tableDoc{Name: t.Name(), WithoutRowid: t.WithoutRowid(), Strict: t.Strict()}
		for _, c := range t.Columns() {
			cd, err := fromColumn(c)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", t.Name(), err)
			}
			td.Columns = append(td.Columns, cd)
		}
		doc.Tables = append(doc.Tables, td)
	}
	for _, v := range s.Views() {
		cols, declared := v.Columns()
		vd := viewDoc{Name: v.Name(), Temporary: v.Temporary(), Select: v.Select(), ColumnList: declared}
		for _, c := range cols {
			vd.Columns = append(vd.Columns, viewColumnDoc{Name: c.Name()})
		}
		doc.Views = append(doc.Views, vd)
	}
	return doc, nil
}

func fromColumn(c schema.Column) (columnDoc, error) {
	typ, err := nameOf(c.Type())
	if err != nil {
		return columnDoc{}, err
	}
	cd := columnDoc{Name: c.Name(), Type: typ}

	if pk, ok := c.PrimaryKey(); ok {
		order, err := nameOf(pk.Order())
		if err != nil {
			return columnDoc{}, err
		}
		conflict, err := nameOf(pk.OnConflict())
		if err != nil {
			return columnDoc{}, err
		}
		cd.PrimaryKey = &primaryKey{Order: order, OnConflict: conflict, Autoincrement: pk.Autoincrement()}
	}
	if u, ok := c.Unique(); ok {
		conflict, err := nameOf(u.OnConflict())
		if err != nil {
			return columnDoc{}, err
		}
		cd.Unique = &conflictDoc{OnConflict: conflict}
	}
	if fk, ok := c.ForeignKey(); ok {
		fd := &foreignKey{Table: fk.Table(), Column: fk.Column(), Deferrable: fk.Deferrable()}
		if a, ok := fk.OnDelete(); ok {
			if fd.OnDelete, err = nameOf(a); err != nil {
				return columnDoc{}, err
			}
		}
		if a, ok := fk.OnUpdate(); ok {
			if fd.OnUpdate, err = nameOf(a); err != nil {
				return columnDoc{}, err
			}
		}
		cd.ForeignKey = fd
	}
	if nn, ok := c.NotNull(); ok {
		conflict, err := nameOf(nn.OnConflict())
		if err != nil {
			return columnDoc{}, err
		}
		cd.NotNull = &conflictDoc{OnConflict: conflict}
	}
	if g, ok := c.Generated(); ok {
		gd := &generatedDoc{Expression: g.Expression()}
		if m, ok := g.Mode(); ok {
			if gd.Mode, err = nameOf(m); err != nil {
				return columnDoc{}, err
			}
		}
		cd.Generated = gd
	}
	return cd, nil
}

// toSchema rebuilds the schema tree. It does not validate it: an empty name
// decodes fine and fails only when the layout is rendered.
func (doc *schemaDoc) toSchema() (schema.Schema, error) {
	if doc.Namespace != "" && doc.Namespace != Namespace {
		return schema.Schema{}, fmt.Errorf("%w: unknown namespace %q", ErrFormat, doc.Namespace)
	}
	s := schema.NewSchema()
	for _, td := range doc.Tables {
		t := schema.NewTable(td.Name).WithWithoutRowid(td.WithoutRowid).WithStrict(td.Strict)
		for _, cd := range td.Columns {
			c, err := cd.toColumn()
			if err != nil {
				return schema.Schema{}, fmt.Errorf("%w: table %q column %q: %w", ErrFormat, td.Name, cd.Name, err)
			}
			t = t.AddColumn(c)
		}
		s = s.AddTable(t)
	}
	for _, vd := range doc.Views {
		v := schema.NewView(vd.Name, vd.Select).WithTemporary(vd.Temporary)
		if vd.ColumnList || len(vd.Columns) > 0 {
			var cols []schema.ViewColumn
			for _, c := range vd.Columns {
				cols = append(cols, schema.NewViewColumn(c.Name))
			}
			v = v.WithColumns(cols...)
		}
		s = s.AddView(v)
	}
	return s, nil
}

func (cd columnDoc) toColumn() (schema.Column, error) {
	typ, err := parseOr(cd.Type, schema.Blob, schema.ParseAffinity)
	if err != nil {
		return schema.Column{}, err
	}
	c := schema.NewColumn(cd.Name, typ)

	if pd := cd.PrimaryKey; pd != nil {
		order, err := parseOr(pd.Order, schema.Ascending, schema.ParseOrder)
		if err != nil {
			return schema.Column{}, err
		}
		conflict, err := parseOr(pd.OnConflict, schema.Abort, schema.ParseOnConflict)
		if err != nil {
			return schema.Column{}, err
		}
		c = c.WithPrimaryKey(schema.NewPrimaryKey(order, conflict, pd.Autoincrement))
	}
	if ud := cd.Unique; ud != nil {
		conflict, err := parseOr(ud.OnConflict, schema.Abort, schema.ParseOnConflict)
		if err != nil {
			return schema.Column{}, err
		}
		c = c.WithUnique(schema.NewUnique(conflict))
	}
	if fd := cd.ForeignKey; fd != nil {
		fk := schema.NewForeignKey(fd.Table, fd.Column).WithDeferrable(fd.Deferrable)
		if fd.OnDelete != "" {
			a, err := schema.ParseAction(fd.OnDelete)
			if err != nil {
				return schema.Column{}, err
			}
			fk = fk.WithOnDelete(a)
		}
		if fd.OnUpdate != "" {
			a, err := schema.ParseAction(fd.OnUpdate)
			if err != nil {
				return schema.Column{}, err
			}
			fk = fk.WithOnUpdate(a)
		}
		c = c.WithForeignKey(fk)
	}
	if nd := cd.NotNull; nd != nil {
		conflict, err := parseOr(nd.OnConflict, schema.Abort, schema.ParseOnConflict)
		if err != nil {
			return schema.Column{}, err
		}
		c = c.WithNotNull(schema.NewNotNull(conflict))
	}
	if gd := cd.Generated; gd != nil {
		g := schema.NewGenerated(gd.Expression)
		if gd.Mode != "" {
			m, err := schema.ParseGeneration(gd.Mode)
			if err != nil {
				return schema.Column{}, err
			}
			g = g.WithMode(m)
		}
		c = c.WithGenerated(g)
	}
	return c, nil
}

// parseOr parses name, falling back to def when the attribute is absent.
func parseOr[T any](name string, def T, parse func(string) (T, error)) (T, error) {
	if name == "" {
		return def, nil
	}
	return parse(name)
}
