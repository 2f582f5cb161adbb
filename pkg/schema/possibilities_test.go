package schema

// Generators enumerating the Cartesian closure of each element's optional
// clauses and vocabulary variants. With illegal set they also yield
// configurations that must fail; the matching *Err functions name the error
// each configuration is expected to produce.

func primaryKeys() []PrimaryKey {
	var out []PrimaryKey
	for _, o := range Orders() {
		for _, c := range OnConflicts() {
			for _, autoinc := range []bool{false, true} {
				out = append(out, NewPrimaryKey(o, c, autoinc))
			}
		}
	}
	return out
}

func optionalActions() []*Action {
	out := []*Action{nil}
	for _, a := range Actions() {
		out = append(out, &a)
	}
	return out
}

func foreignKeys(illegal bool) []ForeignKey {
	names := []string{"parent"}
	columns := []string{"id"}
	if illegal {
		names = append(names, "")
		columns = append(columns, "")
	}
	var out []ForeignKey
	for _, table := range names {
		for _, column := range columns {
			for _, onDelete := range optionalActions() {
				for _, onUpdate := range optionalActions() {
					for _, deferrable := range []bool{false, true} {
						fk := NewForeignKey(table, column).WithDeferrable(deferrable)
						if onDelete != nil {
							fk = fk.WithOnDelete(*onDelete)
						}
						if onUpdate != nil {
							fk = fk.WithOnUpdate(*onUpdate)
						}
						out = append(out, fk)
					}
				}
			}
		}
	}
	return out
}

func foreignKeyErr(fk ForeignKey) error {
	switch {
	case fk.Table() == "":
		return ErrEmptyForeignTable
	case fk.Column() == "":
		return ErrEmptyForeignColumn
	}
	return nil
}

func generateds(illegal bool) []Generated {
	exprs := []string{"1 + 1"}
	if illegal {
		exprs = append(exprs, "")
	}
	var out []Generated
	for _, expr := range exprs {
		out = append(out, NewGenerated(expr))
		for _, m := range Generations() {
			out = append(out, NewGenerated(expr).WithMode(m))
		}
	}
	return out
}

// columns combines every affinity with representative samples of each clause.
func columns(illegal bool) []Column {
	names := []string{"c"}
	if illegal {
		names = append(names, "")
	}
	pks := []*PrimaryKey{
		nil,
		{},
		ptr(NewPrimaryKey(Ascending, Replace, true)),
		ptr(NewPrimaryKey(Descending, Rollback, true)),
		ptr(NewPrimaryKey(Descending, Fail, false)),
	}
	uniques := []*Unique{nil, ptr(NewUnique(Ignore))}
	fks := []*ForeignKey{
		nil,
		ptr(NewForeignKey("parent", "id")),
		ptr(NewForeignKey("parent", "id").WithOnDelete(Cascade).WithOnUpdate(SetNull).WithDeferrable(true)),
	}
	notNulls := []*NotNull{nil, ptr(NewNotNull(Fail))}
	gens := []*Generated{nil, ptr(NewGenerated("1 + 1")), ptr(NewGenerated("2 * 3").WithMode(Stored))}

	var out []Column
	for _, name := range names {
		for _, typ := range Affinities() {
			for _, pk := range pks {
				for _, u := range uniques {
					for _, fk := range fks {
						for _, nn := range notNulls {
							for _, g := range gens {
								c := NewColumn(name, typ)
								if pk != nil {
									c = c.WithPrimaryKey(*pk)
								}
								if u != nil {
									c = c.WithUnique(*u)
								}
								if fk != nil {
									c = c.WithForeignKey(*fk)
								}
								if nn != nil {
									c = c.WithNotNull(*nn)
								}
								if g != nil {
									c = c.WithGenerated(*g)
								}
								if !illegal && columnErr(c) != nil {
									continue
								}
								out = append(out, c)
							}
						}
					}
				}
			}
		}
	}
	return out
}

func columnErr(c Column) error {
	pk, hasPK := c.PrimaryKey()
	switch {
	case c.Name() == "":
		return ErrEmptyColumnName
	case hasPK && c.fk != nil:
		return ErrPrimaryKeyAndForeignKey
	case hasPK && c.unique != nil:
		return ErrPrimaryKeyAndUnique
	case hasPK && c.generated != nil:
		return ErrPrimaryKeyAndGenerated
	case hasPK && pk.Autoincrement() && (c.Type() != Integer || pk.Order() != Ascending):
		return ErrAutoincrementNotInteger
	}
	return nil
}

type tableShape struct {
	name    string
	columns []Column
	err     func(withoutRowid, strict bool) error
}

func noErr(bool, bool) error { return nil }

func tableShapes(illegal bool) []tableShape {
	id := NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{})
	shapes := []tableShape{
		{name: "single pk", columns: []Column{id}, err: noErr},
		{
			name:    "pk and payload",
			columns: []Column{id, NewColumn("body", Text).WithNotNull(NotNull{}), NewColumn("data", Blob)},
			err:     noErr,
		},
		{
			name:    "desc text pk",
			columns: []Column{NewColumn("code", Text).WithPrimaryKey(NewPrimaryKey(Descending, Replace, false)), NewColumn("weight", Real)},
			err:     noErr,
		},
		{
			name: "no pk",
			columns: []Column{
				NewColumn("a", Blob),
				NewColumn("b", Text).WithUnique(Unique{}),
				NewColumn("c", Integer).WithForeignKey(NewForeignKey("parent", "id")),
			},
			err: func(withoutRowid, _ bool) error {
				if withoutRowid {
					return ErrWithoutRowidNoPrimaryKey
				}
				return nil
			},
		},
		{
			name: "autoincrement",
			columns: []Column{
				NewColumn("id", Integer).WithPrimaryKey(NewPrimaryKey(Ascending, Abort, true)),
				NewColumn("x", Real),
			},
			err: func(withoutRowid, _ bool) error {
				if withoutRowid {
					return ErrWithoutRowidAutoincrement
				}
				return nil
			},
		},
		{
			name:    "generated",
			columns: []Column{id, NewColumn("n", Integer), NewColumn("twice", Integer).WithGenerated(NewGenerated("n * 2").WithMode(Stored))},
			err:     noErr,
		},
	}
	if !illegal {
		return shapes
	}
	return append(shapes,
		tableShape{
			name:    "no columns",
			columns: nil,
			err:     func(bool, bool) error { return ErrNoColumns },
		},
		tableShape{
			name:    "two pks",
			columns: []Column{id, NewColumn("other", Integer).WithPrimaryKey(PrimaryKey{})},
			err:     func(bool, bool) error { return ErrMultiplePrimaryKeys },
		},
		tableShape{
			name:    "numeric",
			columns: []Column{id, NewColumn("amount", Numeric)},
			err: func(_, strict bool) error {
				if strict {
					return ErrStrictAffinity
				}
				return nil
			},
		},
		tableShape{
			name:    "only generated",
			columns: []Column{NewColumn("g", Integer).WithGenerated(NewGenerated("1"))},
			err: func(withoutRowid, _ bool) error {
				if withoutRowid {
					return ErrWithoutRowidNoPrimaryKey
				}
				return ErrAllColumnsGenerated
			},
		},
		tableShape{
			name:    "duplicate column",
			columns: []Column{id, NewColumn("ID", Text)},
			err:     func(bool, bool) error { return ErrDuplicateColumnName },
		},
		tableShape{
			name:    "invalid column",
			columns: []Column{id, NewColumn("", Text)},
			err:     func(bool, bool) error { return ErrEmptyColumnName },
		},
	)
}

type tableCase struct {
	table Table
	err   error
}

func tables(illegal bool) []tableCase {
	names := []string{"t"}
	if illegal {
		names = append(names, "")
	}
	var out []tableCase
	for _, shape := range tableShapes(illegal) {
		for _, name := range names {
			for _, withoutRowid := range []bool{false, true} {
				for _, strict := range []bool{false, true} {
					tbl := NewTable(name, shape.columns...).WithWithoutRowid(withoutRowid).WithStrict(strict)
					err := tableErr(tbl, shape.err(withoutRowid, strict))
					if !illegal && err != nil {
						continue
					}
					out = append(out, tableCase{table: tbl, err: err})
				}
			}
		}
	}
	return out
}

// tableErr applies the precedence that puts the primary key scan first,
// then the name, then the shape specific error.
func tableErr(t Table, shapeErr error) error {
	if shapeErr == ErrMultiplePrimaryKeys {
		return shapeErr
	}
	if t.Name() == "" {
		return ErrEmptyTableName
	}
	return shapeErr
}

func views(illegal bool) []View {
	names := []string{"v"}
	bodies := []string{"SELECT 1 AS one, 2 AS two"}
	if illegal {
		names = append(names, "")
		bodies = append(bodies, "")
	}
	lists := [][]ViewColumn{
		{NewViewColumn("a"), NewViewColumn("b")},
	}
	var out []View
	for _, name := range names {
		for _, body := range bodies {
			for _, temporary := range []bool{false, true} {
				v := NewView(name, body).WithTemporary(temporary)
				out = append(out, v)
				for _, cols := range lists {
					out = append(out, v.WithColumns(cols...))
				}
				if illegal {
					out = append(out, v.WithColumns(), v.WithColumns(NewViewColumn("a"), NewViewColumn("")))
				}
			}
		}
	}
	return out
}

func viewErr(v View) error {
	cols, declared := v.Columns()
	switch {
	case v.Name() == "":
		return ErrEmptyViewName
	case v.Select() == "":
		return ErrEmptySelect
	case declared && len(cols) == 0:
		return ErrEmptyViewColumns
	}
	for _, c := range cols {
		if c.Name() == "" {
			return ErrEmptyViewColumnName
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
