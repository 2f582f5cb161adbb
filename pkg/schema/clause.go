package schema

import "strings"

// Part is a fragment of a SQL statement whose rendered length is known
// before it is written.
//
// Len validates the part and returns the exact number of bytes Write will
// append. Write validates the same way and appends the text. For an invalid
// part both return the same error and Write appends nothing.
type Part interface {
	Len() (int, error)
	Write(sb *strings.Builder) error
}

var (
	_ Part = PrimaryKey{}
	_ Part = NotNull{}
	_ Part = Unique{}
	_ Part = ForeignKey{}
	_ Part = Generated{}
	_ Part = Column{}
	_ Part = Table{}
	_ Part = View{}
)

// PrimaryKey marks a column as the primary key of its table.
// A table may have at most one (ErrMultiplePrimaryKeys).
type PrimaryKey struct {
	order         Order
	onConflict    OnConflict
	autoincrement bool
}

// NewPrimaryKey returns a primary key with the given settings.
// The zero PrimaryKey is ascending, ON CONFLICT ABORT, without autoincrement.
func NewPrimaryKey(order Order, onConflict OnConflict, autoincrement bool) PrimaryKey {
	return PrimaryKey{order: order, onConflict: onConflict, autoincrement: autoincrement}
}

func (pk PrimaryKey) Order() Order           { return pk.order }
func (pk PrimaryKey) OnConflict() OnConflict { return pk.onConflict }
func (pk PrimaryKey) Autoincrement() bool    { return pk.autoincrement }

func (pk PrimaryKey) WithOrder(o Order) PrimaryKey {
	pk.order = o
	return pk
}

func (pk PrimaryKey) WithOnConflict(c OnConflict) PrimaryKey {
	pk.onConflict = c
	return pk
}

func (pk PrimaryKey) WithAutoincrement(on bool) PrimaryKey {
	pk.autoincrement = on
	return pk
}

func (pk PrimaryKey) check() error {
	if err := checkVariant("order", int(pk.order), pk.order.Valid()); err != nil {
		return err
	}
	return checkVariant("on_conflict", int(pk.onConflict), pk.onConflict.Valid())
}

// "PRIMARY KEY " + order + " " + conflict [+ " AUTOINCREMENT"]
func (pk PrimaryKey) length() int {
	n := 12 + pk.order.Len() + 1 + pk.onConflict.Len()
	if pk.autoincrement {
		n += 14
	}
	return n
}

func (pk PrimaryKey) write(sb *strings.Builder) {
	sb.WriteString("PRIMARY KEY ")
	pk.order.write(sb)
	sb.WriteByte(' ')
	pk.onConflict.write(sb)
	if pk.autoincrement {
		sb.WriteString(" AUTOINCREMENT")
	}
}

func (pk PrimaryKey) Len() (int, error) {
	if err := pk.check(); err != nil {
		return 0, err
	}
	return pk.length(), nil
}

func (pk PrimaryKey) Write(sb *strings.Builder) error {
	if err := pk.check(); err != nil {
		return err
	}
	pk.write(sb)
	return nil
}

// NotNull forbids NULL values in a column.
type NotNull struct {
	onConflict OnConflict
}

func NewNotNull(onConflict OnConflict) NotNull { return NotNull{onConflict: onConflict} }

func (nn NotNull) OnConflict() OnConflict { return nn.onConflict }

func (nn NotNull) WithOnConflict(c OnConflict) NotNull {
	nn.onConflict = c
	return nn
}

func (nn NotNull) check() error {
	return checkVariant("on_conflict", int(nn.onConflict), nn.onConflict.Valid())
}

func (nn NotNull) length() int { return 9 + nn.onConflict.Len() }

func (nn NotNull) write(sb *strings.Builder) {
	sb.WriteString("NOT NULL ")
	nn.onConflict.write(sb)
}

func (nn NotNull) Len() (int, error) {
	if err := nn.check(); err != nil {
		return 0, err
	}
	return nn.length(), nil
}

func (nn NotNull) Write(sb *strings.Builder) error {
	if err := nn.check(); err != nil {
		return err
	}
	nn.write(sb)
	return nil
}

// Unique forbids duplicate values in a column.
type Unique struct {
	onConflict OnConflict
}

func NewUnique(onConflict OnConflict) Unique { return Unique{onConflict: onConflict} }

func (u Unique) OnConflict() OnConflict { return u.onConflict }

func (u Unique) WithOnConflict(c OnConflict) Unique {
	u.onConflict = c
	return u
}

func (u Unique) check() error {
	return checkVariant("on_conflict", int(u.onConflict), u.onConflict.Valid())
}

func (u Unique) length() int { return 7 + u.onConflict.Len() }

func (u Unique) write(sb *strings.Builder) {
	sb.WriteString("UNIQUE ")
	u.onConflict.write(sb)
}

func (u Unique) Len() (int, error) {
	if err := u.check(); err != nil {
		return 0, err
	}
	return u.length(), nil
}

func (u Unique) Write(sb *strings.Builder) error {
	if err := u.check(); err != nil {
		return err
	}
	u.write(sb)
	return nil
}

// ForeignKey references a column of another table.
// Both the table and the column name must be set.
type ForeignKey struct {
	table      string
	column     string
	onDelete   *Action
	onUpdate   *Action
	deferrable bool
}

// NewForeignKey returns a reference to table(column) without actions.
func NewForeignKey(table, column string) ForeignKey {
	return ForeignKey{table: table, column: column}
}

func (fk ForeignKey) Table() string    { return fk.table }
func (fk ForeignKey) Column() string   { return fk.column }
func (fk ForeignKey) Deferrable() bool { return fk.deferrable }

// OnDelete returns the ON DELETE action and whether one is set.
func (fk ForeignKey) OnDelete() (Action, bool) {
	if fk.onDelete == nil {
		return 0, false
	}
	return *fk.onDelete, true
}

// OnUpdate returns the ON UPDATE action and whether one is set.
func (fk ForeignKey) OnUpdate() (Action, bool) {
	if fk.onUpdate == nil {
		return 0, false
	}
	return *fk.onUpdate, true
}

func (fk ForeignKey) WithTable(table string) ForeignKey {
	fk.table = table
	return fk
}

func (fk ForeignKey) WithColumn(column string) ForeignKey {
	fk.column = column
	return fk
}

func (fk ForeignKey) WithOnDelete(a Action) ForeignKey {
	fk.onDelete = &a
	return fk
}

func (fk ForeignKey) WithoutOnDelete() ForeignKey {
	fk.onDelete = nil
	return fk
}

func (fk ForeignKey) WithOnUpdate(a Action) ForeignKey {
	fk.onUpdate = &a
	return fk
}

func (fk ForeignKey) WithoutOnUpdate() ForeignKey {
	fk.onUpdate = nil
	return fk
}

func (fk ForeignKey) WithDeferrable(on bool) ForeignKey {
	fk.deferrable = on
	return fk
}

func (fk ForeignKey) check() error {
	if fk.table == "" {
		return ErrEmptyForeignTable
	}
	if fk.column == "" {
		return ErrEmptyForeignColumn
	}
	if fk.onDelete != nil {
		if err := checkVariant("on_delete", int(*fk.onDelete), fk.onDelete.Valid()); err != nil {
			return err
		}
	}
	if fk.onUpdate != nil {
		if err := checkVariant("on_update", int(*fk.onUpdate), fk.onUpdate.Valid()); err != nil {
			return err
		}
	}
	return nil
}

func (fk ForeignKey) length() int {
	// "REFERENCES " + table + " (" + column + ")"
	n := 11 + len(fk.table) + 2 + len(fk.column) + 1
	if fk.onDelete != nil {
		n += 11 + fk.onDelete.Len() // " ON DELETE "
	}
	if fk.onUpdate != nil {
		n += 11 + fk.onUpdate.Len() // " ON UPDATE "
	}
	if fk.deferrable {
		n += 30 // " DEFERRABLE INITIALLY DEFERRED"
	}
	return n
}

func (fk ForeignKey) write(sb *strings.Builder) {
	sb.WriteString("REFERENCES ")
	sb.WriteString(fk.table)
	sb.WriteString(" (")
	sb.WriteString(fk.column)
	sb.WriteByte(')')
	if fk.onDelete != nil {
		sb.WriteString(" ON DELETE ")
		fk.onDelete.write(sb)
	}
	if fk.onUpdate != nil {
		sb.WriteString(" ON UPDATE ")
		fk.onUpdate.write(sb)
	}
	if fk.deferrable {
		sb.WriteString(" DEFERRABLE INITIALLY DEFERRED")
	}
}

func (fk ForeignKey) Len() (int, error) {
	if err := fk.check(); err != nil {
		return 0, err
	}
	return fk.length(), nil
}

func (fk ForeignKey) Write(sb *strings.Builder) error {
	if err := fk.check(); err != nil {
		return err
	}
	fk.write(sb)
	return nil
}

// Generated makes a column computed from an expression over other columns
// of the same row. The expression is copied verbatim and never parsed.
type Generated struct {
	expr string
	mode *Generation
}

func NewGenerated(expr string) Generated { return Generated{expr: expr} }

func (g Generated) Expression() string { return g.expr }

// Mode returns the materialization mode and whether it is spelled out.
// When it is not, SQLite uses VIRTUAL.
func (g Generated) Mode() (Generation, bool) {
	if g.mode == nil {
		return Virtual, false
	}
	return *g.mode, true
}

func (g Generated) WithExpression(expr string) Generated {
	g.expr = expr
	return g
}

func (g Generated) WithMode(m Generation) Generated {
	g.mode = &m
	return g
}

func (g Generated) WithoutMode() Generated {
	g.mode = nil
	return g
}

func (g Generated) check() error {
	if g.expr == "" {
		return ErrEmptyExpression
	}
	if g.mode != nil {
		return checkVariant("generation", int(*g.mode), g.mode.Valid())
	}
	return nil
}

func (g Generated) length() int {
	// "GENERATED ALWAYS AS (" + expr + ")"
	n := 21 + len(g.expr) + 1
	if g.mode != nil {
		n += 1 + g.mode.Len()
	}
	return n
}

func (g Generated) write(sb *strings.Builder) {
	sb.WriteString("GENERATED ALWAYS AS (")
	sb.WriteString(g.expr)
	sb.WriteByte(')')
	if g.mode != nil {
		sb.WriteByte(' ')
		g.mode.write(sb)
	}
}

func (g Generated) Len() (int, error) {
	if err := g.check(); err != nil {
		return 0, err
	}
	return g.length(), nil
}

func (g Generated) Write(sb *strings.Builder) error {
	if err := g.check(); err != nil {
		return err
	}
	g.write(sb)
	return nil
}
