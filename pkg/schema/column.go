package schema

import "strings"

// Column is a single column definition of a Table.
//
// Constraint clauses are rendered in a fixed order: primary key, unique,
// foreign key, not null, generated.
type Column struct {
	name      string
	typ       Affinity
	pk        *PrimaryKey
	unique    *Unique
	fk        *ForeignKey
	notNull   *NotNull
	generated *Generated
}

// NewColumn returns a column without constraints.
func NewColumn(name string, typ Affinity) Column {
	return Column{name: name, typ: typ}
}

func (c Column) Name() string   { return c.name }
func (c Column) Type() Affinity { return c.typ }

func (c Column) PrimaryKey() (PrimaryKey, bool) {
	if c.pk == nil {
		return PrimaryKey{}, false
	}
	return *c.pk, true
}

func (c Column) Unique() (Unique, bool) {
	if c.unique == nil {
		return Unique{}, false
	}
	return *c.unique, true
}

func (c Column) ForeignKey() (ForeignKey, bool) {
	if c.fk == nil {
		return ForeignKey{}, false
	}
	return *c.fk, true
}

func (c Column) NotNull() (NotNull, bool) {
	if c.notNull == nil {
		return NotNull{}, false
	}
	return *c.notNull, true
}

func (c Column) Generated() (Generated, bool) {
	if c.generated == nil {
		return Generated{}, false
	}
	return *c.generated, true
}

func (c Column) IsPrimaryKey() bool { return c.pk != nil }
func (c Column) IsGenerated() bool  { return c.generated != nil }

func (c Column) WithName(name string) Column {
	c.name = name
	return c
}

func (c Column) WithType(typ Affinity) Column {
	c.typ = typ
	return c
}

func (c Column) WithPrimaryKey(pk PrimaryKey) Column {
	c.pk = &pk
	return c
}

func (c Column) WithoutPrimaryKey() Column {
	c.pk = nil
	return c
}

func (c Column) WithUnique(u Unique) Column {
	c.unique = &u
	return c
}

func (c Column) WithoutUnique() Column {
	c.unique = nil
	return c
}

func (c Column) WithForeignKey(fk ForeignKey) Column {
	c.fk = &fk
	return c
}

func (c Column) WithoutForeignKey() Column {
	c.fk = nil
	return c
}

func (c Column) WithNotNull(nn NotNull) Column {
	c.notNull = &nn
	return c
}

func (c Column) WithoutNotNull() Column {
	c.notNull = nil
	return c
}

func (c Column) WithGenerated(g Generated) Column {
	c.generated = &g
	return c
}

func (c Column) WithoutGenerated() Column {
	c.generated = nil
	return c
}

func (c Column) check() error {
	if c.name == "" {
		return ErrEmptyColumnName
	}
	if c.pk != nil && c.fk != nil {
		return ErrPrimaryKeyAndForeignKey
	}
	if c.pk != nil && c.unique != nil {
		return ErrPrimaryKeyAndUnique
	}
	if c.pk != nil && c.generated != nil {
		return ErrPrimaryKeyAndGenerated
	}
	if c.pk != nil && c.pk.autoincrement && (c.typ != Integer || c.pk.order != Ascending) {
		return ErrAutoincrementNotInteger
	}
	if err := checkVariant("affinity", int(c.typ), c.typ.Valid()); err != nil {
		return err
	}
	if c.pk != nil {
		if err := c.pk.check(); err != nil {
			return err
		}
	}
	if c.unique != nil {
		if err := c.unique.check(); err != nil {
			return err
		}
	}
	if c.fk != nil {
		if err := c.fk.check(); err != nil {
			return err
		}
	}
	if c.notNull != nil {
		if err := c.notNull.check(); err != nil {
			return err
		}
	}
	if c.generated != nil {
		if err := c.generated.check(); err != nil {
			return err
		}
	}
	return nil
}

// length assumes check passed. Every present clause adds one separating space.
func (c Column) length() int {
	n := len(c.name) + 1 + c.typ.Len()
	if c.pk != nil {
		n += 1 + c.pk.length()
	}
	if c.unique != nil {
		n += 1 + c.unique.length()
	}
	if c.fk != nil {
		n += 1 + c.fk.length()
	}
	if c.notNull != nil {
		n += 1 + c.notNull.length()
	}
	if c.generated != nil {
		n += 1 + c.generated.length()
	}
	return n
}

func (c Column) write(sb *strings.Builder) {
	sb.WriteString(c.name)
	sb.WriteByte(' ')
	c.typ.write(sb)
	if c.pk != nil {
		sb.WriteByte(' ')
		c.pk.write(sb)
	}
	if c.unique != nil {
		sb.WriteByte(' ')
		c.unique.write(sb)
	}
	if c.fk != nil {
		sb.WriteByte(' ')
		c.fk.write(sb)
	}
	if c.notNull != nil {
		sb.WriteByte(' ')
		c.notNull.write(sb)
	}
	if c.generated != nil {
		sb.WriteByte(' ')
		c.generated.write(sb)
	}
}

func (c Column) Len() (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	return c.length(), nil
}

func (c Column) Write(sb *strings.Builder) error {
	if err := c.check(); err != nil {
		return err
	}
	c.write(sb)
	return nil
}
