package schema

import (
	"fmt"
	"strings"
)

// Affinity is the declared storage class of a column.
// The zero value is BLOB, the affinity SQLite assigns to a column without a type.
type Affinity int

const (
	Blob Affinity = iota
	Numeric
	Integer
	Real
	Text
)

var affinityKeywords = [...]string{
	Blob:    "BLOB",
	Numeric: "NUMERIC",
	Integer: "INTEGER",
	Real:    "REAL",
	Text:    "TEXT",
}

var affinityNames = [...]string{
	Blob:    "blob",
	Numeric: "numeric",
	Integer: "integer",
	Real:    "real",
	Text:    "text",
}

// Affinities returns every affinity in declaration order.
func Affinities() []Affinity {
	return []Affinity{Blob, Numeric, Integer, Real, Text}
}

// Valid reports whether a is one of the declared Affinity values.
func (a Affinity) Valid() bool { return a >= 0 && int(a) < len(affinityKeywords) }

// String returns the SQL keyword.
func (a Affinity) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Affinity(%d)", int(a))
	}
	return affinityKeywords[a]
}

// Len returns the length of the SQL keyword, or 0 for an invalid value.
func (a Affinity) Len() int {
	if !a.Valid() {
		return 0
	}
	return len(affinityKeywords[a])
}

// Name returns the identifier used in layout documents, or "" for an
// invalid value.
func (a Affinity) Name() string {
	if !a.Valid() {
		return ""
	}
	return affinityNames[a]
}

func (a Affinity) write(sb *strings.Builder) { sb.WriteString(affinityKeywords[a]) }

// ParseAffinity returns the affinity with the given document name.
func ParseAffinity(name string) (Affinity, error) {
	for i, n := range affinityNames {
		if n == name {
			return Affinity(i), nil
		}
	}
	return 0, fmt.Errorf("%w: affinity %q", ErrInvalidVariant, name)
}

// Order is the sort direction of a primary key.
type Order int

const (
	Ascending Order = iota
	Descending
)

var orderKeywords = [...]string{
	Ascending:  "ASC",
	Descending: "DESC",
}

var orderNames = [...]string{
	Ascending:  "ascending",
	Descending: "descending",
}

// Orders returns both sort directions.
func Orders() []Order { return []Order{Ascending, Descending} }

// Valid reports whether o is one of the declared Order values.
func (o Order) Valid() bool { return o >= 0 && int(o) < len(orderKeywords) }

// String returns the SQL keyword.
func (o Order) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Order(%d)", int(o))
	}
	return orderKeywords[o]
}

// Len returns the length of the SQL keyword, or 0 for an invalid value.
func (o Order) Len() int {
	if !o.Valid() {
		return 0
	}
	return len(orderKeywords[o])
}

// Name returns the identifier used in layout documents, or "" for an
// invalid value.
func (o Order) Name() string {
	if !o.Valid() {
		return ""
	}
	return orderNames[o]
}

func (o Order) write(sb *strings.Builder) { sb.WriteString(orderKeywords[o]) }

// ParseOrder returns the order with the given document name.
func ParseOrder(name string) (Order, error) {
	for i, n := range orderNames {
		if n == name {
			return Order(i), nil
		}
	}
	return 0, fmt.Errorf("%w: order %q", ErrInvalidVariant, name)
}

// OnConflict is the reaction to a violated PRIMARY KEY, NOT NULL or UNIQUE
// constraint. The zero value is ABORT, SQLite's default resolution.
// See https://www.sqlite.org/lang_conflict.html.
type OnConflict int

const (
	Abort OnConflict = iota
	Rollback
	Fail
	Ignore
	Replace
)

var onConflictKeywords = [...]string{
	Abort:    "ON CONFLICT ABORT",
	Rollback: "ON CONFLICT ROLLBACK",
	Fail:     "ON CONFLICT FAIL",
	Ignore:   "ON CONFLICT IGNORE",
	Replace:  "ON CONFLICT REPLACE",
}

var onConflictNames = [...]string{
	Abort:    "abort",
	Rollback: "rollback",
	Fail:     "fail",
	Ignore:   "ignore",
	Replace:  "replace",
}

// OnConflicts returns every conflict policy.
func OnConflicts() []OnConflict {
	return []OnConflict{Rollback, Abort, Fail, Ignore, Replace}
}

// Valid reports whether c is one of the declared OnConflict values.
func (c OnConflict) Valid() bool { return c >= 0 && int(c) < len(onConflictKeywords) }

// String returns the SQL keyword.
func (c OnConflict) String() string {
	if !c.Valid() {
		return fmt.Sprintf("OnConflict(%d)", int(c))
	}
	return onConflictKeywords[c]
}

// Len returns the length of the SQL keyword, or 0 for an invalid value.
func (c OnConflict) Len() int {
	if !c.Valid() {
		return 0
	}
	return len(onConflictKeywords[c])
}

// Name returns the identifier used in layout documents, or "" for an
// invalid value.
func (c OnConflict) Name() string {
	if !c.Valid() {
		return ""
	}
	return onConflictNames[c]
}

func (c OnConflict) write(sb *strings.Builder) { sb.WriteString(onConflictKeywords[c]) }

// ParseOnConflict returns the conflict policy with the given document name.
func ParseOnConflict(name string) (OnConflict, error) {
	for i, n := range onConflictNames {
		if n == name {
			return OnConflict(i), nil
		}
	}
	return 0, fmt.Errorf("%w: on_conflict %q", ErrInvalidVariant, name)
}

// Action is what a foreign key does when the parent key is deleted or updated.
// The zero value is NO ACTION.
// See https://www.sqlite.org/foreignkeys.html#fk_actions.
type Action int

const (
	NoAction Action = iota
	SetNull
	SetDefault
	Cascade
	Restrict
)

var actionKeywords = [...]string{
	NoAction:   "NO ACTION",
	SetNull:    "SET NULL",
	SetDefault: "SET DEFAULT",
	Cascade:    "CASCADE",
	Restrict:   "RESTRICT",
}

var actionNames = [...]string{
	NoAction:   "no_action",
	SetNull:    "set_null",
	SetDefault: "set_default",
	Cascade:    "cascade",
	Restrict:   "restrict",
}

// Actions returns every foreign key action.
func Actions() []Action {
	return []Action{SetNull, SetDefault, Cascade, Restrict, NoAction}
}

// Valid reports whether a is one of the declared Action values.
func (a Action) Valid() bool { return a >= 0 && int(a) < len(actionKeywords) }

// String returns the SQL keyword.
func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionKeywords[a]
}

// Len returns the length of the SQL keyword, or 0 for an invalid value.
func (a Action) Len() int {
	if !a.Valid() {
		return 0
	}
	return len(actionKeywords[a])
}

// Name returns the identifier used in layout documents, or "" for an
// invalid value.
func (a Action) Name() string {
	if !a.Valid() {
		return ""
	}
	return actionNames[a]
}

func (a Action) write(sb *strings.Builder) { sb.WriteString(actionKeywords[a]) }

// ParseAction returns the foreign key action with the given document name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: action %q", ErrInvalidVariant, name)
}

// Generation selects how a generated column is materialized.
// The zero value is VIRTUAL, SQLite's default.
type Generation int

const (
	Virtual Generation = iota
	Stored
)

var generationKeywords = [...]string{
	Virtual: "VIRTUAL",
	Stored:  "STORED",
}

var generationNames = [...]string{
	Virtual: "virtual",
	Stored:  "stored",
}

// Generations returns both materialization modes.
func Generations() []Generation { return []Generation{Virtual, Stored} }

// Valid reports whether g is one of the declared Generation values.
func (g Generation) Valid() bool { return g >= 0 && int(g) < len(generationKeywords) }

// String returns the SQL keyword.
func (g Generation) String() string {
	if !g.Valid() {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return generationKeywords[g]
}

// Len returns the length of the SQL keyword, or 0 for an invalid value.
func (g Generation) Len() int {
	if !g.Valid() {
		return 0
	}
	return len(generationKeywords[g])
}

// Name returns the identifier used in layout documents, or "" for an
// invalid value.
func (g Generation) Name() string {
	if !g.Valid() {
		return ""
	}
	return generationNames[g]
}

func (g Generation) write(sb *strings.Builder) { sb.WriteString(generationKeywords[g]) }

// ParseGeneration returns the mode with the given document name.
func ParseGeneration(name string) (Generation, error) {
	for i, n := range generationNames {
		if n == name {
			return Generation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: generation %q", ErrInvalidVariant, name)
}

// checkVariant reports an out-of-range value of a vocabulary type.
func checkVariant(kind string, value int, valid bool) error {
	if !valid {
		return fmt.Errorf("%w: %s %d", ErrInvalidVariant, kind, value)
	}
	return nil
}
