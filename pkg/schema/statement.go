package schema

import "strings"

const (
	beginTransaction = "BEGIN;\n"
	endTransaction   = "\nEND;"
)

// Statement is a top-level renderable entity: a Table, a View or a Schema.
//
// The existence guard is passed through rendering as an argument and never
// stored, so a Statement is an immutable value that may be rendered from
// several goroutines at once.
type Statement interface {
	statementLen(ifNotExists bool) (int, error)
	writeStatement(sb *strings.Builder, ifNotExists bool) error
}

var (
	_ Statement = Table{}
	_ Statement = View{}
	_ Statement = Schema{}
)

// Options controls how a Statement is rendered.
type Options struct {
	// Transaction wraps the statement in BEGIN; ... END;.
	Transaction bool
	// IfNotExists adds IF NOT EXISTS to every CREATE statement.
	IfNotExists bool
}

// Len returns the exact length of the text Write produces for stmt under opts.
// Any change to stmt or opts invalidates the result.
func Len(stmt Statement, opts Options) (int, error) {
	n, err := stmt.statementLen(opts.IfNotExists)
	if err != nil {
		return 0, err
	}
	if opts.Transaction {
		n += len(beginTransaction) + len(endTransaction)
	}
	return n, nil
}

// Write appends the rendered statement to sb. On error nothing is appended.
func Write(sb *strings.Builder, stmt Statement, opts Options) error {
	// Validate before the BEGIN marker goes out.
	if _, err := stmt.statementLen(opts.IfNotExists); err != nil {
		return err
	}
	if opts.Transaction {
		sb.WriteString(beginTransaction)
	}
	if err := stmt.writeStatement(sb, opts.IfNotExists); err != nil {
		return err
	}
	if opts.Transaction {
		sb.WriteString(endTransaction)
	}
	return nil
}

// Build renders stmt into a string allocated once with its exact length.
func Build(stmt Statement, opts Options) (string, error) {
	n, err := Len(stmt, opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(n)
	if err := Write(&sb, stmt, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// MustBuild is like Build but panics on error.
func MustBuild(stmt Statement, opts Options) string {
	sql, err := Build(stmt, opts)
	if err != nil {
		panic(err)
	}
	return sql
}
