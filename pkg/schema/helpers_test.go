package schema

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// assertPart renders p and checks the text has exactly the announced length.
func assertPart(t *testing.T, p Part) string {
	t.Helper()
	n, err := p.Len()
	require.NoError(t, err)

	var sb strings.Builder
	sb.Grow(n)
	require.NoError(t, p.Write(&sb))
	require.Equal(t, n, sb.Len(), "rendered %q", sb.String())
	return sb.String()
}

// assertInvalid checks Len and Write fail with the same error and that
// Write leaves the buffer untouched.
func assertInvalid(t *testing.T, p Part, want error) {
	t.Helper()
	_, lenErr := p.Len()
	require.ErrorIs(t, lenErr, want)

	var sb strings.Builder
	sb.WriteString("prefix")
	writeErr := p.Write(&sb)
	require.ErrorIs(t, writeErr, want)
	require.Equal(t, lenErr.Error(), writeErr.Error())
	require.Equal(t, "prefix", sb.String())
}

// assertStatement builds stmt under every option combination, checks the
// length and returns the plain rendering.
func assertStatement(t *testing.T, stmt Statement) string {
	t.Helper()
	var plain string
	for _, opts := range allOptions() {
		n, err := Len(stmt, opts)
		require.NoError(t, err)
		sql, err := Build(stmt, opts)
		require.NoError(t, err)
		require.Len(t, sql, n, "opts %+v rendered %q", opts, sql)
		if opts == (Options{}) {
			plain = sql
		}
	}
	return plain
}

func assertInvalidStatement(t *testing.T, stmt Statement, want error) {
	t.Helper()
	for _, opts := range allOptions() {
		_, lenErr := Len(stmt, opts)
		require.ErrorIs(t, lenErr, want)

		var sb strings.Builder
		writeErr := Write(&sb, stmt, opts)
		require.ErrorIs(t, writeErr, want)
		require.Equal(t, lenErr.Error(), writeErr.Error())
		require.Zero(t, sb.Len(), "partial write %q", sb.String())

		_, err := Build(stmt, opts)
		require.ErrorIs(t, err, want)
	}
}

func allOptions() []Options {
	return []Options{
		{},
		{Transaction: true},
		{IfNotExists: true},
		{Transaction: true, IfNotExists: true},
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection gets its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustExec(t *testing.T, db *sql.DB, script string) {
	t.Helper()
	_, err := db.Exec(script)
	require.NoError(t, err, "SQL: %s", script)
}
