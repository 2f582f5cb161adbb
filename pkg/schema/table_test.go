package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDefaultPrimaryKey(t *testing.T) {
	tbl := NewTable("t", NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{}))

	const want = "CREATE TABLE t (id INTEGER PRIMARY KEY ASC ON CONFLICT ABORT);"
	got, err := Build(tbl, Options{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := Len(tbl, Options{})
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
}

func TestTablePossibilities(t *testing.T) {
	for i, tc := range tables(true) {
		t.Run(fmt.Sprintf("%d_%s", i, tc.table.Name()), func(t *testing.T) {
			if tc.err != nil {
				assertInvalid(t, tc.table, tc.err)
				assertInvalidStatement(t, tc.table, tc.err)
				return
			}
			assertPart(t, tc.table)
			assertStatement(t, tc.table)
		})
	}
}

func TestTableLegalPossibilitiesExecute(t *testing.T) {
	cases := tables(false)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		require.NoError(t, tc.err)
		for _, opts := range allOptions() {
			db := newTestDB(t)
			sql, err := Build(tc.table, opts)
			require.NoError(t, err)
			mustExec(t, db, sql)
			if opts.IfNotExists {
				// The guard makes the script idempotent.
				mustExec(t, db, sql)
			}
		}
	}
}

func TestTableRendering(t *testing.T) {
	id := NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{})
	name := NewColumn("name", Text).WithNotNull(NotNull{})

	tests := []struct {
		name  string
		table Table
		opts  Options
		want  string
	}{
		{
			name:  "columns are comma separated without spaces",
			table: NewTable("users", id, name),
			want:  "CREATE TABLE users (id INTEGER PRIMARY KEY ASC ON CONFLICT ABORT,name TEXT NOT NULL ON CONFLICT ABORT);",
		},
		{
			name:  "without rowid",
			table: NewTable("users", id).WithWithoutRowid(true),
			want:  "CREATE TABLE users (id INTEGER PRIMARY KEY ASC ON CONFLICT ABORT) WITHOUT ROWID;",
		},
		{
			name:  "strict",
			table: NewTable("users", name).WithStrict(true),
			want:  "CREATE TABLE users (name TEXT NOT NULL ON CONFLICT ABORT) STRICT;",
		},
		{
			name:  "without rowid and strict share a comma",
			table: NewTable("users", id).WithWithoutRowid(true).WithStrict(true),
			want:  "CREATE TABLE users (id INTEGER PRIMARY KEY ASC ON CONFLICT ABORT) WITHOUT ROWID, STRICT;",
		},
		{
			name:  "guard",
			table: NewTable("users", name),
			opts:  Options{IfNotExists: true},
			want:  "CREATE TABLE IF NOT EXISTS users (name TEXT NOT NULL ON CONFLICT ABORT);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.table, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableNoColumns(t *testing.T) {
	for _, withoutRowid := range []bool{false, true} {
		for _, strict := range []bool{false, true} {
			tbl := NewTable("t").WithWithoutRowid(withoutRowid).WithStrict(strict)
			assertInvalid(t, tbl, ErrNoColumns)
			assertInvalidStatement(t, tbl, ErrNoColumns)
		}
	}
}

func TestTableWithoutRowidNeedsPrimaryKey(t *testing.T) {
	tbl := NewTable("t", NewColumn("a", Text), NewColumn("b", Integer)).WithWithoutRowid(true)
	assertInvalid(t, tbl, ErrWithoutRowidNoPrimaryKey)
	assertInvalidStatement(t, tbl, ErrWithoutRowidNoPrimaryKey)

	// Adding the key fixes it.
	tbl = tbl.WithColumns(NewColumn("a", Text).WithPrimaryKey(PrimaryKey{}), NewColumn("b", Integer))
	assertStatement(t, tbl)
}

func TestTableValidationPrecedence(t *testing.T) {
	pk := NewColumn("a", Integer).WithPrimaryKey(PrimaryKey{})
	pk2 := NewColumn("b", Integer).WithPrimaryKey(PrimaryKey{})

	tests := []struct {
		name  string
		table Table
		want  error
	}{
		{"multiple pks before empty name", NewTable("", pk, pk2), ErrMultiplePrimaryKeys},
		{"empty name before no columns", NewTable(""), ErrEmptyTableName},
		{"no columns before without rowid", NewTable("t").WithWithoutRowid(true), ErrNoColumns},
		{"without rowid before column errors", NewTable("t", NewColumn("", Text)).WithWithoutRowid(true), ErrWithoutRowidNoPrimaryKey},
		{"column errors", NewTable("t", NewColumn("", Text)), ErrEmptyColumnName},
		{"duplicate names ignore case", NewTable("t", NewColumn("a", Text), NewColumn("A", Text)), ErrDuplicateColumnName},
		{"strict numeric", NewTable("t", NewColumn("a", Numeric)).WithStrict(true), ErrStrictAffinity},
		{"all generated", NewTable("t", NewColumn("a", Integer).WithGenerated(NewGenerated("1"))), ErrAllColumnsGenerated},
		{
			"without rowid autoincrement",
			NewTable("t", NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{}.WithAutoincrement(true))).WithWithoutRowid(true),
			ErrWithoutRowidAutoincrement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertInvalid(t, tt.table, tt.want)
			assertInvalidStatement(t, tt.table, tt.want)
		})
	}
}

func TestTableColumnNames(t *testing.T) {
	table := NewTable("users",
		NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{}),
		NewColumn("name", Text),
		NewColumn("email", Text),
	)

	names := table.ColumnNames()
	require.Len(t, names, 3)
	assert.Equal(t, []string{"id", "name", "email"}, names)
	assert.Equal(t, 3, table.NumColumns())
}

func TestTableHasColumn(t *testing.T) {
	table := NewTable("users", NewColumn("id", Integer), NewColumn("name", Text))

	assert.True(t, table.HasColumn("id"))
	assert.True(t, table.HasColumn("name"))
	assert.False(t, table.HasColumn("email"))
	assert.False(t, table.HasColumn(""))
}

func TestTableColumn(t *testing.T) {
	table := NewTable("users", NewColumn("id", Integer).WithPrimaryKey(PrimaryKey{}))

	id, ok := table.Column("id")
	require.True(t, ok)
	assert.Equal(t, "id", id.Name())
	assert.True(t, id.IsPrimaryKey())

	_, ok = table.Column("")
	assert.False(t, ok)

	pk, ok := table.PrimaryKeyColumn()
	require.True(t, ok)
	assert.Equal(t, "id", pk.Name())
}

func TestTableImmutable(t *testing.T) {
	base := NewTable("t", NewColumn("a", Text))
	grown := base.AddColumn(NewColumn("b", Text))
	other := base.AddColumn(NewColumn("c", Text))

	assert.Equal(t, []string{"a"}, base.ColumnNames())
	assert.Equal(t, []string{"a", "b"}, grown.ColumnNames())
	assert.Equal(t, []string{"a", "c"}, other.ColumnNames())

	cols := grown.Columns()
	cols[0] = NewColumn("mutated", Blob)
	assert.Equal(t, "a", grown.ColumnNames()[0])

	flagged := base.WithStrict(true).WithWithoutRowid(true)
	assert.False(t, base.Strict())
	assert.True(t, flagged.Strict())
	assert.True(t, flagged.WithoutRowid())
}

func TestTableNonASCIINamesAreDistinct(t *testing.T) {
	// SQLite folds case for ASCII letters only.
	tbl := NewTable("t", NewColumn("É", Text), NewColumn("é", Text))

	sql := assertStatement(t, tbl)
	mustExec(t, newTestDB(t), sql)

	assertInvalid(t, NewTable("t", NewColumn("Éa", Text), NewColumn("ÉA", Text)), ErrDuplicateColumnName)
}
