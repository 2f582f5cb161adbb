package schema

import "errors"

// Errors returned by Len and Write when an element is misconfigured.
// Both operations return the same error for the same configuration.
var (
	ErrInvalidVariant = errors.New("schema: invalid vocabulary variant")

	ErrEmptyForeignTable  = errors.New("schema: foreign table name cannot be empty")
	ErrEmptyForeignColumn = errors.New("schema: foreign column name cannot be empty")
	ErrEmptyExpression    = errors.New("schema: generated column expression cannot be empty")

	ErrEmptyColumnName         = errors.New("schema: column name cannot be empty")
	ErrPrimaryKeyAndForeignKey = errors.New("schema: column cannot be a primary key and a foreign key at the same time")
	ErrPrimaryKeyAndUnique     = errors.New("schema: primary key implies unique")
	ErrPrimaryKeyAndGenerated  = errors.New("schema: generated column cannot be a primary key")
	ErrAutoincrementNotInteger = errors.New("schema: autoincrement requires an ascending INTEGER primary key")

	ErrEmptyTableName            = errors.New("schema: table name cannot be empty")
	ErrNoColumns                 = errors.New("schema: table must have columns")
	ErrMultiplePrimaryKeys       = errors.New("schema: table can only have one primary key")
	ErrWithoutRowidNoPrimaryKey  = errors.New("schema: tables without rowid must have one primary key")
	ErrWithoutRowidAutoincrement = errors.New("schema: tables without rowid cannot use autoincrement")
	ErrStrictAffinity            = errors.New("schema: strict tables do not accept NUMERIC columns")
	ErrAllColumnsGenerated       = errors.New("schema: table must have at least one non-generated column")
	ErrDuplicateColumnName       = errors.New("schema: duplicate column name")

	ErrEmptyViewName       = errors.New("schema: view name cannot be empty")
	ErrEmptySelect         = errors.New("schema: view select statement cannot be empty")
	ErrEmptyViewColumns    = errors.New("schema: declared view column list cannot be empty")
	ErrEmptyViewColumnName = errors.New("schema: view column name cannot be empty")

	ErrSchemaWithoutTables = errors.New("schema: schema must contain tables")
	ErrDuplicateName       = errors.New("schema: duplicate table or view name")
)
