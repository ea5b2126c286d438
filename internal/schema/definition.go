package schema

import (
	"golang.org/x/text/unicode/norm"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// Flag mirrors the MySQL column definition flag bits.
type Flag uint16

const (
	FlagNotNull       Flag = 1
	FlagPrimaryKey    Flag = 2
	FlagUnsigned      Flag = 32
	FlagZeroFill      Flag = 64
	FlagAutoIncrement Flag = 512
	FlagSet           Flag = 2048
)

// ColumnDefinition describes one column. Immutable once built.
type ColumnDefinition struct {
	Name          string        `json:"name"`
	Type          sqlvalue.Type `json:"type"`
	Length        int           `json:"length,omitempty"`
	NotNull       bool          `json:"not_null"`
	PrimaryKey    bool          `json:"primary_key"`
	Unsigned      bool          `json:"unsigned"`
	AutoIncrement bool          `json:"auto_increment"`
	ZeroFill      bool          `json:"zero_fill"`
}

// NewColumn builds a column definition from a declared type and flag bits.
// Unsigned and zero-fill are taken from either source; FlagSet forces TypeSet.
func NewColumn(name, declaredType string, flags Flag) ColumnDefinition {
	d := sqlvalue.ParseType(declaredType)
	col := ColumnDefinition{
		Name:          name,
		Type:          d.Type,
		Length:        d.Length,
		NotNull:       flags&FlagNotNull != 0,
		PrimaryKey:    flags&FlagPrimaryKey != 0,
		Unsigned:      d.Unsigned || flags&FlagUnsigned != 0,
		AutoIncrement: flags&FlagAutoIncrement != 0,
		ZeroFill:      d.ZeroFill || flags&FlagZeroFill != 0,
	}
	if flags&FlagSet != 0 {
		col.Type = sqlvalue.TypeSet
	}
	if col.Unsigned && col.Type == sqlvalue.TypeInt {
		col.Type = sqlvalue.TypeUnsignedInt
	}
	return col
}

// Flags returns the column's flag bits.
func (c ColumnDefinition) Flags() Flag {
	var f Flag
	if c.NotNull {
		f |= FlagNotNull
	}
	if c.PrimaryKey {
		f |= FlagPrimaryKey
	}
	if c.Unsigned {
		f |= FlagUnsigned
	}
	if c.ZeroFill {
		f |= FlagZeroFill
	}
	if c.AutoIncrement {
		f |= FlagAutoIncrement
	}
	if c.Type == sqlvalue.TypeSet {
		f |= FlagSet
	}
	return f
}

// TableDefinition is the cached schema of one database table.
type TableDefinition struct {
	Database    string             `json:"database"`
	Name        string             `json:"name"`
	Path        string             `json:"path"`
	EscapedPath string             `json:"escaped_path"`
	Columns     []ColumnDefinition `json:"columns"`

	index map[string]int
}

// NewTableDefinition builds a definition and its column index.
func NewTableDefinition(database, table string, columns []ColumnDefinition) *TableDefinition {
	def := &TableDefinition{
		Database:    database,
		Name:        table,
		Path:        Path(database, table),
		EscapedPath: sqlvalue.EscapePath(database, table),
		Columns:     append([]ColumnDefinition(nil), columns...),
		index:       make(map[string]int, len(columns)),
	}
	for i, col := range def.Columns {
		def.index[norm.NFC.String(col.Name)] = i
	}
	return def
}

// Path joins database and table as "database.table".
func Path(database, table string) string {
	if database == "" {
		return table
	}
	return database + "." + table
}

// Column looks up a column by name. Names are compared in Unicode NFC form.
func (t *TableDefinition) Column(name string) (ColumnDefinition, bool) {
	i, ok := t.index[norm.NFC.String(name)]
	if !ok {
		return ColumnDefinition{}, false
	}
	return t.Columns[i], true
}

// HasColumn reports whether the table has the named column.
func (t *TableDefinition) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// MustColumn looks up a column, returning an UNRECOGNIZED_COLUMN error if absent.
func (t *TableDefinition) MustColumn(name string) (ColumnDefinition, error) {
	col, ok := t.Column(name)
	if !ok {
		return ColumnDefinition{}, sqlerr.New(sqlerr.KindUnrecognizedColumn, "column does not exist").
			WithTable(t.Database, t.Name).
			WithColumn(name)
	}
	return col, nil
}

// PrimaryKeys returns the primary key columns in declaration order.
func (t *TableDefinition) PrimaryKeys() []ColumnDefinition {
	var keys []ColumnDefinition
	for _, col := range t.Columns {
		if col.PrimaryKey {
			keys = append(keys, col)
		}
	}
	return keys
}

// ColumnNames returns all column names in declaration order.
func (t *TableDefinition) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}
