package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
)

const mysqlColumnsQuery = `
	SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, EXTRA
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
	ORDER BY ORDINAL_POSITION
`

const sqliteColumnsQuery = `
	SELECT name, type, "notnull", pk
	FROM pragma_table_info(?, ?)
	ORDER BY cid
`

// Introspect implements schema.Introspector with the dialect's metadata query.
func (s *Store) Introspect(ctx context.Context, database, table string) ([]schema.ColumnDefinition, error) {
	var (
		columns []schema.ColumnDefinition
		err     error
	)
	switch s.dialect {
	case SQLite:
		columns, err = s.introspectSQLite(ctx, database, table)
	default:
		columns, err = s.introspectMySQL(ctx, database, table)
	}
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, sqlerr.New(sqlerr.KindUnknownTable, "table does not exist or has no columns").
			WithTable(database, table)
	}
	s.logger.Debug("introspected table", "table", schema.Path(database, table), "columns", len(columns))
	return columns, nil
}

func (s *Store) introspectMySQL(ctx context.Context, database, table string) ([]schema.ColumnDefinition, error) {
	rs, err := s.query(ctx, mysqlColumnsQuery, database, table)
	if err != nil {
		return nil, err
	}

	columns := make([]schema.ColumnDefinition, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name, colType := text(row[0]), text(row[1])
		var flags schema.Flag
		if text(row[2]) == "NO" {
			flags |= schema.FlagNotNull
		}
		if text(row[3]) == "PRI" {
			flags |= schema.FlagPrimaryKey
		}
		if strings.Contains(strings.ToLower(text(row[4])), "auto_increment") {
			flags |= schema.FlagAutoIncrement
		}
		columns = append(columns, schema.NewColumn(name, colType, flags))
	}
	return columns, nil
}

func (s *Store) introspectSQLite(ctx context.Context, database, table string) ([]schema.ColumnDefinition, error) {
	if database == "" {
		database = "main"
	}
	rs, err := s.query(ctx, sqliteColumnsQuery, table, database)
	if err != nil {
		return nil, err
	}

	var pkCount int
	for _, row := range rs.Rows {
		if integer(row[3]) > 0 {
			pkCount++
		}
	}

	columns := make([]schema.ColumnDefinition, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name, colType := text(row[0]), text(row[1])
		var flags schema.Flag
		if integer(row[2]) != 0 {
			flags |= schema.FlagNotNull
		}
		if integer(row[3]) > 0 {
			flags |= schema.FlagPrimaryKey
			// A lone INTEGER primary key aliases the rowid and auto-increments.
			if pkCount == 1 && strings.EqualFold(strings.TrimSpace(colType), "INTEGER") {
				flags |= schema.FlagAutoIncrement | schema.FlagNotNull
			}
		}
		columns = append(columns, schema.NewColumn(name, colType, flags))
	}
	return columns, nil
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(s)
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func integer(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case bool:
		if n {
			return 1
		}
	case []byte:
		var out int64
		fmt.Sscan(string(n), &out) //nolint:errcheck // non-numeric means 0
		return out
	}
	return 0
}
