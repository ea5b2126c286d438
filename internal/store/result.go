package store

import (
	"database/sql"
	"fmt"

	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// Column describes one column of a result set.
type Column struct {
	Name         string
	DatabaseType string
	Type         sqlvalue.Type
}

// ResultSet is a fully materialized query result. Values are exactly what
// the driver returned; conversion to Go types is the caller's job.
type ResultSet struct {
	Columns []Column
	Rows    [][]any
}

// Result reports the outcome of a statement that returns no rows.
type Result struct {
	AffectedRows int64
	InsertID     int64
}

func readRows(rows *sql.Rows) (*ResultSet, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	rs := &ResultSet{Columns: make([]Column, len(types))}
	for i, ct := range types {
		name := ct.DatabaseTypeName()
		rs.Columns[i] = Column{
			Name:         ct.Name(),
			DatabaseType: name,
			Type:         sqlvalue.ParseType(name).Type,
		}
	}

	for rows.Next() {
		values := make([]any, len(types))
		dest := make([]any, len(types))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rs, nil
}

func toResult(res sql.Result) Result {
	var out Result
	// Not every driver supports both; missing values stay zero.
	if n, err := res.RowsAffected(); err == nil {
		out.AffectedRows = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.InsertID = id
	}
	return out
}
