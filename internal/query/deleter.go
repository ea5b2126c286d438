package query

import (
	"context"
	"fmt"

	"github.com/Supinic/supi-core-sub000/internal/querysql"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// RecordDeleter builds and runs one DELETE statement.
//
// A deleter without any Where condition refuses to compile unless Confirm
// was called, so a whole table is never emptied by accident.
type RecordDeleter struct {
	st *store.Store
	tx *store.Transaction

	database  string
	table     string
	where     *querysql.Conditions
	confirmed bool
}

// NewDeleter creates an empty DELETE builder bound to st.
func NewDeleter(st *store.Store) *RecordDeleter {
	return &RecordDeleter{
		st:    st,
		where: querysql.NewConditions(st.Formatter()),
	}
}

// Delete returns d; it exists so call chains read as Delete().From(...).
func (d *RecordDeleter) Delete() *RecordDeleter {
	return d
}

// Transaction runs the statement inside tx.
func (d *RecordDeleter) Transaction(tx *store.Transaction) *RecordDeleter {
	d.tx = tx
	return d
}

// From sets the target table.
func (d *RecordDeleter) From(database, table string) *RecordDeleter {
	d.database, d.table = database, table
	return d
}

// Where adds a condition template expanded with format symbols.
func (d *RecordDeleter) Where(format string, args ...any) *RecordDeleter {
	d.where.Add(format, args...)
	return d
}

// WhereIf adds the condition only when ok is true.
func (d *RecordDeleter) WhereIf(ok bool, format string, args ...any) *RecordDeleter {
	d.where.AddIf(ok, format, args...)
	return d
}

// WhereRaw adds a condition verbatim.
func (d *RecordDeleter) WhereRaw(sql string) *RecordDeleter {
	d.where.AddRaw(sql)
	return d
}

// Confirm allows the statement to run without any condition.
func (d *RecordDeleter) Confirm() *RecordDeleter {
	d.confirmed = true
	return d
}

// SQL compiles the statement after resolving the table definition.
func (d *RecordDeleter) SQL(ctx context.Context) (string, error) {
	if d.table == "" {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "deleter has no table")
	}
	if err := d.where.Err(); err != nil {
		return "", fmt.Errorf("where: %w", err)
	}
	if d.where.Len() == 0 && !d.confirmed {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "delete without where must be confirmed").
			WithTable(d.database, d.table)
	}

	def, err := d.st.Definition(ctx, d.database, d.table)
	if err != nil {
		return "", err
	}

	out := "DELETE FROM " + def.EscapedPath
	if d.where.Len() > 0 {
		out += " WHERE " + d.where.SQL()
	}
	return out, nil
}

// Exec runs the statement and returns the number of deleted rows.
func (d *RecordDeleter) Exec(ctx context.Context) (int64, error) {
	query, err := d.SQL(ctx)
	if err != nil {
		return 0, err
	}
	var exec store.Executor = d.st
	if d.tx != nil {
		exec = d.tx
	}
	res, err := exec.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete from %s.%s: %w", d.database, d.table, err)
	}
	return res.AffectedRows, nil
}
