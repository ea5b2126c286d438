package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/querysql"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// Priority is an UPDATE scheduling modifier.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityLow
)

type assignment struct {
	column string
	value  any
}

// RecordUpdater builds and runs one UPDATE statement.
type RecordUpdater struct {
	st *store.Store
	tx *store.Transaction

	database string
	table    string
	sets     []assignment
	where    *querysql.Conditions

	priority Priority
	ignore   bool

	err error
}

// NewUpdater creates an empty UPDATE builder bound to st.
func NewUpdater(st *store.Store) *RecordUpdater {
	return &RecordUpdater{
		st:    st,
		where: querysql.NewConditions(st.Formatter()),
	}
}

// Transaction runs the statement inside tx.
func (u *RecordUpdater) Transaction(tx *store.Transaction) *RecordUpdater {
	u.tx = tx
	return u
}

// Update sets the target table.
func (u *RecordUpdater) Update(database, table string) *RecordUpdater {
	if table == "" && u.err == nil {
		u.err = sqlerr.New(sqlerr.KindInvalidBuilderState, "update requires a table name")
	}
	u.database, u.table = database, table
	return u
}

// Set assigns value to column. A sqlvalue.Raw value is spliced verbatim,
// so it can reference other columns or expressions.
func (u *RecordUpdater) Set(column string, value any) *RecordUpdater {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// Where adds a condition template expanded with format symbols.
func (u *RecordUpdater) Where(format string, args ...any) *RecordUpdater {
	u.where.Add(format, args...)
	return u
}

// WhereIf adds the condition only when ok is true.
func (u *RecordUpdater) WhereIf(ok bool, format string, args ...any) *RecordUpdater {
	u.where.AddIf(ok, format, args...)
	return u
}

// WhereRaw adds a condition verbatim.
func (u *RecordUpdater) WhereRaw(sql string) *RecordUpdater {
	u.where.AddRaw(sql)
	return u
}

// Priority sets the scheduling priority. Only MySQL honours it.
func (u *RecordUpdater) Priority(p Priority) *RecordUpdater {
	u.priority = p
	return u
}

// IgnoreDuplicates skips rows whose update would violate a unique key.
func (u *RecordUpdater) IgnoreDuplicates() *RecordUpdater {
	u.ignore = true
	return u
}

// SQL compiles the statement. Every Set column is resolved against the
// table definition and its value serialized for the column's type.
func (u *RecordUpdater) SQL(ctx context.Context) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if u.table == "" {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "updater has no table")
	}
	if len(u.sets) == 0 {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "update requires at least one set").
			WithTable(u.database, u.table)
	}
	if err := u.where.Err(); err != nil {
		return "", fmt.Errorf("where: %w", err)
	}

	def, err := u.st.Definition(ctx, u.database, u.table)
	if err != nil {
		return "", err
	}

	conv := u.st.Converter()
	sets := make([]string, 0, len(u.sets))
	for _, a := range u.sets {
		col, err := def.MustColumn(a.column)
		if err != nil {
			return "", err
		}
		value, err := conv.ToSQL(a.value, col.Type)
		if err != nil {
			return "", withColumnContext(err, u.database, u.table, col.Name)
		}
		sets = append(sets, sqlvalue.EscapeIdentifier(col.Name)+" = "+value)
	}

	var b strings.Builder
	b.WriteString(u.st.Dialect().Update(u.priority == PriorityLow, u.ignore))
	b.WriteString(" ")
	b.WriteString(def.EscapedPath)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	if u.where.Len() > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(u.where.SQL())
	}
	return b.String(), nil
}

// Exec runs the statement.
func (u *RecordUpdater) Exec(ctx context.Context) (store.Result, error) {
	query, err := u.SQL(ctx)
	if err != nil {
		return store.Result{}, err
	}
	var exec store.Executor = u.st
	if u.tx != nil {
		exec = u.tx
	}
	res, err := exec.Exec(ctx, query)
	if err != nil {
		return store.Result{}, fmt.Errorf("update %s.%s: %w", u.database, u.table, err)
	}
	return res, nil
}

// withColumnContext attaches table and column context to a conversion error.
func withColumnContext(err error, database, table, column string) error {
	var se *sqlerr.Error
	if errors.As(err, &se) {
		return se.WithTable(database, table).WithColumn(column)
	}
	return err
}
