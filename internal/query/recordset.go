package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/querysql"
	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// Recordset builds and runs one SELECT statement.
//
// Configuration calls chain and never fail on their own; the first
// configuration error is kept and returned by SQL or any Fetch method.
// A Recordset is single-use and not safe for concurrent use.
type Recordset struct {
	st *store.Store
	tx *store.Transaction

	database string
	from     tableRef
	fields   []string

	joins      []string
	references []Reference

	where  *querysql.Conditions
	having *querysql.Conditions

	groupBy []string
	orderBy []string
	limit   *int
	offset  *int

	single bool
	flat   string

	err error
}

type tableRef struct {
	database string
	table    string
}

func (t tableRef) escaped() string {
	return sqlvalue.EscapePath(t.database, t.table)
}

// NewRecordset creates an empty SELECT builder bound to st.
func NewRecordset(st *store.Store) *Recordset {
	f := st.Formatter()
	return &Recordset{
		st:     st,
		where:  querysql.NewConditions(f),
		having: querysql.NewConditions(f),
	}
}

func (r *Recordset) fail(err error) *Recordset {
	if r.err == nil {
		r.err = err
	}
	return r
}

// Transaction runs the statement inside tx instead of on its own connection.
func (r *Recordset) Transaction(tx *store.Transaction) *Recordset {
	r.tx = tx
	return r
}

// Use sets the default database for joins and references that name none.
func (r *Recordset) Use(database string) *Recordset {
	r.database = database
	return r
}

// Select appends projected columns. Plain identifiers and dotted paths are
// escaped; anything else ("COUNT(*) AS Total") is used verbatim.
// Without any Select the statement projects every column of the FROM table.
func (r *Recordset) Select(columns ...string) *Recordset {
	r.fields = append(r.fields, columns...)
	return r
}

// From sets the source table.
func (r *Recordset) From(database, table string) *Recordset {
	if table == "" {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "from requires a table name"))
	}
	r.from = tableRef{database: database, table: table}
	if r.database == "" {
		r.database = database
	}
	return r
}

// Where adds a condition template expanded with format symbols.
func (r *Recordset) Where(format string, args ...any) *Recordset {
	r.where.Add(format, args...)
	return r
}

// WhereIf adds the condition only when ok is true.
func (r *Recordset) WhereIf(ok bool, format string, args ...any) *Recordset {
	r.where.AddIf(ok, format, args...)
	return r
}

// WhereRaw adds a condition verbatim.
func (r *Recordset) WhereRaw(sql string) *Recordset {
	r.where.AddRaw(sql)
	return r
}

// Having adds a HAVING condition template expanded with format symbols.
func (r *Recordset) Having(format string, args ...any) *Recordset {
	r.having.Add(format, args...)
	return r
}

// HavingIf adds the HAVING condition only when ok is true.
func (r *Recordset) HavingIf(ok bool, format string, args ...any) *Recordset {
	r.having.AddIf(ok, format, args...)
	return r
}

// HavingRaw adds a HAVING condition verbatim.
func (r *Recordset) HavingRaw(sql string) *Recordset {
	r.having.AddRaw(sql)
	return r
}

// GroupBy appends grouping columns.
func (r *Recordset) GroupBy(columns ...string) *Recordset {
	r.groupBy = append(r.groupBy, columns...)
	return r
}

// OrderBy appends ordering terms verbatim ("Created DESC").
func (r *Recordset) OrderBy(terms ...string) *Recordset {
	r.orderBy = append(r.orderBy, terms...)
	return r
}

// Limit caps the number of rows.
func (r *Recordset) Limit(n int) *Recordset {
	if n < 0 {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "limit must not be negative").WithValue(n))
	}
	r.limit = &n
	return r
}

// Offset skips rows. It requires Limit.
func (r *Recordset) Offset(n int) *Recordset {
	if n < 0 {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "offset must not be negative").WithValue(n))
	}
	r.offset = &n
	return r
}

// Single truncates results to at most one element.
func (r *Recordset) Single() *Recordset {
	r.single = true
	return r
}

// Flat makes FetchValues and FetchValue return only column's values.
func (r *Recordset) Flat(column string) *Recordset {
	r.flat = column
	return r
}

// Condition returns the WHERE fragments only, for use as a sub-expression.
func (r *Recordset) Condition() (string, error) {
	if err := r.where.Err(); err != nil {
		return "", err
	}
	return r.where.SQL(), nil
}

// SQL compiles the statement. Clauses are emitted in the order SELECT,
// FROM, JOIN, WHERE, GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET; empty
// clauses are omitted.
func (r *Recordset) SQL() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.from.table == "" {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "recordset has no from table")
	}
	if err := r.where.Err(); err != nil {
		return "", fmt.Errorf("where: %w", err)
	}
	if err := r.having.Err(); err != nil {
		return "", fmt.Errorf("having: %w", err)
	}
	if r.offset != nil && r.limit == nil {
		return "", sqlerr.New(sqlerr.KindInvalidBuilderState, "offset requires limit").
			WithTable(r.from.database, r.from.table)
	}

	fields := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		fields = append(fields, quoteColumn(f))
	}

	joins := append([]string(nil), r.joins...)
	for _, ref := range r.references {
		clauses, columns, err := ref.compile(r.from, r.database)
		if err != nil {
			return "", err
		}
		joins = append(joins, clauses...)
		fields = append(fields, columns...)
	}

	var projection string
	switch {
	case len(r.fields) > 0:
		projection = strings.Join(fields, ", ")
	case len(joins) > 0:
		// Keep joined columns from clobbering the source's by name.
		projection = strings.Join(append([]string{sqlvalue.EscapeIdentifier(r.from.table) + ".*"}, fields...), ", ")
	default:
		projection = "*"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(projection)
	b.WriteString(" FROM ")
	b.WriteString(r.from.escaped())
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if r.where.Len() > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(r.where.SQL())
	}
	if len(r.groupBy) > 0 {
		groups := make([]string, len(r.groupBy))
		for i, g := range r.groupBy {
			groups[i] = quoteColumn(g)
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(groups, ", "))
	}
	if r.having.Len() > 0 {
		b.WriteString(" HAVING ")
		b.WriteString(r.having.SQL())
	}
	if len(r.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(r.orderBy, ", "))
	}
	if r.limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *r.limit)
	}
	if r.offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *r.offset)
	}
	return b.String(), nil
}

// Fetch runs the statement and returns converted records, with references
// collapsed. The result is never nil; with Single it holds at most one record.
func (r *Recordset) Fetch(ctx context.Context) ([]Record, error) {
	query, err := r.SQL()
	if err != nil {
		return nil, err
	}
	if err := r.validateFields(ctx); err != nil {
		return nil, err
	}

	var exec store.Executor = r.st
	if r.tx != nil {
		exec = r.tx
	}
	rs, err := exec.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", schema.Path(r.from.database, r.from.table), err)
	}

	if r.flat != "" && !hasColumn(rs, r.flat) && !r.isReferenceAlias(r.flat) {
		return nil, sqlerr.New(sqlerr.KindUnrecognizedColumn, "flat column is not in the result set").
			WithTable(r.from.database, r.from.table).
			WithColumn(r.flat)
	}

	records, err := convertResult(r.st.Converter(), rs)
	if err != nil {
		var se *sqlerr.Error
		if errors.As(err, &se) && se.Table == "" {
			se.WithTable(r.from.database, r.from.table)
		}
		return nil, err
	}

	if len(r.references) > 0 {
		records, err = collapse(records, r.references)
		if err != nil {
			return nil, err
		}
	}
	if r.single && len(records) > 1 {
		records = records[:1]
	}
	return records, nil
}

// FetchOne returns the first record, or nil when nothing matched.
func (r *Recordset) FetchOne(ctx context.Context) (Record, error) {
	records, err := r.Fetch(ctx)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// FetchValues returns the Flat column's value from every record.
func (r *Recordset) FetchValues(ctx context.Context) ([]any, error) {
	if r.flat == "" {
		return nil, sqlerr.New(sqlerr.KindInvalidBuilderState, "FetchValues requires Flat")
	}
	records, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(records))
	for _, rec := range records {
		values = append(values, rec[r.flat])
	}
	return values, nil
}

// FetchValue returns the first Flat value, or nil when nothing matched.
func (r *Recordset) FetchValue(ctx context.Context) (any, error) {
	values, err := r.FetchValues(ctx)
	if err != nil || len(values) == 0 {
		return nil, err
	}
	return values[0], nil
}

// validateFields checks bare selected columns against the source table.
// Joined statements are left to the database, since a bare name may
// belong to any joined table.
func (r *Recordset) validateFields(ctx context.Context) error {
	if len(r.joins) > 0 || len(r.references) > 0 || len(r.fields) == 0 {
		return nil
	}
	def, err := r.st.Definition(ctx, r.from.database, r.from.table)
	if err != nil {
		return err
	}
	for _, f := range r.fields {
		if !isBareIdentifier(f) {
			continue
		}
		if _, err := def.MustColumn(f); err != nil {
			return err
		}
	}
	return nil
}

func hasColumn(rs *store.ResultSet, name string) bool {
	for _, col := range rs.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}
