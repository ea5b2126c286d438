package query

import (
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// identityColumn is the conventional primary key name the flat join
// shorthand joins against.
const identityColumn = "ID"

// Join describes an explicit join clause.
type Join struct {
	// Database of ToTable; defaults to the recordset's Use database.
	Database string

	// ToTable is the joined table and ToField the column compared on it.
	ToTable string
	ToField string

	// FromTable is the table or alias on the left of the comparison;
	// defaults to the FROM table. FromField is its compared column.
	FromTable string
	FromField string

	// Alias names the joined table in the rest of the statement.
	Alias string

	// Condition is extra raw SQL ANDed onto the ON clause.
	Condition string

	// Left makes it a LEFT JOIN.
	Left bool

	// Raw, when set, is used as the whole join clause and every other
	// field is ignored.
	Raw string
}

// Join adds "JOIN database.table ON <from>.<localColumn> = database.table.ID".
// localColumn defaults to the joined table's name.
func (r *Recordset) Join(database, table, localColumn string) *Recordset {
	return r.flatJoin(false, database, table, localColumn)
}

// LeftJoin is Join as a LEFT JOIN.
func (r *Recordset) LeftJoin(database, table, localColumn string) *Recordset {
	return r.flatJoin(true, database, table, localColumn)
}

func (r *Recordset) flatJoin(left bool, database, table, localColumn string) *Recordset {
	if table == "" {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "join requires a table name"))
	}
	if r.from.table == "" {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "join requires from to be called first").
			WithTable(database, table))
	}
	if database == "" {
		database = r.database
	}
	if localColumn == "" {
		localColumn = table
	}

	target := sqlvalue.EscapePath(database, table)
	clause := joinKeyword(left) + " " + target +
		" ON " + sqlvalue.EscapePath(r.from.database, r.from.table, localColumn) +
		" = " + target + "." + sqlvalue.EscapeIdentifier(identityColumn)
	r.joins = append(r.joins, clause)
	return r
}

// JoinOn adds a join from an explicit descriptor.
func (r *Recordset) JoinOn(j Join) *Recordset {
	if j.Raw != "" {
		r.joins = append(r.joins, j.Raw)
		return r
	}
	if j.ToTable == "" || j.ToField == "" || j.FromField == "" {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "join requires ToTable, ToField and FromField").
			WithTable(j.Database, j.ToTable))
	}
	database := j.Database
	if database == "" {
		database = r.database
	}

	var from string
	if j.FromTable != "" {
		from = sqlvalue.EscapeIdentifier(j.FromTable)
	} else {
		if r.from.table == "" {
			return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "join without FromTable requires from to be called first").
				WithTable(database, j.ToTable))
		}
		from = r.from.escaped()
	}

	var b strings.Builder
	b.WriteString(joinKeyword(j.Left))
	b.WriteString(" ")
	b.WriteString(sqlvalue.EscapePath(database, j.ToTable))

	target := sqlvalue.EscapePath(database, j.ToTable)
	if j.Alias != "" {
		b.WriteString(" AS ")
		b.WriteString(sqlvalue.EscapeIdentifier(j.Alias))
		target = sqlvalue.EscapeIdentifier(j.Alias)
	}

	b.WriteString(" ON ")
	b.WriteString(from + "." + sqlvalue.EscapeIdentifier(j.FromField))
	b.WriteString(" = ")
	b.WriteString(target + "." + sqlvalue.EscapeIdentifier(j.ToField))
	if j.Condition != "" {
		b.WriteString(" AND ")
		b.WriteString(j.Condition)
	}

	r.joins = append(r.joins, b.String())
	return r
}

func joinKeyword(left bool) string {
	if left {
		return "LEFT JOIN"
	}
	return "JOIN"
}
