package query

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// Reference joins a child table and folds its columns into a nested list
// on each parent record.
//
// Without ReferenceTable the join is one hop:
//
//	source.SourceField = target.TargetField
//
// With ReferenceTable (a junction table) it is two hops:
//
//	source.SourceField = junction.ReferenceFieldSource
//	junction.ReferenceFieldTarget = target.TargetField
//
// After fetching, rows with the same CollapseOn value are merged into the
// first of them, and the Fields of the target become Record values under
// TargetAlias.
type Reference struct {
	// SourceDatabase and SourceTable default to the FROM table.
	SourceDatabase string
	SourceTable    string
	// SourceField defaults to "ID".
	SourceField string

	// TargetDatabase defaults to the recordset's Use database.
	TargetDatabase string
	TargetTable    string
	// TargetField is required for one-hop references and defaults to
	// "ID" with a junction table.
	TargetField string

	ReferenceDatabase    string
	ReferenceTable       string
	ReferenceFieldSource string
	ReferenceFieldTarget string

	// TargetAlias names both the joined table and the nested list;
	// defaults to TargetTable.
	TargetAlias string

	// Fields are the target columns collected into each child record.
	Fields []string

	// CollapseOn is the parent column that identifies a group; defaults
	// to SourceField.
	CollapseOn string

	// Left keeps parents without children (their list is empty).
	Left bool
}

// Reference adds a reference join with collapsing.
func (r *Recordset) Reference(ref Reference) *Recordset {
	if ref.TargetTable == "" {
		if ref.ReferenceTable != "" {
			return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "reference table given without a target table").
				WithTable(ref.ReferenceDatabase, ref.ReferenceTable))
		}
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "reference requires a target table").
			WithTable(r.from.database, r.from.table))
	}
	if len(ref.Fields) == 0 {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "reference requires at least one field").
			WithTable(ref.TargetDatabase, ref.TargetTable))
	}
	if ref.ReferenceTable == "" && ref.TargetField == "" {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "one-hop reference requires a target field").
			WithTable(ref.TargetDatabase, ref.TargetTable))
	}
	if ref.ReferenceTable != "" && (ref.ReferenceFieldSource == "" || ref.ReferenceFieldTarget == "") {
		return r.fail(sqlerr.New(sqlerr.KindInvalidBuilderState, "reference table requires both reference fields").
			WithTable(ref.ReferenceDatabase, ref.ReferenceTable))
	}
	r.references = append(r.references, ref)
	return r
}

func (r *Recordset) isReferenceAlias(name string) bool {
	for _, ref := range r.references {
		if ref.alias() == name {
			return true
		}
	}
	return false
}

func (ref Reference) alias() string {
	if ref.TargetAlias != "" {
		return ref.TargetAlias
	}
	return ref.TargetTable
}

func (ref Reference) sourceField() string {
	if ref.SourceField != "" {
		return ref.SourceField
	}
	return identityColumn
}

func (ref Reference) collapseOn() string {
	if ref.CollapseOn != "" {
		return ref.CollapseOn
	}
	return ref.sourceField()
}

func (ref Reference) prefix() string {
	return ref.alias() + "_"
}

// compile returns the join clauses and the aliased projected columns.
func (ref Reference) compile(from tableRef, database string) ([]string, []string, error) {
	source := from
	if ref.SourceTable != "" {
		source = tableRef{database: ref.SourceDatabase, table: ref.SourceTable}
	}
	if source.table == "" {
		return nil, nil, sqlerr.New(sqlerr.KindInvalidBuilderState, "reference has no source table").
			WithTable(ref.TargetDatabase, ref.TargetTable)
	}
	targetDB := ref.TargetDatabase
	if targetDB == "" {
		targetDB = database
	}

	keyword := joinKeyword(ref.Left)
	alias := sqlvalue.EscapeIdentifier(ref.alias())
	sourceCol := source.escaped() + "." + sqlvalue.EscapeIdentifier(ref.sourceField())

	var joins []string
	if ref.ReferenceTable == "" {
		joins = append(joins, fmt.Sprintf("%s %s AS %s ON %s = %s.%s",
			keyword, sqlvalue.EscapePath(targetDB, ref.TargetTable), alias,
			sourceCol, alias, sqlvalue.EscapeIdentifier(ref.TargetField)))
	} else {
		refDB := ref.ReferenceDatabase
		if refDB == "" {
			refDB = database
		}
		junction := sqlvalue.EscapePath(refDB, ref.ReferenceTable)
		targetField := ref.TargetField
		if targetField == "" {
			targetField = identityColumn
		}
		joins = append(joins,
			fmt.Sprintf("%s %s ON %s = %s.%s",
				keyword, junction, sourceCol, junction, sqlvalue.EscapeIdentifier(ref.ReferenceFieldSource)),
			fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s",
				keyword, sqlvalue.EscapePath(targetDB, ref.TargetTable), alias,
				junction, sqlvalue.EscapeIdentifier(ref.ReferenceFieldTarget),
				alias, sqlvalue.EscapeIdentifier(targetField)),
		)
	}

	columns := make([]string, len(ref.Fields))
	for i, f := range ref.Fields {
		columns[i] = alias + "." + sqlvalue.EscapeIdentifier(f) + " AS " + sqlvalue.EscapeIdentifier(ref.prefix()+f)
	}
	return joins, columns, nil
}

// collapse merges records that share every reference's collapse value.
//
// Children are de-duplicated by structural comparison against every child
// already collected for the group, which is quadratic in the group size.
// Groups are expected to be small; Record values are not hashable in
// general (slices, maps, *big.Int), so there is no cheap key to hash on.
func collapse(records []Record, refs []Reference) ([]Record, error) {
	var (
		out    []Record
		groups = make(map[string]Record)
	)

	for _, rec := range records {
		key, err := groupKey(rec, refs)
		if err != nil {
			return nil, err
		}

		children := make([]Record, len(refs))
		for i, ref := range refs {
			children[i] = extractChild(rec, ref)
		}

		parent, ok := groups[key]
		if !ok {
			parent = rec
			for _, ref := range refs {
				for _, f := range ref.Fields {
					delete(parent, ref.prefix()+f)
				}
				parent[ref.alias()] = []Record{}
			}
			groups[key] = parent
			out = append(out, parent)
		}

		for i, ref := range refs {
			child := children[i]
			if child == nil {
				continue
			}
			list := parent[ref.alias()].([]Record)
			if containsRecord(list, child) {
				continue
			}
			parent[ref.alias()] = append(list, child)
		}
	}

	if out == nil {
		out = []Record{}
	}
	return out, nil
}

// extractChild returns the reference's fields with the alias prefix
// stripped, or nil when all of them are NULL (an unmatched left join).
func extractChild(rec Record, ref Reference) Record {
	child := make(Record, len(ref.Fields))
	empty := true
	for _, f := range ref.Fields {
		v := rec[ref.prefix()+f]
		if v != nil {
			empty = false
		}
		child[f] = v
	}
	if empty {
		return nil
	}
	return child
}

func groupKey(rec Record, refs []Reference) (string, error) {
	var b strings.Builder
	for _, ref := range refs {
		col := ref.collapseOn()
		v, ok := rec[col]
		if !ok {
			return "", sqlerr.New(sqlerr.KindUnrecognizedColumn, "collapse column is not in the result set").
				WithColumn(col)
		}
		fmt.Fprintf(&b, "%T:%v|", v, v)
	}
	return b.String(), nil
}

// containsRecord is a linear scan, so de-duplicating a group of n children
// is O(n²).
func containsRecord(list []Record, rec Record) bool {
	for _, other := range list {
		if recordsEqual(other, rec) {
			return true
		}
	}
	return false
}

func recordsEqual(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		at, aIsTime := av.(time.Time)
		bt, bIsTime := bv.(time.Time)
		if aIsTime && bIsTime {
			if !at.Equal(bt) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
