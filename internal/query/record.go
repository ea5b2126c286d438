package query

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// Record is one fetched row keyed by result column name, with values
// already converted to their Go representation.
type Record map[string]any

// identifierPattern matches a bare or dotted identifier ("Name", "t.Name").
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// quoteColumn escapes plain identifiers and dotted paths. Anything else
// (expressions, aliases, "*") is passed through as raw SQL.
func quoteColumn(s string) string {
	if !identifierPattern.MatchString(s) {
		return s
	}
	return sqlvalue.EscapePath(strings.Split(s, ".")...)
}

// isBareIdentifier reports whether s names a single column.
func isBareIdentifier(s string) bool {
	return identifierPattern.MatchString(s) && !strings.Contains(s, ".")
}

// convertResult converts every cell of rs with the converter, using the
// wire type the driver reported for each column.
func convertResult(conv sqlvalue.Converter, rs *store.ResultSet) ([]Record, error) {
	records := make([]Record, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		rec := make(Record, len(rs.Columns))
		for i, col := range rs.Columns {
			v, err := conv.ToGo(row[i], col.Type)
			if err != nil {
				var se *sqlerr.Error
				if !errors.As(err, &se) {
					se = sqlerr.Wrap(sqlerr.KindTypeMismatch, err, "converting result value")
				}
				return nil, se.WithColumn(col.Name)
			}
			rec[col.Name] = v
		}
		records = append(records, rec)
	}
	return records, nil
}
