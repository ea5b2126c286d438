package store

import (
	"fmt"

	"github.com/Supinic/supi-core-sub000/internal/querysql"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// Dialect identifies the database flavour behind a Store.
//
// All generated SQL is MySQL-flavoured (backtick identifiers, LIMIT/OFFSET).
// Dialect carries the handful of spellings SQLite needs instead.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

// Validate reports whether d is a supported dialect.
func (d Dialect) Validate() error {
	switch d {
	case MySQL, SQLite:
		return nil
	default:
		return fmt.Errorf("unsupported dialect %q: must be %q or %q", d, MySQL, SQLite)
	}
}

// Converter returns the value converter matching the dialect's escaping rules.
func (d Dialect) Converter() sqlvalue.Converter {
	if d == SQLite {
		return sqlvalue.SQLite
	}
	return sqlvalue.MySQL
}

// Formatter returns the format-symbol expander for the dialect.
func (d Dialect) Formatter() querysql.Formatter {
	return querysql.Formatter{Converter: d.Converter()}
}

// InsertInto returns the INSERT keyword sequence up to and including INTO.
func (d Dialect) InsertInto(ignore bool) string {
	switch {
	case !ignore:
		return "INSERT INTO"
	case d == SQLite:
		return "INSERT OR IGNORE INTO"
	default:
		return "INSERT IGNORE INTO"
	}
}

// Update returns the UPDATE keyword with modifiers. SQLite has no priorities.
func (d Dialect) Update(lowPriority, ignore bool) string {
	if d == SQLite {
		if ignore {
			return "UPDATE OR IGNORE"
		}
		return "UPDATE"
	}
	out := "UPDATE"
	if lowPriority {
		out += " LOW_PRIORITY"
	}
	if ignore {
		out += " IGNORE"
	}
	return out
}

// Upsert returns the clause that introduces duplicate-key assignments.
func (d Dialect) Upsert() string {
	if d == SQLite {
		return "ON CONFLICT DO UPDATE SET"
	}
	return "ON DUPLICATE KEY UPDATE"
}
