package sqlvalue

import "strings"

// EscapeStyle selects how string literals are escaped.
type EscapeStyle int

const (
	// EscapeBackslash escapes with backslashes, as MySQL does by default.
	EscapeBackslash EscapeStyle = iota

	// EscapeStandard doubles single quotes and treats backslash literally,
	// as SQLite (and ANSI SQL) does.
	EscapeStandard
)

// Converter performs value conversion and escaping for one escape style.
// The zero value uses backslash escaping.
type Converter struct {
	Style EscapeStyle
}

var (
	// MySQL is the converter for MySQL/MariaDB connections.
	MySQL = Converter{Style: EscapeBackslash}

	// SQLite is the converter for SQLite connections.
	SQLite = Converter{Style: EscapeStandard}
)

var backslashReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

var standardReplacer = strings.NewReplacer(`'`, `''`)

var likeReplacer = strings.NewReplacer(`%`, `\%`, `_`, `\_`)

// EscapeString escapes s for use inside a single-quoted SQL literal.
// The result is not wrapped in quotes.
func (c Converter) EscapeString(s string) string {
	if c.Style == EscapeStandard {
		return standardReplacer.Replace(s)
	}
	return backslashReplacer.Replace(s)
}

// EscapeLikeString escapes s like EscapeString and additionally escapes the
// pattern metacharacters % and _ with a backslash. Backslashes are doubled
// for the pattern before string escaping, so they match literally.
func (c Converter) EscapeLikeString(s string) string {
	return likeReplacer.Replace(c.EscapeString(strings.ReplaceAll(s, `\`, `\\`)))
}

// Quote escapes s and wraps it in single quotes.
func (c Converter) Quote(s string) string {
	return "'" + c.EscapeString(s) + "'"
}

// Like renders a LIKE predicate tail for an already-escaped pattern.
// Standard-style databases have no default escape character, so one is declared.
func (c Converter) Like(escapedPattern string) string {
	if c.Style == EscapeStandard {
		return "LIKE '" + escapedPattern + `' ESCAPE '\'`
	}
	return "LIKE '" + escapedPattern + "'"
}

// EscapeIdentifier quotes an identifier with backticks. Surrounding backticks
// are stripped first and embedded ones doubled. A trailing "*" (as in
// "Table.*") is returned unchanged.
func EscapeIdentifier(s string) string {
	if strings.HasSuffix(s, "*") {
		return s
	}
	s = strings.TrimPrefix(s, "`")
	s = strings.TrimSuffix(s, "`")
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// EscapePath quotes a dotted path ("db.table" or "table.column") one
// segment at a time. Empty segments are skipped.
func EscapePath(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, EscapeIdentifier(p))
	}
	return strings.Join(quoted, ".")
}

// EscapeString escapes s with the MySQL converter.
func EscapeString(s string) string { return MySQL.EscapeString(s) }

// EscapeLikeString escapes s for a LIKE pattern with the MySQL converter.
func EscapeLikeString(s string) string { return MySQL.EscapeLikeString(s) }
