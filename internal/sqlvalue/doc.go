// Package sqlvalue converts values between Go and SQL.
//
// It owns the wire type enumeration (Type), the declared-type parser that
// maps column type declarations to it, the bidirectional converter (ToGo,
// ToSQL) and the string and identifier escaping primitives.
//
// Conversion is total and deterministic: the same (value, type) pair always
// serializes identically and nil always serializes to NULL. A value whose
// Go type disagrees with the target type is rejected with a TYPE_MISMATCH
// error rather than coerced.
//
// Two escape styles exist because MySQL treats backslash as an escape
// character inside string literals and SQLite does not. Use the Converter
// that matches the connection; the package-level helpers use MySQL.
package sqlvalue
