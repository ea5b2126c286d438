package sqlvalue

import (
	"strconv"
	"strings"
)

// Type is the wire type of a column as seen by the type converter.
type Type int

const (
	// TypeUnknown is used for result columns without a declared type
	// (expressions, aggregates). Values pass through mostly untouched.
	TypeUnknown Type = iota
	TypeBoolean
	TypeInt
	TypeUnsignedInt
	TypeBigInt
	TypeDecimal
	TypeFloat
	TypeDate
	TypeDateTime
	TypeTimestamp
	TypeTime
	TypeJSON
	TypeSet
	TypeString
	TypeBlob
)

var typeNames = [...]string{
	TypeUnknown:     "UNKNOWN",
	TypeBoolean:     "BOOLEAN",
	TypeInt:         "INT",
	TypeUnsignedInt: "UNSIGNED_INT",
	TypeBigInt:      "BIGINT",
	TypeDecimal:     "DECIMAL",
	TypeFloat:       "FLOAT",
	TypeDate:        "DATE",
	TypeDateTime:    "DATETIME",
	TypeTimestamp:   "TIMESTAMP",
	TypeTime:        "TIME",
	TypeJSON:        "JSON",
	TypeSet:         "SET",
	TypeString:      "STRING",
	TypeBlob:        "BLOB",
}

// String returns the type's name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// MarshalText implements encoding.TextMarshaler so definitions render by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsTemporal reports whether values of t are converted to time.Time.
func (t Type) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime || t == TypeTimestamp
}

// Declared is a parsed column type declaration.
type Declared struct {
	Type     Type
	Length   int
	Unsigned bool
	ZeroFill bool
}

// ParseType parses a declared column type as reported by
// information_schema.COLUMNS.COLUMN_TYPE ("int(10) unsigned zerofill"),
// a driver's DatabaseTypeName ("UNSIGNED BIGINT", "DECIMAL") or an SQLite
// declared type ("BOOLEAN", "VARCHAR(64)").
//
// Tiny integers are treated as booleans regardless of display width.
func ParseType(declared string) Declared {
	s := strings.ToUpper(strings.TrimSpace(declared))
	if s == "" {
		return Declared{Type: TypeUnknown}
	}

	var d Declared
	if open := strings.IndexByte(s, '('); open >= 0 {
		if end := strings.IndexByte(s[open:], ')'); end > 0 {
			args := s[open+1 : open+end]
			if comma := strings.IndexByte(args, ','); comma >= 0 {
				args = args[:comma]
			}
			if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
				d.Length = n
			}
			s = s[:open] + " " + s[open+end+1:]
		}
	}

	var base string
	for _, word := range strings.Fields(s) {
		switch word {
		case "UNSIGNED":
			d.Unsigned = true
		case "ZEROFILL":
			d.ZeroFill = true
		case "SIGNED":
		default:
			if base == "" {
				base = word
			}
		}
	}

	d.Type = baseType(base, d)
	return d
}

func baseType(base string, d Declared) Type {
	switch base {
	case "TINYINT", "BOOL", "BOOLEAN":
		return TypeBoolean
	case "BIT":
		if d.Length <= 1 {
			return TypeBoolean
		}
		return TypeBlob
	case "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "YEAR", "INT2", "INT8":
		if d.Unsigned {
			return TypeUnsignedInt
		}
		return TypeInt
	case "BIGINT":
		return TypeBigInt
	case "DECIMAL", "NUMERIC", "DEC", "FIXED", "NEWDECIMAL":
		return TypeDecimal
	case "FLOAT", "DOUBLE", "REAL":
		return TypeFloat
	case "DATE":
		return TypeDate
	case "DATETIME":
		return TypeDateTime
	case "TIMESTAMP":
		return TypeTimestamp
	case "TIME":
		return TypeTime
	case "JSON":
		return TypeJSON
	case "SET":
		return TypeSet
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY":
		return TypeBlob
	default:
		return TypeString
	}
}
