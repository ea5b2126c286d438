package sqlvalue

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
)

// ToGo converts a value scanned from the driver into its Go representation
// for the given wire type:
//
//	nil                     -> nil
//	TypeBoolean             -> bool
//	TypeInt                 -> int64
//	TypeUnsignedInt         -> uint64
//	TypeBigInt              -> *big.Int
//	TypeDecimal, TypeFloat  -> float64
//	TypeDate/DateTime/Timestamp -> time.Time (zero dates become nil)
//	TypeTime                -> string
//	TypeJSON                -> decoded value (map[string]any, []any, ...)
//	TypeSet                 -> []string
//	TypeString              -> string
//	TypeBlob                -> []byte
func ToGo(v any, t Type) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case TypeBoolean:
		return toBool(v)
	case TypeInt:
		return toInt(v)
	case TypeUnsignedInt:
		return toUint(v)
	case TypeBigInt:
		return toBigInt(v)
	case TypeDecimal, TypeFloat:
		return toFloat(v)
	case TypeDate, TypeDateTime, TypeTimestamp:
		return toTime(v)
	case TypeTime:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v, nil
	case TypeJSON:
		return toJSON(v)
	case TypeSet:
		s, ok := textOf(v)
		if !ok {
			return nil, sqlerr.TypeMismatch("set value as text", v)
		}
		if s == "" {
			return []string{}, nil
		}
		return strings.Split(s, ","), nil
	case TypeBlob:
		switch b := v.(type) {
		case []byte:
			return append([]byte(nil), b...), nil
		case string:
			return []byte(b), nil
		}
		return v, nil
	default:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v, nil
	}
}

func textOf(v any) (string, bool) {
	switch s := v.(type) {
	case []byte:
		return string(s), true
	case string:
		return s, true
	}
	return "", false
}

func toBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case []byte:
		// BIT(1) arrives as a raw byte.
		if len(b) == 1 && b[0] <= 1 {
			return b[0] == 1, nil
		}
	}
	if s, ok := textOf(v); ok {
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return nil, sqlerr.TypeMismatch("boolean-like value", v)
		}
		return parsed, nil
	}
	return nil, sqlerr.TypeMismatch("boolean-like value", v)
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), nil
		}
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), nil
		}
	}
	if s, ok := textOf(v); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	}
	return nil, sqlerr.TypeMismatch("integer", v)
}

func toUint(v any) (any, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		if n >= 0 {
			return uint64(n), nil
		}
	}
	if s, ok := textOf(v); ok {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n, nil
		}
	}
	return nil, sqlerr.TypeMismatch("unsigned integer", v)
}

func toBigInt(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case *big.Int:
		return n, nil
	}
	if s, ok := textOf(v); ok {
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n, nil
		}
	}
	return nil, sqlerr.TypeMismatch("big integer", v)
}

func toFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	if s, ok := textOf(v); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	return nil, sqlerr.TypeMismatch("number", v)
}

func toTime(v any) (any, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s, ok := textOf(v)
	if !ok {
		return nil, sqlerr.TypeMismatch("date-like value", v)
	}
	if strings.HasPrefix(s, "0000-00-00") {
		return nil, nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, sqlerr.TypeMismatch("date-like value", v)
}

func toJSON(v any) (any, error) {
	s, ok := textOf(v)
	if !ok {
		return v, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, &sqlerr.Error{Kind: sqlerr.KindTypeMismatch, Message: "invalid JSON column value", Value: s, Err: err}
	}
	return out, nil
}

// ToSQL serializes v as an SQL literal for a column of type t using the
// MySQL converter.
func ToSQL(v any, t Type) (string, error) {
	return MySQL.ToSQL(v, t)
}

// ToGo is the method form of the package-level ToGo.
func (Converter) ToGo(v any, t Type) (any, error) {
	return ToGo(v, t)
}

// ToSQL serializes v as an SQL literal for a column of type t.
// nil always yields NULL and Raw is spliced verbatim. Any other value must
// have a Go type matching what t requires, otherwise a TYPE_MISMATCH error
// is returned; values are never coerced across kinds.
func (c Converter) ToSQL(v any, t Type) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case Raw:
		return string(val), nil
	case *big.Int:
		if val == nil {
			return "NULL", nil
		}
	}

	switch t {
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return "", sqlerr.TypeMismatch("boolean", v)
		}
		return boolSQL(b), nil

	case TypeInt, TypeBigInt:
		s, ok := integerSQL(v)
		if !ok {
			return "", sqlerr.TypeMismatch("integer", v)
		}
		return s, nil

	case TypeUnsignedInt:
		s, ok := integerSQL(v)
		if !ok || strings.HasPrefix(s, "-") {
			return "", sqlerr.TypeMismatch("unsigned integer", v)
		}
		return s, nil

	case TypeDecimal, TypeFloat:
		s, ok := numberSQL(v)
		if !ok {
			return "", sqlerr.TypeMismatch("finite number", v)
		}
		return s, nil

	case TypeDate, TypeDateTime, TypeTimestamp:
		tm, ok := v.(time.Time)
		if !ok {
			return "", sqlerr.TypeMismatch("time.Time", v)
		}
		return c.Quote(formatTemporal(tm, t)), nil

	case TypeTime:
		switch tm := v.(type) {
		case time.Time:
			return c.Quote(tm.Format(TimeLayout)), nil
		case string:
			return c.Quote(tm), nil
		}
		return "", sqlerr.TypeMismatch("time.Time or time string", v)

	case TypeJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return "", &sqlerr.Error{Kind: sqlerr.KindTypeMismatch, Message: "value is not JSON-serializable", Value: v, Err: err}
		}
		return c.Quote(string(data)), nil

	case TypeSet:
		switch set := v.(type) {
		case []string:
			for _, member := range set {
				if strings.Contains(member, ",") {
					return "", sqlerr.TypeMismatch("set members without commas", v)
				}
			}
			return c.Quote(strings.Join(set, ",")), nil
		case string:
			return c.Quote(set), nil
		}
		return "", sqlerr.TypeMismatch("[]string", v)

	case TypeString, TypeBlob:
		switch s := v.(type) {
		case string:
			return c.Quote(s), nil
		case []byte:
			return c.Quote(string(s)), nil
		}
		return "", sqlerr.TypeMismatch("string", v)

	default:
		return c.inferSQL(v)
	}
}

// inferSQL serializes a value whose target type is unknown from its Go type.
func (c Converter) inferSQL(v any) (string, error) {
	switch val := v.(type) {
	case bool:
		return boolSQL(val), nil
	case string:
		return c.Quote(val), nil
	case []byte:
		return c.Quote(string(val)), nil
	case time.Time:
		return c.Quote(val.Format(DateTimeLayout)), nil
	case []string:
		return c.Quote(strings.Join(val, ",")), nil
	}
	if s, ok := numberSQL(v); ok {
		return s, nil
	}
	return "", sqlerr.TypeMismatch("value with a known SQL representation", v)
}

func formatTemporal(tm time.Time, t Type) string {
	if t == TypeDate {
		return tm.Format(DateLayout)
	}
	return tm.Format(DateTimeLayout)
}

func boolSQL(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// integerSQL renders integer kinds, big integers and integral finite floats.
func integerSQL(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case *big.Int:
		return n.String(), true
	case big.Int:
		return n.String(), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		return integerSQL(float64(n))
	}
	return "", false
}

// numberSQL renders any finite number.
func numberSQL(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 32), true
	}
	return integerSQL(v)
}
