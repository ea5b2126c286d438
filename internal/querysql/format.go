package querysql

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// Formatter expands format symbols into escaped SQL for one escape style.
//
// Recognized symbols and the Go types they accept:
//
//	%b       bool                  -> 1 | 0
//	%n       finite number         -> 42, 9.5
//	%s       string                -> 'escaped'
//	%d       time.Time             -> 'YYYY-MM-DD'
//	%dt      time.Time             -> 'YYYY-MM-DD HH:MM:SS.mmm'
//	%t       time.Time             -> 'HH:MM:SS.mmm'
//	%n+      slice of numbers      -> (1,2,3)
//	%s+      slice of strings      -> ('a','b')
//	%like    string                -> LIKE 'x'
//	%*like   string                -> LIKE '%x'
//	%like*   string                -> LIKE 'x%'
//	%*like*  string                -> LIKE '%x%'
//
// nil is accepted by the scalar symbols (%b %n %s %d %dt %t) and renders NULL.
type Formatter struct {
	Converter sqlvalue.Converter
}

// Default formats with the MySQL escape style.
var Default = Formatter{Converter: sqlvalue.MySQL}

// symbolPattern lists longer alternatives first; RE2 alternation is leftmost-first.
var symbolPattern = regexp.MustCompile(`%(s\+|n\+|\*?like\*?|dt|d|n|b|s|t)`)

// serializer validates a parameter for one symbol and renders it.
type serializer func(f Formatter, param any) (string, error)

// symbols is the symbol -> serializer table.
var symbols = map[string]serializer{
	"b":      formatBool,
	"n":      formatNumber,
	"s":      formatString,
	"d":      formatTemporal(sqlvalue.DateLayout, "%d"),
	"dt":     formatTemporal(sqlvalue.DateTimeLayout, "%dt"),
	"t":      formatTemporal(sqlvalue.TimeLayout, "%t"),
	"n+":     formatNumberList,
	"s+":     formatStringList,
	"like":   formatLike(false, false),
	"*like":  formatLike(true, false),
	"like*":  formatLike(false, true),
	"*like*": formatLike(true, true),
}

// ParseFormatSymbol renders param for symbol (without the leading %) using
// the MySQL escape style.
func ParseFormatSymbol(symbol string, param any) (string, error) {
	return Default.ParseFormatSymbol(symbol, param)
}

// Format expands template with the MySQL escape style.
func Format(template string, args ...any) (string, error) {
	return Default.Format(template, args...)
}

// ParseFormatSymbol validates param's Go type against symbol and renders it.
// It never coerces: a mismatching type or a NaN is a TYPE_MISMATCH error.
func (f Formatter) ParseFormatSymbol(symbol string, param any) (string, error) {
	fn, ok := symbols[symbol]
	if !ok {
		return "", sqlerr.New(sqlerr.KindInvalidFormatSymbol, "unknown format symbol %%%s", symbol)
	}
	out, err := fn(f, param)
	if err != nil {
		if e, ok := err.(*sqlerr.Error); ok && e.Kind == sqlerr.KindTypeMismatch {
			e.Message = "%" + symbol + ": " + e.Message
		}
		return "", err
	}
	return out, nil
}

// Format walks template left to right, replacing each recognized symbol with
// the next positional argument. The number of symbols and arguments must match.
func (f Formatter) Format(template string, args ...any) (string, error) {
	matches := symbolPattern.FindAllStringSubmatchIndex(template, -1)
	if len(matches) != len(args) {
		return "", sqlerr.New(sqlerr.KindInvalidFormatSymbol,
			"template has %d format symbols but %d arguments were given", len(matches), len(args)).
			WithValue(template)
	}
	if len(matches) == 0 {
		return template, nil
	}

	var b strings.Builder
	last := 0
	for i, m := range matches {
		b.WriteString(template[last:m[0]])
		out, err := f.ParseFormatSymbol(template[m[2]:m[3]], args[i])
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

func formatBool(_ Formatter, param any) (string, error) {
	if param == nil {
		return "NULL", nil
	}
	b, ok := param.(bool)
	if !ok {
		return "", sqlerr.TypeMismatch("boolean", param)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func formatNumber(f Formatter, param any) (string, error) {
	if param == nil {
		return "NULL", nil
	}
	if _, ok := param.(bool); ok {
		return "", sqlerr.TypeMismatch("finite number", param)
	}
	out, err := f.Converter.ToSQL(param, sqlvalue.TypeDecimal)
	if err != nil {
		return "", sqlerr.TypeMismatch("finite number", param)
	}
	return out, nil
}

func formatString(f Formatter, param any) (string, error) {
	if param == nil {
		return "NULL", nil
	}
	s, ok := param.(string)
	if !ok {
		return "", sqlerr.TypeMismatch("string", param)
	}
	return f.Converter.Quote(s), nil
}

func formatTemporal(layout, name string) serializer {
	return func(f Formatter, param any) (string, error) {
		if param == nil {
			return "NULL", nil
		}
		tm, ok := param.(time.Time)
		if !ok {
			return "", sqlerr.TypeMismatch("time.Time", param)
		}
		return f.Converter.Quote(tm.Format(layout)), nil
	}
}

// sliceElems returns the elements of any slice value.
func sliceElems(param any) ([]any, bool) {
	if param == nil {
		return nil, false
	}
	rv := reflect.ValueOf(param)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func formatNumberList(f Formatter, param any) (string, error) {
	elems, ok := sliceElems(param)
	if !ok {
		return "", sqlerr.TypeMismatch("slice of numbers", param)
	}
	if len(elems) == 0 {
		return "(NULL)", nil
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e == nil {
			return "", sqlerr.TypeMismatch("homogeneous slice of finite numbers", param)
		}
		out, err := formatNumber(f, e)
		if err != nil {
			return "", sqlerr.TypeMismatch("homogeneous slice of finite numbers", param)
		}
		parts[i] = out
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func formatStringList(f Formatter, param any) (string, error) {
	elems, ok := sliceElems(param)
	if !ok {
		return "", sqlerr.TypeMismatch("slice of strings", param)
	}
	if len(elems) == 0 {
		return "(NULL)", nil
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.(string)
		if !ok {
			return "", sqlerr.TypeMismatch("homogeneous slice of strings", param)
		}
		parts[i] = f.Converter.Quote(s)
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func formatLike(leading, trailing bool) serializer {
	return func(f Formatter, param any) (string, error) {
		s, ok := param.(string)
		if !ok {
			return "", sqlerr.TypeMismatch("string", param)
		}
		pattern := f.Converter.EscapeLikeString(s)
		if leading {
			pattern = "%" + pattern
		}
		if trailing {
			pattern += "%"
		}
		return f.Converter.Like(pattern), nil
	}
}
