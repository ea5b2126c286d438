package sqlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the structured error returned by the query layer.
//
// Every error carries a Kind for programmatic handling plus whatever
// context was available where it was raised (table, column, offending
// value). The underlying driver error, if any, is preserved in Err.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// Database and Table identify the table involved, if any.
	Database string
	Table    string

	// Column identifies the column involved, if any.
	Column string

	// Value is the offending value, if any.
	Value any

	// Err is the underlying cause.
	Err error
}

// Kind categorizes query layer errors.
type Kind string

const (
	// KindConnectionAcquisition indicates the pool could not hand out a connection.
	KindConnectionAcquisition Kind = "CONNECTION_ACQUISITION_FAILED"

	// KindUnrecognizedColumn indicates a column absent from the cached table definition.
	KindUnrecognizedColumn Kind = "UNRECOGNIZED_COLUMN"

	// KindUnknownTable indicates introspection found no such table.
	KindUnknownTable Kind = "UNKNOWN_TABLE"

	// KindInvalidBuilderState indicates a builder was executed in an unusable state.
	KindInvalidBuilderState Kind = "INVALID_BUILDER_STATE"

	// KindTypeMismatch indicates a value's Go type disagrees with the target SQL type.
	KindTypeMismatch Kind = "TYPE_MISMATCH"

	// KindInvalidFormatSymbol indicates an unknown format symbol or a missing argument.
	KindInvalidFormatSymbol Kind = "INVALID_FORMAT_SYMBOL"

	// KindRowNotInitialized indicates a Row was used before Initialize.
	KindRowNotInitialized Kind = "ROW_NOT_INITIALIZED"

	// KindRowNotLoaded indicates a Row operation that requires a loaded row.
	KindRowNotLoaded Kind = "ROW_NOT_LOADED"

	// KindRowDeleted indicates a Row was used after Delete.
	KindRowDeleted Kind = "ROW_DELETED"

	// KindNoRowFound indicates Load matched no record.
	KindNoRowFound Kind = "NO_ROW_FOUND"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)

	var ctx []string
	if e.Table != "" {
		if e.Database != "" {
			ctx = append(ctx, "table="+e.Database+"."+e.Table)
		} else {
			ctx = append(ctx, "table="+e.Table)
		}
	}
	if e.Column != "" {
		ctx = append(ctx, "column="+e.Column)
	}
	if e.Value != nil {
		ctx = append(ctx, fmt.Sprintf("value=%v (%T)", e.Value, e.Value))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithTable attaches table context and returns e.
func (e *Error) WithTable(database, table string) *Error {
	e.Database = database
	e.Table = table
	return e
}

// WithColumn attaches column context and returns e.
func (e *Error) WithColumn(column string) *Error {
	e.Column = column
	return e
}

// WithValue attaches the offending value and returns e.
func (e *Error) WithValue(v any) *Error {
	e.Value = v
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err's chain contains an *Error of the given kind.
// Uses errors.As to handle wrapped errors.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// TypeMismatch creates a KindTypeMismatch error describing what was expected.
func TypeMismatch(expected string, value any) *Error {
	return &Error{
		Kind:    KindTypeMismatch,
		Message: "expected " + expected,
		Value:   value,
	}
}
