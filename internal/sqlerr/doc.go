// Package sqlerr defines the structured errors of the query layer.
//
// All errors raised by the schema cache, type converter, format-symbol
// parser and builders are *Error values. Callers branch on Kind:
//
//	if sqlerr.Is(err, sqlerr.KindNoRowFound) {
//	    // ...
//	}
//
// Nothing in the query layer retries; retry policy belongs to the caller.
package sqlerr
