// Package querysql expands typed format symbols in condition templates into
// escaped SQL and collects the resulting fragments for the builders.
//
// A template is plain SQL with positional placeholders:
//
//	conds := querysql.NewConditions(querysql.Default)
//	conds.Add("Name = %s AND Active = %b", "supinic", true)
//	conds.Add("ID IN %n+", []int{1, 2, 3})
//	conds.SQL() // (Name = 'supinic' AND Active = 1) AND (ID IN (1,2,3))
//
// Every symbol validates the Go type of its argument before rendering;
// nothing is coerced. The symbol table in format.go is the single place
// that maps a symbol to its validation and serialization.
package querysql
