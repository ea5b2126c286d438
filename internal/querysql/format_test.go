package querysql

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

func TestParseFormatSymbol(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		symbol string
		param  any
		want   string
	}{
		{"b", true, "1"},
		{"b", false, "0"},
		{"n", 42, "42"},
		{"n", 9.5, "9.5"},
		{"n", int64(-3), "-3"},
		{"s", "it's", `'it\'s'`},
		{"d", when, "'2024-03-09'"},
		{"dt", when, "'2024-03-09 14:05:07.000'"},
		{"t", when, "'14:05:07.000'"},
		{"n+", []int{1, 2, 3}, "(1,2,3)"},
		{"n+", []any{1, 2.5}, "(1,2.5)"},
		{"n+", []int{}, "(NULL)"},
		{"s+", []string{"a", "b'"}, `('a','b\'')`},
		{"s+", []any{"x"}, "('x')"},
		{"like", "a_b", `LIKE 'a\_b'`},
		{"like", `a\b`, `LIKE 'a\\\\b'`},
		{"*like", "abc", "LIKE '%abc'"},
		{"like*", "abc", "LIKE 'abc%'"},
		{"*like*", "50%", `LIKE '%50\%%'`},
		{"s", nil, "NULL"},
		{"n", nil, "NULL"},
		{"b", nil, "NULL"},
		{"dt", nil, "NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := ParseFormatSymbol(tt.symbol, tt.param)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatSymbol_TypeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		param  any
	}{
		{"string for bool", "b", "true"},
		{"int for bool", "b", 1},
		{"NaN", "n", math.NaN()},
		{"Inf", "n", math.Inf(-1)},
		{"string for number", "n", "42"},
		{"bool for number", "n", true},
		{"int for string", "s", 5},
		{"string for date", "d", "2024-01-01"},
		{"string for datetime", "dt", "now"},
		{"mixed numbers", "n+", []any{1, "2"}},
		{"NaN in list", "n+", []any{1, math.NaN()}},
		{"nil in list", "n+", []any{1, nil}},
		{"not a slice", "n+", 1},
		{"mixed strings", "s+", []any{"a", 1}},
		{"nil list", "s+", nil},
		{"number for like", "*like*", 5},
		{"nil for like", "like", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormatSymbol(tt.symbol, tt.param)
			require.Error(t, err)
			assert.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch), err.Error())
			assert.Contains(t, err.Error(), "%"+tt.symbol)
		})
	}
}

func TestParseFormatSymbol_Unknown(t *testing.T) {
	_, err := ParseFormatSymbol("x", 1)
	assert.True(t, sqlerr.Is(err, sqlerr.KindInvalidFormatSymbol))
}

func TestParseFormatSymbol_StandardEscaping(t *testing.T) {
	f := Formatter{Converter: sqlvalue.SQLite}

	got, err := f.ParseFormatSymbol("s", `it's \ fine`)
	require.NoError(t, err)
	assert.Equal(t, `'it''s \ fine'`, got)

	got, err = f.ParseFormatSymbol("*like", "50%")
	require.NoError(t, err)
	assert.Equal(t, `LIKE '%50\%' ESCAPE '\'`, got)
}

func TestFormat(t *testing.T) {
	got, err := Format("Name = %s AND Active = %b AND ID IN %n+", "supinic", true, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "Name = 'supinic' AND Active = 1 AND ID IN (1,2)", got)
}

func TestFormat_LongestSymbolWins(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := Format("A = %dt AND B %*like* AND C IN %s+", when, "x", []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, "A = '2024-01-02 03:04:05.000' AND B LIKE '%x%' AND C IN ('y')", got)
}

func TestFormat_NoSymbols(t *testing.T) {
	got, err := Format("Deleted IS NULL")
	require.NoError(t, err)
	assert.Equal(t, "Deleted IS NULL", got)
}

func TestFormat_ArgumentCountMismatch(t *testing.T) {
	_, err := Format("A = %n AND B = %n", 1)
	assert.True(t, sqlerr.Is(err, sqlerr.KindInvalidFormatSymbol))

	_, err = Format("A = 1", 1)
	assert.True(t, sqlerr.Is(err, sqlerr.KindInvalidFormatSymbol))
}

func TestConditions(t *testing.T) {
	c := NewConditions(Default)
	assert.Equal(t, "", c.SQL())

	c.Add("A = %n", 1)
	c.AddIf(false, "B = %s", 123) // skipped, not validated
	c.AddIf(true, "C = %s", "x")
	c.AddRaw("D IS NULL")

	require.NoError(t, c.Err())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "(A = 1) AND (C = 'x') AND (D IS NULL)", c.SQL())
}

func TestConditions_KeepsFirstError(t *testing.T) {
	c := NewConditions(Default)
	c.Add("A = %b", "nope")
	c.Add("B = %n", 1)

	require.Error(t, c.Err())
	assert.True(t, sqlerr.Is(c.Err(), sqlerr.KindTypeMismatch))
	assert.Equal(t, 0, c.Len())
}
