package sqlvalue

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
)

var allTypes = []Type{
	TypeUnknown, TypeBoolean, TypeInt, TypeUnsignedInt, TypeBigInt, TypeDecimal,
	TypeFloat, TypeDate, TypeDateTime, TypeTimestamp, TypeTime, TypeJSON,
	TypeSet, TypeString, TypeBlob,
}

func TestToSQL_NilIsAlwaysNULL(t *testing.T) {
	for _, typ := range allTypes {
		got, err := ToSQL(nil, typ)
		require.NoError(t, err, typ.String())
		assert.Equal(t, "NULL", got, typ.String())

		got, err = SQLite.ToSQL(nil, typ)
		require.NoError(t, err, typ.String())
		assert.Equal(t, "NULL", got, typ.String())
	}
}

func TestToSQL_RawIsVerbatim(t *testing.T) {
	got, err := ToSQL(Raw("`Created` + INTERVAL 1 DAY"), TypeDateTime)
	require.NoError(t, err)
	assert.Equal(t, "`Created` + INTERVAL 1 DAY", got)
}

func TestToSQL_Values(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC)

	tests := []struct {
		name  string
		value any
		typ   Type
		want  string
	}{
		{"bool true", true, TypeBoolean, "1"},
		{"bool false", false, TypeBoolean, "0"},
		{"int", 42, TypeInt, "42"},
		{"int64 negative", int64(-7), TypeInt, "-7"},
		{"integral float into int", 3.0, TypeInt, "3"},
		{"unsigned", uint32(7), TypeUnsignedInt, "7"},
		{"big int", new(big.Int).Lsh(big.NewInt(1), 70), TypeBigInt, "1180591620717411303424"},
		{"decimal", 9.5, TypeDecimal, "9.5"},
		{"decimal from int", 9, TypeDecimal, "9"},
		{"date", when, TypeDate, "'2024-03-09'"},
		{"datetime", when, TypeDateTime, "'2024-03-09 14:05:07.123'"},
		{"timestamp", when, TypeTimestamp, "'2024-03-09 14:05:07.123'"},
		{"time", when, TypeTime, "'14:05:07.123'"},
		{"time string", "10:00:00", TypeTime, "'10:00:00'"},
		{"json", map[string]any{"a": []int{1, 2}}, TypeJSON, `'{\"a\":[1,2]}'`},
		{"set", []string{"mod", "admin"}, TypeSet, "'mod,admin'"},
		{"string", "it's", TypeString, `'it\'s'`},
		{"blob", []byte("x"), TypeBlob, "'x'"},
		{"unknown bool", true, TypeUnknown, "1"},
		{"unknown string", "s", TypeUnknown, "'s'"},
		{"unknown float", 1.25, TypeUnknown, "1.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSQL(tt.value, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToSQL_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   Type
	}{
		{"string for boolean", "true", TypeBoolean},
		{"int for boolean", 1, TypeBoolean},
		{"string for int", "42", TypeInt},
		{"fraction for int", 1.5, TypeInt},
		{"NaN for decimal", math.NaN(), TypeDecimal},
		{"Inf for float", math.Inf(1), TypeFloat},
		{"negative for unsigned", -1, TypeUnsignedInt},
		{"string for date", "2024-01-01", TypeDate},
		{"int for string", 5, TypeString},
		{"comma in set member", []string{"a,b"}, TypeSet},
		{"channel for json", make(chan int), TypeJSON},
		{"struct for unknown", struct{}{}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToSQL(tt.value, tt.typ)
			require.Error(t, err)
			assert.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch), err.Error())
		})
	}
}

func TestToSQL_Deterministic(t *testing.T) {
	v := map[string]any{"b": 2, "a": 1}
	first, err := ToSQL(v, TypeJSON)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ToSQL(v, TypeJSON)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestToGo_Values(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   Type
		want  any
	}{
		{"nil", nil, TypeInt, nil},
		{"bool from int64", int64(1), TypeBoolean, true},
		{"bool from text", []byte("0"), TypeBoolean, false},
		{"bool from bit", []byte{1}, TypeBoolean, true},
		{"bool passthrough", true, TypeBoolean, true},
		{"int from text", []byte("-12"), TypeInt, int64(-12)},
		{"uint from int64", int64(12), TypeUnsignedInt, uint64(12)},
		{"big from text", []byte("18446744073709551616"), TypeBigInt, new(big.Int).Lsh(big.NewInt(1), 64)},
		{"decimal from text", []byte("9.50"), TypeDecimal, 9.5},
		{"float from int64", int64(3), TypeFloat, 3.0},
		{"time is text", []byte("10:00:00"), TypeTime, "10:00:00"},
		{"json", []byte(`{"a":[1,"x"]}`), TypeJSON, map[string]any{"a": []any{1.0, "x"}}},
		{"set", []byte("a,b"), TypeSet, []string{"a", "b"}},
		{"empty set", []byte(""), TypeSet, []string{}},
		{"string", []byte("hey"), TypeString, "hey"},
		{"blob", "hey", TypeBlob, []byte("hey")},
		{"unknown bytes", []byte("x"), TypeUnknown, "x"},
		{"unknown int", int64(5), TypeUnknown, int64(5)},
		{"zero date", []byte("0000-00-00 00:00:00"), TypeDateTime, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.value, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToGo_ParsesTemporalText(t *testing.T) {
	got, err := ToGo([]byte("2024-03-09 14:05:07.123"), TypeDateTime)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC), got)

	got, err = ToGo("2024-03-09", TypeDate)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestToGo_Errors(t *testing.T) {
	_, err := ToGo([]byte("abc"), TypeInt)
	assert.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch))

	_, err = ToGo([]byte("{"), TypeJSON)
	assert.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch))

	_, err = ToGo([]byte("yesterday"), TypeDate)
	assert.True(t, sqlerr.Is(err, sqlerr.KindTypeMismatch))
}

// unquote simulates the database storing a literal and handing it back as text.
func unquote(t *testing.T, literal string) any {
	t.Helper()
	if literal == "NULL" {
		return nil
	}
	if strings.HasPrefix(literal, "'") {
		inner := literal[1 : len(literal)-1]
		return []byte(strings.NewReplacer(`\\`, `\`, `\'`, `'`, `\"`, `"`).Replace(inner))
	}
	return []byte(literal)
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC)

	tests := []struct {
		value any
		typ   Type
		want  any
	}{
		{true, TypeBoolean, true},
		{int64(-5), TypeInt, int64(-5)},
		{uint64(5), TypeUnsignedInt, uint64(5)},
		{big.NewInt(1 << 40), TypeBigInt, big.NewInt(1 << 40)},
		{9.25, TypeDecimal, 9.25},
		{when, TypeDateTime, when},
		{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), TypeDate, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{map[string]any{"k": "v's"}, TypeJSON, map[string]any{"k": "v's"}},
		{[]string{"a", "b"}, TypeSet, []string{"a", "b"}},
		{`quote ' and "double" \ slash`, TypeString, `quote ' and "double" \ slash`},
		{nil, TypeString, nil},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			literal, err := ToSQL(tt.value, tt.typ)
			require.NoError(t, err)
			got, err := ToGo(unquote(t, literal), tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
