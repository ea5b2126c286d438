package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesContext(t *testing.T) {
	err := New(KindUnrecognizedColumn, "column does not exist").
		WithTable("shop", "orders").
		WithColumn("nope")

	assert.Equal(t, "UNRECOGNIZED_COLUMN: column does not exist (table=shop.orders, column=nope)", err.Error())
}

func TestError_TypeMismatchIncludesValueType(t *testing.T) {
	err := TypeMismatch("boolean", "true")
	assert.Contains(t, err.Error(), "TYPE_MISMATCH: expected boolean")
	assert.Contains(t, err.Error(), "value=true (string)")
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindConnectionAcquisition, cause, "acquire connection")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestIs_WorksThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load row: %w", New(KindNoRowFound, "no row"))

	assert.True(t, Is(err, KindNoRowFound))
	assert.False(t, Is(err, KindRowNotLoaded))
	assert.False(t, Is(nil, KindNoRowFound))
	assert.Equal(t, KindNoRowFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
