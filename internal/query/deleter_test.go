package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/query"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/testutil"
)

func TestDeleter_SQL(t *testing.T) {
	st := mysqlStore(t)
	ctx := context.Background()

	sql, err := query.NewDeleter(st).
		Delete().
		From("chat_data", "User_Alias").
		Where("Name %like*", "50%_off").
		SQL(ctx)
	require.NoError(t, err)
	testutil.AssertGoldenSQL(t, "deleter_where", sql)

	sql, err = query.NewDeleter(st).
		Delete().
		From("chat_data", "User_Alias").
		Confirm().
		SQL(ctx)
	require.NoError(t, err)
	testutil.AssertGoldenSQL(t, "deleter_confirmed", sql)
}

func TestDeleter_RequiresWhereOrConfirm(t *testing.T) {
	st := mysqlStore(t)

	_, err := query.NewDeleter(st).From("chat_data", "User_Alias").SQL(context.Background())
	require.Error(t, err)
	assert.True(t, sqlerr.Is(err, sqlerr.KindInvalidBuilderState))

	// A gated condition that was skipped does not count as a where.
	_, err = query.NewDeleter(st).
		From("chat_data", "User_Alias").
		WhereIf(false, "ID = %n", 1).
		SQL(context.Background())
	assert.True(t, sqlerr.Is(err, sqlerr.KindInvalidBuilderState))
}

func TestDeleter_Exec(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	n, err := query.NewDeleter(st).
		Delete().
		From("shop", "items").
		Where("sku = %s", "A").
		Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, int64(1), testutil.Count(t, st, "items"))

	n, err = query.NewDeleter(st).
		Delete().
		From("shop", "items").
		Confirm().
		Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(0), testutil.Count(t, st, "items"))
}

func TestDeleter_ExecUnconfirmedRunsNothing(t *testing.T) {
	st := seededStore(t)

	_, err := query.NewDeleter(st).From("shop", "items").Exec(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(3), testutil.Count(t, st, "items"))
}
