package batch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/batch"
	"github.com/Supinic/supi-core-sub000/internal/query"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/testutil"
)

type quantityChange struct {
	id       int
	column   string
	quantity int
}

func setQuantity(u *query.RecordUpdater, c quantityChange) {
	u.Update("shop", "items").Set(c.column, c.quantity).Where("ID = %n", c.id)
}

func TestUpdate_Sequential(t *testing.T) {
	st := testutil.NewStore(t)
	testutil.MustExec(t, st, "INSERT INTO `shop`.`items` (`ID`, `order_id`, `sku`, `quantity`) VALUES (1, 1, 'A', 1), (2, 1, 'B', 1), (3, 1, 'C', 1)")
	ctx := context.Background()

	changes := []quantityChange{
		{id: 1, column: "quantity", quantity: 10},
		{id: 2, column: "quantity", quantity: 20},
		{id: 3, column: "quantity", quantity: 30},
	}
	report := batch.Update(ctx, st, changes, setQuantity, batch.UpdateOptions{ChunkSize: 2})

	assert.Equal(t, batch.UpdateReport{Chunks: 2, Succeeded: 2}, report)

	got, err := query.NewRecordset(st).
		Select("quantity").
		From("shop", "items").
		OrderBy("ID").
		Flat("quantity").
		FetchValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20), int64(30)}, got)
}

func TestUpdate_StaggeredChunkFailureIsIsolated(t *testing.T) {
	st := testutil.NewStore(t)
	testutil.MustExec(t, st, "INSERT INTO `shop`.`items` (`ID`, `order_id`, `sku`, `quantity`) VALUES (1, 1, 'A', 1), (2, 1, 'B', 1), (3, 1, 'C', 1), (4, 1, 'D', 1)")
	ctx := context.Background()

	changes := []quantityChange{
		{id: 1, column: "quantity", quantity: 10},
		{id: 2, column: "quantity", quantity: 20},
		// The second chunk updates id 3, then fails on an unknown column.
		{id: 3, column: "quantity", quantity: 30},
		{id: 4, column: "amount", quantity: 40},
	}

	start := time.Now()
	report := batch.Update(ctx, st, changes, setQuantity, batch.UpdateOptions{ChunkSize: 2, Stagger: 20 * time.Millisecond})
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "second chunk waits for its offset")

	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Chunk)
	assert.True(t, sqlerr.Is(report.Errors[0], sqlerr.KindUnrecognizedColumn))

	got, err := query.NewRecordset(st).
		Select("quantity").
		From("shop", "items").
		OrderBy("ID").
		Flat("quantity").
		FetchValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20), int64(1), int64(1)}, got, "failed chunk rolled back entirely")
}

func TestUpdate_CancelledBeforeStart(t *testing.T) {
	st := testutil.NewStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	changes := []quantityChange{{id: 1, column: "quantity", quantity: 1}, {id: 2, column: "quantity", quantity: 2}}
	report := batch.Update(ctx, st, changes, setQuantity, batch.UpdateOptions{ChunkSize: 1, Stagger: time.Hour})

	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 2, report.Failed)
}

func TestUpdate_Empty(t *testing.T) {
	st := testutil.NewStore(t)
	report := batch.Update(context.Background(), st, []quantityChange(nil), setQuantity, batch.UpdateOptions{})
	assert.Equal(t, batch.UpdateReport{}, report)
}
