package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Supinic/supi-core-sub000/internal/query"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// UpdateOptions configure Update.
type UpdateOptions struct {
	// ChunkSize is the number of records per transaction; 0 puts every
	// record into one chunk.
	ChunkSize int

	// Stagger, when positive, starts chunk i after i*Stagger and lets
	// chunks run concurrently. When zero, chunks run one after another.
	Stagger time.Duration
}

// ChunkError reports a chunk that was rolled back.
type ChunkError struct {
	Chunk int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// UpdateReport summarizes an Update run.
type UpdateReport struct {
	Chunks    int
	Succeeded int
	Failed    int
	Errors    []*ChunkError
}

// Update runs one UPDATE per record, configured by fn, in per-chunk
// transactions. Each chunk commits or rolls back on its own; a failing
// chunk is logged and does not stop the others.
func Update[T any](ctx context.Context, st *store.Store, records []T, fn func(u *query.RecordUpdater, record T), opts UpdateOptions) UpdateReport {
	chunks := chunk(records, opts.ChunkSize)
	report := UpdateReport{Chunks: len(chunks)}

	var mu sync.Mutex
	record := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			report.Succeeded++
			return
		}
		report.Failed++
		report.Errors = append(report.Errors, &ChunkError{Chunk: i, Err: err})
		st.Logger().ErrorContext(ctx, "batch update chunk failed", "chunk", i, "records", len(chunks[i]), "error", err)
	}

	if opts.Stagger <= 0 {
		for i, c := range chunks {
			record(i, runChunk(ctx, st, c, fn))
		}
		return report
	}

	var wg sync.WaitGroup
	for i, c := range chunks {
		delay := time.Duration(i) * opts.Stagger
		wg.Go(func() {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				record(i, ctx.Err())
				return
			case <-timer.C:
			}
			record(i, runChunk(ctx, st, c, fn))
		})
	}
	wg.Wait()
	return report
}

func runChunk[T any](ctx context.Context, st *store.Store, records []T, fn func(*query.RecordUpdater, T)) error {
	tx, err := st.Transaction(ctx)
	if err != nil {
		return err
	}
	defer tx.End() //nolint:errcheck // no-op after Commit

	for _, rec := range records {
		u := query.NewUpdater(st).Transaction(tx)
		fn(u, rec)
		if _, err := u.Exec(ctx); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func chunk[T any](records []T, size int) [][]T {
	if len(records) == 0 {
		return nil
	}
	if size <= 0 || size > len(records) {
		size = len(records)
	}
	var out [][]T
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}
