package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// Record is one buffered row, column name to Go value.
type Record map[string]any

// Options configure a Batch.
type Options struct {
	// Threshold is the record count Insert waits for; values below 1 mean 1.
	Threshold int
}

// DuplicateFunc returns the assignments that follow the dialect's upsert
// keyword ("ON DUPLICATE KEY UPDATE" or "ON CONFLICT DO UPDATE SET").
// It receives the serialized values of every record and the escaped
// column names, in the same order.
type DuplicateFunc func(data [][]string, columns []string) string

// InsertOptions tune Insert. Ignore and Duplicate are mutually exclusive.
type InsertOptions struct {
	Ignore    bool
	Duplicate DuplicateFunc
}

// Batch buffers records of one table and writes them with a single
// multi-row INSERT once Threshold records are buffered.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	st *store.Store
	tx *store.Transaction

	database  string
	table     string
	threshold int

	def     *schema.TableDefinition
	columns []schema.ColumnDefinition
	records []Record
}

// New creates a batch for database.table. Initialize must be called
// before records are added.
func New(st *store.Store, database, table string, opts Options) *Batch {
	threshold := opts.Threshold
	if threshold < 1 {
		threshold = 1
	}
	return &Batch{
		st:        st,
		database:  database,
		table:     table,
		threshold: threshold,
	}
}

// Transaction runs Insert inside tx.
func (b *Batch) Transaction(tx *store.Transaction) *Batch {
	b.tx = tx
	return b
}

// Initialize checks that every column exists and snapshots their definitions.
func (b *Batch) Initialize(ctx context.Context, columns []string) error {
	if len(columns) == 0 {
		return sqlerr.New(sqlerr.KindInvalidBuilderState, "batch needs at least one column").
			WithTable(b.database, b.table)
	}
	def, err := b.st.Definition(ctx, b.database, b.table)
	if err != nil {
		return fmt.Errorf("initialize batch: %w", err)
	}

	cols := make([]schema.ColumnDefinition, 0, len(columns))
	for _, name := range columns {
		col, err := def.MustColumn(name)
		if err != nil {
			return err
		}
		cols = append(cols, col)
	}
	b.def = def
	b.columns = cols
	return nil
}

// Threshold returns the configured flush threshold.
func (b *Batch) Threshold() int { return b.threshold }

// Len returns the number of buffered records.
func (b *Batch) Len() int { return len(b.records) }

// Records returns the buffered records.
func (b *Batch) Records() []Record {
	return append([]Record(nil), b.records...)
}

// Clear drops every buffered record.
func (b *Batch) Clear() {
	b.records = nil
}

// Add buffers a record and returns its index. Every key must be one of the
// initialized columns; omitted columns are inserted as NULL.
func (b *Batch) Add(record Record) (int, error) {
	if b.def == nil {
		return -1, sqlerr.New(sqlerr.KindInvalidBuilderState, "batch is not initialized").
			WithTable(b.database, b.table)
	}
	for name := range record {
		if !b.hasColumn(name) {
			return -1, sqlerr.New(sqlerr.KindUnrecognizedColumn, "column is not part of the batch").
				WithTable(b.database, b.table).
				WithColumn(name)
		}
	}
	b.records = append(b.records, record)
	return len(b.records) - 1, nil
}

func (b *Batch) hasColumn(name string) bool {
	for _, col := range b.columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// Delete removes the record at index; later records shift down by one.
func (b *Batch) Delete(index int) error {
	if index < 0 || index >= len(b.records) {
		return sqlerr.New(sqlerr.KindInvalidBuilderState, "batch index out of range").WithValue(index)
	}
	b.records = append(b.records[:index], b.records[index+1:]...)
	return nil
}

// Find returns the first record matching fn and its index, or nil and -1.
func (b *Batch) Find(fn func(Record) bool) (Record, int) {
	for i, rec := range b.records {
		if fn(rec) {
			return rec, i
		}
	}
	return nil, -1
}

// Insert writes the buffer as one INSERT when it holds at least Threshold
// records, and reports whether it did. Once attempted, the buffer is
// cleared whether or not the statement succeeded; failed records are not
// re-queued.
func (b *Batch) Insert(ctx context.Context, opts InsertOptions) (bool, error) {
	if err := b.check(opts); err != nil {
		return false, err
	}
	if len(b.records) < b.threshold {
		return false, nil
	}
	return b.flush(ctx, opts)
}

// Flush inserts the buffered records regardless of the threshold. An empty
// buffer is a no-op returning false.
func (b *Batch) Flush(ctx context.Context, opts InsertOptions) (bool, error) {
	if err := b.check(opts); err != nil {
		return false, err
	}
	if len(b.records) == 0 {
		return false, nil
	}
	return b.flush(ctx, opts)
}

func (b *Batch) check(opts InsertOptions) error {
	if opts.Ignore && opts.Duplicate != nil {
		return sqlerr.New(sqlerr.KindInvalidBuilderState, "ignore and duplicate cannot be combined").
			WithTable(b.database, b.table)
	}
	if b.def == nil {
		return sqlerr.New(sqlerr.KindInvalidBuilderState, "batch is not initialized").
			WithTable(b.database, b.table)
	}
	return nil
}

func (b *Batch) flush(ctx context.Context, opts InsertOptions) (bool, error) {
	defer b.Clear()

	stmt, err := b.compile(opts)
	if err == nil {
		var exec store.Executor = b.st
		if b.tx != nil {
			exec = b.tx
		}
		_, err = exec.Exec(ctx, stmt)
	}
	if err != nil {
		b.st.Logger().ErrorContext(ctx, "batch insert failed",
			"table", b.def.Path,
			"records", len(b.records),
			"error", err,
		)
		return false, fmt.Errorf("batch insert into %s: %w", b.def.Path, err)
	}
	return true, nil
}

func (b *Batch) compile(opts InsertOptions) (string, error) {
	conv := b.st.Converter()

	columns := make([]string, len(b.columns))
	for i, col := range b.columns {
		columns[i] = sqlvalue.EscapeIdentifier(col.Name)
	}

	data := make([][]string, len(b.records))
	rows := make([]string, len(b.records))
	for i, rec := range b.records {
		values := make([]string, len(b.columns))
		for j, col := range b.columns {
			lit, err := conv.ToSQL(rec[col.Name], col.Type)
			if err != nil {
				return "", columnError(err, b.def, col.Name)
			}
			values[j] = lit
		}
		data[i] = values
		rows[i] = "(" + strings.Join(values, ", ") + ")"
	}

	var sb strings.Builder
	dialect := b.st.Dialect()
	sb.WriteString(dialect.InsertInto(opts.Ignore))
	sb.WriteString(" ")
	sb.WriteString(b.def.EscapedPath)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")
	sb.WriteString(strings.Join(rows, ", "))
	if opts.Duplicate != nil {
		sb.WriteString(" ")
		sb.WriteString(dialect.Upsert())
		sb.WriteString(" ")
		sb.WriteString(opts.Duplicate(data, columns))
	}
	return sb.String(), nil
}

// Excluded returns the expression for the value an upsert tried to insert
// into column: VALUES(`c`) on MySQL, excluded.`c` on SQLite.
func Excluded(d store.Dialect, column string) string {
	quoted := sqlvalue.EscapeIdentifier(column)
	if d == store.SQLite {
		return "excluded." + quoted
	}
	return "VALUES(" + quoted + ")"
}

func columnError(err error, def *schema.TableDefinition, column string) error {
	if se, ok := err.(*sqlerr.Error); ok {
		return se.WithTable(def.Database, def.Name).WithColumn(column)
	}
	return err
}
