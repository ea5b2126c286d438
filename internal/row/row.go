package row

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/query"
	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// Key is an explicit primary key, column name to value. Load needs one for
// tables with a composite primary key.
type Key map[string]any

// SaveOptions tune Save.
type SaveOptions struct {
	// Ignore uses INSERT IGNORE / UPDATE IGNORE.
	Ignore bool

	// SkipLoad keeps an inserted row as written instead of reloading it to
	// pick up server-side defaults.
	SkipLoad bool
}

// Row is one record of a table, addressed by its primary key.
//
// Lifecycle: Initialize binds the table; Load fills values from the
// database; Set/SetValues change them; Save writes only what changed
// (UPDATE) or what was assigned (INSERT); Delete removes the record and
// leaves the Row unusable.
//
// A Row is not safe for concurrent use.
type Row struct {
	st *store.Store
	tx *store.Transaction

	def      *schema.TableDefinition
	values   map[string]Value
	original map[string]Value

	loaded  bool
	deleted bool
}

// New creates an uninitialized Row bound to st.
func New(st *store.Store) *Row {
	return &Row{st: st}
}

// Transaction runs every following statement inside tx.
func (r *Row) Transaction(tx *store.Transaction) *Row {
	r.tx = tx
	return r
}

// Initialize binds the row to database.table. It must be called before any
// other method; calling it again rebinds and resets the row. A deleted row
// cannot be initialized again.
func (r *Row) Initialize(ctx context.Context, database, table string) error {
	if r.deleted {
		return r.errorf(sqlerr.KindRowDeleted, "row was deleted")
	}
	def, err := r.st.Definition(ctx, database, table)
	if err != nil {
		return fmt.Errorf("initialize row: %w", err)
	}
	r.def = def
	r.Reset()
	return nil
}

// Reset forgets all values and marks the row unloaded.
func (r *Row) Reset() {
	if r.def == nil {
		return
	}
	r.values = make(map[string]Value, len(r.def.Columns))
	r.original = make(map[string]Value, len(r.def.Columns))
	for _, col := range r.def.Columns {
		r.values[col.Name] = Unset()
		r.original[col.Name] = Unset()
	}
	r.loaded = false
}

// Definition returns the bound table definition, or nil before Initialize.
func (r *Row) Definition() *schema.TableDefinition { return r.def }

// Loaded reports whether the row mirrors a database record.
func (r *Row) Loaded() bool { return r.loaded }

// Deleted reports whether the row was deleted.
func (r *Row) Deleted() bool { return r.deleted }

func (r *Row) usable() error {
	if r.deleted {
		return r.errorf(sqlerr.KindRowDeleted, "row was deleted")
	}
	if r.def == nil {
		return sqlerr.New(sqlerr.KindRowNotInitialized, "row is not initialized")
	}
	return nil
}

func (r *Row) errorf(kind sqlerr.Kind, format string, args ...any) *sqlerr.Error {
	e := sqlerr.New(kind, format, args...)
	if r.def != nil {
		e.WithTable(r.def.Database, r.def.Name)
	}
	return e
}

func (r *Row) column(name string) (schema.ColumnDefinition, error) {
	if err := r.usable(); err != nil {
		return schema.ColumnDefinition{}, err
	}
	return r.def.MustColumn(name)
}

// HasProperty reports whether the bound table has the column.
func (r *Row) HasProperty(name string) (bool, error) {
	if err := r.usable(); err != nil {
		return false, err
	}
	return r.def.HasColumn(name), nil
}

// Value returns the raw Value of a column, set or not.
func (r *Row) Value(name string) (Value, error) {
	col, err := r.column(name)
	if err != nil {
		return Value{}, err
	}
	return r.values[col.Name], nil
}

// Get returns a column's current value. Reading a column that was never
// assigned is an error rather than a silent nil.
func (r *Row) Get(name string) (any, error) {
	v, err := r.Value(name)
	if err != nil {
		return nil, err
	}
	out, ok := v.Get()
	if !ok {
		return nil, r.errorf(sqlerr.KindInvalidBuilderState, "column has no value").WithColumn(name)
	}
	return out, nil
}

// Set assigns a column's current value.
func (r *Row) Set(name string, v any) error {
	col, err := r.column(name)
	if err != nil {
		return err
	}
	r.values[col.Name] = Of(v)
	return nil
}

// SetValues assigns several columns. Nothing is assigned if any column is
// unknown.
func (r *Row) SetValues(values map[string]any) error {
	if err := r.usable(); err != nil {
		return err
	}
	for name := range values {
		if _, err := r.def.MustColumn(name); err != nil {
			return err
		}
	}
	for name, v := range values {
		col, _ := r.def.Column(name)
		r.values[col.Name] = Of(v)
	}
	return nil
}

// Values returns the assigned current values.
func (r *Row) Values() map[string]any {
	return setValues(r.values)
}

// OriginalValues returns the values as last loaded or saved.
func (r *Row) OriginalValues() map[string]any {
	return setValues(r.original)
}

func setValues(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for name, v := range m {
		if val, ok := v.Get(); ok {
			out[name] = val
		}
	}
	return out
}

// PrimaryKeys returns the current primary key values.
func (r *Row) PrimaryKeys() (Key, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}
	key := make(Key)
	for _, col := range r.def.PrimaryKeys() {
		if v, ok := r.values[col.Name].Get(); ok {
			key[col.Name] = v
		}
	}
	return key, nil
}

// Load fills the row from the record whose primary key is pk. pk is either
// a Key or, for single-column primary keys, the bare key value.
// When no record matches, Load fails with NO_ROW_FOUND unless ignoreMissing
// is set, in which case the row is left reset and unloaded.
func (r *Row) Load(ctx context.Context, pk any, ignoreMissing bool) error {
	if err := r.usable(); err != nil {
		return err
	}
	key, err := r.resolveKey(pk)
	if err != nil {
		return err
	}
	cond, err := r.keyCondition(key)
	if err != nil {
		return err
	}

	r.Reset()
	rec, err := query.NewRecordset(r.st).
		Transaction(r.tx).
		From(r.def.Database, r.def.Name).
		WhereRaw(cond).
		Single().
		FetchOne(ctx)
	if err != nil {
		return fmt.Errorf("load row: %w", err)
	}
	if rec == nil {
		if ignoreMissing {
			return nil
		}
		return r.errorf(sqlerr.KindNoRowFound, "no row matches the primary key").WithValue(map[string]any(key))
	}

	for _, col := range r.def.Columns {
		v := Of(rec[col.Name])
		r.values[col.Name] = v
		r.original[col.Name] = v
	}
	r.loaded = true
	return nil
}

func (r *Row) resolveKey(pk any) (Key, error) {
	if k, ok := pk.(Key); ok {
		if len(k) == 0 {
			return nil, r.errorf(sqlerr.KindInvalidBuilderState, "empty primary key")
		}
		for name := range k {
			col, err := r.def.MustColumn(name)
			if err != nil {
				return nil, err
			}
			if !col.PrimaryKey {
				return nil, r.errorf(sqlerr.KindInvalidBuilderState, "column is not part of the primary key").WithColumn(name)
			}
		}
		return k, nil
	}

	keys := r.def.PrimaryKeys()
	switch len(keys) {
	case 0:
		return nil, r.errorf(sqlerr.KindInvalidBuilderState, "table has no primary key")
	case 1:
		return Key{keys[0].Name: pk}, nil
	default:
		return nil, r.errorf(sqlerr.KindInvalidBuilderState, "table has a composite primary key; use row.Key").WithValue(pk)
	}
}

// keyCondition renders "`a` = 1 AND `b` = 'x'" with columns in table order.
func (r *Row) keyCondition(key Key) (string, error) {
	conv := r.st.Converter()
	parts := make([]string, 0, len(key))
	for _, col := range r.def.Columns {
		v, ok := key[col.Name]
		if !ok {
			continue
		}
		lit, err := conv.ToSQL(v, col.Type)
		if err != nil {
			return "", withColumn(err, r.def, col.Name)
		}
		parts = append(parts, sqlvalue.EscapeIdentifier(col.Name)+" = "+lit)
	}
	return strings.Join(parts, " AND "), nil
}

// Save writes the row. A loaded row is updated with only the columns that
// changed, and Save reports false without touching the database if none
// did. A new row is inserted with only the assigned columns.
func (r *Row) Save(ctx context.Context, opts SaveOptions) (bool, error) {
	if err := r.usable(); err != nil {
		return false, err
	}
	if r.loaded {
		return r.update(ctx, opts)
	}
	return r.insert(ctx, opts)
}

func (r *Row) update(ctx context.Context, opts SaveOptions) (bool, error) {
	conv := r.st.Converter()
	var changed []schema.ColumnDefinition
	for _, col := range r.def.Columns {
		if !sameValue(conv, col, r.values[col.Name], r.original[col.Name]) {
			changed = append(changed, col)
		}
	}
	if len(changed) == 0 {
		return false, nil
	}

	key := make(Key)
	for _, col := range r.def.PrimaryKeys() {
		v, _ := r.original[col.Name].Get()
		key[col.Name] = v
	}
	if len(key) == 0 {
		return false, r.errorf(sqlerr.KindInvalidBuilderState, "table has no primary key")
	}
	cond, err := r.keyCondition(key)
	if err != nil {
		return false, err
	}

	u := query.NewUpdater(r.st).
		Transaction(r.tx).
		Update(r.def.Database, r.def.Name).
		WhereRaw(cond)
	if opts.Ignore {
		u.IgnoreDuplicates()
	}
	for _, col := range changed {
		v, _ := r.values[col.Name].Get()
		u.Set(col.Name, v)
	}
	if _, err := u.Exec(ctx); err != nil {
		return false, fmt.Errorf("save row: %w", err)
	}

	for _, col := range changed {
		r.original[col.Name] = r.values[col.Name]
	}
	return true, nil
}

func (r *Row) insert(ctx context.Context, opts SaveOptions) (bool, error) {
	conv := r.st.Converter()
	var (
		columns []string
		values  []string
	)
	for _, col := range r.def.Columns {
		v, ok := r.values[col.Name].Get()
		if !ok {
			continue
		}
		lit, err := conv.ToSQL(v, col.Type)
		if err != nil {
			return false, withColumn(err, r.def, col.Name)
		}
		columns = append(columns, sqlvalue.EscapeIdentifier(col.Name))
		values = append(values, lit)
	}
	if len(columns) == 0 {
		return false, r.errorf(sqlerr.KindInvalidBuilderState, "no values assigned to insert")
	}

	stmt := r.st.Dialect().InsertInto(opts.Ignore) + " " + r.def.EscapedPath +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(values, ", ") + ")"
	res, err := r.executor().Exec(ctx, stmt)
	if err != nil {
		return false, fmt.Errorf("save row: %w", err)
	}
	if opts.Ignore && res.AffectedRows == 0 {
		return false, nil
	}

	if col, ok := r.autoIncrementKey(); ok && !r.values[col.Name].IsSet() {
		var id any = res.InsertID
		if col.Type == sqlvalue.TypeUnsignedInt {
			id = uint64(res.InsertID)
		}
		r.values[col.Name] = Of(id)
	}

	key, err := r.PrimaryKeys()
	if err != nil {
		return false, err
	}
	if opts.SkipLoad || len(key) != len(r.def.PrimaryKeys()) || len(key) == 0 {
		for name, v := range r.values {
			r.original[name] = v
		}
		r.loaded = true
		return true, nil
	}
	if err := r.Load(ctx, key, false); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Row) autoIncrementKey() (schema.ColumnDefinition, bool) {
	keys := r.def.PrimaryKeys()
	if len(keys) == 1 && keys[0].AutoIncrement {
		return keys[0], true
	}
	return schema.ColumnDefinition{}, false
}

func (r *Row) executor() store.Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.st
}

// Delete removes the loaded record. The row cannot be used afterwards.
func (r *Row) Delete(ctx context.Context) error {
	if err := r.usable(); err != nil {
		return err
	}
	if !r.loaded {
		return r.errorf(sqlerr.KindRowNotLoaded, "only a loaded row can be deleted")
	}

	key := make(Key)
	for _, col := range r.def.PrimaryKeys() {
		v, _ := r.original[col.Name].Get()
		key[col.Name] = v
	}
	if len(key) == 0 {
		return r.errorf(sqlerr.KindInvalidBuilderState, "table has no primary key")
	}
	cond, err := r.keyCondition(key)
	if err != nil {
		return err
	}

	_, err = query.NewDeleter(r.st).
		Transaction(r.tx).
		Delete().
		From(r.def.Database, r.def.Name).
		WhereRaw(cond).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}

	r.loaded = false
	r.deleted = true
	return nil
}

// sameValue compares two column values by their SQL serialization, so
// int and int64 holding one number, or two instants in different zones,
// are equal. Values that cannot be serialized fall back to DeepEqual.
func sameValue(conv sqlvalue.Converter, col schema.ColumnDefinition, a, b Value) bool {
	av, aSet := a.Get()
	bv, bSet := b.Get()
	if !aSet || !bSet {
		return aSet == bSet
	}
	as, aerr := conv.ToSQL(av, col.Type)
	bs, berr := conv.ToSQL(bv, col.Type)
	if aerr == nil && berr == nil {
		return as == bs
	}
	return reflect.DeepEqual(av, bv)
}

func withColumn(err error, def *schema.TableDefinition, column string) error {
	var se *sqlerr.Error
	if errors.As(err, &se) {
		return se.WithTable(def.Database, def.Name).WithColumn(column)
	}
	return err
}
