package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/store"
)

// ShopDatabase is the attached schema name the fixture tables live in.
const ShopDatabase = "shop"

// shopSchema creates the fixture tables. Columns cover every wire type the
// builders convert: booleans, integers, decimals, dates, JSON and strings.
var shopSchema = []string{
	`CREATE TABLE shop.customers (
		ID INTEGER PRIMARY KEY,
		name VARCHAR(64) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE shop.orders (
		id INTEGER PRIMARY KEY,
		customer INT,
		total NUMERIC NOT NULL DEFAULT 0,
		paid BOOLEAN NOT NULL DEFAULT 0,
		note VARCHAR(255),
		meta JSON,
		created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE shop.items (
		ID INTEGER PRIMARY KEY,
		order_id INT NOT NULL,
		sku VARCHAR(32) NOT NULL,
		quantity INT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE shop.tags (
		ID INTEGER PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE
	)`,
	`CREATE TABLE shop.order_tags (
		order_id INT NOT NULL,
		tag_id INT NOT NULL,
		PRIMARY KEY (order_id, tag_id)
	)`,
}

// NewStore opens a SQLite store in t.TempDir() with the shop schema attached
// and created. The store is closed when the test ends.
func NewStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(store.Config{
		Dialect: store.SQLite,
		DSN:     filepath.Join(dir, "main.db"),
		Attach:  map[string]string{ShopDatabase: filepath.Join(dir, "shop.db")},
	}, opts...)
	require.NoError(t, err, "open sqlite store")
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for _, stmt := range shopSchema {
		_, err := st.Exec(ctx, stmt)
		require.NoError(t, err, "create fixture table")
	}
	return st
}

// MustExec runs each statement against st and fails the test on error.
func MustExec(t *testing.T, st store.Executor, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := st.Exec(context.Background(), stmt)
		require.NoError(t, err, "exec %q", stmt)
	}
}

// Count returns the number of rows in shop.<table>.
func Count(t *testing.T, st store.Executor, table string) int64 {
	t.Helper()
	rs, err := st.Query(context.Background(), "SELECT COUNT(*) FROM `shop`.`"+table+"`")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	n, ok := rs.Rows[0][0].(int64)
	require.True(t, ok, "COUNT(*) returned %T", rs.Rows[0][0])
	return n
}
