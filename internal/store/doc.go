// Package store is the coordinator every query builder talks to.
//
// A Store wraps a pooled *sql.DB for one of two dialects (MySQL or an
// embedded SQLite file) and owns the table definition cache. It executes
// fully formed SQL text: each statement borrows one connection for the
// duration of its execution and returns it to the pool straight after.
// Results are materialised into a ResultSet carrying the raw driver
// values plus the column wire types needed for conversion.
//
// Multi-statement work uses Transaction, which keeps a single connection
// checked out until the caller calls Commit, Rollback or End. Both *Store
// and *Transaction satisfy Executor, so builders can run against either.
//
// # Definitions
//
// Definition introspects a table the first time it is asked for and
// caches the result until InvalidateDefinition or InvalidateAllDefinitions.
// Concurrent first requests for one table share a single introspection.
//
// # SQLite
//
// SQLite connections are opened with busy_timeout and foreign_keys
// pragmas. Config.Attach names extra database files that are attached on
// every connection, so "shop.orders" resolves the way a MySQL database
// name would.
package store
