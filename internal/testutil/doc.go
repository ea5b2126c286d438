// Package testutil provides fixtures shared by package tests: a SQLite
// store with a small "shop" schema, and golden-file assertions for
// generated SQL.
package testutil
