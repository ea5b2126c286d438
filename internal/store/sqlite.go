package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sort"

	"github.com/mattn/go-sqlite3"

	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// sqlitePragmas are applied to every new connection.
var sqlitePragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
}

// sqliteConnector opens go-sqlite3 connections without registering a
// global driver name, so each Store can carry its own attach list.
type sqliteConnector struct {
	driver *sqlite3.SQLiteDriver
	dsn    string
}

func newSQLiteConnector(dsn string, attach map[string]string) *sqliteConnector {
	names := make([]string, 0, len(attach))
	for name := range attach {
		names = append(names, name)
	}
	sort.Strings(names)

	return &sqliteConnector{
		dsn: dsn,
		driver: &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				for _, pragma := range sqlitePragmas {
					if _, err := conn.Exec(pragma, nil); err != nil {
						return fmt.Errorf("failed to execute %q: %w", pragma, err)
					}
				}
				for _, name := range names {
					quoted := sqlvalue.EscapeIdentifier(name)
					if _, err := conn.Exec("ATTACH DATABASE ? AS "+quoted, []driver.Value{attach[name]}); err != nil {
						return fmt.Errorf("attaching %q as %s: %w", attach[name], name, err)
					}
					if _, err := conn.Exec("PRAGMA "+quoted+".journal_mode = WAL", nil); err != nil {
						return fmt.Errorf("setting journal mode on %s: %w", name, err)
					}
				}
				return nil
			},
		},
	}
}

// Connect implements driver.Connector.
func (c *sqliteConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

// Driver implements driver.Connector.
func (c *sqliteConnector) Driver() driver.Driver {
	return c.driver
}
