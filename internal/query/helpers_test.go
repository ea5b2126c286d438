package query_test

import (
	"context"
	"testing"

	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/store"
	"github.com/Supinic/supi-core-sub000/internal/testutil"
)

// userAlias mirrors a MySQL table as information_schema would describe it.
var userAlias = []schema.ColumnDefinition{
	schema.NewColumn("ID", "int(10) unsigned", schema.FlagPrimaryKey|schema.FlagNotNull|schema.FlagAutoIncrement),
	schema.NewColumn("Name", "varchar(30)", schema.FlagNotNull),
	schema.NewColumn("Started", "datetime", 0),
	schema.NewColumn("Active", "tinyint(1)", schema.FlagNotNull),
	schema.NewColumn("Data", "json", 0),
}

// mysqlStore returns a MySQL-dialect store with no connection. It can
// compile statements but not run them.
func mysqlStore(t *testing.T) *store.Store {
	t.Helper()
	introspector := schema.IntrospectorFunc(func(_ context.Context, database, table string) ([]schema.ColumnDefinition, error) {
		if database == "chat_data" && table == "User_Alias" {
			return userAlias, nil
		}
		return nil, sqlerr.New(sqlerr.KindUnknownTable, "no such table").WithTable(database, table)
	})
	return store.New(nil, store.MySQL, store.WithIntrospector(introspector))
}

// seededStore returns a SQLite store with two orders, items for the first
// one (including an exact duplicate) and tags on both.
func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := testutil.NewStore(t)
	testutil.MustExec(t, st,
		"INSERT INTO `shop`.`customers` (`ID`, `name`) VALUES (1, 'Ada'), (2, 'Brian')",
		"INSERT INTO `shop`.`orders` (`id`, `customer`, `total`, `paid`, `meta`, `created`) VALUES "+
			"(1, 1, 10.5, 0, '{\"gift\":true}', '2024-03-01 10:00:00.000'), "+
			"(2, 2, 20, 1, NULL, '2024-03-02 11:30:00.000')",
		"INSERT INTO `shop`.`items` (`ID`, `order_id`, `sku`, `quantity`) VALUES "+
			"(1, 1, 'A', 1), (2, 1, 'B', 2), (3, 1, 'A', 1)",
		"INSERT INTO `shop`.`tags` (`ID`, `name`) VALUES (1, 'red'), (2, 'blue')",
		"INSERT INTO `shop`.`order_tags` (`order_id`, `tag_id`) VALUES (1, 1), (1, 2), (2, 2)",
	)
	return st
}
