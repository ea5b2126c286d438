// Package query provides the statement builders: Recordset (SELECT),
// RecordUpdater (UPDATE) and RecordDeleter (DELETE).
//
// Builders are single-use. They are configured through chained calls,
// compiled with SQL and executed once. Conditions are templates with
// format symbols (see package querysql):
//
//	records, err := query.NewRecordset(st).
//		Select("ID", "Name").
//		From("chat_data", "User_Alias").
//		Where("Name %*like*", "supi").
//		WhereIf(onlyActive, "Active = %b", true).
//		OrderBy("ID DESC").
//		Limit(10).
//		Fetch(ctx)
//
// Column and table names used by UPDATE and DELETE are checked against
// the store's cached table definitions before any SQL is sent.
package query
