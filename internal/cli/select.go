package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/query"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Columns []string
	Where   []string
	GroupBy []string
	OrderBy []string
	Limit   int
	Offset  int
	Flat    string
	Single  bool
	DryRun  bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <[database.]table>",
		Short: "Fetch records from a table",
		Long: `Build and run a SELECT through the recordset builder. Values are
converted according to the table definition.

Example:
  supicore select chat_data.User_Alias --columns ID,Name --where "Active = 1" --limit 10
  supicore select shop.orders --flat id --order "id DESC"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to select (default all)")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "raw WHERE condition (repeatable, AND-joined)")
	cmd.Flags().StringSliceVar(&opts.GroupBy, "group", nil, "GROUP BY columns")
	cmd.Flags().StringArrayVar(&opts.OrderBy, "order", nil, "ORDER BY term (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 = unlimited)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "records to skip (requires --limit)")
	cmd.Flags().StringVar(&opts.Flat, "flat", "", "return only this column's values")
	cmd.Flags().BoolVar(&opts.Single, "single", false, "return only the first record")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the SQL without running it")

	return cmd
}

func buildRecordset(opts *SelectOptions, rs *query.Recordset, database, table string) *query.Recordset {
	rs.From(database, table)
	if len(opts.Columns) > 0 {
		rs.Select(opts.Columns...)
	}
	for _, cond := range opts.Where {
		rs.WhereRaw(cond)
	}
	if len(opts.GroupBy) > 0 {
		rs.GroupBy(opts.GroupBy...)
	}
	if len(opts.OrderBy) > 0 {
		rs.OrderBy(opts.OrderBy...)
	}
	if opts.Limit > 0 {
		rs.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		rs.Offset(opts.Offset)
	}
	if opts.Flat != "" {
		rs.Flat(opts.Flat)
	}
	if opts.Single {
		rs.Single()
	}
	return rs
}

func runSelect(opts *SelectOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	database, table, err := parseTable(target)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArguments, "invalid arguments", err)
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	rs := buildRecordset(opts, query.NewRecordset(sess.store), database, table)

	if opts.DryRun {
		sql, err := rs.SQL()
		if err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), "select failed", err)
		}
		return formatter.Success(sql)
	}

	ctx := cmd.Context()
	if opts.Flat != "" {
		values, err := rs.FetchValues(ctx)
		if err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), "select failed", err)
		}
		rows := make([][]string, 0, len(values))
		for _, v := range values {
			rows = append(rows, []string{formatCell(v)})
		}
		return formatter.Table(values, []string{opts.Flat}, rows)
	}

	records, err := rs.Fetch(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "select failed", err)
	}
	formatter.VerboseLog("Fetched %d record(s)", len(records))

	headers := recordColumns(opts.Columns, records)
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = formatCell(rec[h])
		}
		rows = append(rows, row)
	}
	return formatter.Table(records, headers, rows)
}

// recordColumns returns the selected columns, or the sorted union of
// record keys when everything was selected.
func recordColumns(selected []string, records []query.Record) []string {
	if len(selected) > 0 {
		return selected
	}
	maps := make([]map[string]any, len(records))
	for i, rec := range records {
		maps[i] = rec
	}
	return recordKeys(maps)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	case string:
		return x
	case map[string]any, []any, []query.Record:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
