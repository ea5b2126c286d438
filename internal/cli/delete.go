package cli

import (
	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/query"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Where   []string
	Confirm bool
	DryRun  bool
}

// DeleteResult is the payload reported after a delete.
type DeleteResult struct {
	SQL      string `json:"sql"`
	Affected int64  `json:"affected"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

func (r DeleteResult) String() string {
	if r.DryRun {
		return r.SQL
	}
	return r.SQL + "\n" + pluralRows(r.Affected) + " deleted"
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <[database.]table>",
		Short: "Delete records from a table",
		Long: `Build and run a DELETE through the record deleter.

A delete without --where is refused unless --confirm is given.

Example:
  supicore delete chat_data.User_Alias --where "Active = 0"
  supicore delete shop.order_tags --confirm`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "raw WHERE condition (repeatable, AND-joined)")
	cmd.Flags().BoolVar(&opts.Confirm, "confirm", false, "allow deleting without a condition")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the SQL without running it")

	return cmd
}

func runDelete(opts *DeleteOptions, target string, cmd *cobra.Command) error {
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

	deleter := query.NewDeleter(sess.store).Delete().From(database, table)
	for _, cond := range opts.Where {
		deleter.WhereRaw(cond)
	}
	if opts.Confirm {
		deleter.Confirm()
	}

	ctx := cmd.Context()
	sql, err := deleter.SQL(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "delete failed", err)
	}
	if opts.DryRun {
		return formatter.Success(DeleteResult{SQL: sql, DryRun: true})
	}

	affected, err := deleter.Exec(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "delete failed", err)
	}
	return formatter.Success(DeleteResult{SQL: sql, Affected: affected})
}
