package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Transaction bool
}

// ExecResult reports the outcome of the executed statements.
type ExecResult struct {
	Statements   int   `json:"statements"`
	AffectedRows int64 `json:"affected_rows"`
	InsertID     int64 `json:"insert_id,omitempty"`
}

func (r ExecResult) String() string {
	s := fmt.Sprintf("%d statement(s), %s affected", r.Statements, pluralRows(r.AffectedRows))
	if r.InsertID > 0 {
		s += fmt.Sprintf(", last insert id %d", r.InsertID)
	}
	return s
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <statement>...",
		Short: "Execute raw SQL statements",
		Long: `Execute one or more raw SQL statements in order. With --tx they
run inside a single transaction that is rolled back on the first failure.

Example:
  supicore exec "UPDATE shop.orders SET paid = 1 WHERE id = 2"
  supicore exec --tx "DELETE FROM shop.items" "DELETE FROM shop.orders"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Transaction, "tx", false, "run all statements in one transaction")

	return cmd
}

func runExec(opts *ExecOptions, statements []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			return formatter.Fail(ExitCommandError, ErrCodeArguments, "invalid arguments",
				fmt.Errorf("statement %d is empty", i+1))
		}
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := cmd.Context()
	var exec store.Executor = sess.store
	var tx *store.Transaction
	if opts.Transaction {
		tx, err = sess.store.Transaction(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, errorCode(err), "failed to begin transaction", err)
		}
		defer func() { _ = tx.End() }()
		exec = tx
	}

	result := ExecResult{}
	for _, stmt := range statements {
		res, err := exec.Exec(ctx, stmt)
		if err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), fmt.Sprintf("statement %d failed", result.Statements+1), err)
		}
		result.Statements++
		result.AffectedRows += res.AffectedRows
		if res.InsertID > 0 {
			result.InsertID = res.InsertID
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), "commit failed", err)
		}
	}
	return formatter.Success(result)
}

func pluralRows(n int64) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}
