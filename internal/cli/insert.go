package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/batch"
)

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	File      string
	Threshold int
	Ignore    bool
}

// InsertResult reports how the records were written.
type InsertResult struct {
	Records    int `json:"records"`
	Statements int `json:"statements"`
}

func (r InsertResult) String() string {
	return fmt.Sprintf("%d record(s) inserted in %d statement(s)", r.Records, r.Statements)
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <[database.]table>",
		Short: "Bulk insert records from a file",
		Long: `Read a YAML or JSON array of records and write them through a batch,
one multi-row INSERT per threshold records. Columns a record omits are
written as NULL.

Example:
  supicore insert shop.items --file items.yaml --threshold 500
  cat items.json | supicore insert shop.items --file - --ignore`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "records file, or - for stdin (required)")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 0, "records per INSERT (default from configuration)")
	cmd.Flags().BoolVar(&opts.Ignore, "ignore", false, "skip records that violate unique keys")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runInsert(opts *InsertOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	database, table, err := parseTable(target)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArguments, "invalid arguments", err)
	}
	records, err := readRecords(opts.File, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArguments, "invalid records", err)
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	threshold := sess.cfg.Batch.Threshold
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}

	ctx := cmd.Context()
	b := batch.New(sess.store, database, table, batch.Options{Threshold: threshold})
	if err := b.Initialize(ctx, recordKeys(records)); err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "insert failed", err)
	}

	insertOpts := batch.InsertOptions{Ignore: opts.Ignore}
	result := InsertResult{}
	for _, rec := range records {
		if _, err := b.Add(rec); err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), "insert failed", err)
		}
		n := b.Len()
		done, err := b.Insert(ctx, insertOpts)
		if err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), "insert failed", err)
		}
		if done {
			result.Records += n
			result.Statements++
		}
	}

	n := b.Len()
	done, err := b.Flush(ctx, insertOpts)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "insert failed", err)
	}
	if done {
		result.Records += n
		result.Statements++
	}

	formatter.VerboseLog("Inserted %d record(s) into %s", result.Records, target)
	return formatter.Success(result)
}
