package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/batch"
	"github.com/Supinic/supi-core-sub000/internal/query"
	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	File      string
	ChunkSize int
	Stagger   time.Duration
}

// UpdateResult summarises a bulk update.
type UpdateResult struct {
	Records   int      `json:"records"`
	Chunks    int      `json:"chunks"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r UpdateResult) String() string {
	s := fmt.Sprintf("%d record(s) in %d chunk(s): %d succeeded, %d failed", r.Records, r.Chunks, r.Succeeded, r.Failed)
	for _, e := range r.Errors {
		s += "\n  " + e
	}
	return s
}

// keyedUpdate is one record split into assignments and its primary key
// condition.
type keyedUpdate struct {
	columns []string
	values  map[string]any
	where   string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <[database.]table>",
		Short: "Bulk update records by primary key",
		Long: `Read a YAML or JSON array of records, each carrying every primary key
column, and update the remaining columns of the matching rows. Records are
grouped into chunks that each run in their own transaction; a failed chunk
is rolled back without affecting the others.

Example:
  supicore update shop.orders --file paid.yaml --chunk-size 100 --stagger 250ms`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "records file, or - for stdin (required)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "records per transaction (default from configuration)")
	cmd.Flags().DurationVar(&opts.Stagger, "stagger", 0, "delay between chunk starts (default from configuration)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runUpdate(opts *UpdateOptions, target string, cmd *cobra.Command) error {
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

	ctx := cmd.Context()
	def, err := sess.store.Definition(ctx, database, table)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "update failed", err)
	}

	updates := make([]keyedUpdate, 0, len(records))
	for i, rec := range records {
		u, err := splitRecord(sess.store, def, rec)
		if err != nil {
			return formatter.Fail(ExitFailure, errorCode(err), fmt.Sprintf("record %d", i+1), err)
		}
		updates = append(updates, u)
	}

	updateOpts := batch.UpdateOptions{
		ChunkSize: sess.cfg.Batch.ChunkSize,
		Stagger:   sess.cfg.Stagger(),
	}
	if cmd.Flags().Changed("chunk-size") {
		updateOpts.ChunkSize = opts.ChunkSize
	}
	if cmd.Flags().Changed("stagger") {
		updateOpts.Stagger = opts.Stagger
	}

	report := batch.Update(ctx, sess.store, updates, func(u *query.RecordUpdater, item keyedUpdate) {
		u.Update(database, table)
		for _, col := range item.columns {
			u.Set(col, item.values[col])
		}
		u.WhereRaw(item.where)
	}, updateOpts)

	result := UpdateResult{
		Records:   len(updates),
		Chunks:    report.Chunks,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
	}
	for _, e := range report.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	slices.Sort(result.Errors)

	if err := formatter.Success(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d chunk(s) failed", result.Failed, result.Chunks))
	}
	return nil
}

// splitRecord separates primary key columns from assignments and renders
// the key condition.
func splitRecord(st *store.Store, def *schema.TableDefinition, rec map[string]any) (keyedUpdate, error) {
	pks := def.PrimaryKeys()
	if len(pks) == 0 {
		return keyedUpdate{}, sqlerr.New(sqlerr.KindInvalidBuilderState, "table has no primary key").
			WithTable(def.Database, def.Name)
	}

	conv := st.Converter()
	conds := make([]string, 0, len(pks))
	isKey := make(map[string]bool, len(pks))
	for _, pk := range pks {
		v, ok := rec[pk.Name]
		if !ok || v == nil {
			return keyedUpdate{}, sqlerr.New(sqlerr.KindInvalidBuilderState, "record is missing its primary key").
				WithTable(def.Database, def.Name).
				WithColumn(pk.Name)
		}
		lit, err := conv.ToSQL(v, pk.Type)
		if err != nil {
			return keyedUpdate{}, err
		}
		conds = append(conds, sqlvalue.EscapeIdentifier(pk.Name)+" = "+lit)
		isKey[pk.Name] = true
	}

	u := keyedUpdate{values: make(map[string]any), where: strings.Join(conds, " AND ")}
	for k, v := range rec {
		if isKey[k] {
			continue
		}
		u.columns = append(u.columns, k)
		u.values[k] = v
	}
	if len(u.columns) == 0 {
		return keyedUpdate{}, sqlerr.New(sqlerr.KindInvalidBuilderState, "record has no columns to update").
			WithTable(def.Database, def.Name)
	}
	slices.Sort(u.columns)
	return u, nil
}
