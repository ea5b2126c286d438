package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/schema"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <[database.]table>",
		Short: "Show the cached table definition",
		Long: `Introspect a table and print its column definitions as the query
layer sees them: converter type, length and flags.

Example:
  supicore describe chat_data.User_Alias
  supicore describe --format json --dsn ./main.db customers`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	database, table, err := parseTable(target)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArguments, "invalid arguments", err)
	}

	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	def, err := sess.store.Definition(cmd.Context(), database, table)
	if err != nil {
		return formatter.Fail(ExitFailure, errorCode(err), "describe failed", err)
	}

	rows := make([][]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		rows = append(rows, describeRow(col))
	}
	return formatter.Table(def, []string{"COLUMN", "TYPE", "LENGTH", "FLAGS"}, rows)
}

func describeRow(col schema.ColumnDefinition) []string {
	length := ""
	if col.Length > 0 {
		length = strconv.Itoa(col.Length)
	}

	var flags []string
	if col.PrimaryKey {
		flags = append(flags, "PRIMARY")
	}
	if col.NotNull {
		flags = append(flags, "NOT NULL")
	}
	if col.Unsigned {
		flags = append(flags, "UNSIGNED")
	}
	if col.ZeroFill {
		flags = append(flags, "ZEROFILL")
	}
	if col.AutoIncrement {
		flags = append(flags, "AUTO_INCREMENT")
	}

	return []string{col.Name, col.Type.String(), length, strings.Join(flags, ",")}
}
