package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Supinic/supi-core-sub000/internal/config"
	"github.com/Supinic/supi-core-sub000/internal/logging"
	"github.com/Supinic/supi-core-sub000/internal/store"
)

// session bundles what a database command needs.
type session struct {
	cfg       *config.Config
	store     *store.Store
	logger    *slog.Logger
	formatter *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves the configuration file plus flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}
	if opts.Dialect != "" {
		cfg.Database.Dialect = opts.Dialect
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads configuration and opens the store. The caller closes
// it with session.close.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	logger := logging.New(cfg.Logging, Version, cmd.OutOrStdout(), cmd.ErrOrStderr())

	formatter.VerboseLog("Opening %s database %s", cfg.Database.Dialect, cfg.Database.DSN)
	st, err := store.Open(cfg.StoreConfig(), store.WithLogger(logger))
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConnection, "failed to open database", err)
	}

	return &session{cfg: cfg, store: st, logger: logger, formatter: formatter}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// parseTable splits "database.table". A bare name uses the connection's
// default database.
func parseTable(arg string) (database, table string, err error) {
	database, table, found := strings.Cut(arg, ".")
	if !found {
		database, table = "", arg
	}
	if table == "" || strings.Contains(table, ".") {
		return "", "", fmt.Errorf("invalid table %q: expected [database.]table", arg)
	}
	return database, table, nil
}
