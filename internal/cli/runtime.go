package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/app"
	"github.com/vanshika/bnpltrace/backend/internal/config"
	"github.com/vanshika/bnpltrace/backend/internal/logging"
	"github.com/vanshika/bnpltrace/backend/internal/server"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// runtime is the configuration, store and services one command invocation
// works against.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	store    store.Store
	services server.Services
	out      *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig reads --config, falling back to $BNPL_CONFIG, and builds a
// logger that writes to the command's stderr.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(config.FileEnv)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()), nil
}

// openRuntime loads configuration and opens the store. The caller must call
// close on the returned runtime.
func openRuntime(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*runtime, error) {
	out := newFormatter(opts, cmd)

	cfg, logger, err := loadConfig(opts, cmd)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeStore, "failed to open store", err)
	}
	out.VerboseLog("Opened %s store", cfg.Store.Driver)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		services: app.NewServices(st, cfg.Sync, logger),
		out:      out,
	}, nil
}

func (r *runtime) close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("closing store failed", "error", err)
	}
}

// requireUser returns the trimmed --user value or fails the command.
func requireUser(opts *RootOptions, out *OutputFormatter) (string, error) {
	user := strings.TrimSpace(opts.User)
	if user == "" {
		return "", out.Fail(ExitCommandError, ErrCodeInvalidInput, "--user is required", nil)
	}
	return user, nil
}
