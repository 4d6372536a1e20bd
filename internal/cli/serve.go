package cli

import (
	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted. POST /sync is enabled when Gmail
credentials are configured.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			cfg, logger, err := loadConfig(rootOpts, cmd)
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			if err := app.Serve(cmd.Context(), cfg, logger); err != nil {
				return WrapExitError(ExitFailure, "server exited", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}
