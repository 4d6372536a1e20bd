package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/api"
	"github.com/vanshika/bnpltrace/backend/internal/app"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/service"
)

// Mail sources accepted by --source.
const (
	sourceGmail = "gmail"
	sourceFile  = "file"
)

type syncOptions struct {
	source     string
	file       string
	maxResults int
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Extract BNPL obligations from a mailbox into the store",
		Long: `Fetch recent messages and store every BNPL obligation found in them.

Messages come from Gmail using the configured OAuth refresh token, or from a
YAML mailbox file when --file is given. Re-running a sync never duplicates a
record: each source message is stored at most once per user.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "mail source (gmail|file); defaults to file when --file is set, gmail otherwise")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read messages from a YAML mailbox file instead of Gmail")
	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", 0, "maximum messages to fetch (defaults to sync.max_results)")

	return cmd
}

func runSync(rootOpts *RootOptions, opts *syncOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	kind := opts.source
	if kind == "" {
		kind = sourceGmail
		if opts.file != "" {
			kind = sourceFile
		}
	}

	var source mailbox.Source
	switch kind {
	case sourceFile:
		if opts.file == "" {
			return rt.out.Fail(ExitCommandError, ErrCodeInvalidInput, "--source file requires --file", nil)
		}
		source = mailbox.NewFile(opts.file)
		rt.out.VerboseLog("Reading mailbox %s", opts.file)
	case sourceGmail:
		if !rt.cfg.Gmail.Configured() {
			return rt.out.Fail(ExitCommandError, ErrCodeConfig,
				"no mail source: pass --file or configure GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN", nil)
		}
		gmail, err := app.NewGmailSource(ctx, rt.cfg.Gmail, rt.logger)
		if err != nil {
			return rt.out.Fail(ExitCommandError, ErrCodeConfig, "failed to build gmail client", err)
		}
		source = gmail
	default:
		return rt.out.Fail(ExitCommandError, ErrCodeInvalidInput,
			fmt.Sprintf("unknown source %q: must be gmail or file", opts.source), nil)
	}

	maxResults := opts.maxResults
	if maxResults <= 0 {
		maxResults = rt.cfg.Sync.MaxResults
	}

	report, err := rt.services.Sync.SyncFromSource(ctx, source, maxResults)
	result := api.NewSyncResult(report, err)
	if err != nil && !errors.Is(err, service.ErrSourceFetchFailed) {
		return rt.out.Fail(ExitCommandError, ErrCodeSync, "sync failed", err)
	}

	if outErr := rt.out.Success(result, func(w io.Writer) error {
		return renderSyncResult(w, result)
	}); outErr != nil {
		return outErr
	}

	if err != nil {
		return WrapExitError(ExitFailure, ErrCodeSync+": mail source failed", err)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, "some messages could not be synced")
	}
	return nil
}
