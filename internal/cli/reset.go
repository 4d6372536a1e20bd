package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type resetResult struct {
	UserEmail string `json:"user_email"`
	Deleted   int64  `json:"deleted"`
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record of a user",
		Long: `Delete every stored record of --user so the next sync rebuilds them from
the mailbox. The profile is kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(rootOpts, confirm, cmd)
		},
	}
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "confirm deletion")
	return cmd
}

func runReset(rootOpts *RootOptions, confirm bool, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	user, err := requireUser(rootOpts, out)
	if err != nil {
		return err
	}
	if !confirm {
		return out.Fail(ExitCommandError, ErrCodeInvalidInput, "refusing to delete records without --yes", nil)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	deleted, err := rt.services.Records.Reset(ctx, user)
	if err != nil {
		return serviceFailure(rt.out, "failed to reset records", err)
	}

	res := resetResult{UserEmail: user, Deleted: deleted}
	return rt.out.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Deleted %d record(s) for %s.\n", res.Deleted, res.UserEmail)
		return err
	})
}
