package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/api"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report debt ratio, risk and affordability for a user",
		Long: `Compute the financial analysis for --user from their active obligations
and profile. Users without a saved profile are analysed against the default
salary.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, cmd)
		},
	}
}

func runAnalyze(rootOpts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	user, err := requireUser(rootOpts, out)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := rt.services.Analysis.Report(ctx, user)
	if err != nil {
		return serviceFailure(rt.out, "failed to analyse records", err)
	}

	resp := api.NewReport(report)
	return rt.out.Success(resp, func(w io.Writer) error {
		return renderReport(w, resp)
	})
}
