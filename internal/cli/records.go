package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/api"
	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// NewRecordsCommand creates the records command group.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List and settle stored obligations",
	}
	cmd.AddCommand(newRecordsListCommand(rootOpts))
	cmd.AddCommand(newRecordsPaidCommand(rootOpts))
	return cmd
}

func newRecordsListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the user's records, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(rootOpts, status, cmd)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only show records with this status (active|paid)")
	return cmd
}

func runRecordsList(rootOpts *RootOptions, statusFlag string, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	user, err := requireUser(rootOpts, out)
	if err != nil {
		return err
	}

	var status domain.Status
	if statusFlag != "" {
		parsed, ok := domain.ParseStatus(statusFlag)
		if !ok {
			return out.Fail(ExitCommandError, ErrCodeInvalidInput,
				fmt.Sprintf("unknown status %q: must be active or paid", statusFlag), nil)
		}
		status = parsed
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	records, err := rt.services.Records.List(ctx, user, status)
	if err != nil {
		return serviceFailure(rt.out, "failed to list records", err)
	}

	list := api.RecordList{Records: make([]api.Record, 0, len(records)), Count: len(records)}
	for _, rec := range records {
		list.Records = append(list.Records, api.NewRecord(rec))
	}
	return rt.out.Success(list, func(w io.Writer) error {
		return renderRecords(w, list)
	})
}

func newRecordsPaidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "paid <id>",
		Short:         "Mark a record as paid",
		Long:          "Mark a record as paid and print the refreshed analysis. Marking a paid record again is a no-op.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsPaid(rootOpts, args[0], cmd)
		},
	}
}

func runRecordsPaid(rootOpts *RootOptions, rawID string, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	user, err := requireUser(rootOpts, out)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return out.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid record id %q", rawID), nil)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	rec, err := rt.services.Records.MarkPaid(ctx, user, id)
	if err != nil {
		return serviceFailure(rt.out, "failed to mark record paid", err)
	}
	report, err := rt.services.Analysis.Report(ctx, user)
	if err != nil {
		return serviceFailure(rt.out, "failed to analyse records", err)
	}

	full := api.NewReport(report)
	resp := api.MarkPaidResult{
		Record:        api.NewRecord(rec),
		Analysis:      full.Analysis,
		Affordability: full.Affordability,
	}
	return rt.out.Success(resp, func(w io.Writer) error {
		return renderMarkPaid(w, resp)
	})
}
