package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/api"
	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the financial profile used by the analysis",
	}
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileSetCommand(rootOpts))
	cmd.AddCommand(newProfileSalaryCommand(rootOpts))
	return cmd
}

func newProfileShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the user's profile, or the defaults when none is saved",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			profile, found, err := rt.services.Profiles.Get(ctx, user)
			if err != nil {
				return serviceFailure(rt.out, "failed to fetch profile", err)
			}
			resp := api.NewProfile(profile)
			resp.Saved = found
			return rt.out.Success(resp, func(w io.Writer) error {
				return renderProfile(w, resp)
			})
		},
	}
}

type profileFlags struct {
	fullName      string
	city          string
	salary        string
	monthlyRent   string
	otherExpenses string
	existingLoans string
}

func (f profileFlags) toProfile(email string) (domain.UserProfile, error) {
	p := domain.UserProfile{Email: email, FullName: f.fullName, City: f.city}
	amounts := []struct {
		flag  string
		value string
		dst   *decimal.Decimal
	}{
		{"salary", f.salary, &p.Salary},
		{"rent", f.monthlyRent, &p.MonthlyRent},
		{"other-expenses", f.otherExpenses, &p.OtherExpenses},
		{"loans", f.existingLoans, &p.ExistingLoans},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.value)
		if err != nil {
			return domain.UserProfile{}, fmt.Errorf("--%s: %q is not a number", a.flag, a.value)
		}
		*a.dst = d
	}
	return p, nil
}

func newProfileSetCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &profileFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the user's profile",
		Long: `Replace the user's profile with the given values. Omitted amounts are
stored as zero; a zero salary is analysed as the default salary.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			user, err := requireUser(rootOpts, out)
			if err != nil {
				return err
			}
			profile, err := flags.toProfile(user)
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), nil)
			}

			ctx := cmd.Context()
			rt, err := openRuntime(ctx, rootOpts, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			saved, err := rt.services.Profiles.Save(ctx, profile)
			if err != nil {
				return serviceFailure(rt.out, "failed to save profile", err)
			}
			resp := api.NewProfile(saved)
			resp.Saved = true
			return rt.out.Success(resp, func(w io.Writer) error {
				return renderProfile(w, resp)
			})
		},
	}

	cmd.Flags().StringVar(&flags.fullName, "name", "", "full name")
	cmd.Flags().StringVar(&flags.city, "city", "", "city of residence")
	cmd.Flags().StringVar(&flags.salary, "salary", "0", "monthly salary")
	cmd.Flags().StringVar(&flags.monthlyRent, "rent", "0", "monthly rent")
	cmd.Flags().StringVar(&flags.otherExpenses, "other-expenses", "0", "other fixed monthly expenses")
	cmd.Flags().StringVar(&flags.existingLoans, "loans", "0", "existing loan repayments per month")
	return cmd
}

type salaryResult struct {
	UserEmail string  `json:"user_email"`
	Salary    float64 `json:"salary"`
}

func newProfileSalaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "salary <amount>",
		Short:         "Set only the user's monthly salary",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			user, err := requireUser(rootOpts, out)
			if err != nil {
				return err
			}
			salary, err := decimal.NewFromString(args[0])
			if err != nil {
				return out.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("%q is not a number", args[0]), nil)
			}

			ctx := cmd.Context()
			rt, err := openRuntime(ctx, rootOpts, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.services.Profiles.SetSalary(ctx, user, salary); err != nil {
				return serviceFailure(rt.out, "failed to save salary", err)
			}
			effective, err := rt.services.Profiles.Salary(ctx, user)
			if err != nil {
				return serviceFailure(rt.out, "failed to read salary", err)
			}

			res := salaryResult{UserEmail: user, Salary: effective.Round(2).InexactFloat64()}
			return rt.out.Success(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Salary for %s is %s.\n", res.UserEmail, amount(res.Salary))
				return err
			})
		},
	}
}
