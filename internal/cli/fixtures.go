package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanshika/bnpltrace/backend/internal/generator"
)

type fixturesOptions struct {
	out       string
	messages  int
	seed      int64
	bnplShare float64
}

type fixturesResult struct {
	Dir         string `json:"dir"`
	Mailbox     string `json:"mailbox"`
	Expected    string `json:"expected"`
	Messages    int    `json:"messages"`
	Obligations int    `json:"obligations"`
}

// NewFixturesCommand creates the fixtures command.
func NewFixturesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &fixturesOptions{}
	defaults := generator.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate a synthetic mailbox for demos and tests",
		Long: `Generate a deterministic synthetic inbox of BNPL notices, spam and
unrelated mail. The mailbox file can be passed to "sync --file"; the
expectations file lists the obligations a correct sync must store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "testdata/mailbox", "output directory")
	cmd.Flags().IntVarP(&opts.messages, "messages", "n", defaults.NumMessages, "number of messages to generate")
	cmd.Flags().Int64Var(&opts.seed, "seed", defaults.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.bnplShare, "bnpl-share", defaults.BNPLShare, "fraction of messages that carry an obligation")
	return cmd
}

func runFixtures(rootOpts *RootOptions, opts *fixturesOptions, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	if opts.messages <= 0 {
		return out.Fail(ExitCommandError, ErrCodeInvalidInput, "--messages must be positive", nil)
	}
	if opts.bnplShare < 0 || opts.bnplShare > 1 {
		return out.Fail(ExitCommandError, ErrCodeInvalidInput, "--bnpl-share must be between 0 and 1", nil)
	}

	cfg := generator.DefaultConfig()
	cfg.NumMessages = opts.messages
	cfg.Seed = opts.seed
	cfg.BNPLShare = opts.bnplShare
	if rootOpts.User != "" {
		cfg.UserEmail = rootOpts.User
	}

	dataset, err := generator.New(cfg).Generate(cmd.Context())
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "failed to generate mailbox", err)
	}
	if err := generator.WriteDataset(dataset, opts.out); err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "failed to write mailbox", err)
	}
	out.VerboseLog("Generated %d messages with seed %d", len(dataset.Mailbox.Messages), cfg.Seed)

	res := fixturesResult{
		Dir:         opts.out,
		Mailbox:     filepath.Join(opts.out, generator.MailboxFile),
		Expected:    filepath.Join(opts.out, generator.ExpectedFile),
		Messages:    len(dataset.Mailbox.Messages),
		Obligations: len(dataset.Expected),
	}
	return out.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Wrote %d messages (%d obligations) to %s\n", res.Messages, res.Obligations, res.Mailbox)
		return err
	})
}
