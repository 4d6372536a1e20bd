package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		messages       = flag.Int("messages", cfg.NumMessages, "number of messages to generate")
		bnplShare      = flag.Float64("bnpl-share", cfg.BNPLShare, "probability that a message carries an obligation")
		spamChance     = flag.Float64("spam-chance", cfg.SpamChance, "probability that an obligation message is marked as spam")
		reminderChance = flag.Float64("reminder-chance", cfg.ReminderChance, "probability that a noise message is an amount-less reminder")
		userEmail      = flag.String("user", cfg.UserEmail, "mailbox owner")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir      = flag.String("output-dir", "testdata/mailbox", "directory to write inbox.yaml and expected.json")
		writeStdout    = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumMessages:    *messages,
		BNPLShare:      clampProbability(*bnplShare),
		SpamChance:     clampProbability(*spamChance),
		ReminderChance: clampProbability(*reminderChance),
		UserEmail:      *userEmail,
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d messages (%d obligations) to %s\n", len(dataset.Mailbox.Messages), len(dataset.Expected), *outputDir)
}

func clampProbability(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
