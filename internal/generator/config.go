package generator

import "time"

// Config drives the synthetic mailbox generator.
type Config struct {
	NumMessages int
	// BNPLShare is the fraction of messages that carry a real obligation.
	BNPLShare float64
	// SpamChance is the fraction of obligation messages flagged as spam,
	// which the extractor must ignore.
	SpamChance float64
	// ReminderChance is the fraction of noise messages that mention an
	// installment without any amount.
	ReminderChance float64
	UserEmail      string
	Seed           int64
	// Now anchors generated due dates.
	Now time.Time
}

// DefaultConfig returns settings that produce a small, realistic inbox.
func DefaultConfig() Config {
	return Config{
		NumMessages:    50,
		BNPLShare:      0.4,
		SpamChance:     0.1,
		ReminderChance: 0.25,
		UserEmail:      "demo@example.com",
		Seed:           42,
	}
}
