package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/bnpltrace/backend/internal/extract"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
)

func testConfig() Config {
	return Config{
		NumMessages:    200,
		BNPLShare:      0.5,
		SpamChance:     0.1,
		ReminderChance: 0.3,
		UserEmail:      "fixture@example.com",
		Seed:           7,
		Now:            time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := New(testConfig()).Generate(context.Background())
	require.NoError(t, err)
	b, err := New(testConfig()).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a.Mailbox.Messages, 200)
	assert.NotEmpty(t, a.Expected)
	assert.Less(t, len(a.Expected), 200)
}

func TestGeneratedObligationsAreExtractable(t *testing.T) {
	ds, err := New(testConfig()).Generate(context.Background())
	require.NoError(t, err)

	expected := make(map[string]Expectation, len(ds.Expected))
	for _, e := range ds.Expected {
		expected[e.MessageID] = e
	}

	ex := extract.New()
	for _, msg := range ds.Mailbox.Messages {
		got, ok := ex.Extract(msg.Sender, msg.Subject, msg.Body)
		want, isObligation := expected[msg.ID]
		if !isObligation {
			assert.False(t, ok, "message %s should not yield a candidate: %q", msg.ID, msg.Body)
			continue
		}
		require.True(t, ok, "message %s: %q", msg.ID, msg.Body)
		assert.Equal(t, want.Vendor, got.Vendor, msg.ID)
		assert.True(t, want.Amount.Equal(got.Amount), "%s: want %s got %s", msg.ID, want.Amount, got.Amount)
		assert.Equal(t, want.Installments, got.Installments, msg.ID)
		require.NotNil(t, got.DueDate, msg.ID)
		assert.Equal(t, want.DueDate, got.DueDate.Format("02/01/2006"), msg.ID)
	}
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "950", groupIndian(950))
	assert.Equal(t, "1,20,000", groupIndian(120000))
	assert.Equal(t, "12,34,567", groupIndian(1234567))
	assert.Equal(t, "120,000", groupWestern(120000))
	assert.Equal(t, "1,234,567", groupWestern(1234567))
}

func TestWriteDataset(t *testing.T) {
	cfg := testConfig()
	cfg.NumMessages = 20
	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "fixtures")
	require.NoError(t, WriteDataset(ds, dir))

	src := mailbox.NewFile(filepath.Join(dir, MailboxFile))
	owner, err := src.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixture@example.com", owner)

	batch, err := src.Fetch(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, batch.Messages, 20)
	assert.Empty(t, batch.Failures)

	answer, err := ReadAnswer(dir)
	require.NoError(t, err)
	assert.Equal(t, "fixture@example.com", answer.UserEmail)
	assert.Equal(t, 20, answer.Messages)
	assert.Len(t, answer.Obligations, len(ds.Expected))

	want := decimal.Zero
	vendors := 0
	for _, exp := range ds.Expected {
		want = want.Add(exp.Amount)
	}
	for _, n := range answer.ByVendor {
		vendors += n
	}
	assert.True(t, want.Equal(answer.Outstanding), "outstanding %s, want %s", answer.Outstanding, want)
	assert.Equal(t, len(ds.Expected), vendors)

	_, err = os.Stat(filepath.Join(dir, ExpectedFile+".tmp"))
	assert.True(t, os.IsNotExist(err), "temp file must not survive")
}

func TestAnswerForEmptyDataset(t *testing.T) {
	answer := AnswerFor(Dataset{})
	assert.True(t, answer.Outstanding.IsZero())
	assert.Empty(t, answer.Obligations)
	assert.NotNil(t, answer.ByVendor)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
