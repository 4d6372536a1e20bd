package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/extract"
)

var syncNow = time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSync(st *stubStore, ex Extractor) *SyncService {
	if ex == nil {
		ex = extract.New()
	}
	svc := NewSyncService(st, ex, 3, quietLogger())
	svc.WithClock(func() time.Time { return syncNow })
	return svc
}

func inbox() []domain.RawMessage {
	return []domain.RawMessage{
		{ID: "m1", Sender: "Klarna <no-reply@klarna.com>", Subject: "Your plan", Body: "Order total ₹12,000 in 12 installments. Due on 15/06/2025."},
		{ID: "m2", Sender: "friend@example.com", Subject: "Lunch?", Body: "See you at 1"},
		{ID: "m3", Sender: "Afterpay <hi@afterpay.com>", Subject: "Installment reminder", Body: "Total $400 in 4 payments, due 20/06/2025"},
		{ID: "m4", Sender: "bank@example.com", Subject: "EMI reminder", Body: "Your EMI is due soon."},
	}
}

func TestSync_InsertsCandidatesAndSkipsTheRest(t *testing.T) {
	st := newStubStore()
	svc := newTestSync(st, nil)

	report, err := svc.Sync(context.Background(), " Owner@Example.com ", inbox())
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", report.UserEmail)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Fetched)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Duplicates)
	assert.Empty(t, report.Errors)
	assert.Equal(t, syncNow, report.StartedAt)

	require.Len(t, st.records, 2)
	first := st.records[0]
	assert.Equal(t, "m1", first.SourceMessageID)
	assert.Equal(t, "Klarna", first.Vendor)
	assert.True(t, decimal.NewFromInt(12000).Equal(first.Amount))
	assert.Equal(t, 12, first.Installments)
	assert.Equal(t, "15/06/2025", first.FormatDueDate())
	assert.Equal(t, domain.StatusActive, first.Status)
	assert.Equal(t, "owner@example.com", first.UserEmail)
	assert.Equal(t, "m3", st.records[1].SourceMessageID)
}

func TestSync_IsIdempotent(t *testing.T) {
	st := newStubStore()
	svc := newTestSync(st, nil)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "owner@example.com", inbox())
	require.NoError(t, err)

	again, err := svc.Sync(ctx, "owner@example.com", inbox())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 2, again.Duplicates)
	assert.Equal(t, 4, again.Skipped)
	assert.Len(t, st.records, 2)
	assert.Equal(t, 2, st.inserts, "existing records must not reach InsertRecord")
}

func TestSync_InsertConflictCountsAsDuplicate(t *testing.T) {
	st := newStubStore()
	st.raceOnInsert = true

	report, err := newTestSync(st, nil).Sync(context.Background(), "owner@example.com", inbox()[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Empty(t, report.Errors)
}

func TestSync_StoreErrorsAreIsolated(t *testing.T) {
	st := newStubStore()
	st.insertErr = errors.New("disk full")

	report, err := newTestSync(st, nil).Sync(context.Background(), "owner@example.com", inbox())
	require.NoError(t, err)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, "m1", report.Errors[0].MessageID)
	assert.Equal(t, "store", report.Errors[0].Stage)
	assert.Equal(t, "m3", report.Errors[1].MessageID)

	taskErr := ReportError(report)
	require.Error(t, taskErr)
	assert.Contains(t, taskErr.Error(), "2 errors")
	assert.ErrorIs(t, taskErr, report.Errors[0].Err)
}

type panicky struct{}

func (panicky) Extract(sender, subject, body string) (domain.Candidate, bool) {
	if subject == "boom" {
		panic("bad input")
	}
	return extract.New().Extract(sender, subject, body)
}

func TestSync_ExtractorPanicBecomesMessageError(t *testing.T) {
	st := newStubStore()
	msgs := append(inbox(), domain.RawMessage{ID: "m5", Subject: "boom"})

	report, err := newTestSync(st, panicky{}).Sync(context.Background(), "owner@example.com", msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "m5", report.Errors[0].MessageID)
	assert.Equal(t, "extract", report.Errors[0].Stage)
}

func TestSync_UnreachableStoreFailsRun(t *testing.T) {
	st := newStubStore()
	st.pingErr = errors.New("connection refused")

	_, err := newTestSync(st, nil).Sync(context.Background(), "owner@example.com", inbox())
	require.Error(t, err)
	assert.Empty(t, st.records)
}

func TestSync_RequiresUser(t *testing.T) {
	_, err := newTestSync(newStubStore(), nil).Sync(context.Background(), "  ", inbox())
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestSync_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := newStubStore()
	_, err := newTestSync(st, nil).Sync(ctx, "owner@example.com", inbox())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.records)
}

func TestSync_PreservesMessageOrderUnderConcurrency(t *testing.T) {
	var msgs []domain.RawMessage
	for i := 0; i < 40; i++ {
		msgs = append(msgs, domain.RawMessage{
			ID:      fmt.Sprintf("m%02d", i),
			Subject: "EMI statement",
			Body:    fmt.Sprintf("Total Rs %d in 2 EMIs", 100+i),
		})
	}
	st := newStubStore()

	report, err := newTestSync(st, nil).Sync(context.Background(), "owner@example.com", msgs)
	require.NoError(t, err)
	require.Equal(t, 40, report.Inserted)
	for i, rec := range st.records {
		assert.Equal(t, msgs[i].ID, rec.SourceMessageID)
	}
}

type fakeSource struct {
	identity    string
	identityErr error
	batch       domain.Batch
	fetchErr    error
	maxResults  int
}

func (f *fakeSource) Identity(context.Context) (string, error) {
	return f.identity, f.identityErr
}

func (f *fakeSource) Fetch(_ context.Context, maxResults int) (domain.Batch, error) {
	f.maxResults = maxResults
	return f.batch, f.fetchErr
}

func TestSyncFromSource_MergesFetchFailures(t *testing.T) {
	src := &fakeSource{
		identity: "Owner@Example.com",
		batch: domain.Batch{
			Messages: inbox(),
			Failures: []domain.MessageError{{MessageID: "x1", Stage: "fetch", Err: errors.New("500")}},
		},
	}
	st := newStubStore()

	report, err := newTestSync(st, nil).SyncFromSource(context.Background(), src, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, src.maxResults)
	assert.Equal(t, "owner@example.com", report.UserEmail)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "x1", report.Errors[0].MessageID)
}

func TestSyncFromSource_ListingFailure(t *testing.T) {
	src := &fakeSource{identity: "owner@example.com", fetchErr: errors.New("401 unauthorised")}

	report, err := newTestSync(newStubStore(), nil).SyncFromSource(context.Background(), src, 0)
	require.ErrorIs(t, err, ErrSourceFetchFailed)
	assert.Equal(t, "owner@example.com", report.UserEmail)
	assert.Zero(t, report.Inserted)
}

func TestSyncFromSource_IdentityFailure(t *testing.T) {
	src := &fakeSource{identityErr: errors.New("token expired")}
	_, err := newTestSync(newStubStore(), nil).SyncFromSource(context.Background(), src, 0)
	assert.ErrorIs(t, err, ErrSourceFetchFailed)
}
