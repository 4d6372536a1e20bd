package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// SyncService turns mailbox messages into stored records, at most one per
// (user, source message).
type SyncService struct {
	store  store.Store
	pool   *extractionPool
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewSyncService builds a SyncService. workers bounds extraction concurrency.
func NewSyncService(st store.Store, extractor Extractor, workers int, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		store:  st,
		pool:   newExtractionPool(extractor, workers),
		logger: logger.With(slog.String("component", "sync")),
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *SyncService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Sync extracts and stores candidates from msgs. Only an unreachable store or
// a cancelled context fails the run; everything else is tallied in the report.
func (s *SyncService) Sync(ctx context.Context, userEmail string, msgs []domain.RawMessage) (domain.SyncReport, error) {
	report := s.newReport(userEmail)
	if report.UserEmail == "" {
		return report, ErrMissingUser
	}
	if err := s.store.Ping(ctx); err != nil {
		return report, fmt.Errorf("store unavailable: %w", err)
	}

	err := s.syncMessages(ctx, &report, msgs)
	report.FinishedAt = s.nowFn()
	s.logReport(report)
	return report, err
}

// SyncFromSource fetches up to maxResults messages from src and syncs them for
// the mailbox owner. When listing fails the report is returned with
// ErrSourceFetchFailed.
func (s *SyncService) SyncFromSource(ctx context.Context, src mailbox.Source, maxResults int) (domain.SyncReport, error) {
	report := s.newReport("")
	if err := s.store.Ping(ctx); err != nil {
		return report, fmt.Errorf("store unavailable: %w", err)
	}

	identity, err := src.Identity(ctx)
	if err != nil {
		report.FinishedAt = s.nowFn()
		return report, fmt.Errorf("%w: resolve identity: %w", ErrSourceFetchFailed, err)
	}
	report.UserEmail = normalizeEmail(identity)

	batch, err := src.Fetch(ctx, maxResults)
	if err != nil {
		report.FinishedAt = s.nowFn()
		s.logger.Error("mail source fetch failed",
			slog.String("run_id", report.RunID),
			slog.String("user", report.UserEmail),
			slog.Any("error", err),
		)
		return report, fmt.Errorf("%w: %w", ErrSourceFetchFailed, err)
	}
	report.Fetched += len(batch.Failures)
	report.Errors = append(report.Errors, batch.Failures...)

	err = s.syncMessages(ctx, &report, batch.Messages)
	report.FinishedAt = s.nowFn()
	s.logReport(report)
	return report, err
}

func (s *SyncService) newReport(userEmail string) domain.SyncReport {
	runID := uuid.NewString()
	if id, err := uuid.NewV7(); err == nil {
		runID = id.String()
	}
	return domain.SyncReport{
		RunID:     runID,
		UserEmail: normalizeEmail(userEmail),
		StartedAt: s.nowFn(),
	}
}

func (s *SyncService) syncMessages(ctx context.Context, report *domain.SyncReport, msgs []domain.RawMessage) error {
	report.Fetched += len(msgs)

	results, err := s.pool.run(ctx, msgs)
	if err != nil {
		return err
	}

	// Store access stays serial and in message order.
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := results[i]
		switch {
		case res.err != nil:
			report.Errors = append(report.Errors, domain.MessageError{MessageID: msg.ID, Stage: "extract", Err: res.err})
			continue
		case !res.ok:
			report.Skipped++
			continue
		case msg.ID == "":
			report.Errors = append(report.Errors, domain.MessageError{MessageID: msg.ID, Stage: "extract", Err: errors.New("message has no id")})
			continue
		}

		if err := s.storeCandidate(ctx, report, msg, res.candidate); err != nil {
			report.Errors = append(report.Errors, domain.MessageError{MessageID: msg.ID, Stage: "store", Err: err})
		}
	}
	return nil
}

func (s *SyncService) storeCandidate(ctx context.Context, report *domain.SyncReport, msg domain.RawMessage, c domain.Candidate) error {
	_, err := s.store.FindRecord(ctx, report.UserEmail, msg.ID)
	switch {
	case err == nil:
		s.countDuplicate(report, msg.ID)
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	if c.Amount.IsNegative() || c.Amount.IsZero() {
		report.Skipped++
		return nil
	}
	c.Vendor = sanitizeString(c.Vendor)
	rec := c.ToRecord(report.UserEmail, msg)
	rec.Subject = sanitizeString(rec.Subject)

	if _, err := s.store.InsertRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.countDuplicate(report, msg.ID)
			return nil
		}
		return err
	}
	report.Inserted++
	return nil
}

func (s *SyncService) countDuplicate(report *domain.SyncReport, messageID string) {
	report.Duplicates++
	report.Skipped++
	s.logger.Debug("skipping already synced message",
		slog.String("run_id", report.RunID),
		slog.String("message_id", messageID),
	)
}

func (s *SyncService) logReport(report domain.SyncReport) {
	s.logger.Info("sync completed",
		slog.String("run_id", report.RunID),
		slog.String("user", report.UserEmail),
		slog.Int("fetched", report.Fetched),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("failed", report.Failed()),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
}
