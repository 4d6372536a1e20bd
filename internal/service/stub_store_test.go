package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// stubStore is an in-memory store.Store with optional injected failures.
type stubStore struct {
	mu        sync.Mutex
	nextID    int64
	records   []domain.BnplRecord
	profiles  map[string]domain.UserProfile
	pingErr   error
	insertErr error
	listErr   error
	// raceOnInsert simulates a concurrent writer that wins the unique index.
	raceOnInsert bool
	inserts      int
}

var _ store.Store = (*stubStore)(nil)

func newStubStore() *stubStore {
	return &stubStore{profiles: map[string]domain.UserProfile{}}
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }
func (s *stubStore) Close() error               { return nil }

func (s *stubStore) FindRecord(_ context.Context, user, msgID string) (domain.BnplRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.UserEmail == user && r.SourceMessageID == msgID {
			return r, nil
		}
	}
	return domain.BnplRecord{}, store.ErrNotFound
}

func (s *stubStore) GetRecord(_ context.Context, user string, id int64) (domain.BnplRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id && r.UserEmail == user {
			return r, nil
		}
	}
	return domain.BnplRecord{}, store.ErrNotFound
}

func (s *stubStore) InsertRecord(_ context.Context, rec domain.BnplRecord) (domain.BnplRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.insertErr != nil {
		return domain.BnplRecord{}, s.insertErr
	}
	if s.raceOnInsert {
		return domain.BnplRecord{}, store.ErrDuplicate
	}
	for _, r := range s.records {
		if r.UserEmail == rec.UserEmail && r.SourceMessageID == rec.SourceMessageID {
			return domain.BnplRecord{}, store.ErrDuplicate
		}
	}
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = time.Unix(s.nextID, 0).UTC()
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *stubStore) ListRecords(_ context.Context, user string, status domain.Status) ([]domain.BnplRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.BnplRecord
	for _, r := range s.records {
		if r.UserEmail == user && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *stubStore) SetStatus(_ context.Context, user string, id int64, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id && r.UserEmail == user {
			s.records[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *stubStore) ClearRecords(_ context.Context, user string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var n int64
	for _, r := range s.records {
		if r.UserEmail == user {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return n, nil
}

func (s *stubStore) GetProfile(_ context.Context, email string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		return domain.UserProfile{}, store.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) UpsertProfile(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.Email]; ok {
		p.CreatedAt = existing.CreatedAt
	}
	s.profiles[p.Email] = p
	return p, nil
}

func (s *stubStore) UpdateSalary(_ context.Context, email string, salary decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		p = domain.UserProfile{Email: email}
	}
	p.Salary = salary
	s.profiles[email] = p
	return nil
}

func (s *stubStore) GetSalary(_ context.Context, email string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		return domain.DefaultSalary, nil
	}
	return p.WithDefaults().Salary, nil
}
