// Package postgres implements store.Store on PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store implements store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ping verifies the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const recordColumns = `id, user_email, source_message_id, vendor, amount::text, installments, due_date, subject, status, created_at`

func (s *Store) FindRecord(ctx context.Context, userEmail, sourceMessageID string) (domain.BnplRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM bnpl_records
		WHERE user_email = $1 AND source_message_id = $2
	`, userEmail, sourceMessageID)
	rec, err := scanRecord(row)
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("find record: %w", notFound(err))
	}
	return rec, nil
}

func (s *Store) GetRecord(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM bnpl_records
		WHERE id = $1 AND user_email = $2
	`, id, userEmail)
	rec, err := scanRecord(row)
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("get record: %w", notFound(err))
	}
	return rec, nil
}

func (s *Store) InsertRecord(ctx context.Context, rec domain.BnplRecord) (domain.BnplRecord, error) {
	if rec.Status == "" {
		rec.Status = domain.StatusActive
	}
	if rec.Installments < 1 {
		rec.Installments = 1
	}
	if rec.Vendor == "" {
		rec.Vendor = domain.UnknownVendor
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO bnpl_records
		(user_email, source_message_id, vendor, amount, installments, due_date, subject, status)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7, $8)
		ON CONFLICT (user_email, source_message_id) DO NOTHING
		RETURNING id, created_at
	`,
		rec.UserEmail,
		rec.SourceMessageID,
		rec.Vendor,
		rec.Amount.String(),
		rec.Installments,
		rec.DueDate,
		rec.Subject,
		string(rec.Status),
	).Scan(&rec.ID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BnplRecord{}, store.ErrDuplicate
	}
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, userEmail string, status domain.Status) ([]domain.BnplRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM bnpl_records
		WHERE user_email = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
	`, userEmail, string(status))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.BnplRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

func (s *Store) SetStatus(ctx context.Context, userEmail string, id int64, status domain.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE bnpl_records SET status = $1 WHERE id = $2 AND user_email = $3
	`, string(status), id, userEmail)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set status: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) ClearRecords(ctx context.Context, userEmail string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bnpl_records WHERE user_email = $1`, userEmail)
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) GetProfile(ctx context.Context, email string) (domain.UserProfile, error) {
	var p domain.UserProfile
	var salary, rent, other, existingLoans string
	err := s.pool.QueryRow(ctx, `
		SELECT email, full_name, salary::text, monthly_rent::text, other_expenses::text,
		       city, existing_loans::text, created_at
		FROM users WHERE email = $1
	`, email).Scan(&p.Email, &p.FullName, &salary, &rent, &other, &p.City, &existingLoans, &p.CreatedAt)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", notFound(err))
	}
	if p.Salary, err = parseNumeric(salary); err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.MonthlyRent, err = parseNumeric(rent); err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.OtherExpenses, err = parseNumeric(other); err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.ExistingLoans, err = parseNumeric(existingLoans); err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (email, full_name, salary, monthly_rent, other_expenses, city, existing_loans)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5::text::numeric, $6, $7::text::numeric)
		ON CONFLICT (email) DO UPDATE SET
			full_name      = EXCLUDED.full_name,
			salary         = EXCLUDED.salary,
			monthly_rent   = EXCLUDED.monthly_rent,
			other_expenses = EXCLUDED.other_expenses,
			city           = EXCLUDED.city,
			existing_loans = EXCLUDED.existing_loans
	`, p.Email, p.FullName, p.Salary.String(), p.MonthlyRent.String(), p.OtherExpenses.String(), p.City, p.ExistingLoans.String())
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return s.GetProfile(ctx, p.Email)
}

func (s *Store) UpdateSalary(ctx context.Context, email string, salary decimal.Decimal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (email, salary) VALUES ($1, $2::text::numeric)
		ON CONFLICT (email) DO UPDATE SET salary = EXCLUDED.salary
	`, email, salary.String())
	if err != nil {
		return fmt.Errorf("update salary: %w", err)
	}
	return nil
}

func (s *Store) GetSalary(ctx context.Context, email string) (decimal.Decimal, error) {
	var raw string
	err := s.pool.QueryRow(ctx, `SELECT salary::text FROM users WHERE email = $1`, email).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSalary, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get salary: %w", err)
	}
	salary, err := parseNumeric(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get salary: %w", err)
	}
	return domain.UserProfile{Salary: salary}.WithDefaults().Salary, nil
}

func scanRecord(row pgx.Row) (domain.BnplRecord, error) {
	var (
		rec     domain.BnplRecord
		amount  string
		dueDate *time.Time
		status  string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.UserEmail,
		&rec.SourceMessageID,
		&rec.Vendor,
		&amount,
		&rec.Installments,
		&dueDate,
		&rec.Subject,
		&status,
		&rec.CreatedAt,
	); err != nil {
		return domain.BnplRecord{}, err
	}
	parsed, err := parseNumeric(amount)
	if err != nil {
		return domain.BnplRecord{}, err
	}
	rec.Amount = parsed
	rec.Status = domain.Status(status)
	if dueDate != nil {
		d := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
		rec.DueDate = &d
	}
	return rec, nil
}

func parseNumeric(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return d, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
