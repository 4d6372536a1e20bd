package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

const recordColumns = `id, user_email, source_message_id, vendor, amount, installments, due_date, subject, status, created_at`

// FindRecord looks a record up by its source message.
func (s *Store) FindRecord(ctx context.Context, userEmail, sourceMessageID string) (domain.BnplRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM bnpl_records
		WHERE user_email = ? AND source_message_id = ?
	`, userEmail, sourceMessageID)
	rec, err := scanRecord(row)
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("find record: %w", notFound(err))
	}
	return rec, nil
}

// GetRecord returns the record only when it belongs to userEmail.
func (s *Store) GetRecord(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM bnpl_records
		WHERE id = ? AND user_email = ?
	`, id, userEmail)
	rec, err := scanRecord(row)
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("get record: %w", notFound(err))
	}
	return rec, nil
}

// InsertRecord stores rec and returns it with id and created_at assigned.
// A second insert for the same source message returns store.ErrDuplicate.
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
	createdAt := s.now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bnpl_records
		(user_email, source_message_id, vendor, amount, installments, due_date, subject, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_email, source_message_id) DO NOTHING
	`,
		rec.UserEmail,
		rec.SourceMessageID,
		rec.Vendor,
		rec.Amount.String(),
		rec.Installments,
		nullableDueDate(rec),
		rec.Subject,
		string(rec.Status),
		createdAt,
	)
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("insert record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("insert record: %w", err)
	}
	if affected == 0 {
		return domain.BnplRecord{}, store.ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("insert record: %w", err)
	}

	rec.ID = id
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return rec, nil
}

// ListRecords returns the user's records newest first.
func (s *Store) ListRecords(ctx context.Context, userEmail string, status domain.Status) ([]domain.BnplRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM bnpl_records WHERE user_email = ?`
	args := []any{userEmail}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// SetStatus changes the status of one of the user's records.
func (s *Store) SetStatus(ctx context.Context, userEmail string, id int64, status domain.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bnpl_records SET status = ? WHERE id = ? AND user_email = ?
	`, string(status), id, userEmail)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set status: %w", store.ErrNotFound)
	}
	return nil
}

// ClearRecords deletes every record of the user and reports how many went.
func (s *Store) ClearRecords(ctx context.Context, userEmail string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bnpl_records WHERE user_email = ?`, userEmail)
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.BnplRecord, error) {
	var (
		rec       domain.BnplRecord
		amount    decimal.Decimal
		dueDate   sql.NullString
		status    string
		createdAt string
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
		&createdAt,
	); err != nil {
		return domain.BnplRecord{}, err
	}
	rec.Amount = amount
	rec.Status = domain.Status(status)
	if dueDate.Valid {
		rec.DueDate = domain.DueDatePtr(dueDate.String)
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

func nullableDueDate(rec domain.BnplRecord) sql.NullString {
	if rec.DueDate == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: rec.FormatDueDate(), Valid: true}
}
