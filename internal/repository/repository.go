// Package repository is the Neo4j-backed store. Users, records and vendors are
// nodes; ownership and vendor attribution are relationships.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/graph"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// timeLayout is fixed-width so createdAt orders lexically inside Cypher.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Repository implements store.Store on a graph.Client.
type Repository struct {
	client graph.Client
	nowFn  func() time.Time
}

var _ store.Store = (*Repository)(nil)

// New wraps client.
func New(client graph.Client) *Repository {
	return &Repository{client: client, nowFn: time.Now}
}

// WithClock overrides the timestamp source.
func (r *Repository) WithClock(fn func() time.Time) *Repository {
	if fn != nil {
		r.nowFn = fn
	}
	return r
}

// EnsureSchema creates the uniqueness constraints the store relies on.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
	}
	return nil
}

// Ping checks driver connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

// Close shuts the underlying driver down.
func (r *Repository) Close() error {
	return r.client.Close(context.Background())
}

func (r *Repository) now() string {
	return r.nowFn().UTC().Format(timeLayout)
}

func (r *Repository) FindRecord(ctx context.Context, userEmail, sourceMessageID string) (domain.BnplRecord, error) {
	res, err := r.client.ExecuteRead(ctx, findRecordCypher, map[string]any{
		"userEmail":       userEmail,
		"sourceMessageId": sourceMessageID,
	})
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("find record: %w", err)
	}
	return firstRecord(res, "find record")
}

func (r *Repository) GetRecord(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error) {
	res, err := r.client.ExecuteRead(ctx, getRecordCypher, map[string]any{
		"userEmail": userEmail,
		"recordId":  id,
	})
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("get record: %w", err)
	}
	return firstRecord(res, "get record")
}

// InsertRecord creates the record unless the user already owns one for the
// same source message. Either the guard in the query or the uniqueness
// constraint turns a repeat into store.ErrDuplicate.
func (r *Repository) InsertRecord(ctx context.Context, rec domain.BnplRecord) (domain.BnplRecord, error) {
	if rec.UserEmail == "" || rec.SourceMessageID == "" {
		return domain.BnplRecord{}, errors.New("insert record: user email and source message id are required")
	}
	if rec.Status == "" {
		rec.Status = domain.StatusActive
	}
	if rec.Installments < 1 {
		rec.Installments = 1
	}
	if strings.TrimSpace(rec.Vendor) == "" {
		rec.Vendor = domain.UnknownVendor
	}

	createdAt := r.now()
	res, err := r.client.ExecuteWrite(ctx, insertRecordCypher, map[string]any{
		"userEmail":       rec.UserEmail,
		"sourceMessageId": rec.SourceMessageID,
		"props": map[string]any{
			"userEmail":       rec.UserEmail,
			"sourceMessageId": rec.SourceMessageID,
			"vendor":          rec.Vendor,
			"amount":          rec.Amount.String(),
			"installments":    int64(rec.Installments),
			"dueDate":         rec.FormatDueDate(),
			"subject":         rec.Subject,
			"status":          string(rec.Status),
			"createdAt":       createdAt,
		},
		"vendor": rec.Vendor,
	})
	if graph.IsConstraintViolation(err) {
		return domain.BnplRecord{}, store.ErrDuplicate
	}
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("insert record: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.BnplRecord{}, store.ErrDuplicate
	}

	rec.ID = toInt64(res.Records[0]["recordId"])
	rec.CreatedAt = toTime(res.Records[0]["createdAt"])
	return rec, nil
}

func (r *Repository) ListRecords(ctx context.Context, userEmail string, status domain.Status) ([]domain.BnplRecord, error) {
	res, err := r.client.ExecuteRead(ctx, listRecordsCypher, map[string]any{
		"userEmail": userEmail,
		"status":    string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]domain.BnplRecord, 0, len(res.Records))
	for _, row := range res.Records {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Repository) SetStatus(ctx context.Context, userEmail string, id int64, status domain.Status) error {
	res, err := r.client.ExecuteWrite(ctx, setStatusCypher, map[string]any{
		"userEmail": userEmail,
		"recordId":  id,
		"status":    string(status),
	})
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("set status: %w", store.ErrNotFound)
	}
	return nil
}

func (r *Repository) ClearRecords(ctx context.Context, userEmail string) (int64, error) {
	res, err := r.client.ExecuteWrite(ctx, clearRecordsCypher, map[string]any{"userEmail": userEmail})
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return toInt64(res.Records[0]["deleted"]), nil
}

func (r *Repository) GetProfile(ctx context.Context, email string) (domain.UserProfile, error) {
	res, err := r.client.ExecuteRead(ctx, getProfileCypher, map[string]any{"email": email})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", store.ErrNotFound)
	}
	p, err := profileFromRow(res.Records[0])
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	res, err := r.client.ExecuteWrite(ctx, upsertProfileCypher, map[string]any{
		"email": p.Email,
		"props": map[string]any{
			"fullName":      p.FullName,
			"salary":        p.Salary.String(),
			"monthlyRent":   p.MonthlyRent.String(),
			"otherExpenses": p.OtherExpenses.String(),
			"city":          p.City,
			"existingLoans": p.ExistingLoans.String(),
		},
		"now": r.now(),
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: no row returned for %s", p.Email)
	}
	saved, err := profileFromRow(res.Records[0])
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return saved, nil
}

func (r *Repository) UpdateSalary(ctx context.Context, email string, salary decimal.Decimal) error {
	_, err := r.client.ExecuteWrite(ctx, updateSalaryCypher, map[string]any{
		"email":  email,
		"salary": salary.String(),
		"now":    r.now(),
	})
	if err != nil {
		return fmt.Errorf("update salary: %w", err)
	}
	return nil
}

func (r *Repository) GetSalary(ctx context.Context, email string) (decimal.Decimal, error) {
	res, err := r.client.ExecuteRead(ctx, getSalaryCypher, map[string]any{"email": email})
	if err != nil {
		return decimal.Zero, fmt.Errorf("get salary: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.DefaultSalary, nil
	}
	salary, err := toDecimal(res.Records[0]["salary"])
	if err != nil {
		return decimal.Zero, fmt.Errorf("get salary: %w", err)
	}
	return domain.UserProfile{Salary: salary}.WithDefaults().Salary, nil
}

func firstRecord(res graph.Result, op string) (domain.BnplRecord, error) {
	if len(res.Records) == 0 {
		return domain.BnplRecord{}, fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	rec, err := recordFromRow(res.Records[0])
	if err != nil {
		return domain.BnplRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func recordFromRow(row graph.Record) (domain.BnplRecord, error) {
	amount, err := toDecimal(row["amount"])
	if err != nil {
		return domain.BnplRecord{}, err
	}
	return domain.BnplRecord{
		ID:              toInt64(row["recordId"]),
		UserEmail:       toString(row["userEmail"]),
		SourceMessageID: toString(row["sourceMessageId"]),
		Vendor:          toString(row["vendor"]),
		Amount:          amount,
		Installments:    int(toInt64(row["installments"])),
		DueDate:         domain.DueDatePtr(toString(row["dueDate"])),
		Subject:         toString(row["subject"]),
		Status:          domain.Status(toString(row["status"])),
		CreatedAt:       toTime(row["createdAt"]),
	}, nil
}

func profileFromRow(row graph.Record) (domain.UserProfile, error) {
	p := domain.UserProfile{
		Email:     toString(row["email"]),
		FullName:  toString(row["fullName"]),
		City:      toString(row["city"]),
		CreatedAt: toTime(row["createdAt"]),
	}
	var err error
	if p.Salary, err = toDecimal(row["salary"]); err != nil {
		return domain.UserProfile{}, err
	}
	if p.MonthlyRent, err = toDecimal(row["monthlyRent"]); err != nil {
		return domain.UserProfile{}, err
	}
	if p.OtherExpenses, err = toDecimal(row["otherExpenses"]); err != nil {
		return domain.UserProfile{}, err
	}
	if p.ExistingLoans, err = toDecimal(row["existingLoans"]); err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// toDecimal reads amounts stored as strings; older nodes may hold floats.
func toDecimal(val any) (decimal.Decimal, error) {
	switch v := val.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected amount type %T", val)
	}
}

func toTime(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
