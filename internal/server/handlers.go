package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/api"
	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
	"github.com/vanshika/bnpltrace/backend/internal/service"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// userHeader carries the caller's email. Authentication is out of scope;
// a fronting proxy is expected to set it.
const userHeader = "X-User-Email"

// maxSyncMessages bounds caller-supplied batches on /sync/messages.
const maxSyncMessages = 500

// maxRequestBytes caps every JSON request body. A full batch of maximal
// bodies fits with room to spare.
const maxRequestBytes = 8 << 20

// Services groups the application services the API delegates to.
type Services struct {
	Sync     *service.SyncService
	Analysis *service.AnalysisService
	Records  *service.RecordService
	Profiles *service.ProfileService
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger     *slog.Logger
	services   Services
	source     mailbox.Source
	maxResults int
}

// NewAPIHandlers constructs an APIHandlers instance. source may be nil, in
// which case POST /sync answers 503.
func NewAPIHandlers(logger *slog.Logger, svcs Services, source mailbox.Source, maxResults int) *APIHandlers {
	return &APIHandlers{
		logger:     logger,
		services:   svcs,
		source:     source,
		maxResults: maxResults,
	}
}

func (h *APIHandlers) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if h.source == nil {
		writeError(w, http.StatusServiceUnavailable, "mail source is not configured")
		return
	}

	maxResults := parseInt(r.URL.Query().Get("maxResults"), h.maxResults)
	report, err := h.services.Sync.SyncFromSource(r.Context(), h.source, maxResults)
	if err != nil {
		h.logger.Error("sync failed", "error", err, "runId", report.RunID)
		if errors.Is(err, service.ErrSourceFetchFailed) {
			respondJSON(w, http.StatusBadGateway, api.NewSyncResult(report, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, api.NewSyncResult(report, nil))
}

func (h *APIHandlers) handleSyncMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var payload api.SyncMessagesRequest
	if !decodeRequest(w, r, &payload) {
		return
	}
	if len(payload.Messages) > maxSyncMessages {
		writeError(w, http.StatusRequestEntityTooLarge, "too many messages in one batch")
		return
	}
	for i := range payload.Messages {
		payload.Messages[i].Body = mailbox.TruncateBody(payload.Messages[i].Body)
	}

	report, err := h.services.Sync.Sync(r.Context(), user, payload.Messages)
	if err != nil {
		h.logger.Error("sync failed", "error", err, "runId", report.RunID, "user", user)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	respondJSON(w, http.StatusOK, api.NewSyncResult(report, nil))
}

func (h *APIHandlers) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	report, err := h.services.Analysis.Report(r.Context(), user)
	if err != nil {
		h.logger.Error("analysis failed", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to analyse records")
		return
	}
	respondJSON(w, http.StatusOK, api.NewReport(report))
}

func (h *APIHandlers) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRecords(w, r)
	case http.MethodDelete:
		h.resetRecords(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *APIHandlers) listRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, ok := domain.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "status must be active or paid")
		return
	}

	records, err := h.services.Records.List(r.Context(), user, status)
	if err != nil {
		h.logger.Error("failed to list records", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	response := api.RecordList{Records: make([]api.Record, 0, len(records)), Count: len(records)}
	for _, rec := range records {
		response.Records = append(response.Records, api.NewRecord(rec))
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) resetRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	deleted, err := h.services.Records.Reset(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to reset records", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to reset records")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// handleRecordAction serves /records/{id} and /records/{id}/paid.
func (h *APIHandlers) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/records/"), "/")
	idPart, action, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "record ID must be a positive integer")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.getRecord(w, r, id)
	case "paid":
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			methodNotAllowed(w, http.MethodPost, http.MethodPut)
			return
		}
		h.markPaid(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown record action")
	}
}

func (h *APIHandlers) getRecord(w http.ResponseWriter, r *http.Request, id int64) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, err := h.services.Records.Get(r.Context(), user, id)
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch record")
		return
	}
	respondJSON(w, http.StatusOK, api.NewRecord(rec))
}

func (h *APIHandlers) markPaid(w http.ResponseWriter, r *http.Request, id int64) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, err := h.services.Records.MarkPaid(r.Context(), user, id)
	if err != nil {
		h.writeServiceError(w, err, "failed to update record")
		return
	}

	// Clients refresh their dashboard from the same response.
	report, err := h.services.Analysis.Report(r.Context(), user)
	if err != nil {
		h.logger.Error("analysis after mark paid failed", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to analyse records")
		return
	}
	reportResp := api.NewReport(report)
	respondJSON(w, http.StatusOK, api.MarkPaidResult{
		Record:        api.NewRecord(rec),
		Analysis:      reportResp.Analysis,
		Affordability: reportResp.Affordability,
	})
}

func (h *APIHandlers) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	records, err := h.services.Records.List(r.Context(), user, "")
	if err != nil {
		h.logger.Error("failed to export records", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to export records")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json":
		rows := make([]api.Record, 0, len(records))
		for _, rec := range records {
			rows = append(rows, api.NewRecord(rec))
		}
		respondJSON(w, http.StatusOK, rows)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="bnpl_records.csv"`)
		w.WriteHeader(http.StatusOK)
		writer := csv.NewWriter(w)
		// csv.Writer keeps the first write error; it is checked once after Flush.
		writer.Write([]string{"id", "vendor", "amount", "installments", "monthly_amount", "due_date", "status", "subject", "created_at"})
		for _, rec := range records {
			writer.Write([]string{
				strconv.FormatInt(rec.ID, 10),
				rec.Vendor,
				rec.Amount.StringFixed(2),
				strconv.Itoa(rec.Installments),
				rec.MonthlyAmount().StringFixed(2),
				rec.FormatDueDate(),
				string(rec.Status),
				rec.Subject,
				formatTime(rec.CreatedAt),
			})
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			h.logger.Error("failed to write csv export", "error", err, "user", user)
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json or csv")
	}
}

func (h *APIHandlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r)
	case http.MethodPut, http.MethodPost:
		h.saveProfile(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPost)
	}
}

func (h *APIHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	profile, found, err := h.services.Profiles.Get(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to fetch profile", "error", err, "user", user)
		writeError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	resp := api.NewProfile(profile)
	resp.Saved = found
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var payload api.ProfileRequest
	if !decodeRequest(w, r, &payload) {
		return
	}

	saved, err := h.services.Profiles.Save(r.Context(), payload.ToProfile(user))
	if err != nil {
		h.writeServiceError(w, err, "failed to save profile")
		return
	}
	resp := api.NewProfile(saved)
	resp.Saved = true
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleSalary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPut, http.MethodPost)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var payload api.SalaryRequest
	if !decodeRequest(w, r, &payload) {
		return
	}

	if err := h.services.Profiles.SetSalary(r.Context(), user, payload.Salary); err != nil {
		h.writeServiceError(w, err, "failed to save salary")
		return
	}
	effective, err := h.services.Profiles.Salary(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err, "failed to read salary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"salary": effective.InexactFloat64()})
}

// writeServiceError maps service and store sentinels onto HTTP statuses.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := strings.TrimSpace(r.Header.Get(userHeader))
	if user == "" {
		writeError(w, http.StatusUnauthorized, userHeader+" header is required")
		return "", false
	}
	return user, true
}

// decodeRequest decodes the JSON body into dst and answers 400, or 413 for
// bodies over maxRequestBytes, when it cannot.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeJSON(w, r, dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
