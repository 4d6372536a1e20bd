package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

const (
	// DefaultGmailAPIBase is the public Gmail REST endpoint.
	DefaultGmailAPIBase = "https://gmail.googleapis.com/gmail/v1"
	// DefaultTokenURL is Google's OAuth2 token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	// GmailReadonlyScope is the only scope the adapter requests.
	GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

	// DefaultQuery narrows the inbox to messages likely to mention installments.
	DefaultQuery = `(EMI OR installment OR "pay later" OR BNPL OR "due date" OR "monthly payment" OR statement OR repayment) -spam`

	defaultGmailTimeout = 30 * time.Second
	maxErrorBody        = 512
)

// ErrMissingCredentials indicates the OAuth settings are incomplete.
var ErrMissingCredentials = errors.New("gmail oauth credentials are not configured")

// OAuthConfig holds the refresh-token credentials of one mailbox owner.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	Timeout      time.Duration
}

// NewOAuthClient returns an HTTP client that injects and refreshes bearer
// tokens for the Gmail read-only scope.
func NewOAuthClient(ctx context.Context, cfg OAuthConfig) (*http.Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, ErrMissingCredentials
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGmailTimeout
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{GmailReadonlyScope},
	}

	base := &http.Client{Timeout: timeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	client.Timeout = timeout
	return client, nil
}

// GmailOptions tunes the adapter. Zero values fall back to defaults.
type GmailOptions struct {
	APIBase string
	Query   string
}

// Gmail reads messages through the Gmail REST API. It never modifies the mailbox.
type Gmail struct {
	client  *http.Client
	apiBase string
	query   string
	logger  *slog.Logger
}

var _ Source = (*Gmail)(nil)

// NewGmail wraps an authorised HTTP client, typically one from NewOAuthClient.
func NewGmail(client *http.Client, opts GmailOptions, logger *slog.Logger) *Gmail {
	if client == nil {
		client = &http.Client{Timeout: defaultGmailTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	apiBase := strings.TrimRight(opts.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultGmailAPIBase
	}
	query := opts.Query
	if query == "" {
		query = DefaultQuery
	}
	return &Gmail{client: client, apiBase: apiBase, query: query, logger: logger}
}

// Identity returns the authenticated mailbox address.
func (g *Gmail) Identity(ctx context.Context) (string, error) {
	var profile gmailProfile
	if err := g.getJSON(ctx, g.apiBase+"/users/me/profile", nil, &profile); err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	if profile.EmailAddress == "" {
		return "", errors.New("get profile: empty email address")
	}
	return profile.EmailAddress, nil
}

// Fetch lists messages matching the installment query and downloads each one.
// A failed listing fails the call; a failed download is recorded and skipped.
func (g *Gmail) Fetch(ctx context.Context, maxResults int) (domain.Batch, error) {
	ids, err := g.listMessageIDs(ctx, limitOrDefault(maxResults))
	if err != nil {
		return domain.Batch{}, fmt.Errorf("list messages: %w", err)
	}
	g.logger.Debug("gmail messages listed", slog.Int("count", len(ids)))

	batch := domain.Batch{Messages: make([]domain.RawMessage, 0, len(ids))}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		msg, err := g.getMessage(ctx, id)
		if err != nil {
			g.logger.Warn("gmail message fetch failed",
				slog.String("message_id", id),
				slog.Int("position", i+1),
				slog.Any("error", err),
			)
			batch.Failures = append(batch.Failures, domain.MessageError{MessageID: id, Stage: "fetch", Err: err})
			continue
		}
		batch.Messages = append(batch.Messages, toRawMessage(msg))
	}
	return batch, nil
}

func (g *Gmail) listMessageIDs(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", g.query)
	params.Set("maxResults", strconv.Itoa(limit))

	var resp gmailListResponse
	if err := g.getJSON(ctx, g.apiBase+"/users/me/messages", params, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (g *Gmail) getMessage(ctx context.Context, id string) (gmailMessage, error) {
	params := url.Values{}
	params.Set("format", "full")

	var msg gmailMessage
	if err := g.getJSON(ctx, g.apiBase+"/users/me/messages/"+url.PathEscape(id), params, &msg); err != nil {
		return gmailMessage{}, err
	}
	if msg.ID == "" {
		msg.ID = id
	}
	return msg, nil
}

func (g *Gmail) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("gmail api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gmail response: %w", err)
	}
	return nil
}

func toRawMessage(msg gmailMessage) domain.RawMessage {
	sender, ok := msg.Payload.header("From")
	if !ok || strings.TrimSpace(sender) == "" {
		sender = UnknownSender
	}
	subject, ok := msg.Payload.header("Subject")
	if !ok {
		subject = DefaultSubject
	}
	return domain.RawMessage{
		ID:      msg.ID,
		Sender:  sender,
		Subject: subject,
		Body:    ExtractBody(msg.Payload),
	}
}

type gmailListResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	NextPageToken      string `json:"nextPageToken"`
	ResultSizeEstimate int    `json:"resultSizeEstimate"`
}

type gmailMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Snippet  string `json:"snippet"`
	Payload  Part   `json:"payload"`
}

type gmailProfile struct {
	EmailAddress  string `json:"emailAddress"`
	MessagesTotal int    `json:"messagesTotal"`
}
