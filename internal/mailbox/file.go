package mailbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// Mailbox is the on-disk fixture format: an owner plus decoded messages.
type Mailbox struct {
	UserEmail string              `yaml:"user_email"`
	Messages  []domain.RawMessage `yaml:"messages"`
}

// File serves a Mailbox stored as YAML. The file is re-read on every call.
type File struct {
	path string
}

var _ Source = (*File)(nil)

// NewFile returns a Source backed by the YAML mailbox at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Identity returns the mailbox owner recorded in the file.
func (f *File) Identity(_ context.Context) (string, error) {
	box, err := ReadFile(f.path)
	if err != nil {
		return "", err
	}
	if box.UserEmail == "" {
		return "", fmt.Errorf("mailbox %s: user_email is empty", f.path)
	}
	return box.UserEmail, nil
}

// Fetch returns up to maxResults messages. Entries without an id cannot be
// synced idempotently and are reported as failures.
func (f *File) Fetch(ctx context.Context, maxResults int) (domain.Batch, error) {
	if err := ctx.Err(); err != nil {
		return domain.Batch{}, err
	}
	box, err := ReadFile(f.path)
	if err != nil {
		return domain.Batch{}, err
	}

	limit := limitOrDefault(maxResults)
	var batch domain.Batch
	for i, msg := range box.Messages {
		if len(batch.Messages)+len(batch.Failures) >= limit {
			break
		}
		if msg.ID == "" {
			batch.Failures = append(batch.Failures, domain.MessageError{
				MessageID: fmt.Sprintf("#%d", i+1),
				Stage:     "fetch",
				Err:       errors.New("message has no id"),
			})
			continue
		}
		if msg.Sender == "" {
			msg.Sender = UnknownSender
		}
		if msg.Subject == "" {
			msg.Subject = DefaultSubject
		}
		msg.Body = TruncateBody(msg.Body)
		batch.Messages = append(batch.Messages, msg)
	}
	return batch, nil
}

// ReadFile decodes a YAML mailbox.
func ReadFile(path string) (Mailbox, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Mailbox{}, fmt.Errorf("read mailbox %s: %w", path, err)
	}
	var box Mailbox
	if err := yaml.Unmarshal(raw, &box); err != nil {
		return Mailbox{}, fmt.Errorf("decode mailbox %s: %w", path, err)
	}
	return box, nil
}

// WriteFile encodes box as YAML at path, creating parent directories.
func WriteFile(path string, box Mailbox) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mailbox dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(box); err != nil {
		return fmt.Errorf("encode mailbox %s: %w", path, err)
	}
	return enc.Close()
}
