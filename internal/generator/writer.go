package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
)

// MailboxFile and ExpectedFile are the names WriteDataset uses under dir.
const (
	MailboxFile  = "inbox.yaml"
	ExpectedFile = "expected.json"
)

// Answer key written next to a generated mailbox. Outstanding is the sum of
// the expected amounts, which is what a clean sync of the mailbox should
// report as total outstanding.
type Answer struct {
	UserEmail   string          `json:"user_email"`
	Messages    int             `json:"messages"`
	Outstanding decimal.Decimal `json:"outstanding"`
	ByVendor    map[string]int  `json:"by_vendor"`
	Obligations []Expectation   `json:"obligations"`
}

// AnswerFor summarises the expectations of a dataset.
func AnswerFor(dataset Dataset) Answer {
	answer := Answer{
		UserEmail:   dataset.Mailbox.UserEmail,
		Messages:    len(dataset.Mailbox.Messages),
		Outstanding: decimal.Zero,
		ByVendor:    make(map[string]int),
		Obligations: make([]Expectation, len(dataset.Expected)),
	}
	copy(answer.Obligations, dataset.Expected)
	sort.SliceStable(answer.Obligations, func(i, j int) bool {
		return answer.Obligations[i].MessageID < answer.Obligations[j].MessageID
	})
	for _, exp := range answer.Obligations {
		answer.Outstanding = answer.Outstanding.Add(exp.Amount)
		answer.ByVendor[exp.Vendor]++
	}
	return answer
}

// WriteDataset stores the mailbox as YAML, readable by mailbox.NewFile, and
// its Answer as JSON next to it. Both files are replaced atomically.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mailboxPath := filepath.Join(dir, MailboxFile)
	tmp := mailboxPath + ".tmp"
	if err := mailbox.WriteFile(tmp, dataset.Mailbox); err != nil {
		return err
	}
	if err := os.Rename(tmp, mailboxPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", mailboxPath, err)
	}

	return writeJSON(filepath.Join(dir, ExpectedFile), AnswerFor(dataset))
}

// ReadAnswer loads the answer key written by WriteDataset.
func ReadAnswer(dir string) (Answer, error) {
	path := filepath.Join(dir, ExpectedFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Answer{}, fmt.Errorf("read %s: %w", path, err)
	}
	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return Answer{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return answer, nil
}

func writeJSON(path string, data any) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
