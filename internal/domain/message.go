package domain

import "fmt"

// RawMessage is the decoded form of one inbox message.
type RawMessage struct {
	ID      string `json:"id" yaml:"id"`
	Sender  string `json:"sender" yaml:"sender"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}

// MessageError records a failure isolated to a single message.
type MessageError struct {
	MessageID string
	Stage     string
	Err       error
}

func (e MessageError) Error() string {
	return fmt.Sprintf("message %s (%s): %v", e.MessageID, e.Stage, e.Err)
}

func (e MessageError) Unwrap() error {
	return e.Err
}

// Batch is what a mail source returns for one fetch: the messages it could
// decode plus the ones it failed to retrieve.
type Batch struct {
	Messages []RawMessage
	Failures []MessageError
}
