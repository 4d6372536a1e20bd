package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

const defaultWorkers = 4

// TaskError aggregates per-message failures of one run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ReportError returns the report's message failures as a *TaskError, or nil
// when the run was clean.
func ReportError(report domain.SyncReport) error {
	var taskErr TaskError
	for _, msgErr := range report.Errors {
		taskErr.append(msgErr)
	}
	return taskErr.asError()
}

// extraction is the outcome for the message at the same index.
type extraction struct {
	candidate domain.Candidate
	ok        bool
	err       error
}

// extractionPool runs the extractor over a batch with bounded concurrency.
// Results keep the input order.
type extractionPool struct {
	extractor Extractor
	workers   int
}

func newExtractionPool(extractor Extractor, workers int) *extractionPool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &extractionPool{extractor: extractor, workers: workers}
}

func (p *extractionPool) run(ctx context.Context, msgs []domain.RawMessage) ([]extraction, error) {
	results := make([]extraction, len(msgs))
	if len(msgs) == 0 {
		return results, nil
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			results[idx] = p.extractOne(msgs[idx])
		}
	}

	workers := p.workers
	if workers > len(msgs) {
		workers = len(msgs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := range msgs {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// extractOne isolates extractor panics to the offending message.
func (p *extractionPool) extractOne(msg domain.RawMessage) (out extraction) {
	defer func() {
		if r := recover(); r != nil {
			out = extraction{err: fmt.Errorf("extractor panic: %v", r)}
		}
	}()
	candidate, ok := p.extractor.Extract(msg.Sender, msg.Subject, msg.Body)
	return extraction{candidate: candidate, ok: ok}
}
