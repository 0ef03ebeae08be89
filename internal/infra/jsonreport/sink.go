// Package jsonreport emits grading results as a single JSON document,
// meant for editor plugins and other tooling that consumes verdicts
// programmatically.
package jsonreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/ports"
)

var _ ports.ReportSink = (*Sink)(nil)

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusError   = "error"
)

type entry struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// Sink writes one JSON object per run, keyed by test name.
type Sink struct {
	out io.Writer
}

// New constructs a JSON report sink writing to out.
func New(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Publish encodes the results and writes them in one call.
func (s *Sink) Publish(ctx context.Context, results []grading.TestResult) error {
	report := make(map[string]entry, len(results))
	for _, result := range results {
		report[result.Case.Name] = makeEntry(result)
	}

	encoder := json.NewEncoder(s.out)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}

func makeEntry(result grading.TestResult) entry {
	e := entry{Description: result.Case.Name}
	switch result.Outcome {
	case grading.OutcomePassed:
		e.Status = statusSuccess
		e.Message = "Test passed"
	case grading.OutcomeFailed:
		e.Status = statusFailure
		e.Message = result.FailMessage
	default:
		e.Status = statusError
		e.Message = result.ErrorText
	}
	return e
}
