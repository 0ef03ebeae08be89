package jsonreport

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

func TestPublishEncodesEveryOutcome(t *testing.T) {
	t.Parallel()

	results := []grading.TestResult{
		{
			Case:    grading.TestCase{Name: "palindrome"},
			Outcome: grading.OutcomePassed,
		},
		{
			Case:        grading.TestCase{Name: "greeting"},
			Outcome:     grading.OutcomeFailed,
			FailMessage: `line 1: expected "hello", got "helo"`,
		},
		{
			Case:      grading.TestCase{Name: "crash"},
			Outcome:   grading.OutcomeCrashed,
			ErrorText: "script exited with status 1",
		},
	}

	var buf bytes.Buffer
	sink := New(&buf)
	if err := sink.Publish(context.Background(), results); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	var report map[string]entry
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(report) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report))
	}

	if got := report["palindrome"]; got.Status != statusSuccess || got.Message != "Test passed" {
		t.Fatalf("unexpected success entry: %+v", got)
	}
	if got := report["greeting"]; got.Status != statusFailure || got.Message == "" {
		t.Fatalf("unexpected failure entry: %+v", got)
	}
	if got := report["crash"]; got.Status != statusError || got.Message != "script exited with status 1" {
		t.Fatalf("unexpected error entry: %+v", got)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestPublishEmptyResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(&buf).Publish(context.Background(), nil); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := buf.String(); got != "{}\n" {
		t.Fatalf("empty report = %q, want {}", got)
	}
}
