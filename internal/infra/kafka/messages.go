package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

type resultEnvelope struct {
	Test        string          `json:"test"`
	Script      string          `json:"script"`
	Outcome     grading.Outcome `json:"outcome"`
	Error       string          `json:"error,omitempty"`
	FailMessage string          `json:"fail_message,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
	Lines       []lineEnvelope  `json:"lines,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

type lineEnvelope struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matched  bool   `json:"matched"`
}

func encodeTestResult(result grading.TestResult) ([]byte, error) {
	payload, err := json.Marshal(makeResultEnvelope(result))
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return payload, nil
}

func makeResultEnvelope(result grading.TestResult) resultEnvelope {
	var lines []lineEnvelope
	if len(result.Lines) > 0 {
		lines = make([]lineEnvelope, 0, len(result.Lines))
		for _, line := range result.Lines {
			lines = append(lines, lineEnvelope{
				Expected: line.Expected.String(),
				Actual:   line.Actual,
				Matched:  line.Matched,
			})
		}
	}

	return resultEnvelope{
		Test:        result.Case.Name,
		Script:      result.Case.Script,
		Outcome:     result.Outcome,
		Error:       result.ErrorText,
		FailMessage: result.FailMessage,
		DurationMs:  result.Duration.Milliseconds(),
		Lines:       lines,
		Timestamp:   time.Now().UTC(),
	}
}
