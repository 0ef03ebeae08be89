// Package runner walks a registry of test cases, executes each script
// through a runtime engine, compares the captured output line by line, and
// hands the aggregated results to the configured report sinks.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
	"github.com/school-grader/school-grader/internal/ports"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
)

// Service coordinates one grading run.
type Service struct {
	engine runtimex.Engine
	sinks  []ports.ReportSink
}

// NewService constructs a Service with the provided engine and sinks.
func NewService(engine runtimex.Engine, sinks ...ports.ReportSink) *Service {
	return &Service{engine: engine, sinks: sinks}
}

// Run executes every registered test case sequentially, in registration
// order, and publishes the aggregated results to every sink. Each case
// yields exactly one TestResult no matter how it fails; only sink errors
// are returned.
func (s *Service) Run(ctx context.Context, registry *grading.Registry) ([]grading.TestResult, error) {
	results := make([]grading.TestResult, 0, registry.Len())
	for _, tc := range registry.Cases() {
		results = append(results, s.runCase(ctx, tc))
	}

	var sinkErrs []error
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, results); err != nil {
			sinkErrs = append(sinkErrs, fmt.Errorf("publish report: %w", err))
		}
	}
	return results, errors.Join(sinkErrs...)
}

func (s *Service) runCase(ctx context.Context, tc grading.TestCase) grading.TestResult {
	script := grading.Script{
		ID:       tc.Name,
		Path:     tc.Script,
		Language: tc.Language,
		Limits:   grading.RunLimits{TimeLimit: tc.Timeout},
	}

	prepared, buildResult, err := s.engine.Prepare(ctx, script)
	if err != nil {
		return crashed(tc, err.Error(), 0)
	}
	if prepared != nil {
		defer prepared.Close()
	}

	if buildResult != nil {
		return crashed(tc, buildText(buildResult), buildResult.Duration)
	}
	if prepared == nil {
		return crashed(tc, "runtime returned no runnable script", 0)
	}

	run, err := prepared.Run(ctx, joinInput(tc.MockInput))
	if err != nil {
		return crashed(tc, err.Error(), 0)
	}

	switch {
	case run.Status == grading.StatusTimeLimit:
		return grading.TestResult{
			Case:      tc,
			Outcome:   grading.OutcomeTimedOut,
			ErrorText: fmt.Sprintf("execution did not finish within %s; the script may be stuck in an infinite loop", tc.Timeout),
			Duration:  run.Duration,
		}
	case run.ExitCode != 0:
		return crashed(tc, crashText(run), run.Duration)
	}

	return compareOutput(tc, run)
}

// compareOutput pairs captured lines with expected entries by position.
// A line-count mismatch is an ordinary failure, never a crash.
func compareOutput(tc grading.TestCase, run *grading.RunResult) grading.TestResult {
	actual := grading.SplitOutput(run.Stdout)

	result := grading.TestResult{
		Case:     tc,
		Outcome:  grading.OutcomePassed,
		Duration: run.Duration,
	}

	if len(actual) != len(tc.Expected) {
		result.Outcome = grading.OutcomeFailed
		result.FailMessage = effectiveFailMessage(tc,
			fmt.Sprintf("the output contains %d lines, expected %d", len(actual), len(tc.Expected)))
		result.Lines = pairLines(tc.Expected, actual)
		return result
	}

	result.Lines = make([]grading.LineResult, len(actual))
	for i, expectation := range tc.Expected {
		matched := expectation.Matches(actual[i])
		result.Lines[i] = grading.LineResult{
			Expected: expectation,
			Actual:   actual[i],
			Matched:  matched,
		}
		if !matched && result.Outcome == grading.OutcomePassed {
			result.Outcome = grading.OutcomeFailed
			result.FailMessage = effectiveFailMessage(tc,
				fmt.Sprintf("line %d: expected %s, got %q", i+1, expectation, actual[i]))
		}
	}
	return result
}

// pairLines builds line results for a length mismatch, padding the shorter
// side so the report can show both what is missing and what is extra.
func pairLines(expected []grading.Expectation, actual []string) []grading.LineResult {
	size := len(expected)
	if len(actual) > size {
		size = len(actual)
	}

	lines := make([]grading.LineResult, size)
	for i := 0; i < size; i++ {
		line := grading.LineResult{}
		hasBoth := i < len(expected) && i < len(actual)
		if i < len(expected) {
			line.Expected = expected[i]
		}
		if i < len(actual) {
			line.Actual = actual[i]
		}
		if hasBoth {
			line.Matched = expected[i].Matches(actual[i])
		}
		lines[i] = line
	}
	return lines
}

func crashed(tc grading.TestCase, errorText string, duration time.Duration) grading.TestResult {
	return grading.TestResult{
		Case:      tc,
		Outcome:   grading.OutcomeCrashed,
		ErrorText: errorText,
		Duration:  duration,
	}
}

func crashText(run *grading.RunResult) string {
	text := strings.TrimSpace(run.Stderr)
	if text == "" {
		text = fmt.Sprintf("script exited with status %d", run.ExitCode)
	}
	return text
}

func buildText(build *grading.RunResult) string {
	text := strings.TrimSpace(build.Stderr)
	if text == "" {
		text = strings.TrimSpace(build.Stdout)
	}
	if text == "" {
		text = "script failed to build"
	}
	return text
}

func effectiveFailMessage(tc grading.TestCase, fallback string) string {
	if tc.FailMessage != "" {
		return tc.FailMessage
	}
	return fallback
}

func joinInput(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
