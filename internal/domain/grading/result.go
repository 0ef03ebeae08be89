package grading

import (
	"strings"
	"time"
)

// Status classifies the raw outcome of one script execution.
type Status string

const (
	StatusOK        Status = "ok"
	StatusTimeLimit Status = "time_limit"
	StatusBuildFail Status = "build_fail"
)

// RunResult captures the outcome of executing a script once.
type RunResult struct {
	Status   Status
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Outcome is the terminal classification of one test case run.
type Outcome string

const (
	OutcomePassed   Outcome = "passed"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeCrashed  Outcome = "crashed"
)

// LineResult records the comparison of one expected entry against one
// captured output line.
type LineResult struct {
	Expected Expectation
	Actual   string
	Matched  bool
}

// TestResult captures the outcome of running a single test case.
type TestResult struct {
	Case        TestCase
	Outcome     Outcome
	Lines       []LineResult
	ErrorText   string
	FailMessage string
	Duration    time.Duration
}

// Passed reports whether the test case succeeded.
func (r TestResult) Passed() bool {
	return r.Outcome == OutcomePassed
}

// SplitOutput turns captured stdout into the lines compared against the
// expected output: outer blank space is trimmed, then the text is split on
// newlines with per-line carriage returns stripped. Empty output yields nil.
func SplitOutput(stdout string) []string {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil
	}

	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
