package grading

import "time"

// TestCase binds a target script to scripted input and expected output.
// A registered test case is never mutated.
type TestCase struct {
	// Name identifies the test in reports. Must be unique within a registry.
	Name string
	// Script is the path of the script under test.
	Script string
	// Language overrides the language inferred from the script extension.
	Language Language
	// MockInput lines are fed to the script's stdin in order. May be empty.
	MockInput []string
	// Expected entries are compared positionally against the captured
	// output lines. Use Literals for plain exact matches.
	Expected []Expectation
	// Timeout caps the script run. Zero means DefaultTimeLimit.
	Timeout time.Duration
	// FailMessage overrides the default mismatch message in reports.
	FailMessage string
}
