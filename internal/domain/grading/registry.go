package grading

import (
	"fmt"
	"os"
)

// Registry is an append-only, insertion-ordered collection of test cases.
// Registration order is reporting order. The registry is populated during
// setup and read once by the runner, so no locking is needed.
type Registry struct {
	cases []TestCase
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add validates the test case and appends it. Invalid cases are rejected
// with a *ConfigurationError before any test runs.
func (r *Registry) Add(tc TestCase) error {
	if tc.Name == "" {
		return configErrorf("test case name is required")
	}
	if _, exists := r.names[tc.Name]; exists {
		return configErrorf("duplicate test case name %q", tc.Name)
	}

	if tc.Script == "" {
		return configErrorf("test %q: script path is required", tc.Name)
	}
	info, err := os.Stat(tc.Script)
	if err != nil {
		return configErrorf("test %q: script %q not found", tc.Name, tc.Script)
	}
	if info.IsDir() {
		return configErrorf("test %q: script %q is a directory", tc.Name, tc.Script)
	}

	if tc.Language == "" {
		lang, ok := LanguageForPath(tc.Script)
		if !ok {
			return configErrorf("test %q: cannot infer language of %q, set it explicitly", tc.Name, tc.Script)
		}
		tc.Language = lang
	}

	if tc.Timeout < 0 {
		return configErrorf("test %q: timeout must not be negative", tc.Name)
	}
	if tc.Timeout == 0 {
		tc.Timeout = DefaultTimeLimit
	}

	for i, expectation := range tc.Expected {
		if err := expectation.Validate(); err != nil {
			return configErrorf("test %q: expected output entry %d: %v", tc.Name, i+1, err)
		}
	}

	r.cases = append(r.cases, tc)
	r.names[tc.Name] = struct{}{}
	return nil
}

// MustAdd registers the test case and panics on a configuration error.
// Intended for suite setup code where no valid recovery exists.
func (r *Registry) MustAdd(tc TestCase) {
	if err := r.Add(tc); err != nil {
		panic(fmt.Sprintf("register test case: %v", err))
	}
}

// Cases returns the registered test cases in registration order.
func (r *Registry) Cases() []TestCase {
	out := make([]TestCase, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len reports the number of registered test cases.
func (r *Registry) Len() int {
	return len(r.cases)
}
