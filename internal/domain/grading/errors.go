package grading

import "fmt"

// ConfigurationError reports a malformed test case or suite. It is raised
// eagerly at registration time; no runner ever sees an invalid test case.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
