package local

import "github.com/school-grader/school-grader/internal/domain/grading"

const defaultPythonCommand = "python3"
const defaultGoCommand = "go"

// InterpreterConfig describes how to invoke an interpreter for a language.
// The script path is appended after Args.
type InterpreterConfig struct {
	Command string
	Args    []string
}

// Config describes how to create a local process engine.
type Config struct {
	// Interpreters maps languages to their interpreter invocation.
	// When nil, Python via "python3" is configured.
	Interpreters map[grading.Language]InterpreterConfig
	// GoCommand is the go toolchain binary used to build Go scripts.
	// Empty means "go".
	GoCommand string
	// DisableGo leaves the Go module out of the engine.
	DisableGo bool
	// DefaultLimits apply when a script carries no limits of its own.
	DefaultLimits grading.RunLimits
}

func (c Config) interpreters() map[grading.Language]InterpreterConfig {
	if c.Interpreters != nil {
		return c.Interpreters
	}
	return map[grading.Language]InterpreterConfig{
		grading.LanguagePython: {Command: defaultPythonCommand},
	}
}

func (c Config) goCommand() string {
	if c.GoCommand != "" {
		return c.GoCommand
	}
	return defaultGoCommand
}

func (c Config) defaultLimits() grading.RunLimits {
	limits := c.DefaultLimits
	if limits.TimeLimit <= 0 {
		limits.TimeLimit = grading.DefaultTimeLimit
	}
	return limits
}

func effectiveLimit(defaults, request grading.RunLimits) grading.RunLimits {
	effective := defaults
	if request.TimeLimit > 0 {
		effective.TimeLimit = request.TimeLimit
	}
	if request.MemoryLimitBytes > 0 {
		effective.MemoryLimitBytes = request.MemoryLimitBytes
	}
	return effective
}
