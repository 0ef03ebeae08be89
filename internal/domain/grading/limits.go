package grading

import "time"

// DefaultTimeLimit applies when a test case does not override its timeout.
const DefaultTimeLimit = time.Second

// RunLimits describes resource boundaries for a single script execution.
//
// A zero value RunLimits falls back to the engine defaults.
type RunLimits struct {
	// TimeLimit caps how long the script is allowed to run. Zero means the default.
	TimeLimit time.Duration
	// MemoryLimitBytes caps memory usage where the runtime can enforce it. Zero means no limit.
	MemoryLimitBytes int64
}
