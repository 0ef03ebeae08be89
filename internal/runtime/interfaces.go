package runtime

import (
	"context"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

// PreparedScript is a script instance ready to run, possibly compiled.
type PreparedScript interface {
	// Run executes the script once with the given stdin payload and
	// captures its output. The run is bounded by the script's time limit.
	Run(ctx context.Context, stdin string) (*grading.RunResult, error)
	Close() error
}

// Engine executes scripts by delegating to language-specific modules.
type Engine interface {
	// Prepare readies the script for execution. A non-nil intermediate
	// RunResult reports a failed build step (the script never became
	// runnable); in that case PreparedScript is nil.
	Prepare(ctx context.Context, script grading.Script) (PreparedScript, *grading.RunResult, error)
	Close() error
}

// Module provides runtime support for a single language.
type Module interface {
	Language() grading.Language
	Prepare(ctx context.Context, script grading.Script) (PreparedScript, *grading.RunResult, error)
	Close() error
}
