// Package local executes scripts as child processes of the grader itself.
// It is the default execution engine: scripts run with scripted stdin,
// captured stdout/stderr, and a hard wall-clock time limit enforced by
// killing the whole process group.
package local

import (
	"context"

	"github.com/school-grader/school-grader/internal/domain/grading"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
)

// Engine implements runtime.Engine with local child processes.
type Engine struct {
	registry *runtimex.Registry
}

// New constructs an Engine from the supplied configuration.
func New(cfg Config) (*Engine, error) {
	defaults := cfg.defaultLimits()

	modules := make([]runtimex.Module, 0, len(cfg.interpreters())+1)
	for lang, interpreter := range cfg.interpreters() {
		modules = append(modules, newInterpreterModule(lang, interpreter, defaults))
	}
	if !cfg.DisableGo {
		modules = append(modules, newGoModule(cfg.goCommand(), defaults))
	}

	registry, err := runtimex.NewRegistry(modules...)
	if err != nil {
		return nil, err
	}

	return &Engine{registry: registry}, nil
}

// Prepare delegates to the module registered for the script's language.
func (e *Engine) Prepare(ctx context.Context, script grading.Script) (runtimex.PreparedScript, *grading.RunResult, error) {
	return e.registry.Prepare(ctx, script)
}

// Close releases module resources.
func (e *Engine) Close() error {
	return e.registry.Close()
}
