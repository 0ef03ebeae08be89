package local

import (
	"context"
	"path/filepath"

	"github.com/school-grader/school-grader/internal/domain/grading"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
)

type interpreterModule struct {
	language grading.Language
	config   InterpreterConfig
	defaults grading.RunLimits
}

func newInterpreterModule(lang grading.Language, cfg InterpreterConfig, defaults grading.RunLimits) *interpreterModule {
	return &interpreterModule{
		language: lang,
		config:   cfg,
		defaults: defaults,
	}
}

func (m *interpreterModule) Language() grading.Language {
	return m.language
}

// Prepare is trivial for interpreted scripts: there is no build step.
func (m *interpreterModule) Prepare(ctx context.Context, script grading.Script) (runtimex.PreparedScript, *grading.RunResult, error) {
	return &interpreterRun{module: m, script: script}, nil, nil
}

func (m *interpreterModule) Close() error {
	return nil
}

type interpreterRun struct {
	module *interpreterModule
	script grading.Script
}

func (r *interpreterRun) Run(ctx context.Context, stdin string) (*grading.RunResult, error) {
	limits := effectiveLimit(r.module.defaults, r.script.Limits)

	argv := make([]string, 0, len(r.module.config.Args)+2)
	argv = append(argv, r.module.config.Command)
	argv = append(argv, r.module.config.Args...)
	argv = append(argv, r.script.Path)

	// Run in the script's own directory so relative file access behaves
	// as it does for the student.
	return runProcess(ctx, argv, filepath.Dir(r.script.Path), stdin, limits.TimeLimit)
}

func (r *interpreterRun) Close() error {
	return nil
}
