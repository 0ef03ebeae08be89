package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
)

const buildTimeLimit = 2 * time.Minute
const goBinaryName = "program"

type goModule struct {
	goCommand string
	defaults  grading.RunLimits
}

func newGoModule(goCommand string, defaults grading.RunLimits) *goModule {
	return &goModule{goCommand: goCommand, defaults: defaults}
}

func (m *goModule) Language() grading.Language {
	return grading.LanguageGo
}

// Prepare compiles the script into a temporary directory. A compile failure
// is reported through the intermediate RunResult, not as an engine error.
func (m *goModule) Prepare(ctx context.Context, script grading.Script) (runtimex.PreparedScript, *grading.RunResult, error) {
	source, err := filepath.Abs(script.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", script.Path, err)
	}

	buildDir, err := os.MkdirTemp("", "grader-go-")
	if err != nil {
		return nil, nil, fmt.Errorf("create build dir: %w", err)
	}

	binary := filepath.Join(buildDir, goBinaryName)
	build, err := runProcess(ctx, []string{m.goCommand, "build", "-o", binary, source}, buildDir, "", buildTimeLimit)
	if err != nil {
		_ = os.RemoveAll(buildDir)
		return nil, nil, fmt.Errorf("build %s: %w", script.Path, err)
	}

	if build.Status != grading.StatusOK || build.ExitCode != 0 {
		_ = os.RemoveAll(buildDir)
		build.Status = grading.StatusBuildFail
		return nil, build, nil
	}

	return &goProgram{
		binary:    binary,
		buildDir:  buildDir,
		scriptDir: filepath.Dir(source),
		limits:    effectiveLimit(m.defaults, script.Limits),
	}, nil, nil
}

func (m *goModule) Close() error {
	return nil
}

type goProgram struct {
	binary    string
	buildDir  string
	scriptDir string
	limits    grading.RunLimits
}

func (p *goProgram) Run(ctx context.Context, stdin string) (*grading.RunResult, error) {
	return runProcess(ctx, []string{p.binary}, p.scriptDir, stdin, p.limits.TimeLimit)
}

func (p *goProgram) Close() error {
	return os.RemoveAll(p.buildDir)
}
