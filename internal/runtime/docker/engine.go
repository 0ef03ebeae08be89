// Package docker runs Python scripts inside containers. It is an
// alternative to the local engine for hosts without a Python interpreter:
// the script file is copied into a fresh container per run, stdin is
// attached, and the time limit is enforced by racing the container wait
// against a deadline with a forced stop on the losing branch.
package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/docker/docker/client"

	"github.com/school-grader/school-grader/internal/domain/grading"
	runtimex "github.com/school-grader/school-grader/internal/runtime"
)

const scriptFilename = "script.py"

// Engine implements runtime.Engine backed by Docker containers.
type Engine struct {
	cli    dockerClient
	config Config

	pullOnce sync.Once
	pullErr  error
}

var _ runtimex.Engine = (*Engine)(nil)

// New constructs an Engine connected to the host's Docker daemon.
func New(cfg Config) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker runtime: create client: %w", err)
	}
	return newEngineWithClient(cli, cfg), nil
}

func newEngineWithClient(cli dockerClient, cfg Config) *Engine {
	return &Engine{cli: cli, config: cfg.withDefaults()}
}

// Prepare reads the script source from disk and readies a container run.
func (e *Engine) Prepare(ctx context.Context, script grading.Script) (runtimex.PreparedScript, *grading.RunResult, error) {
	if script.Language != grading.LanguagePython {
		return nil, nil, fmt.Errorf("docker runtime: unsupported language %q", script.Language)
	}

	if err := e.ensureImage(ctx); err != nil {
		return nil, nil, err
	}

	source, err := os.ReadFile(script.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("docker runtime: read script: %w", err)
	}

	return &containerRun{
		engine: e,
		script: script,
		source: source,
	}, nil, nil
}

// Close releases the Docker client.
func (e *Engine) Close() error {
	return e.cli.Close()
}

func (e *Engine) ensureImage(ctx context.Context) error {
	e.pullOnce.Do(func() {
		e.pullErr = e.pullImage(ctx, e.config.Image)
	})
	return e.pullErr
}

func (e *Engine) effectiveLimits(request grading.RunLimits) grading.RunLimits {
	effective := e.config.DefaultLimits
	if request.TimeLimit > 0 {
		effective.TimeLimit = request.TimeLimit
	}
	if request.MemoryLimitBytes > 0 {
		effective.MemoryLimitBytes = request.MemoryLimitBytes
	}
	return effective
}

type containerRun struct {
	engine *Engine
	script grading.Script
	source []byte
}

func (r *containerRun) Run(ctx context.Context, stdin string) (*grading.RunResult, error) {
	limits := r.engine.effectiveLimits(r.script.Limits)
	return r.engine.runProgram(ctx, limits, []string{"python", scriptFilename}, fileSpec{
		Name: scriptFilename,
		Mode: 0o644,
		Data: r.source,
	}, stdin)
}

func (r *containerRun) Close() error {
	return nil
}

func isContextDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
