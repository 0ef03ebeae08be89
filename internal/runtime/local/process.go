package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

// runProcess executes one child process with a synthetic stdin and captured
// stdout/stderr, racing process exit against the wall-clock time limit.
// On the timer branch the whole process group is killed and reaped before
// returning, so no child or pipe survives the call on any path.
func runProcess(ctx context.Context, argv []string, dir string, stdin string, limit time.Duration) (*grading.RunResult, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	// The reader hits EOF once the scripted input is exhausted, so a
	// script that over-reads terminates instead of hanging.
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group, so a timeout kill reaches grandchildren too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var expired <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case waitErr := <-done:
		result := &grading.RunResult{
			Status:   grading.StatusOK,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: cmd.ProcessState.ExitCode(),
			Duration: time.Since(start),
		}
		if waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				return nil, fmt.Errorf("wait for %s: %w", argv[0], waitErr)
			}
		}
		return result, nil

	case <-expired:
		killProcessGroup(cmd)
		<-done
		return &grading.RunResult{
			Status:   grading.StatusTimeLimit,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
			Duration: time.Since(start),
		}, nil

	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return nil, ctx.Err()
	}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
