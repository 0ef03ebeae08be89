package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	typesimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/school-grader/school-grader/internal/domain/grading"
)

type fileSpec struct {
	Name string
	Mode int64
	Data []byte
}

func (e *Engine) pullImage(ctx context.Context, ref string) error {
	reader, err := e.cli.ImagePull(ctx, ref, typesimage.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("consume pull output for %s: %w", ref, err)
	}
	return nil
}

func (e *Engine) runProgram(ctx context.Context, limits grading.RunLimits, command []string, file fileSpec, stdin string) (*grading.RunResult, error) {
	containerID, cleanup, err := e.createContainer(ctx, limits, command)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := e.copyFile(ctx, containerID, file); err != nil {
		return nil, fmt.Errorf("copy script: %w", err)
	}

	attach, err := e.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("attach container: %w", err)
	}
	defer attach.Close()

	start := time.Now()
	if err := e.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	if attach.Conn != nil {
		if _, err := io.Copy(attach.Conn, strings.NewReader(stdin)); err != nil {
			return nil, fmt.Errorf("write stdin: %w", err)
		}
		// Half-close so the script sees end-of-input once the mock
		// lines are exhausted.
		if closer, ok := attach.Conn.(interface{ CloseWrite() error }); ok {
			_ = closer.CloseWrite()
		}
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if limits.TimeLimit > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, limits.TimeLimit)
	}
	status, err := e.waitForExit(waitCtx, containerID)
	if cancel != nil {
		cancel()
	}
	if err != nil {
		if isContextDeadline(err) && limits.TimeLimit > 0 && ctx.Err() == nil {
			return e.handleTimeLimit(containerID, start)
		}
		return nil, err
	}

	logCtx := ctx
	if logCtx.Err() != nil {
		logCtx = context.Background()
	}
	stdout, stderr, err := e.fetchLogs(logCtx, containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	return &grading.RunResult{
		Status:   grading.StatusOK,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: int(status.StatusCode),
		Duration: time.Since(start),
	}, nil
}

func (e *Engine) createContainer(ctx context.Context, limits grading.RunLimits, cmd []string) (string, func(), error) {
	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			NanoCPUs: 1_000_000_000,
		},
	}
	if limits.MemoryLimitBytes > 0 {
		hostConfig.Resources.Memory = limits.MemoryLimitBytes
		hostConfig.Resources.MemorySwap = limits.MemoryLimitBytes
	}

	resp, err := e.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        e.config.Image,
			Cmd:          cmd,
			AttachStdout: true,
			AttachStderr: true,
			AttachStdin:  true,
			OpenStdin:    true,
			StdinOnce:    true,
			WorkingDir:   e.config.Workdir,
		},
		hostConfig,
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", nil, fmt.Errorf("create container: %w", err)
	}

	cleanup := func() {
		_ = e.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}
	return resp.ID, cleanup, nil
}

func (e *Engine) copyFile(ctx context.Context, containerID string, file fileSpec) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	mode := file.Mode
	if mode == 0 {
		mode = 0o644
	}
	header := &tar.Header{
		Name:    file.Name,
		Mode:    mode,
		Size:    int64(len(file.Data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write tar header: %w", err)
	}
	if _, err := tw.Write(file.Data); err != nil {
		return fmt.Errorf("write tar contents: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}

	return e.cli.CopyToContainer(ctx, containerID, e.config.Workdir, bytes.NewReader(buf.Bytes()), types.CopyToContainerOptions{AllowOverwriteDirWithFile: true})
}

// handleTimeLimit force-stops the container after the deadline fired and
// still collects whatever the script printed before it was cut off.
func (e *Engine) handleTimeLimit(containerID string, start time.Time) (*grading.RunResult, error) {
	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()

	if err := e.cli.ContainerStop(stopCtx, containerID, container.StopOptions{}); err != nil {
		return nil, fmt.Errorf("stop container after time limit: %w", err)
	}

	stdout, stderr, err := e.fetchLogs(context.Background(), containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	return &grading.RunResult{
		Status:   grading.StatusTimeLimit,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: -1,
		Duration: time.Since(start),
	}, nil
}

func (e *Engine) waitForExit(ctx context.Context, containerID string) (*container.WaitResponse, error) {
	statusCh, errCh := e.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return &status, nil
	case err := <-errCh:
		return nil, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}

func (e *Engine) fetchLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	logs, err := e.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", err
	}
	defer logs.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, logs); err != nil {
		return "", "", err
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}
