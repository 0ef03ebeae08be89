package docker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeDockerClient records SDK calls and plays back scripted container
// behavior.
type fakeDockerClient struct {
	mu          sync.Mutex
	nextID      int
	imagePulls  []string
	createCalls []*container.Config
	copyCalls   []string
	stopCalls   []string
	removed     []string
	closed      bool

	// waitStatus delivers the container exit status; nil means the wait
	// blocks until the caller's deadline fires.
	waitStatus *container.WaitResponse
	logPayload []byte
	stdinSink  *capturedStdin
}

type capturedStdin struct {
	mu   sync.Mutex
	data []byte
	done chan struct{}
}

func (c *capturedStdin) bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.data...)
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{}
}

// encodeLogs wraps stdout/stderr in the multiplexed stream format the SDK
// returns from ContainerLogs.
func encodeLogs(stdout, stderr string) []byte {
	var buf bytes.Buffer
	if stdout != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(stdout))
	}
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(stderr))
	}
	return buf.Bytes()
}

func (f *fakeDockerClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	f.imagePulls = append(f.imagePulls, ref)
	f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.createCalls = append(f.createCalls, config)
	return container.CreateResponse{ID: fmt.Sprintf("container-%d", f.nextID)}, nil
}

func (f *fakeDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	f.removed = append(f.removed, containerID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options types.CopyToContainerOptions) error {
	f.mu.Lock()
	f.copyCalls = append(f.copyCalls, dstPath)
	f.mu.Unlock()
	_, _ = io.Copy(io.Discard, content)
	return nil
}

func (f *fakeDockerClient) ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error) {
	clientSide, serverSide := net.Pipe()

	sink := &capturedStdin{done: make(chan struct{})}
	f.mu.Lock()
	f.stdinSink = sink
	f.mu.Unlock()

	go func() {
		defer close(sink.done)
		buf := make([]byte, 1024)
		for {
			n, err := serverSide.Read(buf)
			if n > 0 {
				sink.mu.Lock()
				sink.data = append(sink.data, buf[:n]...)
				sink.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	return types.HijackedResponse{
		Conn:   clientSide,
		Reader: bufio.NewReader(clientSide),
	}, nil
}

func (f *fakeDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	return nil
}

func (f *fakeDockerClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	f.mu.Lock()
	status := f.waitStatus
	f.mu.Unlock()

	if status != nil {
		statusCh <- *status
	}
	// A nil status leaves both channels silent: the container "hangs"
	// until the caller's deadline fires.
	return statusCh, errCh
}

func (f *fakeDockerClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	payload := f.logPayload
	f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (f *fakeDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.mu.Lock()
	f.stopCalls = append(f.stopCalls, containerID)
	f.mu.Unlock()
	return nil
}
