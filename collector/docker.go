package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"
)

// ErrNoDocker is returned when the Docker socket is absent.
var ErrNoDocker = errors.New("docker socket not found")

// containerIDPattern matches cgroup v1 ".../docker/<id>" and v2
// ".../docker-<id>.scope" as well as plain "<id>" path components.
var containerIDPattern = regexp.MustCompile(`(?:^|[/-])([0-9a-f]{64})(?:\.scope)?$`)

// inspectFunc is the subset of the Docker client used by the resolver.
type inspectFunc func(ctx context.Context, id string) (string, error)

// ContainerResolver attributes a pid to the Docker container it runs in.
type ContainerResolver struct {
	cli     *client.Client
	inspect inspectFunc
	logger  logrus.FieldLogger

	mu    sync.Mutex
	names map[string]string // container id -> name
}

// NewContainerResolver connects to the local Docker daemon.
func NewContainerResolver(logger logrus.FieldLogger) (*ContainerResolver, error) {
	if !fileExists(dockerSocket) {
		return nil, ErrNoDocker
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	r := &ContainerResolver{
		cli:    cli,
		logger: logger,
		names:  make(map[string]string),
	}
	r.inspect = r.inspectName
	return r, nil
}

func (r *ContainerResolver) inspectName(ctx context.Context, id string) (string, error) {
	info, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", err
	}
	if info.ContainerJSONBase == nil {
		return id[:12], nil
	}
	return strings.TrimPrefix(info.Name, "/"), nil
}

// Lookup returns the container name for pid, or "" when the process is not
// in a Docker container or the name cannot be resolved.
func (r *ContainerResolver) Lookup(ctx context.Context, pid int32) string {
	data, err := procReadFile(hostProc(strconv.Itoa(int(pid)), "cgroup"))
	if err != nil {
		return ""
	}
	id := containerIDFromCgroup(data)
	if id == "" {
		return ""
	}

	r.mu.Lock()
	name, ok := r.names[id]
	r.mu.Unlock()
	if ok {
		return name
	}

	name, err = r.inspect(ctx, id)
	if err != nil {
		r.logger.Debugf("Container inspect %s for PID %d failed: %v", id[:12], pid, err)
		return id[:12]
	}

	r.mu.Lock()
	r.names[id] = name
	r.mu.Unlock()
	return name
}

// Close releases the Docker client.
func (r *ContainerResolver) Close() error {
	if r.cli == nil {
		return nil
	}
	return r.cli.Close()
}

// containerIDFromCgroup extracts the first container id found in the
// contents of /proc/<pid>/cgroup.
func containerIDFromCgroup(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		// Format: hierarchy-ID:controller-list:cgroup-path
		fields := strings.SplitN(scanner.Text(), ":", 3)
		if len(fields) != 3 {
			continue
		}
		for _, part := range strings.Split(fields[2], "/") {
			if m := containerIDPattern.FindStringSubmatch(part); m != nil {
				return m[1]
			}
		}
	}
	return ""
}
