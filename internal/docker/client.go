package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Client wraps the Docker Engine API client with the operations the stack
// topology needs.
type Client struct {
	cli *client.Client
}

// NewClient creates a Client connected to the Docker daemon.
// socketPath defaults to /var/run/docker.sock if empty.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		socketPath = "/var/run/docker.sock"
	}
	cli, err := client.NewClientWithOpts(
		client.WithHost("unix://"+socketPath),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, err
	}
	return &Client{cli: cli}, nil
}

// Close releases the Docker client resources.
func (c *Client) Close() error {
	return c.cli.Close()
}

// Ping checks if the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.cli.Ping(ctx)
	return err
}

// ── Networks ──

// EnsureNetwork creates a bridge network if it does not already exist.
func (c *Client) EnsureNetwork(ctx context.Context, name string) error {
	nets, err := c.cli.NetworkList(ctx, network.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return fmt.Errorf("list networks: %w", err)
	}
	for _, n := range nets {
		if n.Name == name {
			return nil
		}
	}
	_, err = c.cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"})
	if err != nil {
		return fmt.Errorf("create network %s: %w", name, err)
	}
	return nil
}

// RemoveNetwork removes a network. Missing networks are not an error.
func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	err := c.cli.NetworkRemove(ctx, name)
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove network %s: %w", name, err)
	}
	return nil
}

// ── Volumes ──

// EnsureVolume creates a named volume if it does not already exist.
// Volume creation is idempotent on the engine side, so no existence check
// is needed.
func (c *Client) EnsureVolume(ctx context.Context, name string) error {
	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	if err != nil {
		return fmt.Errorf("create volume %s: %w", name, err)
	}
	return nil
}

// RemoveVolume removes a volume. Missing volumes are not an error.
func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	err := c.cli.VolumeRemove(ctx, name, true)
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove volume %s: %w", name, err)
	}
	return nil
}

// VolumeExists reports whether a named volume exists.
func (c *Client) VolumeExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.cli.VolumeList(ctx, volume.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return false, fmt.Errorf("list volumes: %w", err)
	}
	for _, v := range resp.Volumes {
		if v.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ── Containers ──

// HealthSpec describes a container health probe.
type HealthSpec struct {
	Test     []string // e.g. {"CMD-SHELL", "pg_isready -U postgres"}
	Interval time.Duration
	Timeout  time.Duration
	Retries  int
}

// ContainerSpec declares a container of the stack topology.
type ContainerSpec struct {
	Name    string
	Image   string
	Env     []string
	Network string
	Aliases []string          // network aliases, e.g. "postgres" for DB_HOST
	Ports   map[string]string // container port -> host port
	Mounts  map[string]string // volume name -> container path
	Health  *HealthSpec
	Restart string // restart policy, e.g. "unless-stopped"
}

// CreateContainer creates a container from a spec and returns its ID.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for ctrPort, hostPort := range spec.Ports {
		p, err := nat.NewPort("tcp", ctrPort)
		if err != nil {
			return "", fmt.Errorf("invalid port %s: %w", ctrPort, err)
		}
		exposed[p] = struct{}{}
		bindings[p] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: hostPort}}
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: exposed,
	}
	if spec.Health != nil {
		cfg.Healthcheck = &container.HealthConfig{
			Test:     spec.Health.Test,
			Interval: spec.Health.Interval,
			Timeout:  spec.Health.Timeout,
			Retries:  spec.Health.Retries,
		}
	}

	var mounts []mount.Mount
	for vol, target := range spec.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeVolume,
			Source: vol,
			Target: target,
		})
	}

	hostCfg := &container.HostConfig{
		PortBindings: bindings,
		Mounts:       mounts,
	}
	if spec.Restart != "" {
		hostCfg.RestartPolicy = container.RestartPolicy{
			Name: container.RestartPolicyMode(spec.Restart),
		}
	}

	var netCfg *network.NetworkingConfig
	if spec.Network != "" {
		netCfg = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {Aliases: spec.Aliases},
			},
		}
	}

	resp, err := c.cli.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", spec.Name, err)
	}
	return resp.ID, nil
}

// FindContainer returns the ID of the named container, or "" if absent.
// Stopped containers are included.
func (c *Client) FindContainer(ctx context.Context, name string) (string, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return "", fmt.Errorf("list containers: %w", err)
	}
	for _, ctr := range containers {
		for _, n := range ctr.Names {
			if strings.TrimPrefix(n, "/") == name {
				return ctr.ID, nil
			}
		}
	}
	return "", nil
}

// StartContainer starts a created or stopped container.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	return c.cli.ContainerStart(ctx, id, container.StartOptions{})
}

// StopContainer stops a running container with a grace period.
func (c *Client) StopContainer(ctx context.Context, id string) error {
	timeout := 10
	return c.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout})
}

// RestartContainer restarts a container.
func (c *Client) RestartContainer(ctx context.Context, id string) error {
	timeout := 10
	return c.cli.ContainerRestart(ctx, id, container.StopOptions{Timeout: &timeout})
}

// RemoveContainer removes a container (force).
func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	err := c.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
	if err != nil && !client.IsErrNotFound(err) {
		return err
	}
	return nil
}

// ContainerState is a snapshot of a container's runtime state.
type ContainerState struct {
	Running bool
	Status  string // running, exited, created...
	Health  string // healthy, unhealthy, starting, or "" when no probe
}

// InspectState returns the runtime state of a container.
func (c *Client) InspectState(ctx context.Context, id string) (ContainerState, error) {
	resp, err := c.cli.ContainerInspect(ctx, id)
	if err != nil {
		return ContainerState{}, fmt.Errorf("inspect container: %w", err)
	}
	st := ContainerState{
		Running: resp.State.Running,
		Status:  resp.State.Status,
	}
	if resp.State.Health != nil {
		st.Health = resp.State.Health.Status
	}
	return st, nil
}

// WaitHealthy blocks until the container's health probe reports healthy.
// Containers without a probe count as healthy once running.
func (c *Client) WaitHealthy(ctx context.Context, id string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		st, err := c.InspectState(ctx, id)
		if err != nil {
			return err
		}
		if st.Health == "healthy" || (st.Health == "" && st.Running) {
			return nil
		}
		if st.Health == "unhealthy" {
			return fmt.Errorf("container %s is unhealthy", id[:12])
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("container %s did not become healthy within %s", id[:12], timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// ContainerLogs returns the log output for a container.
// The stream is multiplexed; callers demux with stdcopy.
func (c *Client) ContainerLogs(ctx context.Context, id string, tail string, follow bool) (io.ReadCloser, error) {
	if tail == "" {
		tail = "200"
	}
	return c.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
		Follow:     follow,
	})
}

// ── Build ──

// BuildImage builds a local image from a build context directory by
// shelling out to the docker CLI, streaming output to out.
func (c *Client) BuildImage(ctx context.Context, dir, tag string, out io.Writer) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("build context %s: %w", dir, err)
	}
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, dir)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	return nil
}
