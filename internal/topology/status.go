package topology

import (
	"context"
	"fmt"
	"io"
)

// ContainerStatus is one row of the stack status report.
type ContainerStatus struct {
	Name   string
	Status string // running, exited, created, absent
	Health string // healthy, unhealthy, starting, or "-"
}

// VolumeStatus reports whether a named volume exists.
type VolumeStatus struct {
	Name   string
	Exists bool
}

// StackStatus is the full status report.
type StackStatus struct {
	Containers []ContainerStatus
	Volumes    []VolumeStatus
}

// Status inspects both containers and all volumes.
func (m *Manager) Status(ctx context.Context) (*StackStatus, error) {
	var report StackStatus

	for _, name := range []string{DBContainer, WebContainer} {
		cs := ContainerStatus{Name: name, Status: "absent", Health: "-"}
		id, err := m.engine.FindContainer(ctx, name)
		if err != nil {
			return nil, err
		}
		if id != "" {
			st, err := m.engine.InspectState(ctx, id)
			if err != nil {
				return nil, err
			}
			cs.Status = st.Status
			if st.Health != "" {
				cs.Health = st.Health
			}
		}
		report.Containers = append(report.Containers, cs)
	}

	for _, vol := range Volumes {
		exists, err := m.engine.VolumeExists(ctx, vol)
		if err != nil {
			return nil, err
		}
		report.Volumes = append(report.Volumes, VolumeStatus{Name: vol, Exists: exists})
	}

	return &report, nil
}

// Logs returns the log stream for "db" or "web".
func (m *Manager) Logs(ctx context.Context, service, tail string, follow bool) (io.ReadCloser, error) {
	var name string
	switch service {
	case "db":
		name = DBContainer
	case "web":
		name = WebContainer
	default:
		return nil, fmt.Errorf("unknown service %q (want db or web)", service)
	}

	id, err := m.engine.FindContainer(ctx, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("container %s does not exist", name)
	}
	return m.engine.ContainerLogs(ctx, id, tail, follow)
}
