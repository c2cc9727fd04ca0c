package topology

import (
	"context"
	"fmt"
	"io"

	"github.com/minitweet/tweetstack/internal/docker"
)

// Setup provisions everything the stack needs before its first start:
// the private network, the named volumes, the web image build, and a
// healthy database container.
func (m *Manager) Setup(ctx context.Context, buildOut io.Writer) error {
	if err := m.ensureBase(ctx); err != nil {
		return err
	}

	m.logger.Info("building web image", "tag", m.cfg.WebImage, "dir", m.cfg.BuildDir)
	if err := m.engine.BuildImage(ctx, m.cfg.BuildDir, m.cfg.WebImage, buildOut); err != nil {
		return err
	}

	id, err := m.ensureRunning(ctx, m.dbSpec())
	if err != nil {
		return err
	}
	m.logger.Info("waiting for database to report healthy", "container", DBContainer)
	return m.engine.WaitHealthy(ctx, id, dbHealthyTimeout)
}

// Up brings the whole stack up. The web container is not created or
// started until the database container reports healthy; the infra-level
// "depends on" only orders creation, so health is gated here explicitly.
func (m *Manager) Up(ctx context.Context) error {
	if err := m.ensureBase(ctx); err != nil {
		return err
	}

	dbID, err := m.ensureRunning(ctx, m.dbSpec())
	if err != nil {
		return err
	}

	m.logger.Info("waiting for database to report healthy", "container", DBContainer)
	if err := m.engine.WaitHealthy(ctx, dbID, dbHealthyTimeout); err != nil {
		return fmt.Errorf("database never became healthy: %w", err)
	}

	if _, err := m.ensureRunning(ctx, m.webSpec()); err != nil {
		return err
	}

	m.logger.Info("stack is up", "web_port", m.cfg.WebPort)
	return nil
}

// Down stops both containers, web first so it never runs against a
// stopped database. Volumes and network are left in place.
func (m *Manager) Down(ctx context.Context) error {
	for _, name := range []string{WebContainer, DBContainer} {
		id, err := m.engine.FindContainer(ctx, name)
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}
		m.logger.Info("stopping container", "container", name)
		if err := m.engine.StopContainer(ctx, id); err != nil {
			return fmt.Errorf("stop %s: %w", name, err)
		}
	}
	return nil
}

// Restart stops and re-starts the stack with the health gate in between.
func (m *Manager) Restart(ctx context.Context) error {
	if err := m.Down(ctx); err != nil {
		return err
	}
	return m.Up(ctx)
}

// Destroy removes the containers, all three volumes, and the network.
// Callers must confirm with the operator first: this erases the database.
func (m *Manager) Destroy(ctx context.Context) error {
	for _, name := range []string{WebContainer, DBContainer} {
		id, err := m.engine.FindContainer(ctx, name)
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}
		m.logger.Info("removing container", "container", name)
		if err := m.engine.RemoveContainer(ctx, id); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	for _, vol := range Volumes {
		m.logger.Info("removing volume", "volume", vol)
		if err := m.engine.RemoveVolume(ctx, vol); err != nil {
			return err
		}
	}

	return m.engine.RemoveNetwork(ctx, NetworkName)
}

// ensureBase creates the network and volumes. Both are idempotent, and
// volume contents survive container recreation.
func (m *Manager) ensureBase(ctx context.Context) error {
	if err := m.engine.EnsureNetwork(ctx, NetworkName); err != nil {
		return err
	}
	for _, vol := range Volumes {
		if err := m.engine.EnsureVolume(ctx, vol); err != nil {
			return err
		}
	}
	return nil
}

// ensureRunning creates the container if absent and starts it if stopped.
func (m *Manager) ensureRunning(ctx context.Context, spec docker.ContainerSpec) (string, error) {
	id, err := m.engine.FindContainer(ctx, spec.Name)
	if err != nil {
		return "", err
	}
	if id == "" {
		m.logger.Info("creating container", "container", spec.Name, "image", spec.Image)
		id, err = m.engine.CreateContainer(ctx, spec)
		if err != nil {
			return "", err
		}
	}

	st, err := m.engine.InspectState(ctx, id)
	if err != nil {
		return "", err
	}
	if !st.Running {
		m.logger.Info("starting container", "container", spec.Name)
		if err := m.engine.StartContainer(ctx, id); err != nil {
			return "", fmt.Errorf("start %s: %w", spec.Name, err)
		}
	}
	return id, nil
}
