// Package topology declares and operates the minitweet container stack:
// one private network, a PostgreSQL container, a web container, and three
// named volumes. The web container is only started once the database
// container reports healthy.
package topology

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minitweet/tweetstack/internal/config"
	"github.com/minitweet/tweetstack/internal/docker"
)

// Fixed names of the topology's objects.
const (
	NetworkName  = "minitweet-net"
	DBContainer  = "minitweet-db"
	WebContainer = "minitweet-web"
	DBVolume     = "minitweet-db-data"
	MediaVolume  = "minitweet-media"
	StaticVolume = "minitweet-static"

	// dbHealthyTimeout bounds how long Up waits for the database probe
	// before giving up on starting the web container.
	dbHealthyTimeout = 90 * time.Second
)

// Volumes lists the stack's persistent volumes.
var Volumes = []string{DBVolume, MediaVolume, StaticVolume}

// Engine is the subset of the Docker client the topology uses.
type Engine interface {
	EnsureNetwork(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	EnsureVolume(ctx context.Context, name string) error
	RemoveVolume(ctx context.Context, name string) error
	VolumeExists(ctx context.Context, name string) (bool, error)
	CreateContainer(ctx context.Context, spec docker.ContainerSpec) (string, error)
	FindContainer(ctx context.Context, name string) (string, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
	InspectState(ctx context.Context, id string) (docker.ContainerState, error)
	WaitHealthy(ctx context.Context, id string, timeout time.Duration) error
	ContainerLogs(ctx context.Context, id string, tail string, follow bool) (io.ReadCloser, error)
	BuildImage(ctx context.Context, dir, tag string, out io.Writer) error
}

// Manager applies lifecycle operations to the stack topology.
type Manager struct {
	engine Engine
	cfg    *config.Config
	logger *slog.Logger
}

// NewManager creates a topology Manager.
func NewManager(engine Engine, cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{engine: engine, cfg: cfg, logger: logger}
}

// dbSpec declares the database container.
func (m *Manager) dbSpec() docker.ContainerSpec {
	return docker.ContainerSpec{
		Name:  DBContainer,
		Image: m.cfg.PostgresImage,
		Env: []string{
			"POSTGRES_DB=" + m.cfg.DBName,
			"POSTGRES_USER=" + m.cfg.DBUser,
			"POSTGRES_PASSWORD=" + m.cfg.DBPassword,
		},
		Network: NetworkName,
		Aliases: []string{"postgres"},
		Ports:   map[string]string{"5432": m.cfg.DBPort},
		Mounts:  map[string]string{DBVolume: "/var/lib/postgresql/data"},
		Health: &docker.HealthSpec{
			Test:     []string{"CMD-SHELL", fmt.Sprintf("pg_isready -U %s -d %s", m.cfg.DBUser, m.cfg.DBName)},
			Interval: 5 * time.Second,
			Timeout:  5 * time.Second,
			Retries:  5,
		},
		Restart: "unless-stopped",
	}
}

// webSpec declares the web container. Inside the private network the
// database is reached via its "postgres" alias on the native port.
func (m *Manager) webSpec() docker.ContainerSpec {
	debug := "0"
	if m.cfg.Debug {
		debug = "1"
	}
	return docker.ContainerSpec{
		Name:  WebContainer,
		Image: m.cfg.WebImage,
		Env: []string{
			"DB_NAME=" + m.cfg.DBName,
			"DB_USER=" + m.cfg.DBUser,
			"DB_PASSWORD=" + m.cfg.DBPassword,
			"DB_HOST=postgres",
			"DB_PORT=5432",
			"SECRET_KEY=" + m.cfg.SecretKey,
			"DEBUG=" + debug,
			"TWEETSTACK_ADMIN_USER=" + m.cfg.AdminUser,
			"TWEETSTACK_ADMIN_PASSWORD=" + m.cfg.AdminPassword,
		},
		Network: NetworkName,
		Ports:   map[string]string{"8000": m.cfg.WebPort},
		Mounts: map[string]string{
			MediaVolume:  m.cfg.MediaRoot,
			StaticVolume: m.cfg.StaticRoot,
		},
		Health: &docker.HealthSpec{
			Test:     []string{"CMD-SHELL", "wget -q -T 5 -O /dev/null http://localhost:8000/"},
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
			Retries:  3,
		},
		Restart: "unless-stopped",
	}
}
