// Package cli implements the tweetstack command-line interface: lifecycle
// verbs over the container topology plus the container entrypoint.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minitweet/tweetstack/internal/config"
	"github.com/minitweet/tweetstack/internal/docker"
	"github.com/minitweet/tweetstack/internal/state"
	"github.com/minitweet/tweetstack/internal/topology"
)

// env bundles everything a lifecycle verb needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	mgr    *topology.Manager
	store  *state.Store
	client *docker.Client
}

// record appends a lifecycle event to the state registry.
func (e *env) record(action, detail string) {
	if e.store == nil {
		return
	}
	if err := e.store.RecordEvent(action, detail); err != nil {
		e.logger.Warn("failed to record event", "action", action, "error", err)
	}
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.client != nil {
		e.client.Close()
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newEnv connects to the Docker daemon and opens the state registry.
func newEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()
	logger := newLogger()

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	client, err := docker.NewClient(cfg.DockerSock)
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("docker daemon not reachable: %w", err)
	}

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		mgr:    topology.NewManager(client, cfg, logger),
		store:  store,
		client: client,
	}, nil
}

// NewRootCmd builds the tweetstack command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tweetstack",
		Short: "Deploy and operate the minitweet stack on Docker",
		Long: `tweetstack deploys the minitweet web application stack (PostgreSQL +
web container on a private network) to a local Docker engine and manages
its lifecycle.

It is also the web container's entrypoint: "tweetstack run" waits for the
database, runs the startup sequence, and hands control to the server.`,
	}

	root.AddCommand(
		newSetupCmd(),
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newStatusCmd(),
		newLogsCmd(),
		newConnectCmd(),
		newResetCmd(),
		newRunCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI, returning exit status 1 on any error, including
// unrecognized verbs (cobra prints the usage text in that case).
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
