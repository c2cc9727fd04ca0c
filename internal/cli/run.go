package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minitweet/tweetstack/internal/agent"
	"github.com/minitweet/tweetstack/internal/config"
	"github.com/minitweet/tweetstack/internal/readiness"
	"github.com/minitweet/tweetstack/internal/sequence"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Container entrypoint: wait for the database, run startup steps, start the server",
		Long: `run is the web container's entrypoint. It blocks until the database
accepts connections, then executes the startup sequence in strict order
(schema migration, admin provisioning, static asset collection) and hands
control to the long-running server command. Any step failure aborts the
sequence and exits non-zero so the container supervisor can restart it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntrypoint(cmd.Context(), config.Load())
		},
	}
}

func runEntrypoint(ctx context.Context, cfg *config.Config) error {
	logger := newLogger()

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}
	lw, err := sequence.NewLogWriter(filepath.Join(cfg.DataDir, "logs", "entrypoint.log"), os.Stdout)
	if err != nil {
		return err
	}
	defer lw.Close()

	tracker := agent.NewTracker()
	agentSrv := agent.NewServer(tracker, cfg.SecretKey, lw, logger)
	go func() {
		if err := agentSrv.Run(":" + cfg.AgentPort); err != nil {
			logger.Warn("ops agent stopped", "error", err)
		}
	}()

	dsn := cfg.DatabaseURL()

	// The infra-level dependency only orders container start; readiness is
	// re-verified here at the application layer.
	gate := &readiness.Gate{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Interval: cfg.ReadyInterval,
		Timeout:  cfg.ReadyTimeout,
		Probe:    sequence.PingProbe(dsn),
		Logger:   logger,
	}
	if err := gate.Wait(ctx); err != nil {
		tracker.Fail(err)
		return err
	}

	seq := sequence.New(logger, lw)
	seq.Add("migrate", func(ctx context.Context) error {
		tracker.SetPhase(agent.PhaseMigrating)
		return sequence.Migrate(ctx, dsn, logger, lw)
	})
	seq.Add("ensure-admin", func(ctx context.Context) error {
		tracker.SetPhase(agent.PhaseProvisioning)
		return sequence.EnsureAdmin(ctx, dsn, cfg.AdminUser, cfg.AdminPassword, logger, lw)
	})
	seq.Add("collect-static", func(ctx context.Context) error {
		tracker.SetPhase(agent.PhaseCollectStatic)
		_, err := sequence.CollectStatic(cfg.StaticSources(), cfg.StaticRoot, lw)
		return err
	})

	if err := seq.Run(ctx); err != nil {
		tracker.Fail(err)
		return err
	}

	tracker.SetPhase(agent.PhaseServing)
	server := &sequence.Server{
		Command: cfg.ServerCmd,
		Output:  lw,
		Logger:  logger,
	}
	if err := server.Run(ctx); err != nil {
		tracker.Fail(err)
		return err
	}
	return nil
}
