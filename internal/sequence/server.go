package sequence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Server runs the long-running web server command the entrypoint hands
// control to after the startup sequence.
type Server struct {
	Command string
	Env     []string // appended to the inherited environment
	Output  io.Writer
	Logger  *slog.Logger
}

// Run starts the server command and blocks until it exits or the context
// is cancelled. The command's exit error propagates to the caller so the
// process supervisor sees the real exit status.
func (s *Server) Run(ctx context.Context) error {
	if s.Command == "" {
		return fmt.Errorf("no server command configured")
	}

	s.Logger.Info("starting server process", "command", s.Command)
	fmt.Fprintf(s.Output, "$ %s\n", s.Command)

	cmd := exec.CommandContext(ctx, "sh", "-c", s.Command)
	cmd.Stdout = s.Output
	cmd.Stderr = s.Output
	if len(s.Env) > 0 {
		cmd.Env = append(cmd.Environ(), s.Env...)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("server process: %w", err)
	}
	return nil
}
