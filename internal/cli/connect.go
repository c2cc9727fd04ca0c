package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/minitweet/tweetstack/internal/config"
	"github.com/minitweet/tweetstack/internal/topology"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Open an interactive psql session in the database container",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			// Interactive TTY allocation goes through the docker CLI;
			// the engine API has no terminal handling of its own.
			psql := exec.CommandContext(cmd.Context(), "docker", "exec", "-it",
				topology.DBContainer, "psql", "-U", cfg.DBUser, "-d", cfg.DBName)
			psql.Stdin = os.Stdin
			psql.Stdout = os.Stdout
			psql.Stderr = os.Stderr
			return psql.Run()
		},
	}
}
