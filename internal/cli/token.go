package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/minitweet/tweetstack/internal/agent"
	"github.com/minitweet/tweetstack/internal/config"
)

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the ops agent API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			token, err := agent.GenerateToken(cfg.SecretKey, ttl)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
