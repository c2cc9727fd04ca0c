package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create network and volumes, build the web image, start the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.mgr.Setup(cmd.Context(), os.Stdout); err != nil {
				return err
			}
			e.record("setup", "image "+e.cfg.WebImage)
			return e.store.SetStackStatus("minitweet", e.cfg.WebImage, "setup")
		},
	}
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the stack (database first, web once the database is healthy)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.mgr.Up(cmd.Context()); err != nil {
				return err
			}
			e.record("start", "")
			return e.store.SetStackStatus("minitweet", e.cfg.WebImage, "running")
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop both containers, keeping volumes and network",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.mgr.Down(cmd.Context()); err != nil {
				return err
			}
			e.record("stop", "")
			return e.store.SetStackStatus("minitweet", e.cfg.WebImage, "stopped")
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop and start the stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.mgr.Restart(cmd.Context()); err != nil {
				return err
			}
			e.record("restart", "")
			return e.store.SetStackStatus("minitweet", e.cfg.WebImage, "running")
		},
	}
}

func newResetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove containers, volumes, and network (erases all data)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmDestroy(force)
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("reset aborted, nothing was touched")
				return nil
			}

			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.mgr.Destroy(cmd.Context()); err != nil {
				return err
			}
			e.record("reset", "containers, volumes, and network removed")
			return e.store.SetStackStatus("minitweet", e.cfg.WebImage, "destroyed")
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	return cmd
}
