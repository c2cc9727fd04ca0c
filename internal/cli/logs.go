package cli

import (
	"os"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		follow bool
		tail   string
	)
	cmd := &cobra.Command{
		Use:       "logs [db|web]",
		Short:     "Show container logs",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"db", "web"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			reader, err := e.mgr.Logs(cmd.Context(), args[0], tail, follow)
			if err != nil {
				return err
			}
			defer reader.Close()

			// The engine multiplexes stdout/stderr into one stream.
			_, err = stdcopy.StdCopy(os.Stdout, os.Stderr, reader)
			return err
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow the log stream")
	cmd.Flags().StringVar(&tail, "tail", "200", "number of lines from the end")
	return cmd
}
