package cli

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var events bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show container, health, and volume status",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.mgr.Status(cmd.Context())
			if err != nil {
				return err
			}

			table := newTable("CONTAINER", "STATUS", "HEALTH")
			for _, cs := range report.Containers {
				table.Append([]string{cs.Name, cs.Status, cs.Health})
			}
			table.Render()

			cmd.Println()
			volumes := newTable("VOLUME", "EXISTS")
			for _, vs := range report.Volumes {
				exists := "no"
				if vs.Exists {
					exists = "yes"
				}
				volumes.Append([]string{vs.Name, exists})
			}
			volumes.Render()

			if events {
				recent, err := e.store.RecentEvents(10)
				if err != nil {
					return err
				}
				cmd.Println()
				history := newTable("TIME", "ACTION", "DETAIL")
				for _, ev := range recent {
					history.Append([]string{ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Action, ev.Detail})
				}
				history.Render()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&events, "events", false, "include recent lifecycle events")
	return cmd
}

// newTable configures a tablewriter with clean, borderless output.
func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}
