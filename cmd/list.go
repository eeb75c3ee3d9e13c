package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/muxboard/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Long: `List all terminal multiplexer sessions, one per line.

Each line shows name, window count, creation time, and attach status.
An empty result means no sessions exist or the multiplexer is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		sessions := m.ListSessions(cmd.Context(), model.SortModeFromName(flagSort))
		for _, s := range sessions {
			status := "detached"
			if s.Attached {
				status = "attached"
			}
			fmt.Printf("%s\t%d\t%s\t%s\n", s.Name, s.Windows, s.Created, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
