package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var windowsCmd = &cobra.Command{
	Use:   "windows <session>",
	Short: "List the windows of a session",
	Long: `List the windows of a session in the order the multiplexer reports them.

Each line shows index, name, active marker, and pane count.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		for _, w := range m.ListWindows(cmd.Context(), args[0]) {
			active := ""
			if w.Active {
				active = "*"
			}
			fmt.Printf("%d\t%s\t%s\t%d\n", w.Index, w.Name, active, w.Panes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(windowsCmd)
}
