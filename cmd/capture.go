package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture <target>",
	Short: "Capture the visible content of a session's pane",
	Long: `Capture the visible content of the target's first pane and print it to stdout.

The target may be a session name or a session:window compound identifier.
Output is empty when the target does not exist or the multiplexer is
unreachable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, m.CapturePane(cmd.Context(), args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
