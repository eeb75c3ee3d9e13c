package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagAttachPrint bool

var attachCmd = &cobra.Command{
	Use:   "attach <target>",
	Short: "Attach to a session (or switch the current client to it)",
	Long: `Attach the terminal to the target session.

When already running inside a multiplexer client, the current client is
switched to the target instead of nesting a new one. The target may be a
session name or a session:window compound identifier; it is passed to the
multiplexer unvalidated.

Use --print to print the resolved command instead of executing it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}

		if flagAttachPrint {
			fmt.Println(strings.Join(m.AttachArgs(args[0]), " "))
			return nil
		}
		return execAttach(m, args[0])
	},
}

func init() {
	attachCmd.Flags().BoolVar(&flagAttachPrint, "print", false, "print the attach command instead of executing it")
	rootCmd.AddCommand(attachCmd)
}
