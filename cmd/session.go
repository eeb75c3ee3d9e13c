package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new detached session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}
		if !m.NewSession(cmd.Context(), args[0]) {
			return fmt.Errorf("failed to create session %q", args[0])
		}
		fmt.Printf("created session %q\n", args[0])
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}
		if !m.RenameSession(cmd.Context(), args[0], args[1]) {
			return fmt.Errorf("failed to rename session %q", args[0])
		}
		fmt.Printf("renamed %q to %q\n", args[0], args[1])
		return nil
	},
}

var killCmd = &cobra.Command{
	Use:   "kill <name>",
	Short: "Kill a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getMultiplexer()
		if err != nil {
			return err
		}
		if !m.KillSession(cmd.Context(), args[0]) {
			return fmt.Errorf("failed to kill session %q", args[0])
		}
		fmt.Printf("killed session %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(killCmd)
}
