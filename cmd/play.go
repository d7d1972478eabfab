package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <lesson>",
	Short: "Start a lesson directly, skipping the menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}
