package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the lesson cache and, optionally, the attempt history",
	Long: `Remove the cached lesson file so the next start downloads it again.

With --history the attempt database is deleted too. Custom lessons are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withHistory, _ := cmd.Flags().GetBool("history")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closeLog := cliLogger(cmd, cfg)
		defer closeLog()

		cat, err := newCatalog(cfg, log)
		if err != nil {
			return err
		}
		if err := cat.ClearCache(); err != nil {
			return err
		}
		log.WithField("path", cat.CachePath()).Info("lesson cache cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared lesson cache:", cat.CachePath())

		if !withHistory {
			return nil
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			err := os.Remove(dbPath + suffix)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove history: %w", err)
			}
		}
		log.WithField("path", dbPath).Info("history cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared history:", dbPath)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("history", false, "Also delete the attempt history")
}
