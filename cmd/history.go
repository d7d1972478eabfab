package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent lesson attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		lessonName, _ := cmd.Flags().GetString("lesson")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		attempts, err := s.AttemptRepo().Recent(cmd.Context(), store.QueryOpts{Limit: limit, Lesson: lessonName})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No attempts recorded yet.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-16s  %-28s  %7s  %7s  %5s\n", "Finished", "Lesson", "Correct", "Score", "Time")
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("─", 72))
		for _, a := range attempts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s  %-28s  %7s  %6.1f%%  %02d:%02d\n",
				a.FinishedAt.Local().Format("2006-01-02 15:04"),
				truncate(a.Lesson, 28),
				fmt.Sprintf("%d/%d", a.Correct, a.Total),
				a.Percentage,
				a.ElapsedSeconds/60, a.ElapsedSeconds%60,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	historyCmd.Flags().StringP("lesson", "l", "", "Only show attempts of this lesson")

	historyCmd.AddCommand(statsCmd)
}
