package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-lesson statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.AttemptRepo().StatsByLesson(cmd.Context())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No attempts recorded yet.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-28s  %8s  %7s  %7s  %s\n", "Lesson", "Attempts", "Best", "Average", "Last played")
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("─", 72))

		var total int
		for _, st := range stats {
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s  %8d  %6.1f%%  %6.1f%%  %s\n",
				truncate(st.Lesson, 28),
				st.Attempts,
				st.BestPercentage,
				st.AvgPercentage,
				st.LastAttempt.Local().Format("2006-01-02 15:04"),
			)
			total += st.Attempts
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("─", 72))
		fmt.Fprintf(cmd.OutOrStdout(), "%-28s  %8d\n", "TOTAL", total)
		return nil
	},
}
