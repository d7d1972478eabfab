package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the lesson-generation requests sent to language models",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent lesson generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.Generations().Recent(cmd.Context(), store.QueryOpts{Limit: limit, Topic: topic})
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No lesson generations recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-4s  %-16s  %-24s  %9s  %-22s  %6s  %s\n",
			"ID", "When", "Topic", "Tasks", "Model", "Ms", "Result")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, g := range runs {
			fmt.Fprintf(out, "%-4d  %-16s  %-24s  %4d/%-4d  %-22s  %6d  %s\n",
				g.ID,
				g.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(g.Topic, 24),
				g.Produced, g.Requested,
				truncate(g.Model, 22),
				g.LatencyMs,
				outcome(g.Generation),
			)
		}
		return nil
	},
}

// outcome names the lesson produced, or the failure.
func outcome(g store.Generation) string {
	if g.OK() {
		return "✓ " + g.Lesson
	}
	return "✗ " + truncate(g.Err, 40)
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one lesson generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		g, err := s.Generations().Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if g == nil {
			return fmt.Errorf("generation %d not found", id)
		}
		printGeneration(cmd.OutOrStdout(), g)
		return nil
	},
}

func printGeneration(out io.Writer, g *store.GenerationRecord) {
	fmt.Fprintf(out, "Topic:     %s\n", g.Topic)
	fmt.Fprintf(out, "Tasks:     %d of %d requested\n", g.Produced, g.Requested)
	if g.Lesson != "" {
		fmt.Fprintf(out, "Lesson:    %s\n", g.Lesson)
	}
	fmt.Fprintf(out, "When:      %s\n", g.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Model:     %s (%s)\n", g.Model, g.Provider)
	fmt.Fprintf(out, "Tokens:    %d in / %d out\n", g.InputTokens, g.OutputTokens)
	fmt.Fprintf(out, "Latency:   %dms\n", g.LatencyMs)
	if !g.OK() {
		fmt.Fprintf(out, "Error:     %s\n", g.Err)
	}

	for _, part := range []struct{ title, body string }{
		{"PROMPT", g.Prompt},
		{"REPLY", g.Reply},
	} {
		fmt.Fprintf(out, "\n%s\n%s\n", part.title, strings.Repeat("─", 60))
		if part.body == "" {
			fmt.Fprintln(out, "(none)")
			continue
		}
		fmt.Fprintln(out, part.body)
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize lesson generations and their estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.Generations().StatsByModel(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No lesson generations recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-28s  %5s  %6s  %6s  %9s  %9s  %9s\n",
			"Model", "Runs", "Failed", "Tasks", "In", "Out", "Cost")
		fmt.Fprintln(out, strings.Repeat("─", 86))

		var total float64
		var unpriced []string
		for _, st := range stats {
			cost := "?"
			if c := llm.LookupCost(st.Model); c != nil {
				usd := c.Cost(st.InputTokens, st.OutputTokens)
				total += usd
				cost = formatCost(usd)
			} else {
				unpriced = append(unpriced, st.Model)
			}
			fmt.Fprintf(out, "%-28s  %5d  %6d  %6d  %9d  %9d  %9s\n",
				truncate(st.Model, 28), st.Runs, st.Failed, st.TasksProduced,
				st.InputTokens, st.OutputTokens, cost)
		}

		fmt.Fprintln(out, strings.Repeat("─", 86))
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(out, "%-28s  %67s\n", label, formatCost(total))
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	llmListCmd.Flags().StringP("topic", "t", "", "Only show generations for this topic")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
