package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/authoring"
	"github.com/abhisek/mathdrill/internal/catalog"
	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/store"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List, refresh, validate and generate lessons",
}

var lessonsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		lessons, err := cat.Load(cmd.Context())
		if err := skipCustomError(cmd, err); err != nil {
			return fmt.Errorf("load lessons: %w", err)
		}
		printLessons(cmd, lessons)
		return nil
	},
}

var lessonsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-download the remote lesson file",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		lessons, err := cat.Refresh(cmd.Context())
		if err := skipCustomError(cmd, err); err != nil {
			return fmt.Errorf("refresh lessons: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %s\n\n", cat.CachePath())
		printLessons(cmd, lessons)
		return nil
	},
}

var lessonsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a lesson file against the lesson schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read lesson file: %w", err)
		}
		lessons, err := lesson.Parse(data)
		if err != nil {
			return err
		}

		var warnings int
		for _, l := range lessons {
			if err := lesson.Validate(l); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %v\n", err)
				warnings++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lessons", args[0], len(lessons))
		if warnings > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d warnings", warnings)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var lessonsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a lesson with a language model",
	Long: `Generate a lesson for a topic with the configured LLM provider.

The provider is picked from llm.provider in the config file, or the first
provider with an API key in the environment. Use --save to add the lesson to
the custom lessons shown in the menu.`,
	RunE: runGenerate,
}

// newProvider builds the lesson-drafting provider. Tests replace it.
var newProvider = llm.NewProvider

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	count, _ := cmd.Flags().GetInt("count")
	notes, _ := cmd.Flags().GetString("notes")
	save, _ := cmd.Flags().GetBool("save")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog := cliLogger(cmd, cfg)
	defer closeLog()

	// Generations are recorded when the database is available.
	var generations store.GenerationRepo
	if st, err := openStore(cmd); err != nil {
		log.WithError(err).Warn("lesson generations will not be recorded")
	} else {
		defer st.Close()
		generations = st.Generations()
	}

	ctx := cmd.Context()
	provider, err := newProvider(ctx, llm.ConfigFromEnv(cfg.LLM.Provider, cfg.LLM.Model), generations, log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gen := authoring.NewGenerator(provider, authoring.DefaultConfig(), log)
	fmt.Fprintf(out, "Generating %d tasks on %q...\n\n", count, topic)
	l, err := gen.Generate(ctx, authoring.Input{Topic: topic, Count: count, Notes: notes})
	if err != nil {
		return fmt.Errorf("generate lesson: %w", err)
	}

	printLesson(out, l)

	if !save {
		fmt.Fprintln(out, "\nNot saved. Re-run with --save to keep it.")
		return nil
	}
	cat, err := newCatalog(cfg, log)
	if err != nil {
		return err
	}
	if err := cat.AddCustom(l); err != nil {
		return fmt.Errorf("save lesson: %w", err)
	}
	fmt.Fprintf(out, "\nSaved %q to custom lessons.\n", l.Name)
	return nil
}

// skipCustomError reports a broken custom lessons file as a warning. The
// other lessons are still usable, so only other errors are returned.
func skipCustomError(cmd *cobra.Command, err error) error {
	var ce *catalog.CustomError
	if errors.As(err, &ce) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", ce)
		return nil
	}
	return err
}

func printLessons(cmd *cobra.Command, lessons []lesson.Lesson) {
	out := cmd.OutOrStdout()
	if len(lessons) == 0 {
		fmt.Fprintln(out, "No lessons available.")
		return
	}
	fmt.Fprintf(out, "%-40s  %5s\n", "Lesson", "Tasks")
	fmt.Fprintln(out, strings.Repeat("─", 47))
	for _, l := range lessons {
		fmt.Fprintf(out, "%-40s  %5d\n", truncate(l.Name, 40), lesson.DisplayCount(l))
	}
}

func printLesson(out io.Writer, l lesson.Lesson) {
	fmt.Fprintf(out, "%s (%d tasks)\n", l.Name, lesson.DisplayCount(l))
	fmt.Fprintln(out, strings.Repeat("─", 40))
	for _, q := range l.Questions() {
		fmt.Fprintf(out, "  %-28s  %s\n", q, l.Tasks[q])
	}
}

func init() {
	lessonsGenerateCmd.Flags().String("topic", "", "Lesson topic, e.g. \"times tables up to 12\" (required)")
	lessonsGenerateCmd.Flags().IntP("count", "n", 10, "Number of tasks to generate")
	lessonsGenerateCmd.Flags().String("notes", "", "Extra guidance for the model")
	lessonsGenerateCmd.Flags().Bool("save", false, "Add the lesson to the custom lessons")
	_ = lessonsGenerateCmd.MarkFlagRequired("topic")

	lessonsCmd.AddCommand(lessonsListCmd)
	lessonsCmd.AddCommand(lessonsRefreshCmd)
	lessonsCmd.AddCommand(lessonsValidateCmd)
	lessonsCmd.AddCommand(lessonsGenerateCmd)
}
