package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/app"
	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/store"
)

// runApp loads lessons, opens the store, and launches the TUI. With a
// lesson name the TUI starts that lesson right away.
func runApp(cmd *cobra.Command, lessonName string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI runs without a log file rather than not at all.
	log, closeLog := cliLogger(cmd, cfg)
	defer closeLog()

	cat, err := newCatalog(cfg, log)
	if err != nil {
		return err
	}

	opts := app.Options{
		Catalog: cat,
		Config:  cfg,
		Log:     log,
	}

	// Load failures are shown on the menu, not fatal.
	opts.Lessons, opts.LoadErr = cat.Load(ctx)
	if opts.LoadErr != nil {
		log.WithError(opts.LoadErr).Warn("load lessons")
	}

	if lessonName != "" {
		l, err := findLesson(opts.Lessons, lessonName)
		if err != nil {
			if opts.LoadErr != nil {
				return fmt.Errorf("%w (load lessons: %v)", err, opts.LoadErr)
			}
			return err
		}
		opts.StartLesson = &l
	}

	// History is optional: without a database the TUI still runs.
	dbPath, err := resolveDBPath(cmd, cfg)
	if err == nil {
		var st *store.Store
		st, err = store.Open(dbPath)
		if err == nil {
			defer st.Close()
			opts.Attempts = st.AttemptRepo()
		}
	}
	if err != nil {
		log.WithError(err).Warn("history database unavailable")
		fmt.Fprintln(cmd.ErrOrStderr(), "History unavailable:", err)
	}

	return app.Run(ctx, opts)
}

// findLesson looks a lesson up by exact name, then case-insensitively.
func findLesson(lessons []lesson.Lesson, name string) (lesson.Lesson, error) {
	for _, l := range lessons {
		if l.Name == name {
			return l, nil
		}
	}
	for _, l := range lessons {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return lesson.Lesson{}, fmt.Errorf("lesson %q not found", name)
}
