// Package result shows the score of a finished session.
package result

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// attemptSavedMsg reports the outcome of persisting the attempt.
type attemptSavedMsg struct {
	Err error
}

// ResultScreen displays the result of a finished session.
type ResultScreen struct {
	env    *screens.Env
	record store.AttemptRecord
	result quiz.Result
	saved  bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)
var _ screen.EscapeHandler = (*ResultScreen)(nil)

// New creates a result screen for a finished session.
func New(env *screens.Env, sess *quiz.Session, res quiz.Result) *ResultScreen {
	return &ResultScreen{
		env:    env,
		result: res,
		record: store.AttemptRecord{
			ID:             sess.ID(),
			Lesson:         sess.Lesson().Name,
			Correct:        res.CorrectCount,
			Total:          res.TotalCount,
			Percentage:     res.Percentage,
			ElapsedSeconds: res.ElapsedSeconds,
			StartedAt:      sess.StartTime(),
			FinishedAt:     env.Clock(),
		},
	}
}

// Init stores the attempt off the UI goroutine.
func (s *ResultScreen) Init() tea.Cmd {
	repo := s.env.Attempts
	if repo == nil {
		return nil
	}
	rec := s.record
	return func() tea.Msg {
		return attemptSavedMsg{Err: repo.Append(context.Background(), rec)}
	}
}

func (s *ResultScreen) Title() string {
	return "Result"
}

func (s *ResultScreen) Kind() screen.Kind {
	return screen.ResultView
}

func (s *ResultScreen) HandlesEscape() bool {
	return true
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to lessons"},
	}
}

// Result returns the displayed result.
func (s *ResultScreen) Result() quiz.Result {
	return s.result
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptSavedMsg:
		log := s.env.Logger().WithField("lesson", s.record.Lesson).WithField("session_id", s.record.ID)
		if msg.Err != nil {
			log.WithError(msg.Err).Error("save attempt")
			return s, nil
		}
		s.saved = true
		log.Info("attempt saved")
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, router.PopToRoot()
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	r := s.result

	lines := []string{
		theme.Title.Render("Lesson complete!"),
		"",
		theme.Body.Render(fmt.Sprintf("Correct answers: %d of %d", r.CorrectCount, r.TotalCount)),
		scoreStyle(r.Percentage).Render("Score: " + r.PercentString()),
		theme.Body.Render("Time: " + r.Elapsed()),
	}
	if s.saved {
		lines = append(lines, "", theme.Hint.Render("Saved to history"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(strings.Join(lines, "\n")))
}

func scoreStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 80:
		return theme.Correct
	case pct >= 50:
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	default:
		return theme.Incorrect
	}
}
