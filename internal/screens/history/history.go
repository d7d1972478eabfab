// Package history lists past lesson attempts.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const recentLimit = 50

type historyLoadedMsg struct {
	Attempts []store.AttemptRecord
	Stats    map[string]store.LessonStats
	Err      error
}

// HistoryScreen displays recent attempts with each lesson's best score.
type HistoryScreen struct {
	env      *screens.Env
	attempts []store.AttemptRecord
	stats    map[string]store.LessonStats
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screens.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.env.Attempts
	if repo == nil {
		return func() tea.Msg {
			return historyLoadedMsg{}
		}
	}
	return func() tea.Msg {
		ctx := context.Background()

		attempts, err := repo.Recent(ctx, store.QueryOpts{Limit: recentLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		byLesson := make(map[string]store.LessonStats)
		stats, err := repo.StatsByLesson(ctx)
		if err != nil {
			return historyLoadedMsg{Attempts: attempts, Stats: byLesson}
		}
		for _, st := range stats {
			byLesson[st.Lesson] = st
		}
		return historyLoadedMsg{Attempts: attempts, Stats: byLesson}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) Kind() screen.Kind {
	return screen.HistoryView
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.env.Logger().WithError(msg.Err).Error("load history")
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Pick a lesson to get started!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, a := range s.attempts {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%s  %-20s  %d/%d  %6.1f%%  %02d:%02d",
			prefix, a.FinishedAt.Format("Jan 02 15:04"), truncate(a.Lesson, 20),
			a.Correct, a.Total, a.Percentage, a.ElapsedSeconds/60, a.ElapsedSeconds%60)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "    No other attempts of this lesson"
			if st, ok := s.stats[a.Lesson]; ok && st.Attempts > 0 {
				detail = fmt.Sprintf("    %d attempts  best %.1f%%  average %.1f%%",
					st.Attempts, st.BestPercentage, st.AvgPercentage)
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
