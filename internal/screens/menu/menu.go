// Package menu is the root screen: it lists the lessons and the app actions.
package menu

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/screens/countdown"
	"github.com/abhisek/mathdrill/internal/screens/history"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const noLessons = "No lessons available"

// lessonsRefreshedMsg carries the outcome of a lesson re-download.
type lessonsRefreshedMsg struct {
	Lessons []lesson.Lesson
	Err     error
}

// MenuScreen lists the lessons followed by Refresh, History and Quit.
type MenuScreen struct {
	env        *screens.Env
	menu       components.Menu
	refreshing bool
}

var _ screen.Screen = (*MenuScreen)(nil)
var _ screen.KeyHintProvider = (*MenuScreen)(nil)

// New creates the menu over env.
func New(env *screens.Env) *MenuScreen {
	m := &MenuScreen{env: env}
	m.rebuild()
	return m
}

func (m *MenuScreen) rebuild() {
	items := make([]components.MenuItem, 0, len(m.env.Lessons)+3)
	for _, l := range m.env.Lessons {
		items = append(items, components.MenuItem{
			Label:  l.Name,
			Detail: fmt.Sprintf("(%d tasks)", lesson.DisplayCount(l)),
			Action: func() tea.Cmd {
				return router.Push(countdown.New(m.env, l))
			},
		})
	}

	items = append(items,
		components.MenuItem{
			Label:    "Refresh lessons",
			Disabled: m.env.Catalog == nil,
			Action:   m.refresh,
		},
		components.MenuItem{
			Label:    "History",
			Disabled: m.env.Attempts == nil,
			Action: func() tea.Cmd {
				return router.Push(history.New(m.env))
			},
		},
		components.MenuItem{
			Label:  "Quit",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)

	selected := m.menu.Selected
	m.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		m.menu.Selected = selected
	}
}

func (m *MenuScreen) refresh() tea.Cmd {
	if m.refreshing {
		return nil
	}
	m.refreshing = true
	src := m.env.Catalog
	return func() tea.Msg {
		lessons, err := src.Refresh(context.Background())
		return router.RootMsg{Msg: lessonsRefreshedMsg{Lessons: lessons, Err: err}}
	}
}

func (m *MenuScreen) Init() tea.Cmd {
	return nil
}

func (m *MenuScreen) Title() string {
	return "Lessons"
}

func (m *MenuScreen) Kind() screen.Kind {
	return screen.MenuView
}

func (m *MenuScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m *MenuScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if root, ok := msg.(router.RootMsg); ok {
		msg = root.Msg
	}
	if msg, ok := msg.(lessonsRefreshedMsg); ok {
		m.refreshing = false
		log := m.env.Logger()
		if msg.Err != nil {
			log.WithError(msg.Err).Warn("refresh lessons")
		} else {
			log.WithField("lessons", len(msg.Lessons)).Info("lessons refreshed")
		}
		// A failed download returns no lessons and keeps the old list.
		if msg.Lessons != nil {
			m.env.Lessons = msg.Lessons
		}
		m.env.LoadErr = msg.Err
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *MenuScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("Choose a lesson"))
	b.WriteString("\n\n")

	switch {
	case m.refreshing:
		b.WriteString(theme.Subtitle.Width(width).Render("Refreshing lessons..."))
		b.WriteString("\n\n")
	case m.env.LoadErr != nil:
		b.WriteString(theme.ErrorText.Width(width).Align(lipgloss.Center).
			Render("Could not load lessons: " + m.env.LoadErr.Error()))
		b.WriteString("\n\n")
	}

	if len(m.env.Lessons) == 0 {
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).Render(noLessons))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.menu.View()))
	return b.String()
}
