// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"math/rand/v2"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/config"
	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/screens/countdown"
	"github.com/abhisek/mathdrill/internal/screens/menu"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

// Options carries everything the TUI needs. Zero values are usable: no
// lessons, no refresh, no history.
type Options struct {
	Lessons  []lesson.Lesson
	LoadErr  error
	Catalog  screens.LessonSource
	Attempts store.AttemptRepo
	Config   config.Config // Quiz.SampleLimit 0 falls back to sampler.DefaultLimit
	Log      logrus.FieldLogger
	Rand     *rand.Rand

	// StartLesson, when set, skips the menu and counts straight into it.
	StartLesson *lesson.Lesson
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *screens.Env
	router *router.Router
	start  *lesson.Lesson
	width  int
	height int
}

// newAppModel creates a new AppModel with the menu as root screen.
func newAppModel(opts Options) AppModel {
	env := &screens.Env{
		Lessons:     opts.Lessons,
		LoadErr:     opts.LoadErr,
		Catalog:     opts.Catalog,
		Attempts:    opts.Attempts,
		SampleLimit: opts.Config.Quiz.SampleLimit,
		Countdown:   opts.Config.Quiz.Countdown,
		Log:         opts.Log,
		Rand:        opts.Rand,
	}
	return AppModel{
		env:    env,
		router: router.New(menu.New(env)),
		start:  opts.StartLesson,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.start != nil {
		return router.Push(countdown.New(m.env, *m.start))
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the frame around the active screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	var hints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	if hints == nil {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	header := layout.RenderHeader(title, m.status(), m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// status is the header's right-hand text.
func (m AppModel) status() string {
	n := len(m.env.Lessons)
	if n == 1 {
		return "1 lesson  "
	}
	return fmt.Sprintf("%d lessons  ", n)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	log := opts.Log
	if log != nil {
		log.WithField("lessons", len(opts.Lessons)).Info("starting tui")
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
