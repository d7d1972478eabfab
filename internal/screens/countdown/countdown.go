// Package countdown shows the 3-2-1 lead-in before a lesson starts.
package countdown

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/screens/result"
	"github.com/abhisek/mathdrill/internal/screens/task"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const tickInterval = time.Second

// tickMsg is tagged with its screen so that a tick from an abandoned
// countdown never advances a newer one.
type tickMsg struct {
	src *CountdownScreen
}

// CountdownScreen counts down from env.Countdown and then starts the
// lesson, replacing itself with the task screen.
type CountdownScreen struct {
	env       *screens.Env
	lesson    lesson.Lesson
	remaining int
	started   bool
}

var _ screen.Screen = (*CountdownScreen)(nil)
var _ screen.KeyHintProvider = (*CountdownScreen)(nil)

// New creates a countdown for l.
func New(env *screens.Env, l lesson.Lesson) *CountdownScreen {
	return &CountdownScreen{
		env:       env,
		lesson:    l,
		remaining: env.Countdown,
	}
}

func (c *CountdownScreen) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{src: c}
	})
}

func (c *CountdownScreen) Init() tea.Cmd {
	if c.remaining <= 0 {
		return c.start()
	}
	return c.tick()
}

func (c *CountdownScreen) Title() string {
	return c.lesson.Name
}

func (c *CountdownScreen) Kind() screen.Kind {
	return screen.CountdownView
}

func (c *CountdownScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Cancel"},
	}
}

// Remaining returns the number still to be shown.
func (c *CountdownScreen) Remaining() int {
	return c.remaining
}

func (c *CountdownScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tickMsg); ok && msg.src == c {
		c.remaining--
		if c.remaining <= 0 {
			return c, c.start()
		}
		return c, c.tick()
	}
	return c, nil
}

// start begins the session and hands over to the task screen, or straight
// to the result screen when the lesson has nothing to ask.
func (c *CountdownScreen) start() tea.Cmd {
	if c.started {
		return nil
	}
	c.started = true

	log := c.env.Logger().WithField("lesson", c.lesson.Name)
	sess := c.env.NewSession()
	if err := sess.Start(c.lesson); err != nil {
		log.WithError(err).Error("start session")
		return router.PopToRoot()
	}
	log = log.WithField("session_id", sess.ID())
	log.WithField("tasks", sess.Total()).Info("session started")

	if sess.IsComplete() {
		res, err := sess.Finish()
		if err != nil {
			log.WithError(err).Error("finish empty session")
			return router.PopToRoot()
		}
		return router.Replace(result.New(c.env, sess, res))
	}
	return router.Replace(task.New(c.env, sess))
}

func (c *CountdownScreen) View(width, height int) string {
	n := max(c.remaining, 1)

	sections := []string{
		theme.Subtitle.Render(fmt.Sprintf("Get ready: %s", c.lesson.Name)),
		"",
		theme.Countdown.Render(fmt.Sprintf("%d", n)),
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}
