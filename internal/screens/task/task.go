// Package task asks the questions of a running session one at a time.
package task

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/screens/result"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const (
	inputWidth    = 32
	progressWidth = 48
)

// TaskScreen shows the current task of a session and records answers.
type TaskScreen struct {
	env        *screens.Env
	sess       *quiz.Session
	input      components.TextInput
	confirming bool
}

var _ screen.Screen = (*TaskScreen)(nil)
var _ screen.KeyHintProvider = (*TaskScreen)(nil)
var _ screen.EscapeHandler = (*TaskScreen)(nil)

// New creates a task screen for a started session.
func New(env *screens.Env, sess *quiz.Session) *TaskScreen {
	return &TaskScreen{
		env:   env,
		sess:  sess,
		input: components.NewTextInput("Type your answer...", inputWidth),
	}
}

func (t *TaskScreen) Init() tea.Cmd {
	return t.input.Init()
}

func (t *TaskScreen) Title() string {
	return t.sess.Lesson().Name
}

func (t *TaskScreen) Kind() screen.Kind {
	return screen.TaskView
}

func (t *TaskScreen) HandlesEscape() bool {
	return true
}

func (t *TaskScreen) KeyHints() []layout.KeyHint {
	if t.confirming {
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon lesson"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit lesson"},
	}
}

func (t *TaskScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if t.confirming {
			return t.handleConfirm(kmsg)
		}
		switch kmsg.String() {
		case "enter":
			return t, t.submit()
		case "esc":
			t.confirming = true
			return t, nil
		}
	}
	if t.confirming {
		return t, nil
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TaskScreen) handleConfirm(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		t.env.Logger().WithFields(logrus.Fields{
			"lesson":     t.sess.Lesson().Name,
			"session_id": t.sess.ID(),
			"answered":   t.sess.Index(),
		}).Info("session abandoned")
		return t, router.PopToRoot()
	case "n", "N", "esc":
		t.confirming = false
	}
	return t, nil
}

// submit records the input exactly as typed and moves to the next task, or
// to the result screen after the last one.
func (t *TaskScreen) submit() tea.Cmd {
	log := t.env.Logger().WithFields(logrus.Fields{
		"lesson":     t.sess.Lesson().Name,
		"session_id": t.sess.ID(),
	})

	correct, err := t.sess.RecordAnswer(t.input.Value())
	if err != nil {
		log.WithError(err).Error("record answer")
		return router.PopToRoot()
	}
	log.WithField("correct", correct).Debug("answer recorded")
	t.input.Reset()

	if !t.sess.IsComplete() {
		return nil
	}

	res, err := t.sess.Finish()
	if err != nil {
		log.WithError(err).Error("finish session")
		return router.PopToRoot()
	}
	return router.Replace(result.New(t.env, t.sess, res))
}

func (t *TaskScreen) View(width, height int) string {
	if t.confirming {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Card.Render(
				theme.Body.Bold(true).Render("Abandon this lesson?")+"\n\n"+
					theme.Hint.Render("Your answers so far will not be saved.")+"\n\n"+
					theme.Body.Render("[Y] Yes   [N] No")))
	}

	task, err := t.sess.CurrentTask()
	if err != nil {
		return ""
	}

	bar := components.NewStepProgress(t.sess.Index()+1, t.sess.Total(), min(progressWidth, width-4))

	sections := []string{
		bar.View(),
		"",
		"",
		theme.Question.Render(task.Question),
		"",
		t.input.View(),
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}
