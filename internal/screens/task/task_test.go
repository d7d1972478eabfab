package task

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/screens/result"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testTaskScreen(t *testing.T) (*TaskScreen, *quiz.Session) {
	t.Helper()
	env := &screens.Env{Rand: rand.New(rand.NewPCG(7, 9))}
	sess := env.NewSession()
	l := lesson.Lesson{Name: "Addition", Tasks: map[string]string{"1+1": "2", "2+2": "4"}}
	if err := sess.Start(l); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := New(env, sess)
	s.Init()
	return s, sess
}

func typeText(s *TaskScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestTaskScreen_View(t *testing.T) {
	s, sess := testTaskScreen(t)
	task, _ := sess.CurrentTask()

	view := s.View(80, 20)
	for _, want := range []string{"Task 1 of 2", task.Question} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Kind() != screen.TaskView {
		t.Errorf("Kind() = %v", s.Kind())
	}
	if !s.HandlesEscape() {
		t.Error("task screen should handle Esc itself")
	}
}

func TestTaskScreen_AnswersThenResult(t *testing.T) {
	s, sess := testTaskScreen(t)

	first, _ := sess.CurrentTask()
	typeText(s, first.Answer)
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Fatal("first answer should not leave the screen")
	}
	if sess.Index() != 1 || !sess.Answers()[0] {
		t.Fatalf("answers = %v, want [true]", sess.Answers())
	}
	if s.input.Value() != "" {
		t.Errorf("input not cleared: %q", s.input.Value())
	}
	if !strings.Contains(s.View(80, 20), "Task 2 of 2") {
		t.Error("view should advance to task 2")
	}

	second, _ := sess.CurrentTask()
	typeText(s, " "+second.Answer) // leading space makes it wrong
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("last answer should move to the result")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	rs, ok := msg.Screen.(*result.ResultScreen)
	if !ok {
		t.Fatalf("expected result screen, got %T", msg.Screen)
	}
	if r := rs.Result(); r.CorrectCount != 1 || r.TotalCount != 2 {
		t.Errorf("result = %+v, want 1 of 2", r)
	}
	if sess.State() != quiz.StateFinished {
		t.Errorf("state = %v, want finished", sess.State())
	}
}

func TestTaskScreen_LongAnswerNotTruncated(t *testing.T) {
	env := &screens.Env{Rand: rand.New(rand.NewPCG(1, 2))}
	sess := env.NewSession()
	answer := strings.Repeat("7", inputWidth+8)
	l := lesson.Lesson{Name: "Long", Tasks: map[string]string{"big number": answer}}
	if err := sess.Start(l); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := New(env, sess)
	s.Init()

	typeText(s, answer)
	if got := len(s.input.Value()); got != len(answer) {
		t.Fatalf("input holds %d chars, want %d", got, len(answer))
	}
	s.Update(specialKey(tea.KeyEnter))

	if got := sess.Answers(); len(got) != 1 || !got[0] {
		t.Errorf("answers = %v, want [true]", got)
	}
}

func TestTaskScreen_EmptyAnswerIsWrong(t *testing.T) {
	s, sess := testTaskScreen(t)
	s.Update(specialKey(tea.KeyEnter))

	if got := sess.Answers(); len(got) != 1 || got[0] {
		t.Errorf("answers = %v, want [false]", got)
	}
}

func TestTaskScreen_QuitConfirm(t *testing.T) {
	s, sess := testTaskScreen(t)
	typeText(s, "9")

	s.Update(specialKey(tea.KeyEscape))
	if !s.confirming {
		t.Fatal("Esc should ask for confirmation")
	}
	if !strings.Contains(s.View(80, 20), "Abandon this lesson?") {
		t.Error("view should show the confirmation")
	}
	if hints := s.KeyHints(); len(hints) != 2 || hints[0].Key != "Y" {
		t.Errorf("hints = %+v", hints)
	}

	// Typing while confirming must not reach the input.
	s.Update(keyPress('7'))
	s.Update(keyPress('n'))
	if s.confirming {
		t.Fatal("N should dismiss the confirmation")
	}
	if s.input.Value() != "9" {
		t.Errorf("input = %q, want %q", s.input.Value(), "9")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("Y should leave the lesson")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", cmd())
	}
	if sess.Index() != 0 {
		t.Errorf("abandoning should not record answers, got %d", sess.Index())
	}
}
