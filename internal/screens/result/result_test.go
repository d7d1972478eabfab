package result

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens"
	"github.com/abhisek/mathdrill/internal/store"
)

type fakeAttempts struct {
	records []store.AttemptRecord
	err     error
}

func (f *fakeAttempts) Append(_ context.Context, rec store.AttemptRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAttempts) Recent(context.Context, store.QueryOpts) ([]store.AttemptRecord, error) {
	return f.records, nil
}

func (f *fakeAttempts) StatsByLesson(context.Context) ([]store.LessonStats, error) {
	return nil, nil
}

// finishedSession plays the Addition example: two of three right, one
// minute on the clock.
func finishedSession(t *testing.T, env *screens.Env, clock *time.Time) (*quiz.Session, quiz.Result) {
	t.Helper()
	sess := env.NewSession()
	l := lesson.Lesson{Name: "Addition", Tasks: map[string]string{"1+1": "2", "2+2": "4", "3+3": "6"}}
	if err := sess.Start(l); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; !sess.IsComplete(); i++ {
		task, _ := sess.CurrentTask()
		answer := task.Answer
		if i == 2 {
			answer = "wrong"
		}
		if _, err := sess.RecordAnswer(answer); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	*clock = clock.Add(time.Minute)
	res, err := sess.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return sess, res
}

func testEnv(repo store.AttemptRepo) (*screens.Env, *time.Time) {
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &screens.Env{
		Attempts: repo,
		Rand:     rand.New(rand.NewPCG(3, 4)),
		Now:      func() time.Time { return clock },
	}, &clock
}

func TestResultScreen_Display(t *testing.T) {
	env, clock := testEnv(nil)
	sess, res := finishedSession(t, env, clock)
	s := New(env, sess, res)

	view := s.View(80, 20)
	for _, want := range []string{"Lesson complete!", "Correct answers: 2 of 3", "Score: 66.7%", "Time: 01:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Kind() != screen.ResultView {
		t.Errorf("Kind() = %v", s.Kind())
	}
	if s.Init() != nil {
		t.Error("no repo: nothing to save")
	}
}

func TestResultScreen_SavesAttempt(t *testing.T) {
	repo := &fakeAttempts{}
	env, clock := testEnv(repo)
	sess, res := finishedSession(t, env, clock)
	s := New(env, sess, res)

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	s.Update(cmd())

	if len(repo.records) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.records))
	}
	rec := repo.records[0]
	if rec.ID != sess.ID() || rec.Lesson != "Addition" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Correct != 2 || rec.Total != 3 || rec.ElapsedSeconds != 60 {
		t.Errorf("record score = %d/%d in %ds", rec.Correct, rec.Total, rec.ElapsedSeconds)
	}
	if !rec.FinishedAt.Equal(rec.StartedAt.Add(time.Minute)) {
		t.Errorf("FinishedAt = %v, StartedAt = %v", rec.FinishedAt, rec.StartedAt)
	}
	if !s.saved || !strings.Contains(s.View(80, 20), "Saved to history") {
		t.Error("view should confirm the save")
	}
}

func TestResultScreen_SaveFailureIsQuiet(t *testing.T) {
	repo := &fakeAttempts{err: errors.New("disk full")}
	env, clock := testEnv(repo)
	sess, res := finishedSession(t, env, clock)
	s := New(env, sess, res)

	s.Update(s.Init()())
	if s.saved {
		t.Error("saved should stay false")
	}
	if strings.Contains(s.View(80, 20), "disk full") {
		t.Error("store failures are logged, not shown")
	}
}

func TestResultScreen_ReturnToMenu(t *testing.T) {
	env, clock := testEnv(nil)
	sess, res := finishedSession(t, env, clock)

	for _, k := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(env, sess, res)
		_, cmd := s.Update(tea.KeyPressMsg{Code: k})
		if cmd == nil {
			t.Fatalf("key %q: expected a command", k)
		}
		if _, ok := cmd().(router.PopToRootMsg); !ok {
			t.Errorf("key %q: expected PopToRootMsg, got %T", k, cmd())
		}
	}
}
