// Package quiz drives a single attempt at a lesson.
package quiz

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/sampler"
)

// Session tracks one attempt at a lesson: the sampled tasks, the answers
// recorded so far, and when the attempt began.
//
// A Session is owned by a single goroutine and is not safe for concurrent
// use.
type Session struct {
	id     string
	limit  int
	rng    *rand.Rand
	now    func() time.Time
	state  State
	lesson lesson.Lesson

	tasks     []lesson.Task
	answers   []bool
	startTime time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLimit sets the maximum number of tasks sampled from the lesson.
func WithLimit(n int) Option {
	return func(s *Session) { s.limit = n }
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session in the NotStarted state.
func New(opts ...Option) *Session {
	s := &Session{
		id:    uuid.New().String(),
		limit: sampler.DefaultLimit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start samples the lesson's tasks and begins the attempt.
func (s *Session) Start(l lesson.Lesson) error {
	if s.state != StateNotStarted {
		return s.stateErr("start")
	}
	s.lesson = l
	s.tasks = sampler.Sample(l.Tasks, s.limit, s.rng)
	s.answers = make([]bool, 0, len(s.tasks))
	s.startTime = s.now()
	s.state = StateInProgress
	return nil
}

// CurrentTask returns the task awaiting an answer.
func (s *Session) CurrentTask() (lesson.Task, error) {
	if s.state != StateInProgress || s.IsComplete() {
		return lesson.Task{}, s.stateErr("current task")
	}
	return s.tasks[len(s.answers)], nil
}

// RecordAnswer compares input to the current task's answer, records the
// outcome, and advances to the next task. The comparison is exact: no
// trimming, case folding, or numeric equivalence.
func (s *Session) RecordAnswer(input string) (bool, error) {
	task, err := s.CurrentTask()
	if err != nil {
		return false, s.stateErr("record answer")
	}
	correct := input == task.Answer
	s.answers = append(s.answers, correct)
	return correct, nil
}

// IsComplete reports whether every sampled task has been answered. It is
// false before Start.
func (s *Session) IsComplete() bool {
	if s.state == StateNotStarted {
		return false
	}
	return len(s.answers) >= len(s.tasks)
}

// Finish ends a completed attempt and returns its result.
func (s *Session) Finish() (Result, error) {
	if s.state != StateInProgress || !s.IsComplete() {
		return Result{}, s.stateErr("finish")
	}
	s.state = StateFinished
	return newResult(s.answers, s.now().Sub(s.startTime)), nil
}

// ID returns the attempt identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Lesson returns the lesson being attempted.
func (s *Session) Lesson() lesson.Lesson { return s.lesson }

// Index returns the zero-based position of the current task.
func (s *Session) Index() int { return len(s.answers) }

// Total returns the number of sampled tasks.
func (s *Session) Total() int { return len(s.tasks) }

// StartTime returns when the attempt began.
func (s *Session) StartTime() time.Time { return s.startTime }

// Tasks returns a copy of the sampled tasks in presentation order.
func (s *Session) Tasks() []lesson.Task {
	return append([]lesson.Task(nil), s.tasks...)
}

// Answers returns a copy of the recorded answer outcomes.
func (s *Session) Answers() []bool {
	return append([]bool(nil), s.answers...)
}

// CorrectSoFar counts correct answers recorded so far.
func (s *Session) CorrectSoFar() int {
	n := 0
	for _, ok := range s.answers {
		if ok {
			n++
		}
	}
	return n
}

func (s *Session) stateErr(op string) error {
	return &StateError{Op: op, State: s.state, Complete: s.IsComplete()}
}
