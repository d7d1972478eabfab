// Package screens holds the state shared by every screen of the quiz.
package screens

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/logging"
	"github.com/abhisek/mathdrill/internal/quiz"
	"github.com/abhisek/mathdrill/internal/sampler"
	"github.com/abhisek/mathdrill/internal/store"
)

// LessonSource re-downloads the lesson collection.
type LessonSource interface {
	Refresh(ctx context.Context) ([]lesson.Lesson, error)
}

// Env is the state the screens share. It is owned by the UI goroutine;
// commands running off it must not write to it.
type Env struct {
	Lessons []lesson.Lesson
	LoadErr error

	Catalog  LessonSource      // nil disables "Refresh lessons"
	Attempts store.AttemptRepo // nil disables history

	SampleLimit int // 0 means sampler.DefaultLimit
	Countdown   int

	Log  logrus.FieldLogger
	Rand *rand.Rand
	Now  func() time.Time
}

// Logger returns Log, or a discarding logger when unset.
func (e *Env) Logger() logrus.FieldLogger {
	if e.Log == nil {
		e.Log = logging.Discard()
	}
	return e.Log
}

// Clock returns the current time.
func (e *Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// NewSession creates a quiz session configured from the environment.
func (e *Env) NewSession() *quiz.Session {
	limit := e.SampleLimit
	if limit <= 0 {
		limit = sampler.DefaultLimit
	}
	opts := []quiz.Option{quiz.WithLimit(limit)}
	if e.Rand != nil {
		opts = append(opts, quiz.WithRand(e.Rand))
	}
	if e.Now != nil {
		opts = append(opts, quiz.WithClock(e.Now))
	}
	return quiz.New(opts...)
}
