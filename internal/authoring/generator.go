// Package authoring generates new lessons with a language model.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/llm"
)

// Input describes the lesson to generate.
type Input struct {
	Topic string
	Count int
	Notes string // optional extra guidance
}

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for lesson generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// MaxTasks caps how many tasks a generated lesson may hold.
const MaxTasks = llm.MaxTasks

var (
	ErrNoTopic     = errors.New("topic is required")
	ErrBadCount    = fmt.Errorf("task count must be between 1 and %d", MaxTasks)
	ErrEmptyLesson = errors.New("model returned no usable tasks")
)

// Generator turns a topic into a lesson.
type Generator struct {
	provider llm.Provider
	cfg      Config
	log      logrus.FieldLogger
}

// NewGenerator creates a Generator. log may be nil.
func NewGenerator(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Generator {
	return &Generator{provider: provider, cfg: cfg, log: log}
}

// Generate asks the model for a lesson on in.Topic. The result holds
// between 1 and in.Count distinct questions with trimmed text.
func (g *Generator) Generate(ctx context.Context, in Input) (lesson.Lesson, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return lesson.Lesson{}, ErrNoTopic
	}
	if in.Count < 1 || in.Count > MaxTasks {
		return lesson.Lesson{}, ErrBadCount
	}

	draft, err := g.provider.Draft(ctx, llm.Request{
		Topic:       in.Topic,
		Count:       in.Count,
		Notes:       strings.TrimSpace(in.Notes),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return lesson.Lesson{}, fmt.Errorf("generate lesson: %w", err)
	}

	l := normalize(draft, in)
	if len(l.Tasks) == 0 {
		return lesson.Lesson{}, ErrEmptyLesson
	}

	if g.log != nil {
		g.log.WithFields(logrus.Fields{
			"lesson":    l.Name,
			"tasks":     len(l.Tasks),
			"requested": in.Count,
			"returned":  len(draft.Tasks),
		}).Info("lesson generated")
	}
	return l, nil
}

// normalize trims text, drops incomplete and repeated questions, and caps
// the task count. The first occurrence of a question wins.
func normalize(d *llm.Draft, in Input) lesson.Lesson {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = in.Topic
	}

	tasks := make(map[string]string, len(d.Tasks))
	for _, t := range d.Tasks {
		if len(tasks) == in.Count {
			break
		}
		q := strings.TrimSpace(t.Question)
		a := strings.TrimSpace(t.Answer)
		if q == "" || a == "" {
			continue
		}
		if _, dup := tasks[q]; dup {
			continue
		}
		tasks[q] = a
	}

	return lesson.Lesson{Name: name, TaskNum: len(tasks), Tasks: tasks}
}
