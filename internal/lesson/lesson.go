package lesson

import (
	"errors"
	"fmt"
	"sort"
)

// Lesson is a named group of question/answer pairs.
type Lesson struct {
	Name string `json:"name"`

	// TaskNum is the task count advertised by the lesson file. It is a
	// display hint only; Tasks is authoritative.
	TaskNum int `json:"tasknum"`

	// Tasks maps question text to the correct answer.
	Tasks map[string]string `json:"tasks"`
}

// Task is a single question/answer pair selected for presentation.
type Task struct {
	Question string
	Answer   string
}

// Collection is the top-level shape of a lesson file.
type Collection struct {
	Lessons []Lesson `json:"lessons"`
}

var (
	ErrNoName  = errors.New("lesson has no name")
	ErrNoTasks = errors.New("lesson has no tasks")
)

// DisplayCount returns the task count to show next to the lesson name.
func DisplayCount(l Lesson) int {
	if l.TaskNum > 0 {
		return l.TaskNum
	}
	return len(l.Tasks)
}

// Questions returns the lesson's questions in sorted order.
func (l Lesson) Questions() []string {
	qs := make([]string, 0, len(l.Tasks))
	for q := range l.Tasks {
		qs = append(qs, q)
	}
	sort.Strings(qs)
	return qs
}

// Validate checks the invariants required of an authored lesson. Lessons
// read from a lesson file may legitimately have no tasks and are not
// subject to this check.
func Validate(l Lesson) error {
	if l.Name == "" {
		return ErrNoName
	}
	if len(l.Tasks) == 0 {
		return fmt.Errorf("%q: %w", l.Name, ErrNoTasks)
	}
	for q, a := range l.Tasks {
		if q == "" {
			return fmt.Errorf("%q: empty question", l.Name)
		}
		if a == "" {
			return fmt.Errorf("%q: empty answer for %q", l.Name, q)
		}
	}
	return nil
}
