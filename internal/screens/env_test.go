package screens

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/sampler"
)

func bigLesson(n int) lesson.Lesson {
	tasks := make(map[string]string, n)
	for i := 0; i < n; i++ {
		tasks[fmt.Sprintf("%d+1", i)] = fmt.Sprint(i + 1)
	}
	return lesson.Lesson{Name: "Big", Tasks: tasks}
}

func TestNewSession_SampleLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unset uses default", 0, sampler.DefaultLimit},
		{"configured", 5, 5},
		{"above lesson size", 500, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Env{SampleLimit: tt.limit, Rand: rand.New(rand.NewPCG(3, 4))}
			s := env.NewSession()
			if err := s.Start(bigLesson(60)); err != nil {
				t.Fatalf("Start: %v", err)
			}
			if s.Total() != tt.want {
				t.Errorf("Total() = %d, want %d", s.Total(), tt.want)
			}
		})
	}
}
