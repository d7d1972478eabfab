package cmd

import (
	"testing"

	"github.com/abhisek/mathdrill/internal/lesson"
)

func TestFindLesson(t *testing.T) {
	lessons := []lesson.Lesson{{Name: "addition"}, {Name: "Addition"}, {Name: "Doubles"}}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"Addition", "Addition", false},
		{"addition", "addition", false},
		{"DOUBLES", "Doubles", false},
		{"Halves", "", true},
	}
	for _, tt := range tests {
		got, err := findLesson(lessons, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("findLesson(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("findLesson(%q) = %q, want %q", tt.name, got.Name, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Multiplication", 5); got != "Multi" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("×÷", 5); got != "×÷" {
		t.Errorf("truncate = %q", got)
	}
}
