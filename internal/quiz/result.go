package quiz

import (
	"fmt"
	"time"
)

// Result summarizes a finished session.
type Result struct {
	CorrectCount   int
	TotalCount     int
	Percentage     float64 // 0-100; 0 when TotalCount is 0
	ElapsedSeconds int     // whole seconds since Start
}

// newResult builds a Result from recorded answers.
func newResult(answers []bool, elapsed time.Duration) Result {
	var correct int
	for _, ok := range answers {
		if ok {
			correct++
		}
	}

	var pct float64
	if len(answers) > 0 {
		pct = 100 * float64(correct) / float64(len(answers))
	}

	secs := int(elapsed / time.Second)
	if secs < 0 {
		secs = 0
	}

	return Result{
		CorrectCount:   correct,
		TotalCount:     len(answers),
		Percentage:     pct,
		ElapsedSeconds: secs,
	}
}

// Elapsed formats the elapsed time as mm:ss.
func (r Result) Elapsed() string {
	return fmt.Sprintf("%02d:%02d", r.ElapsedSeconds/60, r.ElapsedSeconds%60)
}

// PercentString formats the percentage with one decimal place.
func (r Result) PercentString() string {
	return fmt.Sprintf("%.1f%%", r.Percentage)
}
