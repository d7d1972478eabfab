// Package sampler picks the tasks presented in a quiz session.
package sampler

import (
	"math/rand/v2"

	"github.com/abhisek/mathdrill/internal/lesson"
)

// DefaultLimit is the maximum number of tasks presented per session.
const DefaultLimit = 40

// Sample returns at most limit tasks drawn uniformly without replacement
// from tasks, in random order. A limit <= 0 returns every task. The input
// map is never modified.
//
// Questions are sorted before shuffling so that a seeded rng produces the
// same sample regardless of map iteration order. A nil rng uses the
// auto-seeded global source.
func Sample(tasks map[string]string, limit int, rng *rand.Rand) []lesson.Task {
	out := make([]lesson.Task, 0, len(tasks))
	for _, q := range (lesson.Lesson{Tasks: tasks}).Questions() {
		out = append(out, lesson.Task{Question: q, Answer: tasks[q]})
	}

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng != nil {
		rng.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit:limit]
	}
	return out
}
