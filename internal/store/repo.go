package store

import (
	"context"
	"time"
)

// QueryOpts configures history queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	Lesson string    // attempts only: exact lesson name
	Topic  string    // generations only: exact topic
}

// AttemptRecord is one completed lesson attempt.
type AttemptRecord struct {
	ID             string
	Sequence       int64
	Lesson         string
	Correct        int
	Total          int
	Percentage     float64
	ElapsedSeconds int
	StartedAt      time.Time
	FinishedAt     time.Time
}

// LessonStats aggregates the attempts of one lesson.
type LessonStats struct {
	Lesson         string
	Attempts       int
	BestPercentage float64
	AvgPercentage  float64
	LastAttempt    time.Time
}

// AttemptRepo stores completed lesson attempts. Partial attempts are never
// written.
type AttemptRepo interface {
	// Append records a finished attempt.
	Append(ctx context.Context, rec AttemptRecord) error

	// Recent returns attempts newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error)

	// StatsByLesson aggregates attempts per lesson, ordered by lesson name.
	StatsByLesson(ctx context.Context) ([]LessonStats, error)
}

// Generation is one lesson-generation request sent to a language model.
type Generation struct {
	Topic     string
	Requested int    // tasks asked for
	Produced  int    // usable tasks in the reply; 0 when the request failed
	Lesson    string // lesson name from the reply

	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64

	Err    string // empty on success
	Prompt string
	Reply  string
}

// OK reports whether the request produced a lesson.
func (g Generation) OK() bool { return g.Err == "" }

// GenerationRecord is a stored Generation.
type GenerationRecord struct {
	ID        int
	Sequence  int64
	CreatedAt time.Time
	Generation
}

// ModelStats aggregates the generations served by one model.
type ModelStats struct {
	Model         string
	Runs          int
	Failed        int
	TasksProduced int
	InputTokens   int
	OutputTokens  int
	AvgLatencyMs  int
}

// GenerationRepo records lesson-generation requests.
type GenerationRepo interface {
	Append(ctx context.Context, g Generation) error

	// Recent returns generations newest first. opts.Topic filters by topic.
	Recent(ctx context.Context, opts QueryOpts) ([]GenerationRecord, error)

	// Get returns the generation with id, or nil if it does not exist.
	Get(ctx context.Context, id int) (*GenerationRecord, error)

	// StatsByModel aggregates generations per model, ordered by model.
	StatsByModel(ctx context.Context) ([]ModelStats, error)
}
