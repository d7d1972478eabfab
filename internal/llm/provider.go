// Package llm drafts drill lessons with hosted language models. Every vendor
// is asked for the same lesson shape, and a reply only reaches the caller
// once it has been checked against that shape.
package llm

import (
	"context"
	"encoding/json"
)

// Provider drafts lessons with one language model.
type Provider interface {
	Draft(ctx context.Context, req Request) (*Draft, error)

	// Model returns the model identifier requests are sent to.
	Model() string
}

// Request asks for a lesson of Count question/answer pairs on Topic.
type Request struct {
	Topic string
	Count int
	Notes string // optional extra guidance for the model

	MaxTokens   int
	Temperature float64 // 0 leaves the vendor default
}

// Draft is a model's lesson proposal. Tasks are as returned; callers
// normalize them before building a lesson.
type Draft struct {
	Name  string
	Tasks []DraftTask
	Usage Usage

	// Model is the model that served the request, which may differ from
	// the configured alias.
	Model string

	// Reply is the validated JSON the draft was decoded from.
	Reply json.RawMessage
}

// DraftTask is one question/answer pair of a Draft.
type DraftTask struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Usage counts the tokens spent on one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
