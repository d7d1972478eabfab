package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockReply is a canned answer for the MockProvider.
type MockReply struct {
	JSON      json.RawMessage
	Usage     Usage
	Truncated bool
	Err       error
}

// MockLesson builds a reply holding a lesson named name with the given
// question, answer pairs.
func MockLesson(name string, pairs ...string) MockReply {
	tasks := make([]DraftTask, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		tasks = append(tasks, DraftTask{Question: pairs[i], Answer: pairs[i+1]})
	}
	return MockJSON(map[string]any{"name": name, "tasks": tasks})
}

// MockJSON builds a reply from v's JSON encoding.
func MockJSON(v any) MockReply {
	data, err := json.Marshal(v)
	if err != nil {
		return MockReply{Err: err}
	}
	return MockReply{JSON: data}
}

// MockProvider is an offline Provider for tests. Replies are served in
// order and checked against the lesson schema like a real vendor's.
type MockProvider struct {
	mu       sync.Mutex
	replies  []MockReply
	Requests []Request
}

// NewMockProvider creates a MockProvider with the given canned replies.
func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{replies: replies}
}

// Draft serves the next reply, or an Unavailable error once they run out.
func (m *MockProvider) Draft(_ context.Context, req Request) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if len(m.replies) == 0 {
		return nil, &Error{Kind: Unavailable}
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return reply{body: next.JSON, usage: next.Usage, model: "mock", truncated: next.Truncated}.decode()
}

func (m *MockProvider) Model() string { return "mock" }

// Add queues another reply.
func (m *MockProvider) Add(r MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, r)
}

// Calls returns how many drafts were requested.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
