package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failed draft.
type Kind int

const (
	// Unavailable covers outages, network errors and unexpected API errors.
	Unavailable Kind = iota
	// RateLimited means the vendor asked us to slow down.
	RateLimited
	// BadReply means the model answered with something that is not a lesson.
	BadReply
	// Truncated means the reply hit the token limit before it was complete.
	Truncated
)

func (k Kind) String() string {
	switch k {
	case RateLimited:
		return "rate limited"
	case BadReply:
		return "unusable reply"
	case Truncated:
		return "reply truncated"
	default:
		return "provider unavailable"
	}
}

// Error reports why a provider could not produce a draft.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration   // RateLimited only; 0 when the vendor gave none
	Reply      json.RawMessage // BadReply and Truncated: what the model sent
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, and false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// fromStatus maps a vendor HTTP status to an *Error.
func fromStatus(status int, err error) *Error {
	if status == http.StatusTooManyRequests {
		return &Error{Kind: RateLimited, Err: err}
	}
	return &Error{Kind: Unavailable, Err: err}
}

// retryable reports whether another attempt may succeed. Bad replies get
// one second chance; badReplies counts those seen so far, err included.
func retryable(err error, badReplies int) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	switch kind {
	case Truncated:
		return false
	case BadReply:
		return badReplies < 2
	}
	return true
}
