package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/store"
)

// recorder stores each draft request as a store.Generation. A failed
// write is logged and never fails the request.
type recorder struct {
	inner  Provider
	vendor string
	repo   store.GenerationRepo
	log    logrus.FieldLogger
}

// WithRecorder wraps p so every request is recorded. repo and log may be nil.
func WithRecorder(p Provider, vendor string, repo store.GenerationRepo, log logrus.FieldLogger) Provider {
	return &recorder{inner: p, vendor: vendor, repo: repo, log: log}
}

func (r *recorder) Model() string { return r.inner.Model() }

func (r *recorder) Draft(ctx context.Context, req Request) (*Draft, error) {
	start := time.Now()
	d, err := r.inner.Draft(ctx, req)

	g := store.Generation{
		Topic:     req.Topic,
		Requested: req.Count,
		Provider:  r.vendor,
		Model:     r.inner.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
		Prompt:    transcript(req),
	}
	if d != nil {
		g.Lesson = d.Name
		g.Produced = len(d.Tasks)
		g.InputTokens = d.Usage.InputTokens
		g.OutputTokens = d.Usage.OutputTokens
		g.Reply = string(d.Reply)
		if d.Model != "" {
			g.Model = d.Model
		}
	}
	if err != nil {
		g.Err = err.Error()
		var e *Error
		if errors.As(err, &e) {
			g.Reply = string(e.Reply)
		}
	}

	if r.log != nil {
		entry := r.log.WithFields(logrus.Fields{
			"provider":   g.Provider,
			"model":      g.Model,
			"topic":      g.Topic,
			"requested":  g.Requested,
			"produced":   g.Produced,
			"latency_ms": g.LatencyMs,
			"tokens_in":  g.InputTokens,
			"tokens_out": g.OutputTokens,
		})
		if err != nil {
			entry.WithError(err).Warn("lesson draft failed")
		} else {
			entry.Info("lesson drafted")
		}
	}

	if r.repo != nil {
		if werr := r.repo.Append(ctx, g); werr != nil && r.log != nil {
			r.log.WithError(werr).Error("record generation")
		}
	}
	return d, err
}
