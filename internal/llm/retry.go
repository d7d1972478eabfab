package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
)

// retrying re-sends a draft request after transient failures.
type retrying struct {
	inner   Provider
	cfg     RetryConfig
	timeout time.Duration // whole call including retries; 0 is unbounded
	log     logrus.FieldLogger
	jitter  func() float64 // in [0, 1)
}

// WithRetry wraps p with cfg's retry schedule. log may be nil.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration, log logrus.FieldLogger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retrying{inner: p, cfg: cfg, timeout: timeout, log: log, jitter: rand.Float64}
}

func (r *retrying) Model() string { return r.inner.Model() }

func (r *retrying) Draft(ctx context.Context, req Request) (*Draft, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	badReplies := 0
	for attempt := 1; ; attempt++ {
		d, err := r.inner.Draft(ctx, req)
		if err == nil {
			return d, nil
		}
		if kind, ok := KindOf(err); ok && kind == BadReply {
			badReplies++
		}
		if attempt >= r.cfg.MaxAttempts || !retryable(err, badReplies) {
			return nil, err
		}

		wait := r.wait(attempt, err)
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"topic":   req.Topic,
				"attempt": attempt,
				"wait":    wait,
			}).WithError(err).Warn("lesson draft failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// wait returns the pause after the given failed attempt. A rate limit's
// RetryAfter wins over the exponential schedule, which carries ±20% jitter.
func (r *retrying) wait(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == RateLimited && e.RetryAfter > 0 {
		return e.RetryAfter
	}

	d := float64(r.cfg.InitialWait)
	for i := 1; i < attempt; i++ {
		d *= r.cfg.Multiplier
	}
	if ceiling := float64(r.cfg.MaxWait); ceiling > 0 && d > ceiling {
		d = ceiling
	}
	return time.Duration(d * (0.8 + 0.4*r.jitter()))
}
