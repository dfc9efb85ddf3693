// Package ratelimit counts failed secret attempts (transaction PIN, one-time
// code) per subject inside a fixed window and locks the subject out once the
// limit is reached.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Status struct {
	Failures   int
	Locked     bool
	RetryAfter time.Duration
}

type Limiter interface {
	// Check reports whether subject is currently locked out of scope.
	Check(ctx context.Context, scope, subject string) (Status, error)
	// Fail records one failed attempt and returns the resulting status.
	Fail(ctx context.Context, scope, subject string) (Status, error)
	// Reset clears the failure count after a successful attempt.
	Reset(ctx context.Context, scope, subject string) error
}

type Policy struct {
	MaxFailures int
	Window      time.Duration
}

func (p Policy) status(failures int, ttl time.Duration) Status {
	s := Status{Failures: failures}
	if p.MaxFailures > 0 && failures >= p.MaxFailures {
		s.Locked = true
		s.RetryAfter = ttl
		if s.RetryAfter <= 0 {
			s.RetryAfter = p.Window
		}
	}
	return s
}

func key(prefix, scope, subject string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, strings.TrimSpace(scope), strings.TrimSpace(subject))
}
