package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterLocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Policy{MaxFailures: 3, Window: time.Minute})

	for i := 1; i <= 2; i++ {
		st, err := l.Fail(ctx, "txpin", "uid-1")
		if err != nil {
			t.Fatalf("Fail returned error: %v", err)
		}
		if st.Locked || st.Failures != i {
			t.Fatalf("attempt %d: unexpected status %+v", i, st)
		}
	}

	st, _ := l.Fail(ctx, "txpin", "uid-1")
	if !st.Locked {
		t.Fatalf("expected lockout after third failure, got %+v", st)
	}
	if st.RetryAfter <= 0 || st.RetryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %s", st.RetryAfter)
	}

	st, _ = l.Check(ctx, "txpin", "uid-1")
	if !st.Locked {
		t.Fatalf("expected Check to report lockout")
	}

	other, _ := l.Check(ctx, "txpin", "uid-2")
	if other.Locked || other.Failures != 0 {
		t.Fatalf("lockout leaked to another subject: %+v", other)
	}
	scoped, _ := l.Check(ctx, "otp", "uid-1")
	if scoped.Locked {
		t.Fatalf("lockout leaked to another scope")
	}
}

func TestMemoryLimiterWindowExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(Policy{MaxFailures: 1, Window: time.Minute})
	l.clockNow = func() time.Time { return now }

	if st, _ := l.Fail(ctx, "otp", "uid-1"); !st.Locked {
		t.Fatalf("expected lockout")
	}

	now = now.Add(61 * time.Second)
	st, _ := l.Check(ctx, "otp", "uid-1")
	if st.Locked || st.Failures != 0 {
		t.Fatalf("expected window to expire, got %+v", st)
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Policy{MaxFailures: 2, Window: time.Minute})

	l.Fail(ctx, "txpin", "uid-1")
	if err := l.Reset(ctx, "txpin", "uid-1"); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	st, _ := l.Fail(ctx, "txpin", "uid-1")
	if st.Failures != 1 || st.Locked {
		t.Fatalf("expected count to restart after reset, got %+v", st)
	}
}
