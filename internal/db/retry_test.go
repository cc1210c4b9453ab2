package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sentimenthq/pulse/internal/errs"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"pool exhausted", errors.New("pq: sorry, too many clients already"), true},
		{"server starting", errors.New("pq: the database system is starting up"), true},
		{"unique violation", errors.New("duplicate key value violates unique constraint"), false},
		{"not found", errors.New("record not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after transient failures, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryNonTransientReturnsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("duplicate key value violates unique constraint")
	err := WithRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("expected the domain error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-transient failure must not be retried, got %d attempts", calls)
	}
}

func TestWithRetryExhaustion(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("connection refused")
	})
	if !errs.IsKind(err, errs.KindTransientStorage) {
		t.Fatalf("exhausted retries should surface as transient storage, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, 3, time.Minute, func() error {
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled instead of sleeping, got %v", err)
	}
}

func TestNewRepositoryRetryPolicy(t *testing.T) {
	// An unconfigured handle falls back to the package defaults
	repo := NewRepository(&DB{})
	if repo.retryAttempts != defaultRetryAttempts {
		t.Errorf("expected %d attempts, got %d", defaultRetryAttempts, repo.retryAttempts)
	}
	if repo.retryDelay != defaultRetryDelay {
		t.Errorf("expected %v delay, got %v", defaultRetryDelay, repo.retryDelay)
	}

	// Configured values carry through from the handle
	repo = NewRepository(&DB{retryAttempts: 5, retryDelay: time.Second})
	if repo.retryAttempts != 5 || repo.retryDelay != time.Second {
		t.Errorf("configured policy not carried: %d/%v", repo.retryAttempts, repo.retryDelay)
	}
}
