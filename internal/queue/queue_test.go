package queue

import (
	"testing"

	"github.com/sentimenthq/pulse/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.PostStatus
		to      models.PostStatus
		allowed bool
	}{
		{"pending to processing", models.StatusPending, models.StatusProcessing, true},
		{"pending to skipped", models.StatusPending, models.StatusSkipped, true},
		{"pending to completed skips processing", models.StatusPending, models.StatusCompleted, false},
		{"pending to failed skips processing", models.StatusPending, models.StatusFailed, false},
		{"processing to completed", models.StatusProcessing, models.StatusCompleted, true},
		{"processing to failed", models.StatusProcessing, models.StatusFailed, true},
		{"processing to skipped", models.StatusProcessing, models.StatusSkipped, false},
		{"processing to pending", models.StatusProcessing, models.StatusPending, false},
		{"failed back to pending", models.StatusFailed, models.StatusPending, true},
		{"failed to processing", models.StatusFailed, models.StatusProcessing, false},
		{"completed is terminal", models.StatusCompleted, models.StatusPending, false},
		{"skipped is terminal", models.StatusSkipped, models.StatusProcessing, false},
		{"self transition rejected", models.StatusPending, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestNextStatusAfterFailure(t *testing.T) {
	// With max retries 2: first two failures reset to Pending, third is
	// terminal Failed.
	tests := []struct {
		name       string
		retries    int
		maxRetries int
		want       models.PostStatus
	}{
		{"first failure retries", 1, 2, models.StatusPending},
		{"second failure retries", 2, 2, models.StatusPending},
		{"third failure is terminal", 3, 2, models.StatusFailed},
		{"default policy first failure", 1, DefaultMaxRetries, models.StatusPending},
		{"default policy exhausted", DefaultMaxRetries + 1, DefaultMaxRetries, models.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStatusAfterFailure(tt.retries, tt.maxRetries); got != tt.want {
				t.Errorf("NextStatusAfterFailure(%d, %d) = %v, want %v",
					tt.retries, tt.maxRetries, got, tt.want)
			}
		})
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		want     int
	}{
		{"negative means unset", -1, models.DefaultPriority},
		{"zero is most urgent, not unset", 0, 0},
		{"default passes through", models.DefaultPriority, models.DefaultPriority},
		{"least urgent passes through", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePriority(tt.priority); got != tt.want {
				t.Errorf("NormalizePriority(%d) = %d, want %d", tt.priority, got, tt.want)
			}
		})
	}
}

func TestNewDefaultsMaxRetries(t *testing.T) {
	q := New(nil, 0)
	if q.maxRetries != DefaultMaxRetries {
		t.Errorf("expected default max retries %d, got %d", DefaultMaxRetries, q.maxRetries)
	}
	q = New(nil, 7)
	if q.maxRetries != 7 {
		t.Errorf("expected max retries 7, got %d", q.maxRetries)
	}
}
