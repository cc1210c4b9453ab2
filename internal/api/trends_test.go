package api

import (
	"testing"
	"time"

	"github.com/sentimenthq/pulse/internal/errs"
)

func TestParseDateRangeDefaults(t *testing.T) {
	start, end, err := parseDateRange("", "")
	if err != nil {
		t.Fatalf("empty range should default: %v", err)
	}
	if span := end.Sub(start); span < 7*24*time.Hour-time.Minute || span > 7*24*time.Hour+time.Minute {
		t.Errorf("default span should be seven days, got %v", span)
	}
}

func TestParseDateRangeFormats(t *testing.T) {
	cases := []struct {
		name     string
		startRaw string
		endRaw   string
		ok       bool
	}{
		{"date only", "2026-08-01", "2026-08-15", true},
		{"rfc3339", "2026-08-01T00:00:00Z", "2026-08-15T12:30:00Z", true},
		{"mixed", "2026-08-01", "2026-08-15T12:30:00Z", true},
		{"garbage start", "yesterday", "2026-08-15", false},
		{"garbage end", "2026-08-01", "15/08/2026", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := parseDateRange(tc.startRaw, tc.endRaw)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected valid range, got %v", err)
				}
				if !end.After(start) {
					t.Errorf("expected end after start, got %v .. %v", start, end)
				}
				return
			}
			if !errs.IsKind(err, errs.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseDateRangeInverted(t *testing.T) {
	_, _, err := parseDateRange("2026-08-15", "2026-08-01")
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}
