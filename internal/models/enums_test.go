package models

import (
	"testing"
	"time"
)

func TestPostStatusValues(t *testing.T) {
	// Persisted values; a reorder here is a schema break
	cases := []struct {
		status PostStatus
		value  int16
		name   string
	}{
		{StatusPending, 0, "pending"},
		{StatusProcessing, 1, "processing"},
		{StatusCompleted, 2, "completed"},
		{StatusFailed, 3, "failed"},
		{StatusSkipped, 4, "skipped"},
	}
	for _, tc := range cases {
		if int16(tc.status) != tc.value {
			t.Errorf("%s: expected value %d, got %d", tc.name, tc.value, int16(tc.status))
		}
		if tc.status.String() != tc.name {
			t.Errorf("expected name %q, got %q", tc.name, tc.status.String())
		}
	}
}

func TestPostStatusIsTerminal(t *testing.T) {
	cases := []struct {
		status   PostStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusSkipped, true},
	}
	for _, tc := range cases {
		if tc.status.IsTerminal() != tc.terminal {
			t.Errorf("%s: expected terminal=%v", tc.status, tc.terminal)
		}
	}
}

func TestSentimentTypeValues(t *testing.T) {
	cases := []struct {
		sentiment SentimentType
		value     int16
		name      string
	}{
		{SentimentVeryNegative, -2, "very_negative"},
		{SentimentNegative, -1, "negative"},
		{SentimentNeutral, 0, "neutral"},
		{SentimentPositive, 1, "positive"},
		{SentimentVeryPositive, 2, "very_positive"},
	}
	for _, tc := range cases {
		if int16(tc.sentiment) != tc.value {
			t.Errorf("%s: expected value %d, got %d", tc.name, tc.value, int16(tc.sentiment))
		}
		if tc.sentiment.String() != tc.name {
			t.Errorf("expected name %q, got %q", tc.name, tc.sentiment.String())
		}
		if !tc.sentiment.Valid() {
			t.Errorf("%s: expected valid", tc.name)
		}
	}

	if SentimentType(3).Valid() || SentimentType(-3).Valid() {
		t.Error("out-of-range sentiment should not be valid")
	}
}

func TestTimeWindowDuration(t *testing.T) {
	cases := []struct {
		window   TimeWindow
		expected time.Duration
	}{
		{WindowFiveMinutes, 5 * time.Minute},
		{WindowFifteenMinutes, 15 * time.Minute},
		{WindowOneHour, time.Hour},
		{WindowSixHours, 6 * time.Hour},
		{WindowTwentyFourHours, 24 * time.Hour},
		{WindowSevenDays, 7 * 24 * time.Hour},
	}
	for _, tc := range cases {
		if tc.window.Duration() != tc.expected {
			t.Errorf("window %d: expected %v, got %v", tc.window, tc.expected, tc.window.Duration())
		}
		if !tc.window.Valid() {
			t.Errorf("window %d: expected valid", tc.window)
		}
	}

	if TimeWindow(30).Valid() {
		t.Error("unknown window value should not be valid")
	}
}

func TestParseTimeWindow(t *testing.T) {
	cases := []struct {
		input    string
		expected TimeWindow
		ok       bool
	}{
		{"5m", WindowFiveMinutes, true},
		{"15m", WindowFifteenMinutes, true},
		{"1h", WindowOneHour, true},
		{"6h", WindowSixHours, true},
		{"24h", WindowTwentyFourHours, true},
		{"7d", WindowSevenDays, true},
		{"30m", 0, false},
		{"", 0, false},
		{"1d", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTimeWindow(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ParseTimeWindow(%q) = (%d, %v), expected (%d, %v)",
				tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestUserRoleNames(t *testing.T) {
	cases := []struct {
		role UserRole
		name string
	}{
		{RoleAdmin, "admin"},
		{RoleAnalyst, "analyst"},
		{RoleViewer, "viewer"},
		{UserRole(9), "unknown"},
	}
	for _, tc := range cases {
		if tc.role.String() != tc.name {
			t.Errorf("role %d: expected %q, got %q", tc.role, tc.name, tc.role.String())
		}
	}
}
