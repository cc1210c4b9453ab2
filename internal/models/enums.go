package models

import "time"

// PostStatus tracks a post through the analysis pipeline.
// Integer values are part of the persisted schema and must not be reordered.
type PostStatus int16

const (
	StatusPending    PostStatus = 0
	StatusProcessing PostStatus = 1
	StatusCompleted  PostStatus = 2
	StatusFailed     PostStatus = 3
	StatusSkipped    PostStatus = 4
)

// String returns the status name
func (s PostStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions are allowed from s
func (s PostStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// SentimentType is the overall classified polarity of a post.
// Values -2..2 are part of the persisted schema.
type SentimentType int16

const (
	SentimentVeryNegative SentimentType = -2
	SentimentNegative     SentimentType = -1
	SentimentNeutral      SentimentType = 0
	SentimentPositive     SentimentType = 1
	SentimentVeryPositive SentimentType = 2
)

// String returns the sentiment name
func (s SentimentType) String() string {
	switch s {
	case SentimentVeryNegative:
		return "very_negative"
	case SentimentNegative:
		return "negative"
	case SentimentNeutral:
		return "neutral"
	case SentimentPositive:
		return "positive"
	case SentimentVeryPositive:
		return "very_positive"
	default:
		return "unknown"
	}
}

// Valid reports whether s is a known sentiment value
func (s SentimentType) Valid() bool {
	return s >= SentimentVeryNegative && s <= SentimentVeryPositive
}

// TimeWindow buckets trend aggregations. The integer value is the
// window length in minutes and is part of the persisted schema.
type TimeWindow int32

const (
	WindowFiveMinutes     TimeWindow = 5
	WindowFifteenMinutes  TimeWindow = 15
	WindowOneHour         TimeWindow = 60
	WindowSixHours        TimeWindow = 360
	WindowTwentyFourHours TimeWindow = 1440
	WindowSevenDays       TimeWindow = 10080
)

// Duration returns the window length
func (w TimeWindow) Duration() time.Duration {
	return time.Duration(w) * time.Minute
}

// Valid reports whether w is a known window value
func (w TimeWindow) Valid() bool {
	switch w {
	case WindowFiveMinutes, WindowFifteenMinutes, WindowOneHour,
		WindowSixHours, WindowTwentyFourHours, WindowSevenDays:
		return true
	}
	return false
}

// ParseTimeWindow maps the short form used by the dashboard ("5m".."7d")
// to a TimeWindow
func ParseTimeWindow(s string) (TimeWindow, bool) {
	switch s {
	case "5m":
		return WindowFiveMinutes, true
	case "15m":
		return WindowFifteenMinutes, true
	case "1h":
		return WindowOneHour, true
	case "6h":
		return WindowSixHours, true
	case "24h":
		return WindowTwentyFourHours, true
	case "7d":
		return WindowSevenDays, true
	}
	return 0, false
}

// UserRole controls dashboard/API access level
type UserRole int16

const (
	RoleAdmin   UserRole = 0
	RoleAnalyst UserRole = 1
	RoleViewer  UserRole = 2
)

// String returns the role name
func (r UserRole) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleAnalyst:
		return "analyst"
	case RoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}
