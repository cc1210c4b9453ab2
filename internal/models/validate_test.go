package models

import (
	"strings"
	"testing"

	"github.com/sentimenthq/pulse/internal/errs"
)

func validPost() *SocialMediaPost {
	return &SocialMediaPost{
		Content:  "the new release is great",
		Platform: "reddit",
		UserID:   "user-42",
	}
}

func TestPostValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SocialMediaPost)
		field  string
	}{
		{"valid", func(p *SocialMediaPost) {}, ""},
		{"empty content", func(p *SocialMediaPost) { p.Content = "" }, "content"},
		{"content too long", func(p *SocialMediaPost) { p.Content = strings.Repeat("x", MaxContentLen+1) }, "content"},
		{"empty platform", func(p *SocialMediaPost) { p.Platform = "" }, "platform"},
		{"platform too long", func(p *SocialMediaPost) { p.Platform = strings.Repeat("x", MaxPlatformLen+1) }, "platform"},
		{"empty user id", func(p *SocialMediaPost) { p.UserID = "" }, "userId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := validPost()
			tc.mutate(post)

			err := post.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			domainErr, ok := errs.As(err)
			if !ok || domainErr.Kind != errs.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, d := range domainErr.Details {
				if d.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected detail for field %q, got %v", tc.field, domainErr.Details)
			}
		})
	}
}

func TestSentimentValidateScoreRange(t *testing.T) {
	analysis := &SentimentAnalysis{
		ModelVersion:     "v1.2.0",
		OverallSentiment: SentimentPositive,
		PositiveScore:    1.5,
	}
	err := analysis.Validate()
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	analysis.PositiveScore = 0.85
	if err := analysis.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestSentimentValidateUnknownPolarity(t *testing.T) {
	analysis := &SentimentAnalysis{
		ModelVersion:     "v1.2.0",
		OverallSentiment: SentimentType(5),
	}
	if err := analysis.Validate(); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrendValidateWindowBounds(t *testing.T) {
	trend := &TrendAnalysis{
		Keyword:    "golang",
		Platform:   "reddit",
		WindowType: WindowOneHour,
	}
	trend.TimeWindowStart = trend.TimeWindowEnd.Add(1) // end precedes start

	err := trend.Validate()
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTruncateError(t *testing.T) {
	short := "analysis timed out"
	if got := TruncateError(short); got != short {
		t.Errorf("short message should pass through, got %q", got)
	}

	long := strings.Repeat("e", MaxErrorMessageLen+500)
	got := TruncateError(long)
	if len([]rune(got)) != MaxErrorMessageLen {
		t.Errorf("expected %d runes, got %d", MaxErrorMessageLen, len([]rune(got)))
	}
}
