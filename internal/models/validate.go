package models

import (
	"fmt"
	"unicode/utf8"

	"github.com/sentimenthq/pulse/internal/errs"
)

// Declared max lengths, enforced at the mapping boundary before persistence
const (
	MaxContentLen      = 4000
	MaxPlatformLen     = 50
	MaxUserIDLen       = 100
	MaxUserNameLen     = 255
	MaxSourceURLLen    = 2000
	MaxSourceIDLen     = 100
	MaxLanguageLen     = 10
	MaxKeywordLen      = 200
	MaxModelVersionLen = 50
	MaxErrorMessageLen = 2000
	MaxEmailLen        = 256
	MaxPasswordHashLen = 512
	MaxAPIKeyLen       = 128
)

func checkLen(details []errs.FieldDetail, field, value string, max int, required bool) []errs.FieldDetail {
	if required && value == "" {
		return append(details, errs.FieldDetail{Field: field, Message: "is required"})
	}
	if utf8.RuneCountInString(value) > max {
		return append(details, errs.FieldDetail{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d", max),
		})
	}
	return details
}

func checkRange01(details []errs.FieldDetail, field string, value float64) []errs.FieldDetail {
	if value < 0 || value > 1 {
		return append(details, errs.FieldDetail{Field: field, Message: "must be in [0,1]"})
	}
	return details
}

// Validate checks field constraints on a post before persistence
func (p *SocialMediaPost) Validate() error {
	var details []errs.FieldDetail
	details = checkLen(details, "content", p.Content, MaxContentLen, true)
	details = checkLen(details, "platform", p.Platform, MaxPlatformLen, true)
	details = checkLen(details, "userId", p.UserID, MaxUserIDLen, true)
	details = checkLen(details, "userName", p.UserName, MaxUserNameLen, false)
	details = checkLen(details, "language", p.Language, MaxLanguageLen, false)
	if p.SourceURL.Valid {
		details = checkLen(details, "sourceUrl", p.SourceURL.String, MaxSourceURLLen, false)
	}
	if p.SourceID.Valid {
		details = checkLen(details, "sourceId", p.SourceID.String, MaxSourceIDLen, false)
	}
	if len(details) > 0 {
		return errs.Validation("post failed validation", details...)
	}
	return nil
}

// Validate checks field constraints on an analysis result before persistence
func (s *SentimentAnalysis) Validate() error {
	var details []errs.FieldDetail
	details = checkLen(details, "modelVersion", s.ModelVersion, MaxModelVersionLen, true)
	details = checkRange01(details, "positiveScore", s.PositiveScore)
	details = checkRange01(details, "negativeScore", s.NegativeScore)
	details = checkRange01(details, "neutralScore", s.NeutralScore)
	details = checkRange01(details, "confidenceScore", s.ConfidenceScore)
	details = checkRange01(details, "sarcasmScore", s.SarcasmScore)
	if !s.OverallSentiment.Valid() {
		details = append(details, errs.FieldDetail{Field: "overallSentiment", Message: "unknown sentiment value"})
	}
	if len(details) > 0 {
		return errs.Validation("sentiment analysis failed validation", details...)
	}
	return nil
}

// Validate checks field constraints on a trend row before persistence
func (t *TrendAnalysis) Validate() error {
	var details []errs.FieldDetail
	details = checkLen(details, "keyword", t.Keyword, MaxKeywordLen, true)
	details = checkLen(details, "platform", t.Platform, MaxPlatformLen, true)
	details = checkRange01(details, "avgSentimentScore", t.AvgSentimentScore)
	if !t.WindowType.Valid() {
		details = append(details, errs.FieldDetail{Field: "windowType", Message: "unknown time window"})
	}
	if t.TimeWindowEnd.Before(t.TimeWindowStart) {
		details = append(details, errs.FieldDetail{Field: "timeWindowEnd", Message: "must not precede timeWindowStart"})
	}
	if len(details) > 0 {
		return errs.Validation("trend analysis failed validation", details...)
	}
	return nil
}

// Validate checks field constraints on a keyword link before persistence
func (k *TrendKeyword) Validate() error {
	var details []errs.FieldDetail
	details = checkLen(details, "keyword", k.Keyword, MaxKeywordLen, true)
	details = checkRange01(details, "relevanceScore", k.RelevanceScore)
	if len(details) > 0 {
		return errs.Validation("trend keyword failed validation", details...)
	}
	return nil
}

// Validate checks field constraints on a user before persistence
func (u *User) Validate() error {
	var details []errs.FieldDetail
	details = checkLen(details, "email", u.Email, MaxEmailLen, true)
	details = checkLen(details, "firstName", u.FirstName, 100, true)
	details = checkLen(details, "lastName", u.LastName, 100, true)
	details = checkLen(details, "passwordHash", u.PasswordHash, MaxPasswordHashLen, true)
	if u.APIKey.Valid {
		details = checkLen(details, "apiKey", u.APIKey.String, MaxAPIKeyLen, false)
	}
	if len(details) > 0 {
		return errs.Validation("user failed validation", details...)
	}
	return nil
}

// TruncateError bounds a queue error message to the persisted column size
func TruncateError(msg string) string {
	if utf8.RuneCountInString(msg) <= MaxErrorMessageLen {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxErrorMessageLen])
}
