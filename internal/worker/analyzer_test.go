package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sentimenthq/pulse/internal/models"
)

func TestAnalyzeResultToModel(t *testing.T) {
	postID := uuid.New()
	result := &AnalyzeResult{
		PositiveScore:    0.8,
		NegativeScore:    0.05,
		NeutralScore:     0.15,
		OverallSentiment: models.SentimentPositive,
		ConfidenceScore:  0.92,
		ModelVersion:     "v2.1.0",
		Keywords:         []string{"golang", "release"},
		Entities:         []string{"Go"},
		DetailedScores:   map[string]interface{}{"joy": 0.7},
	}

	analysis, err := result.ToModel(postID, 120*time.Millisecond)
	if err != nil {
		t.Fatalf("ToModel() error: %v", err)
	}

	if analysis.PostID != postID {
		t.Errorf("PostID = %v, want %v", analysis.PostID, postID)
	}
	if analysis.ID == uuid.Nil {
		t.Error("expected a generated analysis id")
	}
	if analysis.ProcessingTime != 120*time.Millisecond {
		t.Errorf("ProcessingTime = %v, want 120ms", analysis.ProcessingTime)
	}
	if analysis.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt should be stamped")
	}

	var keywords []string
	if err := json.Unmarshal(analysis.ExtractedKeywords, &keywords); err != nil {
		t.Fatalf("keywords should round-trip as JSON: %v", err)
	}
	if len(keywords) != 2 || keywords[0] != "golang" {
		t.Errorf("unexpected keywords: %v", keywords)
	}
}

func TestAnalyzeResultToModelEmptyBlobs(t *testing.T) {
	result := &AnalyzeResult{
		OverallSentiment: models.SentimentNeutral,
		ModelVersion:     "v2.1.0",
	}

	analysis, err := result.ToModel(uuid.New(), time.Millisecond)
	if err != nil {
		t.Fatalf("ToModel() error: %v", err)
	}

	// nil slices still marshal to valid JSON for the jsonb columns
	var entities []string
	if err := json.Unmarshal(analysis.ExtractedEntities, &entities); err != nil {
		t.Fatalf("entities blob should be valid JSON: %v", err)
	}
}
