package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/pkg/config"
)

// AnalyzeResult is what the external scoring service returns for one post.
// The NLP model itself lives outside this repository.
type AnalyzeResult struct {
	PositiveScore    float64                `json:"positiveScore"`
	NegativeScore    float64                `json:"negativeScore"`
	NeutralScore     float64                `json:"neutralScore"`
	OverallSentiment models.SentimentType   `json:"overallSentiment"`
	ConfidenceScore  float64                `json:"confidenceScore"`
	IsSarcastic      bool                   `json:"isSarcastic"`
	SarcasmScore     float64                `json:"sarcasmScore"`
	ModelVersion     string                 `json:"modelVersion"`
	Keywords         []string               `json:"extractedKeywords"`
	Entities         []string               `json:"extractedEntities"`
	DetailedScores   map[string]interface{} `json:"detailedScores"`
}

// ToModel converts the result into a persistable analysis row
func (r *AnalyzeResult) ToModel(postID uuid.UUID, elapsed time.Duration) (*models.SentimentAnalysis, error) {
	keywords, err := json.Marshal(r.Keywords)
	if err != nil {
		return nil, err
	}
	entities, err := json.Marshal(r.Entities)
	if err != nil {
		return nil, err
	}
	detailed, err := json.Marshal(r.DetailedScores)
	if err != nil {
		return nil, err
	}

	return &models.SentimentAnalysis{
		ID:                uuid.New(),
		PostID:            postID,
		PositiveScore:     r.PositiveScore,
		NegativeScore:     r.NegativeScore,
		NeutralScore:      r.NeutralScore,
		OverallSentiment:  r.OverallSentiment,
		ConfidenceScore:   r.ConfidenceScore,
		IsSarcastic:       r.IsSarcastic,
		SarcasmScore:      r.SarcasmScore,
		ModelVersion:      r.ModelVersion,
		AnalyzedAt:        time.Now().UTC(),
		ProcessingTime:    elapsed,
		ExtractedKeywords: datatypes.JSON(keywords),
		ExtractedEntities: datatypes.JSON(entities),
		DetailedScores:    datatypes.JSON(detailed),
	}, nil
}

// Analyzer scores a post's content
type Analyzer interface {
	Analyze(ctx context.Context, content, language string) (*AnalyzeResult, error)
}

// HTTPAnalyzer calls the external scoring service over REST
type HTTPAnalyzer struct {
	client *resty.Client
}

// NewHTTPAnalyzer creates an analyzer client for the configured endpoint
func NewHTTPAnalyzer(cfg *config.WorkerConfig) *HTTPAnalyzer {
	client := resty.New().
		SetBaseURL(cfg.AnalyzerURL).
		SetTimeout(cfg.AnalyzerTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &HTTPAnalyzer{client: client}
}

// Analyze submits content for scoring
func (a *HTTPAnalyzer) Analyze(ctx context.Context, content, language string) (*AnalyzeResult, error) {
	var result AnalyzeResult
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"content":  content,
			"language": language,
		}).
		SetResult(&result).
		Post("/v1/analyze")
	if err != nil {
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode())
	}
	return &result, nil
}
