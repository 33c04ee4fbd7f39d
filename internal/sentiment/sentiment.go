// Package sentiment analyzes the emotional tone of input text before
// fact-checking. The LLM verdict is calibrated against heuristic text
// quality, with a keyword fallback when the API or JSON parsing fails.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"factagent/internal/llm"
)

// Result is the simplified four-field sentiment analysis.
type Result struct {
	Sentiment  string  `json:"sentiment"` // Positive, Negative, Neutral, Mixed
	Confidence float64 `json:"confidence"`
	Emotion    string  `json:"emotion"`
	Reason     string  `json:"reason"`
}

// Analyzer runs sentiment analysis through an LLM client.
type Analyzer struct {
	client llm.Client
	logger *zap.Logger
}

// NewAnalyzer creates a sentiment analyzer.
func NewAnalyzer(client llm.Client, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, logger: logger.Named("sentiment")}
}

const analysisPrompt = `Analyze the sentiment of this text and provide a simple, clear response:

TEXT: %s

Consider text quality, context, emotion strength, domain relevance, confidence, and explainability when analyzing, but return ONLY these 4 fields in JSON format:

{
    "sentiment": "Positive|Negative|Neutral|Mixed",
    "confidence": <float between 0.0 and 1.0>,
    "emotion": "<primary_emotion_name>",
    "reason": "<brief explanation of why this sentiment was determined>"
}

Be concise and clear. The reason should be brief (1-2 sentences max).`

// Analyze performs sentiment analysis on text. It never returns an
// error; failures degrade to the keyword fallback so the fact-check
// pipeline is not blocked by a sentiment outage.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	quality := AssessTextQuality(text).Score()

	raw, err := a.client.CompleteJSON(ctx, "", fmt.Sprintf(analysisPrompt, text))
	if err != nil {
		a.logger.Warn("sentiment analysis call failed, using fallback", zap.Error(err))
		return fallbackAnalysis(text, quality)
	}

	var parsed Result
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &parsed); err != nil {
		a.logger.Warn("could not parse sentiment JSON, using fallback", zap.Error(err))
		return fallbackAnalysis(text, quality)
	}

	result := Result{
		Sentiment:  NormalizeSentiment(parsed.Sentiment),
		Confidence: clamp01(parsed.Confidence) * quality,
		Emotion:    normalizeEmotion(parsed.Emotion),
		Reason:     parsed.Reason,
	}
	if strings.TrimSpace(result.Reason) == "" {
		result.Reason = "Sentiment analysis completed"
	}
	result.Confidence = round2(result.Confidence)

	a.logger.Debug("sentiment analysis complete",
		zap.String("sentiment", result.Sentiment),
		zap.Float64("confidence", result.Confidence),
		zap.String("emotion", result.Emotion))
	return result
}

// NormalizeSentiment maps free-form sentiment labels onto the four
// canonical values.
func NormalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return "Positive"
	case "negative":
		return "Negative"
	case "mixed":
		return "Mixed"
	default:
		return "Neutral"
	}
}

func normalizeEmotion(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Neutral"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
