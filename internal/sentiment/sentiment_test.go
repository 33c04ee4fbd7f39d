package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestAnalyze_ScalesConfidenceByQuality(t *testing.T) {
	client := &stubClient{
		response: `{"sentiment": "Positive", "confidence": 1.0, "emotion": "joy", "reason": "Upbeat phrasing throughout."}`,
	}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	text := "The local hospital announced a wonderful new program today. Families in the area are happy about the extra support it brings."
	result := a.Analyze(context.Background(), text)

	assert.Equal(t, "Positive", result.Sentiment)
	assert.Equal(t, "Joy", result.Emotion)
	assert.Equal(t, "Upbeat phrasing throughout.", result.Reason)

	quality := AssessTextQuality(text).Score()
	require.Less(t, quality, 1.0)
	assert.InDelta(t, quality, result.Confidence, 0.01)
	assert.Equal(t, 1, client.calls)
}

func TestAnalyze_ToleratesFencedJSON(t *testing.T) {
	client := &stubClient{
		response: "```json\n{\"sentiment\": \"Negative\", \"confidence\": 0.9, \"emotion\": \"anger\", \"reason\": \"Hostile tone.\"}\n```",
	}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	result := a.Analyze(context.Background(), "This is a terrible, horrible decision that everyone should hate.")

	assert.Equal(t, "Negative", result.Sentiment)
	assert.Equal(t, "Anger", result.Emotion)
}

func TestAnalyze_APIErrorFallsBackToKeywords(t *testing.T) {
	client := &stubClient{err: errors.New("upstream unavailable")}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	result := a.Analyze(context.Background(), "What a wonderful, happy day. The best news I have heard.")

	assert.Equal(t, "Positive", result.Sentiment)
	assert.Equal(t, "Joy", result.Emotion)
	// Fallback confidence is capped at 0.3 before quality scaling.
	assert.LessOrEqual(t, result.Confidence, 0.3)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestAnalyze_UnparseableResponseFallsBack(t *testing.T) {
	client := &stubClient{response: "I cannot produce JSON right now."}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	result := a.Analyze(context.Background(), "The weather report said rain is expected tomorrow afternoon.")

	assert.Equal(t, "Neutral", result.Sentiment)
	assert.Equal(t, "Neutral", result.Emotion)
	assert.LessOrEqual(t, result.Confidence, 0.3)
}

func TestAnalyze_ClampsOutOfRangeConfidence(t *testing.T) {
	client := &stubClient{
		response: `{"sentiment": "Neutral", "confidence": 7.5, "emotion": "", "reason": ""}`,
	}
	a := NewAnalyzer(client, zaptest.NewLogger(t))

	result := a.Analyze(context.Background(), "Officials confirmed the schedule change in a statement released on Monday morning.")

	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.Equal(t, "Neutral", result.Emotion)
	assert.Equal(t, "Sentiment analysis completed", result.Reason)
}

func TestNormalizeSentiment(t *testing.T) {
	cases := map[string]string{
		"positive":  "Positive",
		" POSITIVE": "Positive",
		"Negative":  "Negative",
		"mixed":     "Mixed",
		"neutral":   "Neutral",
		"unknown":   "Neutral",
		"":          "Neutral",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSentiment(in), "input %q", in)
	}
}

func TestFallbackAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantSentiment string
		wantEmotion   string
	}{
		{"positive keywords", "a great and wonderful outcome, the best", "Positive", "Joy"},
		{"negative keywords", "a terrible, awful and horrible result", "Negative", "Sadness"},
		{"no keywords", "the committee met at noon to review the agenda", "Neutral", "Neutral"},
		{"balanced keywords", "good news and bad news arrived together", "Neutral", "Neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackAnalysis(tt.text, 1.0)
			assert.Equal(t, tt.wantSentiment, got.Sentiment)
			assert.Equal(t, tt.wantEmotion, got.Emotion)
			assert.InDelta(t, 0.3, got.Confidence, 0.001)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestColorAndIcon(t *testing.T) {
	assert.Equal(t, "#2ecc71", Color("Positive"))
	assert.Equal(t, "#e74c3c", Color("Negative"))
	assert.Equal(t, "#f39c12", Color("Mixed"))
	assert.Equal(t, "#95a5a6", Color("Neutral"))
	assert.NotEmpty(t, Icon("Positive"))
	assert.NotEmpty(t, Icon("somethingelse"))
}
