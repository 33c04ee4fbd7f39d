package sentiment

import (
	"fmt"
	"strings"
)

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "positive",
	"happy", "joy", "love", "best", "fantastic",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "negative", "sad",
	"angry", "hate", "fear", "worst", "disgusting",
}

// fallbackAnalysis is the keyword-based path used when the LLM is
// unavailable or returns unparseable output. Confidence is deliberately
// low: 0.3 scaled by text quality.
func fallbackAnalysis(text string, quality float64) Result {
	lower := strings.ToLower(text)

	var positives, negatives int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positives++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negatives++
		}
	}

	var result Result
	switch {
	case positives > negatives:
		result = Result{
			Sentiment: "Positive",
			Emotion:   "Joy",
			Reason:    fmt.Sprintf("Positive keywords detected (%d positive words)", positives),
		}
	case negatives > positives:
		result = Result{
			Sentiment: "Negative",
			Emotion:   "Sadness",
			Reason:    fmt.Sprintf("Negative keywords detected (%d negative words)", negatives),
		}
	default:
		result = Result{
			Sentiment: "Neutral",
			Emotion:   "Neutral",
			Reason:    "No strong emotional indicators found",
		}
	}

	result.Confidence = round2(0.3 * quality)
	return result
}
