package pipeline

import "strings"

// ConfidenceForVerdict maps a verdict string onto a confidence level.
// Unknown verdicts land at 0.5.
func ConfidenceForVerdict(verdict string) float64 {
	if verdict == "" {
		return 0.5
	}
	v := strings.ToLower(verdict)
	switch {
	case strings.Contains(v, "error"):
		return 0.0
	case strings.Contains(v, "mostly false"):
		return 0.3
	case strings.Contains(v, "false"):
		return 0.1
	case strings.Contains(v, "unverified"), strings.Contains(v, "mixed"):
		return 0.5
	case strings.Contains(v, "mostly true"):
		return 0.75
	case strings.Contains(v, "true"):
		return 0.9
	default:
		return 0.5
	}
}

func averageConfidence(reports []ClaimReport) float64 {
	if len(reports) == 0 {
		return 0.5
	}
	var sum float64
	for _, r := range reports {
		sum += r.Confidence
	}
	return sum / float64(len(reports))
}
