package sentiment

import (
	"regexp"
	"strings"
)

// QualityMetrics assesses how analyzable a piece of input text is.
// All scores are 0..1.
type QualityMetrics struct {
	Readability  float64 `json:"readability"`
	Completeness float64 `json:"completeness"`
	Coherence    float64 `json:"coherence"`
	NoiseLevel   float64 `json:"noise_level"`
	WordCount    int     `json:"word_count"`
}

var (
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	punctuationRe  = regexp.MustCompile(`[.!?]`)
	capitalRe      = regexp.MustCompile(`[A-Z]`)
	specialCharRe  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	repeatedRunsRe = regexp.MustCompile(`(.)\1{3,}`)
)

// AssessTextQuality scores the input on readability, completeness,
// coherence and noise.
func AssessTextQuality(text string) QualityMetrics {
	words := strings.Fields(text)
	m := QualityMetrics{WordCount: len(words)}

	// Readability: average sentence length bands.
	var sentences int
	for _, s := range sentenceEndRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	avgSentenceLen := float64(m.WordCount) / float64(sentences)
	switch {
	case avgSentenceLen >= 10 && avgSentenceLen <= 25:
		m.Readability = 0.8
	case avgSentenceLen >= 5 && avgSentenceLen <= 30:
		m.Readability = 0.6
	default:
		m.Readability = 0.4
	}

	// Completeness: longer inputs carry more signal.
	if m.WordCount >= 10 {
		m.Completeness = min(0.9, 0.5+float64(m.WordCount)/100)
	} else {
		m.Completeness = max(0.2, float64(m.WordCount)/20)
	}

	// Coherence: punctuation and capitalization presence.
	hasPunct := punctuationRe.MatchString(text)
	hasCaps := capitalRe.MatchString(text)
	switch {
	case hasPunct && hasCaps:
		m.Coherence = 0.7
	case hasPunct || hasCaps:
		m.Coherence = 0.5
	default:
		m.Coherence = 0.3
	}

	// Noise: special-character density and repeated character runs.
	textLen := len(text)
	if textLen == 0 {
		textLen = 1
	}
	specialRatio := float64(len(specialCharRe.FindAllString(text, -1))) / float64(textLen)
	repeatedRuns := len(repeatedRunsRe.FindAllString(text, -1))
	m.NoiseLevel = min(1.0, specialRatio*2+float64(repeatedRuns)*0.1)

	return m
}

// Score collapses the metrics into one weighted quality score used to
// calibrate LLM confidence.
func (m QualityMetrics) Score() float64 {
	return m.Readability*0.3 + m.Completeness*0.3 + m.Coherence*0.2 + (1-m.NoiseLevel)*0.2
}
