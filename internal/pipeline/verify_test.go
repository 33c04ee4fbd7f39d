package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestVerdictFromCounts(t *testing.T) {
	tests := []struct {
		name                            string
		supports, refutes, inconclusive int
		want                            string
	}{
		{"all support", 3, 0, 0, VerdictTrue},
		{"all refute", 0, 3, 0, VerdictFalse},
		{"mostly support", 3, 1, 0, VerdictMostlyTrue},
		{"mostly refute", 1, 3, 0, VerdictMostlyFalse},
		{"tied", 2, 2, 1, VerdictUnverified},
		{"only inconclusive", 0, 0, 4, VerdictUnverified},
		{"no evidence", 0, 0, 0, VerdictUnverified},
		{"single support with noise", 1, 0, 5, VerdictTrue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verdictFromCounts(tt.supports, tt.refutes, tt.inconclusive))
		})
	}
}

func TestConfidenceForVerdict(t *testing.T) {
	tests := []struct {
		verdict string
		want    float64
	}{
		{"", 0.5},
		{"ERROR", 0.0},
		{"False", 0.1},
		{"Mostly False", 0.3},
		{"Unverified", 0.5},
		{"Mixed", 0.5},
		{"Mostly True", 0.75},
		{"True", 0.9},
		{"something else", 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ConfidenceForVerdict(tt.verdict), 0.001, "verdict %q", tt.verdict)
	}
}

func TestAggregateVerdict(t *testing.T) {
	t.Run("empty is unverified", func(t *testing.T) {
		verdict, confidence := aggregateVerdict(nil)
		assert.Equal(t, VerdictUnverified, verdict)
		assert.InDelta(t, 0.5, confidence, 0.001)
	})

	t.Run("all errored is error", func(t *testing.T) {
		verdict, confidence := aggregateVerdict([]ClaimReport{
			{Verdict: VerdictError},
			{Verdict: VerdictError},
		})
		assert.Equal(t, VerdictError, verdict)
		assert.Zero(t, confidence)
	})

	t.Run("uniform true", func(t *testing.T) {
		verdict, confidence := aggregateVerdict([]ClaimReport{
			{Verdict: VerdictTrue, Confidence: 0.9},
			{Verdict: VerdictTrue, Confidence: 0.9},
		})
		assert.Equal(t, VerdictTrue, verdict)
		assert.InDelta(t, 0.9, confidence, 0.001)
	})

	t.Run("mixed true and false lands in the middle", func(t *testing.T) {
		verdict, _ := aggregateVerdict([]ClaimReport{
			{Verdict: VerdictTrue, Confidence: 0.9},
			{Verdict: VerdictFalse, Confidence: 0.1},
		})
		assert.Equal(t, VerdictUnverified, verdict)
	})

	t.Run("errored claim drags confidence but not the band", func(t *testing.T) {
		verdict, confidence := aggregateVerdict([]ClaimReport{
			{Verdict: VerdictTrue, Confidence: 0.9},
			{Verdict: VerdictError, Confidence: 0},
		})
		assert.Equal(t, VerdictTrue, verdict)
		assert.InDelta(t, 0.45, confidence, 0.001)
	})
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, LabelSupports, normalizeLabel("supports"))
	assert.Equal(t, LabelSupports, normalizeLabel(" SUPPORT "))
	assert.Equal(t, LabelRefutes, normalizeLabel("refutes"))
	assert.Equal(t, LabelInconclusive, normalizeLabel("NOT_ENOUGH_INFO"))
	assert.Equal(t, LabelInconclusive, normalizeLabel("whatever"))
}

func TestPreprocessInput(t *testing.T) {
	assert.Equal(t, "hello world", PreprocessInput("  hello \n\t world  "))
	assert.Equal(t, "", PreprocessInput("   "))
	assert.Equal(t, "one two", PreprocessInput("one\x00\x01 two"))

	long := make([]byte, maxInputLen*2)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, PreprocessInput(string(long)), maxInputLen)
}

func TestPreprocessInput_CapKeepsValidUTF8(t *testing.T) {
	// A multi-byte rune straddles the byte cap; the result must back
	// up to the rune boundary instead of emitting a broken sequence.
	input := strings.Repeat("a", maxInputLen-1) + "éllo wörld"
	got := PreprocessInput(input)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxInputLen)
	assert.Equal(t, strings.Repeat("a", maxInputLen-1), got)
}
