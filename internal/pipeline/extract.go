package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"factagent/internal/llm"
)

const maxInputLen = 4000

// PreprocessInput normalizes raw user input before the pipeline sees
// it: whitespace collapsed, control characters stripped, length capped.
func PreprocessInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 32 {
			return -1
		}
		return r
	}, input)
	input = strings.Join(strings.Fields(input), " ")
	if len(input) > maxInputLen {
		// Back up to a rune boundary so the cap never splits a
		// multi-byte character.
		cut := maxInputLen
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	return input
}

const claimExtractionPrompt = `You are a claim extraction agent. Identify the distinct, independently verifiable factual claims in the text below. Ignore opinions, questions, and rhetorical statements.

TEXT: %s

Return ONLY JSON in this exact shape:
{"claims": ["<claim 1>", "<claim 2>"]}

Each claim must be a single self-contained factual statement. Return at most %d claims. If the text contains no verifiable claim, return {"claims": []}.`

// extractClaims asks the LLM for the verifiable claims in the input.
// On failure or an empty result the whole input is treated as one
// claim so verification can still proceed.
func (p *Pipeline) extractClaims(ctx context.Context, input string) []string {
	raw, err := p.client.CompleteJSON(ctx, "", fmt.Sprintf(claimExtractionPrompt, input, p.opts.MaxClaims))
	if err != nil {
		p.logger.Warn("claim extraction failed, using input as single claim", zap.Error(err))
		return []string{input}
	}

	var parsed struct {
		Claims []string `json:"claims"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &parsed); err != nil {
		p.logger.Warn("claim extraction returned unparseable JSON", zap.Error(err))
		return []string{input}
	}

	claims := make([]string, 0, len(parsed.Claims))
	for _, c := range parsed.Claims {
		c = strings.TrimSpace(c)
		if c != "" {
			claims = append(claims, c)
		}
	}
	if len(claims) == 0 {
		return []string{input}
	}
	if len(claims) > p.opts.MaxClaims {
		claims = claims[:p.opts.MaxClaims]
	}
	return claims
}
