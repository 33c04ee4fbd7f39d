package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"factagent/internal/llm"
)

const verificationPrompt = `You are a verification agent. For each numbered evidence item below, decide whether it SUPPORTS the claim, REFUTES it, or provides NOT_ENOUGH_INFO.

CLAIM: %s

EVIDENCE:
%s

Return ONLY JSON in this exact shape:
{"evaluations": [{"index": 1, "label": "SUPPORTS|REFUTES|NOT_ENOUGH_INFO", "rationale": "<one sentence>"}], "explanation": "<2-3 sentence summary of what the evidence shows>"}

Every evidence item must appear exactly once.`

// verifyClaim runs the full evidence-gather-and-evaluate path for one
// claim and produces its report.
func (p *Pipeline) verifyClaim(ctx context.Context, claim string) ClaimReport {
	evidence := p.gatherEvidence(ctx, claim)
	if len(evidence) == 0 {
		return ClaimReport{
			Claim:       claim,
			Verdict:     VerdictUnverified,
			Confidence:  ConfidenceForVerdict(VerdictUnverified),
			Explanation: "No evidence could be retrieved for this claim.",
		}
	}

	var sb strings.Builder
	for i, ev := range evidence {
		origin := "web"
		if ev.FromKnowledgeBase {
			origin = "knowledge base"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, origin, ev.Content)
	}

	raw, err := p.client.CompleteJSON(ctx, "", fmt.Sprintf(verificationPrompt, claim, sb.String()))
	if err != nil {
		return ClaimReport{
			Claim:      claim,
			Verdict:    VerdictError,
			Confidence: 0,
			Err:        err.Error(),
		}
	}

	var parsed struct {
		Evaluations []struct {
			Index     int    `json:"index"`
			Label     string `json:"label"`
			Rationale string `json:"rationale"`
		} `json:"evaluations"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &parsed); err != nil {
		return ClaimReport{
			Claim:      claim,
			Verdict:    VerdictError,
			Confidence: 0,
			Err:        fmt.Sprintf("unparseable verification response: %v", err),
		}
	}

	report := ClaimReport{Claim: claim, Explanation: parsed.Explanation}
	for _, e := range parsed.Evaluations {
		if e.Index < 1 || e.Index > len(evidence) {
			continue
		}
		label := normalizeLabel(e.Label)
		report.Evaluations = append(report.Evaluations, Evaluation{
			Evidence:  evidence[e.Index-1],
			Label:     label,
			Rationale: e.Rationale,
		})
		switch label {
		case LabelSupports:
			report.Supports++
		case LabelRefutes:
			report.Refutes++
		default:
			report.Inconclusive++
		}
	}

	report.Verdict = verdictFromCounts(report.Supports, report.Refutes, report.Inconclusive)
	report.Confidence = ConfidenceForVerdict(report.Verdict)
	return report
}

func normalizeLabel(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case LabelSupports, "SUPPORT":
		return LabelSupports
	case LabelRefutes, "REFUTE":
		return LabelRefutes
	default:
		return LabelInconclusive
	}
}

// verdictFromCounts maps evidence stance counts onto a claim verdict.
func verdictFromCounts(supports, refutes, inconclusive int) string {
	decisive := supports + refutes
	if decisive == 0 {
		return VerdictUnverified
	}
	switch {
	case refutes == 0:
		return VerdictTrue
	case supports == 0:
		return VerdictFalse
	case supports > refutes:
		return VerdictMostlyTrue
	case refutes > supports:
		return VerdictMostlyFalse
	default:
		return VerdictUnverified
	}
}
