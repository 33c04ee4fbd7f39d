package pipeline

import (
	"fmt"
	"strings"
)

// buildReport renders the comprehensive markdown fact-check report:
// overall verdict, per-claim analysis with the scoring breakdown, and
// source attributions.
func buildReport(result *Result) string {
	var sb strings.Builder

	sb.WriteString("### Fact-Check Report\n\n")
	fmt.Fprintf(&sb, "**Verdict:** **%s**\n\n", result.Verdict)
	fmt.Fprintf(&sb, "**Confidence:** %.0f%%\n\n", result.Confidence*100)
	fmt.Fprintf(&sb, "**Claims analyzed:** %d · **Evidence items:** %d\n", len(result.Reports), result.TotalEvidence)

	for i, r := range result.Reports {
		fmt.Fprintf(&sb, "\n---\n\n#### Claim %d: %s\n\n", i+1, r.Claim)

		if r.Verdict == VerdictError {
			fmt.Fprintf(&sb, "**Verdict:** ERROR — this claim could not be verified (%s)\n", r.Err)
			continue
		}

		fmt.Fprintf(&sb, "**Verdict:** %s (%.0f%% confidence)\n\n", r.Verdict, r.Confidence*100)
		fmt.Fprintf(&sb, "**Scoring:** %d SUPPORTS · %d REFUTES · %d NOT_ENOUGH_INFO\n\n",
			r.Supports, r.Refutes, r.Inconclusive)

		if r.Explanation != "" {
			fmt.Fprintf(&sb, "%s\n", r.Explanation)
		}

		if len(r.Evaluations) > 0 {
			sb.WriteString("\n**Evidence:**\n\n")
			for _, ev := range r.Evaluations {
				fmt.Fprintf(&sb, "- **%s** — %s\n", ev.Label, ev.Rationale)
				if ev.Evidence.Source != "" {
					fmt.Fprintf(&sb, "  - Source: %s\n", ev.Evidence.Source)
				}
			}
		}
	}

	return sb.String()
}

// buildCachedReport renders the short report used on a cache hit.
func buildCachedReport(result *Result) string {
	var sb strings.Builder
	sb.WriteString("### Fact-Check Report: Cached Result\n\n")
	fmt.Fprintf(&sb, "**Status:** Retrieved from memory cache (%dms)\n\n", result.Elapsed.Milliseconds())
	fmt.Fprintf(&sb, "**Cached Claim:** %s\n\n", result.CachedClaim)
	fmt.Fprintf(&sb, "**Verdict:** **%s**\n\n", result.Verdict)
	fmt.Fprintf(&sb, "**Confidence:** %.0f%%\n\n", result.Confidence*100)
	sb.WriteString("*For updated information, re-run the verification.*\n")
	return sb.String()
}
