package pipeline

// aggregateVerdict combines per-claim verdicts into the overall
// verdict. Claim confidences are averaged and the mean is mapped back
// onto a verdict band; a run where every claim errored is an ERROR.
func aggregateVerdict(reports []ClaimReport) (string, float64) {
	if len(reports) == 0 {
		return VerdictUnverified, 0.5
	}

	errored := 0
	for _, r := range reports {
		if r.Verdict == VerdictError {
			errored++
		}
	}
	if errored == len(reports) {
		return VerdictError, 0.0
	}

	// Errored claims are excluded from the verdict band but still drag
	// the reported confidence down via averageConfidence.
	var sum float64
	var n int
	for _, r := range reports {
		if r.Verdict == VerdictError {
			continue
		}
		sum += r.Confidence
		n++
	}
	mean := sum / float64(n)

	var verdict string
	switch {
	case mean >= 0.85:
		verdict = VerdictTrue
	case mean >= 0.6:
		verdict = VerdictMostlyTrue
	case mean > 0.4:
		verdict = VerdictUnverified
	case mean > 0.2:
		verdict = VerdictMostlyFalse
	default:
		verdict = VerdictFalse
	}
	return verdict, averageConfidence(reports)
}
