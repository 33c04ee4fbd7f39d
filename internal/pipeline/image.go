package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"factagent/internal/llm"
)

const imageExtractionPrompt = `Look at this image and state, as plain text, the factual claims it makes or implies: any headline, statistic, quote, or depicted event presented as fact. One claim per line. If the image makes no verifiable claim, reply with exactly NO_CLAIMS.`

// ErrNoImageSupport is returned when the configured LLM client cannot
// accept image input.
var ErrNoImageSupport = errors.New("llm client does not support image input")

// ErrNoClaimsInImage is returned when the image contains nothing
// verifiable.
var ErrNoClaimsInImage = errors.New("no verifiable claims found in image")

// RunImage extracts claims from an image and verifies them through the
// same pipeline as text input. The cache is bypassed on the way in
// (image content is never a cache key) but the result is cached.
func (p *Pipeline) RunImage(ctx context.Context, sessionID string, imageData []byte, mimeType string) (*Result, error) {
	imgClient, ok := p.client.(llm.ImageClient)
	if !ok {
		return nil, ErrNoImageSupport
	}

	start := time.Now()
	trace := newTrace()
	trace.add("Image Analysis", "Extracting factual claims from the uploaded image")

	extracted, err := imgClient.CompleteWithImage(ctx, imageExtractionPrompt, imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("image claim extraction failed: %w", err)
	}
	extracted = strings.TrimSpace(extracted)
	if extracted == "" || strings.Contains(extracted, "NO_CLAIMS") {
		return nil, ErrNoClaimsInImage
	}

	var claims []string
	for _, line := range strings.Split(extracted, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			claims = append(claims, line)
		}
	}
	if len(claims) > p.opts.MaxClaims {
		claims = claims[:p.opts.MaxClaims]
	}
	trace.add(fmt.Sprintf("Extracted %d Claims", len(claims)), "Verifying each extracted claim")

	result := &Result{
		Input:     fmt.Sprintf("[image %s]", mimeType),
		Processed: strings.Join(claims, " "),
		Claims:    claims,
	}

	result.Reports = p.verifyClaims(ctx, claims)
	for _, r := range result.Reports {
		result.TotalEvidence += len(r.Evaluations)
	}

	result.Verdict, result.Confidence = aggregateVerdict(result.Reports)
	result.Report = buildReport(result)
	result.Elapsed = time.Since(start)
	trace.add("Verification Complete", fmt.Sprintf("Total time: %dms", result.Elapsed.Milliseconds()))
	result.Trace = trace.steps

	if p.store != nil && result.Verdict != VerdictError {
		claimKey := fmt.Sprintf("Image-based: %s", result.Verdict)
		if err := p.store.CacheClaim(claimKey, result.Verdict, result.Confidence, result.TotalEvidence, sessionID); err != nil {
			p.logger.Warn("failed to cache image result", zap.Error(err))
		}
	}
	p.logInteraction(sessionID, result.Input, result.Processed, result.Verdict)

	return result, nil
}
