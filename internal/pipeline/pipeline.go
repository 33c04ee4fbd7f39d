// Package pipeline implements the multi-step fact-check flow: input
// preprocessing, sentiment analysis, verified-claims cache lookup,
// claim extraction, evidence retrieval, per-claim verification, verdict
// aggregation, and report generation. Each stage appends to a thinking
// trace that the UI surfaces alongside the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"factagent/internal/llm"
	"factagent/internal/memory"
	"factagent/internal/sentiment"
)

// Options tunes the pipeline.
type Options struct {
	// TopK documents retrieved from the knowledge base per claim.
	TopK int

	// MaxClaims caps how many claims one input is split into.
	MaxClaims int

	// MaxParallelClaims bounds concurrent claim verification.
	MaxParallelClaims int

	// CacheSimilarity is the minimum similarity for a cached verified
	// claim to short-circuit the run.
	CacheSimilarity float64

	// CacheScanLimit bounds how many recent cached claims are compared.
	CacheScanLimit int
}

// DefaultOptions returns the standard pipeline tuning.
func DefaultOptions() Options {
	return Options{
		TopK:              3,
		MaxClaims:         5,
		MaxParallelClaims: 3,
		CacheSimilarity:   0.85,
		CacheScanLimit:    20,
	}
}

// Pipeline orchestrates one fact-check run end to end.
type Pipeline struct {
	client    llm.Client
	store     *memory.Store
	sentiment *sentiment.Analyzer
	opts      Options
	logger    *zap.Logger
}

// New creates a fact-check pipeline. The store may be nil, which
// disables the cache and knowledge base; the sentiment analyzer may be
// nil, which skips sentiment analysis.
func New(client llm.Client, store *memory.Store, analyzer *sentiment.Analyzer, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.MaxClaims <= 0 {
		opts.MaxClaims = 5
	}
	if opts.MaxParallelClaims <= 0 {
		opts.MaxParallelClaims = 3
	}
	if opts.CacheScanLimit <= 0 {
		opts.CacheScanLimit = 20
	}
	if opts.CacheSimilarity <= 0 {
		opts.CacheSimilarity = 0.85
	}
	return &Pipeline{
		client:    client,
		store:     store,
		sentiment: analyzer,
		opts:      opts,
		logger:    logger.Named("pipeline"),
	}
}

// Run executes the full fact-check flow for a text input.
func (p *Pipeline) Run(ctx context.Context, sessionID, input string) (*Result, error) {
	start := time.Now()
	processed := PreprocessInput(input)
	if processed == "" {
		return nil, errors.New("empty input")
	}

	result := &Result{Input: input, Processed: processed}
	trace := newTrace()

	// Sentiment runs first and never fails the run.
	trace.add("Sentiment Analysis", "Analyzing emotional tone of the input text")
	if p.sentiment != nil {
		result.Sentiment = p.sentiment.Analyze(ctx, processed)
		trace.add("Sentiment: "+result.Sentiment.Sentiment,
			fmt.Sprintf("Confidence %.0f%%, emotion %s", result.Sentiment.Confidence*100, result.Sentiment.Emotion))
	}

	// Cache lookup short-circuits the pipeline entirely.
	trace.add("Checking Memory Cache", "Searching for similar previously verified claims")
	if p.store != nil {
		cached, err := p.store.FindSimilarClaim(processed, p.opts.CacheScanLimit, p.opts.CacheSimilarity)
		if err == nil {
			result.Cached = true
			result.CachedClaim = cached.ClaimText
			result.Verdict = cached.Verdict
			result.Confidence = cached.Confidence
			result.Elapsed = time.Since(start)
			trace.add("Cache Hit",
				fmt.Sprintf("Found similar claim (%.0f%% similar) with %.0f%% confidence", cached.Similarity*100, cached.Confidence*100))
			result.Trace = trace.steps
			result.Report = buildCachedReport(result)
			p.logInteraction(sessionID, input, processed, result.Verdict)
			return result, nil
		}
		if !errors.Is(err, memory.ErrNoMatch) {
			p.logger.Warn("cache lookup failed", zap.Error(err))
		}
		trace.add("No Cache Hit", "Running full verification pipeline")
	}

	trace.add("Claim Extraction", "Identifying verifiable claims in the text")
	result.Claims = p.extractClaims(ctx, processed)
	trace.add(fmt.Sprintf("Extracted %d Claims", len(result.Claims)),
		"Each claim is verified independently")

	trace.add("Evidence Retrieval & Verification",
		fmt.Sprintf("Searching knowledge base and web, then labeling evidence for %d claims", len(result.Claims)))
	result.Reports = p.verifyClaims(ctx, result.Claims)

	for _, r := range result.Reports {
		result.TotalEvidence += len(r.Evaluations)
	}
	trace.add("Total Evidence", fmt.Sprintf("Found %d evidence items", result.TotalEvidence))

	trace.add("Aggregation", "Combining evidence analysis into the final verdict")
	result.Verdict, result.Confidence = aggregateVerdict(result.Reports)

	trace.add("Report Generation", "Creating the comprehensive fact-check report")
	result.Report = buildReport(result)

	result.Elapsed = time.Since(start)
	trace.add("Verification Complete", fmt.Sprintf("Total time: %dms", result.Elapsed.Milliseconds()))
	result.Trace = trace.steps

	if p.store != nil && result.Verdict != VerdictError {
		if err := p.store.CacheClaim(processed, result.Verdict, result.Confidence, result.TotalEvidence, sessionID); err != nil {
			p.logger.Warn("failed to cache result", zap.Error(err))
		}
	}
	p.logInteraction(sessionID, input, processed, result.Verdict)

	p.logger.Info("fact-check complete",
		zap.String("verdict", result.Verdict),
		zap.Float64("confidence", result.Confidence),
		zap.Int("claims", len(result.Claims)),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// verifyClaims verifies claims concurrently with bounded parallelism.
// A failed claim yields an ERROR report in its slot instead of failing
// the run, so the group never returns an error.
func (p *Pipeline) verifyClaims(ctx context.Context, claims []string) []ClaimReport {
	reports := make([]ClaimReport, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxParallelClaims)
	for i, claim := range claims {
		g.Go(func() error {
			reports[i] = p.verifyClaim(gctx, claim)
			return nil
		})
	}
	g.Wait()

	return reports
}

func (p *Pipeline) logInteraction(sessionID, query, processed, verdict string) {
	if p.store == nil || sessionID == "" {
		return
	}
	if err := p.store.AddInteraction(sessionID, query, processed, verdict); err != nil {
		p.logger.Warn("failed to log interaction", zap.Error(err))
	}
}
