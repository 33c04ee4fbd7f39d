package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"factagent/internal/llm"
)

const webEvidencePrompt = `Search for current, reliable information about the following claim and summarize what trustworthy sources say about it. Report facts only, with no verdict.

CLAIM: %s`

// gatherEvidence collects evidence for one claim from the knowledge
// base and, when the client supports grounding, from web search.
// Retrieval failures degrade to whatever evidence was found.
func (p *Pipeline) gatherEvidence(ctx context.Context, claim string) []Evidence {
	var evidence []Evidence

	if p.store != nil {
		docs, err := p.store.SearchKnowledge(ctx, claim, p.opts.TopK)
		if err != nil {
			p.logger.Warn("knowledge base search failed", zap.Error(err))
		}
		for _, doc := range docs {
			evidence = append(evidence, Evidence{
				Content:           doc.Content,
				Source:            doc.Source,
				FromKnowledgeBase: true,
			})
		}
	}

	prompt := fmt.Sprintf(webEvidencePrompt, claim)
	var summary string
	var urls []string
	var err error
	if gp, ok := p.client.(llm.GroundingProvider); ok {
		summary, urls, err = gp.CompleteGrounded(ctx, prompt)
	} else {
		summary, err = p.client.Complete(ctx, prompt)
	}
	if err != nil {
		p.logger.Warn("web evidence retrieval failed", zap.Error(err))
		return evidence
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return evidence
	}

	source := "web search"
	if len(urls) > 0 {
		source = strings.Join(urls, ", ")
	}
	evidence = append(evidence, Evidence{Content: summary, Source: source})
	return evidence
}
