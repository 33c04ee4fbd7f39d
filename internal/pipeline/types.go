package pipeline

import (
	"time"

	"factagent/internal/sentiment"
)

// Evidence is one item retrieved for a claim, either from the local
// knowledge base or from web-grounded generation.
type Evidence struct {
	Content string `json:"content"`
	Source  string `json:"source"`

	// FromKnowledgeBase distinguishes local documents from web results.
	FromKnowledgeBase bool `json:"from_knowledge_base"`
}

// Evaluation is the verification stance for one piece of evidence.
type Evaluation struct {
	Evidence  Evidence `json:"evidence"`
	Label     string   `json:"label"` // SUPPORTS, REFUTES, NOT_ENOUGH_INFO
	Rationale string   `json:"rationale"`
}

// ClaimReport is the full verification outcome for a single claim.
type ClaimReport struct {
	Claim        string       `json:"claim"`
	Verdict      string       `json:"verdict"`
	Confidence   float64      `json:"confidence"`
	Supports     int          `json:"supports"`
	Refutes      int          `json:"refutes"`
	Inconclusive int          `json:"inconclusive"`
	Evaluations  []Evaluation `json:"evaluations"`
	Explanation  string       `json:"explanation"`
	Err          string       `json:"error,omitempty"`
}

// TraceStep is one entry in the thinking trace surfaced to the UI.
type TraceStep struct {
	Name   string    `json:"name"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// Result is the complete outcome of one fact-check run.
type Result struct {
	Input     string `json:"input"`
	Processed string `json:"processed"`

	Claims  []string      `json:"claims"`
	Reports []ClaimReport `json:"reports"`

	Verdict       string  `json:"verdict"`
	Confidence    float64 `json:"confidence"`
	TotalEvidence int     `json:"total_evidence"`

	// Report is the comprehensive markdown fact-check report.
	Report string `json:"report"`

	Sentiment sentiment.Result `json:"sentiment"`
	Trace     []TraceStep      `json:"trace"`

	// Cached is true when the verdict came from the verified-claims
	// cache and the pipeline was skipped.
	Cached      bool   `json:"cached"`
	CachedClaim string `json:"cached_claim,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// Verdict labels.
const (
	VerdictTrue        = "True"
	VerdictMostlyTrue  = "Mostly True"
	VerdictMostlyFalse = "Mostly False"
	VerdictFalse       = "False"
	VerdictUnverified  = "Unverified"
	VerdictError       = "ERROR"
)

// Evidence stance labels.
const (
	LabelSupports     = "SUPPORTS"
	LabelRefutes      = "REFUTES"
	LabelInconclusive = "NOT_ENOUGH_INFO"
)
