// Package llm provides the Gemini client used by the fact-check pipeline.
// Credentials are re-resolved on every call so a rotated key takes effect
// without a process restart, and a call rejected for a bad credential is
// retried exactly once against the freshly resolved key.
package llm

import (
	"context"
	"errors"
)

// Client defines the interface for LLM completion providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteJSON requests a JSON-mime response and returns the raw
	// JSON text.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageClient is implemented by clients that accept inline image input.
type ImageClient interface {
	CompleteWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error)
}

// GroundingProvider is implemented by clients that can ground responses
// in web search results. CompleteGrounded returns the source URLs of
// the same response as the completion text, so concurrent callers never
// see another call's sources.
type GroundingProvider interface {
	SetEnableGoogleSearch(enable bool)
	CompleteGrounded(ctx context.Context, prompt string) (string, []string, error)
}

// KeySource supplies the current API credential. It is consulted on
// every request, never cached, so the freshest value always wins.
type KeySource func() string

// StaticKey returns a KeySource that always yields the given key.
func StaticKey(key string) KeySource {
	return func() string { return key }
}

// ErrCredentialRejected indicates the API rejected the credential even
// after the single rebuild-and-retry.
var ErrCredentialRejected = errors.New("API credential rejected")

// ErrNoCompletion indicates the API returned a response with no usable
// candidate content.
var ErrNoCompletion = errors.New("no completion returned")
