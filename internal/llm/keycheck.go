package llm

import (
	"context"
	"fmt"
)

const keycheckPrompt = "Say 'API key is working' if you can read this."

// Keycheck performs a one-prompt round trip to validate the credential.
// It returns the model's reply, or an error describing why the call
// failed. ErrCredentialRejected in the error chain means the key itself
// was refused.
func Keycheck(ctx context.Context, client Client) (string, error) {
	reply, err := client.Complete(ctx, keycheckPrompt)
	if err != nil {
		return "", fmt.Errorf("keycheck call failed: %w", err)
	}
	return reply, nil
}
