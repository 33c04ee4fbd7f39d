package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"factagent/internal/memory"
)

// scriptedClient routes completions by prompt content so one fake can
// play every agent role in the pipeline.
type scriptedClient struct {
	mu sync.Mutex

	claimsJSON       string
	evidenceSummary  string
	verificationJSON string

	extractErr error
	verifyErr  error

	groundingSources []string
	imageText        string
	calls            []string
}

func (s *scriptedClient) record(kind string) {
	s.mu.Lock()
	s.calls = append(s.calls, kind)
	s.mu.Unlock()
}

func (s *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.record("complete")
	return s.evidenceSummary, nil
}

func (s *scriptedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.record("system")
	return s.evidenceSummary, nil
}

func (s *scriptedClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	switch {
	case strings.Contains(userPrompt, "claim extraction agent"):
		s.record("extract")
		return s.claimsJSON, s.extractErr
	case strings.Contains(userPrompt, "verification agent"):
		s.record("verify")
		return s.verificationJSON, s.verifyErr
	default:
		s.record("json")
		return `{"sentiment": "Neutral", "confidence": 0.5, "emotion": "Neutral", "reason": "test"}`, nil
	}
}

func (s *scriptedClient) CompleteWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error) {
	s.record("image")
	return s.imageText, nil
}

func (s *scriptedClient) SetEnableGoogleSearch(enable bool) {}

func (s *scriptedClient) CompleteGrounded(ctx context.Context, prompt string) (string, []string, error) {
	s.record("complete")
	return s.evidenceSummary, s.groundingSources, nil
}

func (s *scriptedClient) callCount(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == kind {
			n++
		}
	}
	return n
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewStore(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func supportiveClient() *scriptedClient {
	return &scriptedClient{
		claimsJSON:      `{"claims": ["Water boils at 100 degrees Celsius at sea level."]}`,
		evidenceSummary: "Multiple physics references confirm water boils at 100C at standard pressure.",
		verificationJSON: `{"evaluations": [{"index": 1, "label": "SUPPORTS", "rationale": "Reference texts agree."}],
			"explanation": "The evidence consistently confirms the claim."}`,
		groundingSources: []string{"https://example.org/boiling-point"},
	}
}

func TestRun_SupportedClaimIsTrue(t *testing.T) {
	client := supportiveClient()
	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))

	result, err := p.Run(context.Background(), "", "Water boils at 100 degrees Celsius at sea level.")
	require.NoError(t, err)

	assert.Equal(t, VerdictTrue, result.Verdict)
	assert.InDelta(t, 0.9, result.Confidence, 0.001)
	assert.Len(t, result.Claims, 1)
	assert.Equal(t, 1, result.TotalEvidence)
	assert.False(t, result.Cached)
	assert.NotEmpty(t, result.Report)
	assert.Contains(t, result.Report, "SUPPORTS")
	assert.Contains(t, result.Report, "https://example.org/boiling-point")
	assert.NotEmpty(t, result.Trace)
}

func TestRun_RefutedClaimIsFalse(t *testing.T) {
	client := supportiveClient()
	client.claimsJSON = `{"claims": ["The Great Wall of China is visible from space with the naked eye."]}`
	client.verificationJSON = `{"evaluations": [
		{"index": 1, "label": "REFUTES", "rationale": "Astronauts report it is not visible unaided."}],
		"explanation": "The evidence contradicts the claim."}`

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	result, err := p.Run(context.Background(), "", "The Great Wall is visible from space.")
	require.NoError(t, err)

	assert.Equal(t, VerdictFalse, result.Verdict)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
}

func TestRun_EmptyInputErrors(t *testing.T) {
	p := New(supportiveClient(), nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	_, err := p.Run(context.Background(), "", "   \n\t ")
	assert.Error(t, err)
}

func TestRun_ExtractionFailureFallsBackToWholeInput(t *testing.T) {
	client := supportiveClient()
	client.extractErr = errors.New("upstream unavailable")

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	result, err := p.Run(context.Background(), "", "Goldfish have a memory span of only 3 seconds.")
	require.NoError(t, err)

	require.Len(t, result.Claims, 1)
	assert.Equal(t, "Goldfish have a memory span of only 3 seconds.", result.Claims[0])
	assert.Equal(t, VerdictTrue, result.Verdict)
}

func TestRun_VerificationFailureDegradesToError(t *testing.T) {
	client := supportiveClient()
	client.verifyErr = errors.New("upstream unavailable")

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	result, err := p.Run(context.Background(), "", "Water boils at 100 degrees Celsius.")
	require.NoError(t, err)

	assert.Equal(t, VerdictError, result.Verdict)
	assert.Zero(t, result.Confidence)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, VerdictError, result.Reports[0].Verdict)
	assert.NotEmpty(t, result.Reports[0].Err)
}

func TestRun_CachesResultAndShortCircuitsSecondRun(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateSession("sess-1", "tester"))

	client := supportiveClient()
	p := New(client, store, nil, DefaultOptions(), zaptest.NewLogger(t))

	input := "Water boils at 100 degrees Celsius at sea level."
	first, err := p.Run(context.Background(), "sess-1", input)
	require.NoError(t, err)
	require.False(t, first.Cached)
	verifyCallsAfterFirst := client.callCount("verify")

	second, err := p.Run(context.Background(), "sess-1", input)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Verdict, second.Verdict)
	assert.InDelta(t, first.Confidence, second.Confidence, 0.001)
	assert.Contains(t, second.Report, "Cached Result")
	// The verification stage never ran on the cached path.
	assert.Equal(t, verifyCallsAfterFirst, client.callCount("verify"))
}

func TestRun_ErrorVerdictIsNotCached(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateSession("sess-1", "tester"))

	client := supportiveClient()
	client.verifyErr = errors.New("upstream unavailable")
	p := New(client, store, nil, DefaultOptions(), zaptest.NewLogger(t))

	input := "Vitamin C prevents the common cold in all cases."
	first, err := p.Run(context.Background(), "sess-1", input)
	require.NoError(t, err)
	require.Equal(t, VerdictError, first.Verdict)

	second, err := p.Run(context.Background(), "sess-1", input)
	require.NoError(t, err)
	assert.False(t, second.Cached)
}

func TestRun_MultipleClaimsVerifiedIndependently(t *testing.T) {
	client := supportiveClient()
	client.claimsJSON = `{"claims": ["Claim one about physics.", "Claim two about history.", "Claim three about biology."]}`

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	result, err := p.Run(context.Background(), "", "Several statements mixed together in one paragraph.")
	require.NoError(t, err)

	assert.Len(t, result.Claims, 3)
	assert.Len(t, result.Reports, 3)
	assert.Equal(t, 3, client.callCount("verify"))
}

func TestRun_MaxClaimsCapped(t *testing.T) {
	client := supportiveClient()
	client.claimsJSON = `{"claims": ["a", "b", "c", "d", "e", "f", "g"]}`

	opts := DefaultOptions()
	opts.MaxClaims = 2
	p := New(client, nil, nil, opts, zaptest.NewLogger(t))

	result, err := p.Run(context.Background(), "", "Many claims at once.")
	require.NoError(t, err)
	assert.Len(t, result.Claims, 2)
}

func TestRunImage_VerifiesExtractedClaims(t *testing.T) {
	client := supportiveClient()
	client.imageText = "Water boils at 100 degrees Celsius at sea level.\nThe Earth revolves around the Sun."

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	result, err := p.RunImage(context.Background(), "", []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)

	assert.Len(t, result.Claims, 2)
	assert.Equal(t, VerdictTrue, result.Verdict)
	assert.Equal(t, 1, client.callCount("image"))
}

func TestRunImage_NoClaims(t *testing.T) {
	client := supportiveClient()
	client.imageText = "NO_CLAIMS"

	p := New(client, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	_, err := p.RunImage(context.Background(), "", []byte{0xFF, 0xD8}, "image/jpeg")
	assert.ErrorIs(t, err, ErrNoClaimsInImage)
}

func TestRunImage_RequiresImageClient(t *testing.T) {
	p := New(noImageClient{}, nil, nil, DefaultOptions(), zaptest.NewLogger(t))
	_, err := p.RunImage(context.Background(), "", nil, "image/png")
	assert.ErrorIs(t, err, ErrNoImageSupport)
}

type noImageClient struct{}

func (noImageClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (noImageClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}

func (noImageClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}
