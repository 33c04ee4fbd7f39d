package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GeminiClient implements Client against the Gemini REST API.
type GeminiClient struct {
	keySource       KeySource
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	logger          *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time

	// Built-in Google Search grounding
	enableGoogleSearch bool
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	KeySource          KeySource
	BaseURL            string
	Model              string
	Timeout            time.Duration
	MaxOutputTokens    int
	EnableGoogleSearch bool
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(keySource KeySource) GeminiConfig {
	return GeminiConfig{
		KeySource:       keySource,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		Timeout:         120 * time.Second,
		MaxOutputTokens: 8192,
	}
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(config GeminiConfig, logger *zap.Logger) *GeminiClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = 8192
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiClient{
		keySource:          config.KeySource,
		baseURL:            config.BaseURL,
		model:              model,
		maxOutputTokens:    config.MaxOutputTokens,
		httpClient:         &http.Client{Timeout: config.Timeout},
		logger:             logger.Named("gemini"),
		enableGoogleSearch: config.EnableGoogleSearch,
	}
}

// SetEnableGoogleSearch enables or disables Google Search grounding at
// runtime.
func (c *GeminiClient) SetEnableGoogleSearch(enable bool) {
	c.enableGoogleSearch = enable
}

// CompleteGrounded sends a prompt and returns the completion together
// with the web source URLs the response was grounded on. The sources
// belong to this call's response, so concurrent callers each get their
// own.
func (c *GeminiClient) CompleteGrounded(ctx context.Context, prompt string) (string, []string, error) {
	return c.generate(ctx, "", []geminiPart{{Text: prompt}}, "")
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	text, _, err := c.complete(ctx, "", prompt, "")
	return text, err
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := c.complete(ctx, systemPrompt, userPrompt, "")
	return text, err
}

// CompleteJSON requests a JSON-mime response and returns the raw JSON
// text.
func (c *GeminiClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := c.complete(ctx, systemPrompt, userPrompt, "application/json")
	return text, err
}

// CompleteWithImage sends a prompt together with inline image bytes.
func (c *GeminiClient) CompleteWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	parts := []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{MimeType: mimeType, Data: encodeBase64(imageData)}},
	}
	text, _, err := c.generate(ctx, "", parts, "")
	return text, err
}

func (c *GeminiClient) complete(ctx context.Context, systemPrompt, userPrompt, responseMime string) (string, []string, error) {
	return c.generate(ctx, systemPrompt, []geminiPart{{Text: userPrompt}}, responseMime)
}

func (c *GeminiClient) generate(ctx context.Context, systemPrompt string, parts []geminiPart, responseMime string) (string, []string, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      1.0,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: responseMime,
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}
	if c.enableGoogleSearch && responseMime == "" {
		// The API rejects built-in tools combined with JSON output.
		reqBody.Tools = []geminiTool{{GoogleSearch: &geminiGoogleSearch{}}}
	}

	// Rate limiting: keep at least 100ms between requests.
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry loop: backoff for rate limits, a single fresh-credential
	// rebuild for credential rejections.
	const maxRetries = 3
	var lastErr error
	credentialRetried := false
	skipBackoff := false

	for i := 0; i <= maxRetries; i++ {
		if i > 0 && !skipBackoff {
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}
		skipBackoff = false

		// The credential is resolved per attempt, never cached. A key
		// rotated in the .env file is picked up here without a restart.
		apiKey := c.resolveKey()
		if apiKey == "" {
			return "", nil, fmt.Errorf("API key not configured")
		}

		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return "", nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			lastErr = fmt.Errorf("rate limited (%d)", resp.StatusCode)
			continue
		}

		if isCredentialStatus(resp.StatusCode, string(body)) {
			if !credentialRetried {
				// Rebuild against the freshest credential and retry
				// exactly once.
				credentialRetried = true
				skipBackoff = true
				lastErr = fmt.Errorf("credential rejected (%d), retrying with fresh key", resp.StatusCode)
				c.logger.Warn("credential rejected, retrying once with fresh key",
					zap.Int("status", resp.StatusCode))
				continue
			}
			return "", nil, fmt.Errorf("%w: status %d: %s", ErrCredentialRejected, resp.StatusCode, truncate(string(body), 200))
		}

		if resp.StatusCode != http.StatusOK {
			return "", nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 500))
		}

		var geminiResp geminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return "", nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if geminiResp.Error != nil {
			return "", nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
		}

		if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
			return "", nil, ErrNoCompletion
		}

		var result strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			result.WriteString(part.Text)
		}
		response := strings.TrimSpace(result.String())
		sources := groundingSources(&geminiResp)

		c.logger.Debug("completion finished",
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Int("response_len", len(response)),
			zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount),
			zap.Int("grounding_sources", len(sources)))
		return response, sources, nil
	}

	c.logger.Error("max retries exceeded",
		zap.Duration("elapsed", time.Since(startTime)), zap.Error(lastErr))
	return "", nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *GeminiClient) resolveKey() string {
	if c.keySource == nil {
		return ""
	}
	return c.keySource()
}

// groundingSources extracts the web source URLs a single response was
// grounded on.
func groundingSources(resp *geminiResponse) []string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []string
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			out = append(out, chunk.Web.URI)
		}
	}
	return out
}

// isCredentialStatus reports whether a non-OK response indicates a
// rejected or expired credential rather than a malformed request.
func isCredentialStatus(status int, body string) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "api key") ||
		strings.Contains(lower, "api_key_invalid") ||
		strings.Contains(lower, "expired") ||
		strings.Contains(lower, "permission_denied")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
