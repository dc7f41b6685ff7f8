package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

// Default LLM client settings.
const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	defaultMaxTokens        = 256
	defaultTimeout          = 30 * time.Second
	defaultMaxRetries       = 3
	defaultBaseBackoff      = 1 * time.Second
)

// Rate limiter defaults: 50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

const classifyPrompt = `You are a feedback triage classifier. Classify the following user feedback into exactly one of these categories: Bug, Feature Request, Praise, Complaint, Spam.

Respond with a single JSON object of the form {"category": "<category>", "confidence": <0-100>} and nothing else.

Feedback:
%s`

// LLMClassifier supplements the rule classifier with an externally-backed
// model. Every call carries a hard timeout; on timeout, transport error, API
// error, or an unparseable reply the rule result is returned unchanged, so
// the deterministic path is always available.
type LLMClassifier struct {
	fallback *RuleClassifier

	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	timeout    time.Duration
	thresholds Thresholds
}

// LLMConfig configures the external classifier backend.
type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewLLMClassifier creates the LLM-backed classifier wrapping the given rule
// classifier as its fallback.
func NewLLMClassifier(cfg LLMConfig, thresholds Thresholds, fallback *RuleClassifier) (*LLMClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &LLMClassifier{
		fallback:   fallback,
		model:      model,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
		timeout:    timeout,
		thresholds: thresholds,
	}, nil
}

// Name implements Classifier.
func (c *LLMClassifier) Name() string { return "llm" }

// Available implements Classifier. The LLM variant is usable only with a
// configured API key.
func (c *LLMClassifier) Available() bool { return c.apiKey != "" }

// Classify implements Classifier. The rule result is computed first and kept
// as the fallback; a successful model reply overrides category and
// confidence, re-applying the configured gate to the model's confidence.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (Result, error) {
	ruleResult, err := c.fallback.Classify(ctx, text)
	if err != nil {
		return Result{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	category, confidence, err := c.complete(callCtx, text)
	if err != nil {
		// Degraded path: the deterministic result stands.
		return ruleResult, nil
	}

	raw := confidence / 100
	threshold := c.thresholds.Threshold(string(category))
	meets := raw >= threshold
	if !meets && raw < c.thresholds.MinimumConfidence() {
		category = feedback.CategoryUncertain
		confidence = raw * 50
	}

	return Result{
		Category:       category,
		Confidence:     confidence,
		Scores:         ruleResult.Scores,
		ThresholdUsed:  threshold,
		MeetsThreshold: meets,
	}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type llmVerdict struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// complete sends the classification prompt and parses the verdict.
func (c *LLMClassifier) complete(ctx context.Context, text string) (feedback.Category, float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", 0, fmt.Errorf("rate limiter: %w", err)
	}

	req := anthropicRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: fmt.Sprintf(classifyPrompt, text)},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", 0, ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, retryable, err := c.send(ctx, body)
		if err == nil {
			return parseVerdict(reply)
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", 0, lastErr
}

func (c *LLMClassifier) send(ctx context.Context, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("api status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("api status %d: %s", resp.StatusCode, data)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return "", false, fmt.Errorf("empty response content")
	}
	return parsed.Content[0].Text, false, nil
}

// parseVerdict extracts the category/confidence JSON object from a model
// reply, tolerating surrounding prose.
func parseVerdict(reply string) (feedback.Category, float64, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", 0, fmt.Errorf("no JSON object in reply")
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return "", 0, fmt.Errorf("parse verdict: %w", err)
	}

	category := feedback.Category(v.Category)
	valid := false
	for _, c := range feedback.Categories() {
		if category == c {
			valid = true
			break
		}
	}
	if !valid {
		return "", 0, fmt.Errorf("unknown category %q", v.Category)
	}
	if v.Confidence < 0 || v.Confidence > 100 {
		return "", 0, fmt.Errorf("confidence %v out of range", v.Confidence)
	}
	return category, v.Confidence, nil
}
