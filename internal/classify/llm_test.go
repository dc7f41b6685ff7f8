package classify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/triaged/internal/feedback"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMClassifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	thresholds := defaultThresholds()
	c, err := NewLLMClassifier(LLMConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, thresholds, NewRuleClassifier(thresholds))
	require.NoError(t, err)
	c.maxRetries = 0
	return c
}

func anthropicReply(text string) string {
	return fmt.Sprintf(`{"content":[{"type":"text","text":%q}]}`, text)
}

func TestLLMClassifyUsesModelVerdict(t *testing.T) {
	c := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		fmt.Fprint(w, anthropicReply(`{"category": "Complaint", "confidence": 85}`))
	})

	got, err := c.Classify(context.Background(), "this text has no rule keywords")
	require.NoError(t, err)
	assert.Equal(t, feedback.CategoryComplaint, got.Category)
	assert.InDelta(t, 85.0, got.Confidence, 0.01)
	assert.True(t, got.MeetsThreshold)
}

func TestLLMClassifyFallsBackOnServerError(t *testing.T) {
	c := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})

	rule := NewRuleClassifier(defaultThresholds())
	want, err := rule.Classify(context.Background(), "The app crashes with an error")
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "The app crashes with an error")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLLMClassifyFallsBackOnGarbageReply(t *testing.T) {
	c := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicReply("I cannot classify this."))
	})

	got, err := c.Classify(context.Background(), "Amazing app, love it")
	require.NoError(t, err)
	assert.Equal(t, feedback.CategoryPraise, got.Category)
	assert.InDelta(t, 100.0, got.Confidence, 0.01)
}

func TestLLMClassifyReappliesGateToModelConfidence(t *testing.T) {
	c := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicReply(`{"category": "Bug", "confidence": 30}`))
	})

	got, err := c.Classify(context.Background(), "no keywords here")
	require.NoError(t, err)
	assert.Equal(t, feedback.CategoryUncertain, got.Category)
	assert.InDelta(t, 15.0, got.Confidence, 0.01)
	assert.False(t, got.MeetsThreshold)
}

func TestNewLLMClassifierRequiresAPIKey(t *testing.T) {
	_, err := NewLLMClassifier(LLMConfig{}, defaultThresholds(), nil)
	require.Error(t, err)
}

func TestLLMClassifierAvailableWithKey(t *testing.T) {
	c := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.True(t, c.Available())
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    feedback.Category
		wantErr bool
	}{
		{
			name:  "bare object",
			reply: `{"category": "Bug", "confidence": 90}`,
			want:  feedback.CategoryBug,
		},
		{
			name:  "object with surrounding prose",
			reply: `Sure! Here is the verdict: {"category": "Spam", "confidence": 99} Hope that helps.`,
			want:  feedback.CategorySpam,
		},
		{
			name:    "no JSON",
			reply:   "Bug, definitely",
			wantErr: true,
		},
		{
			name:    "unknown category",
			reply:   `{"category": "Question", "confidence": 50}`,
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			reply:   `{"category": "Bug", "confidence": 150}`,
			wantErr: true,
		},
		{
			name:    "uncertain is not a model category",
			reply:   `{"category": "Uncertain", "confidence": 10}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, _, err := parseVerdict(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, category)
		})
	}
}

func TestProviderSelection(t *testing.T) {
	thresholds := defaultThresholds()

	for _, provider := range []string{"", "rule", "disabled"} {
		c, err := New(Config{Provider: provider}, thresholds)
		require.NoError(t, err, provider)
		assert.Equal(t, "rule", c.Name(), provider)
	}

	c, err := New(Config{
		Provider: "anthropic",
		LLM:      LLMConfig{APIKey: "k"},
	}, thresholds)
	require.NoError(t, err)
	assert.Equal(t, "llm", c.Name())

	_, err = New(Config{Provider: "openai"}, thresholds)
	require.Error(t, err)
}
