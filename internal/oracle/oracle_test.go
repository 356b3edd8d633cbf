// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synthesis-engine/internal/httputil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// failNTimes fails the first N calls, then succeeds.
type failNTimes struct {
	failures int
	calls    int32
}

func (f *failNTimes) Complete(_ context.Context, prompt string) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if int(n) <= f.failures {
		return "", fmt.Errorf("transient error (call %d)", n)
	}
	return "echo: " + prompt, nil
}

type recordingObserver struct {
	calls  int
	errors int
}

func (r *recordingObserver) ObserveGeneration(err error, _ time.Duration) {
	r.calls++
	if err != nil {
		r.errors++
	}
}

func TestNull(t *testing.T) {
	out, err := Null{}.Complete(context.Background(), "anything")
	assert.Empty(t, out)
	require.Error(t, err)
	assert.True(t, IsProviderError(err))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, Available(Null{}))
}

func TestAvailable(t *testing.T) {
	assert.False(t, Available(nil))
	assert.False(t, Available(WithRetry(Null{}, 2)))
	assert.False(t, Available(WithRateLimit(WithRetry(Null{}, 2), 5, 1)))
	assert.False(t, Available(&Claude{}))
	assert.True(t, Available(&Claude{APIKey: "k"}))
	assert.True(t, Available(GeneratorFunc(func(context.Context, string) (string, error) { return "", nil })))
	assert.False(t, Available(Instrument(Null{}, &recordingObserver{})))
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		retries   int
		wantErr   bool
		wantCalls int32
	}{
		{"succeeds first try", 0, 3, false, 1},
		{"succeeds after two failures", 2, 3, false, 3},
		{"exhausts retries", 10, 2, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &failNTimes{failures: tt.failures}
			out, err := WithRetry(inner, tt.retries).Complete(context.Background(), "hi")
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&inner.calls))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsProviderError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "echo: hi", out)
		})
	}
}

func TestWithRetry_DoesNotRetryUnavailable(t *testing.T) {
	var calls int32
	gen := GeneratorFunc(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", &ProviderError{Provider: "null", Err: ErrUnavailable}
	})
	_, err := WithRetry(gen, 5).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithRateLimit_PassesThrough(t *testing.T) {
	gen := WithRateLimit(&failNTimes{}, 1000, 5)
	for i := 0; i < 3; i++ {
		out, err := gen.Complete(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "echo: p", out)
	}
}

func TestWithRateLimit_CancelledContext(t *testing.T) {
	gen := WithRateLimit(&failNTimes{}, 0.001, 1)
	_, err := gen.Complete(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gen.Complete(ctx, "second")
	require.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestInstrument(t *testing.T) {
	obs := &recordingObserver{}
	gen := Instrument(&failNTimes{failures: 1}, obs)
	_, _ = gen.Complete(context.Background(), "a")
	_, _ = gen.Complete(context.Background(), "b")
	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, 1, obs.errors)

	assert.Nil(t, Instrument(nil, obs))
}

func TestClaude_Complete(t *testing.T) {
	var gotKey, gotVersion string
	var gotReq claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Incidence is 5% [Smith (2020)]."},{"type":"tool_use","text":""}]}`)
	}))
	defer ts.Close()

	c := &Claude{APIKey: "secret", Model: "m", BaseURL: ts.URL, Client: ts.Client()}
	out, err := c.Complete(context.Background(), "write it")
	require.NoError(t, err)

	assert.Equal(t, "Incidence is 5% [Smith (2020)].", out)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, claudeVersion, gotVersion)
	assert.Equal(t, "m", gotReq.Model)
	assert.Equal(t, defaultMaxTokens, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "write it", gotReq.Messages[0].Content)
}

func TestClaude_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, "returned 500"},
		{"bad json", http.StatusOK, `not json`, "decoding Claude response"},
		{"no text blocks", http.StatusOK, `{"content":[]}`, "no text content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := &Claude{APIKey: "k", BaseURL: ts.URL, Client: ts.Client()}
			_, err := c.Complete(context.Background(), "p")
			require.Error(t, err)
			assert.True(t, IsProviderError(err))
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}

func TestClaude_NoAPIKey(t *testing.T) {
	_, err := (&Claude{}).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAI_Complete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Grounded prose."},"finish_reason":"stop"}]}`)
	}))
	defer ts.Close()

	gen := NewOpenAI("sk-test", "", ts.URL, 0)
	out, err := gen.Complete(context.Background(), "write")
	require.NoError(t, err)
	assert.Equal(t, "Grounded prose.", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, defaultOpenAIModel, gotBody["model"])
}

func TestOpenAI_ErrorIsProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer ts.Close()

	_, err := NewOpenAI("sk-bad", "m", ts.URL, 10).Complete(context.Background(), "p")
	require.Error(t, err)
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, openAIProvider, pe.Provider)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       types.AIConfig
		wantErr   bool
		wantAvail bool
	}{
		{"empty provider is standalone", types.AIConfig{}, false, false},
		{"none", types.AIConfig{Provider: types.ProviderNone}, false, false},
		{"claude with key", types.AIConfig{Provider: types.ProviderClaude, APIKey: "k"}, false, true},
		{"claude without key", types.AIConfig{Provider: types.ProviderClaude}, true, false},
		{"openai with key", types.AIConfig{Provider: types.ProviderOpenAI, APIKey: "k", RequestsPerSecond: 2}, false, true},
		{"openai without key", types.AIConfig{Provider: types.ProviderOpenAI}, true, false},
		{"unknown", types.AIConfig{Provider: "bard"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvail, Available(gen))
		})
	}
}
