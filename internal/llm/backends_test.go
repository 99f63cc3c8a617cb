package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const draftJSON = `{"prompt":"Which port does HTTPS use?","options":["80","443"],"correct":[1]}`

func draftSchema() *Schema {
	return &Schema{
		Name: "test-draft",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt":  map[string]any{"type": "string"},
				"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"correct": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			},
			"required": []string{"prompt"},
		},
	}
}

func serve(t *testing.T, status int, body any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func openAICompletion(text, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": text},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestAnthropicProvider(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr any
	}{
		{"ok", http.StatusOK, anthropicMessage(draftJSON, "end_turn"), nil},
		{"schema mismatch", http.StatusOK, anthropicMessage(`{"options":[]}`, "end_turn"), &ErrInvalidResponse{}},
		{"truncated", http.StatusOK, anthropicMessage(`{"prompt":"Which`, "max_tokens"), &ErrMaxTokensExceeded{}},
		{"rate limited", http.StatusTooManyRequests, map[string]any{"type": "error", "error": map[string]any{"type": "rate_limit_error", "message": "slow down"}}, &ErrRateLimit{}},
		{"server error", http.StatusInternalServerError, map[string]any{"type": "error", "error": map[string]any{"type": "api_error", "message": "boom"}}, &ErrProviderUnavailable{}},
		{"bad request", http.StatusBadRequest, map[string]any{"type": "error", "error": map[string]any{"type": "invalid_request_error", "message": "no"}}, &ErrRequestRejected{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAnthropicProvider(BackendConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: serve(t, tt.status, tt.body)})
			if err != nil {
				t.Fatalf("new provider: %v", err)
			}
			resp, err := p.Generate(context.Background(), Ask("sys", "draft", draftSchema(), 256))
			checkOutcome(t, resp, err, tt.wantErr)
			if err == nil && resp.Usage.TotalTokens != 80 {
				t.Fatalf("TotalTokens = %d, want 80", resp.Usage.TotalTokens)
			}
		})
	}
}

func TestOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr any
	}{
		{"ok", http.StatusOK, openAICompletion(draftJSON, "stop"), nil},
		{"truncated", http.StatusOK, openAICompletion(`{"prompt"`, "length"), &ErrMaxTokensExceeded{}},
		{"rate limited", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down", "type": "tokens"}}, &ErrRateLimit{}},
		{"server error", http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}}, &ErrProviderUnavailable{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenAIProvider(BackendConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: serve(t, tt.status, tt.body) + "/v1"})
			if err != nil {
				t.Fatalf("new provider: %v", err)
			}
			resp, err := p.Generate(context.Background(), Ask("sys", "draft", draftSchema(), 256))
			checkOutcome(t, resp, err, tt.wantErr)
			if err == nil && resp.Usage.InputTokens != 40 {
				t.Fatalf("InputTokens = %d, want 40", resp.Usage.InputTokens)
			}
		})
	}
}

func TestOpenRouterDefaults(t *testing.T) {
	if _, err := NewOpenRouterProvider(BackendConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
	p, err := NewOpenRouterProvider(BackendConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "google/gemini-2.0-flash-001" {
		t.Fatalf("ModelID() = %q", p.ModelID())
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input  string
		models map[string]string
		want   string
	}{
		{"claude-haiku", anthropicModels, "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", anthropicModels, "claude-sonnet-4-20250514"},
		{"gemini-flash", geminiModels, "gemini-2.0-flash"},
		{"gemini-2.5-flash", geminiModels, "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, tt.models); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind":    map[string]any{"type": "string", "enum": []any{"multiple-choice", "short-answer"}},
			"correct": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		},
		"required": []string{"kind"},
	})

	if s.Type != "OBJECT" {
		t.Fatalf("Type = %s, want OBJECT", s.Type)
	}
	if got := s.Properties["kind"].Enum; len(got) != 2 {
		t.Fatalf("kind enum = %v", got)
	}
	if s.Properties["correct"].Items.Type != "INTEGER" {
		t.Fatalf("correct items = %s", s.Properties["correct"].Items.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "kind" {
		t.Fatalf("Required = %v", s.Required)
	}
}

func checkOutcome(t *testing.T, resp *Response, err error, wantErr any) {
	t.Helper()
	if wantErr == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Content) != draftJSON {
			t.Fatalf("content = %s", resp.Content)
		}
		if resp.StopReason != StopEnd {
			t.Fatalf("StopReason = %q", resp.StopReason)
		}
		return
	}
	if err == nil {
		t.Fatal("expected error")
	}
	ok := false
	switch wantErr.(type) {
	case *ErrInvalidResponse:
		var e *ErrInvalidResponse
		ok = errors.As(err, &e)
	case *ErrMaxTokensExceeded:
		var e *ErrMaxTokensExceeded
		ok = errors.As(err, &e)
	case *ErrRateLimit:
		var e *ErrRateLimit
		ok = errors.As(err, &e)
	case *ErrProviderUnavailable:
		var e *ErrProviderUnavailable
		ok = errors.As(err, &e)
	case *ErrRequestRejected:
		var e *ErrRequestRejected
		ok = errors.As(err, &e)
	}
	if !ok {
		t.Fatalf("error = %T (%v), want %T", err, err, wantErr)
	}
}
