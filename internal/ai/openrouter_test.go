package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeCompletionServer отвечает как OpenAI-совместимый endpoint и
// запоминает модель из последнего запроса.
func fakeCompletionServer(t *testing.T, reply string, lastModel *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		*lastModel = req.Model

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenRouterChat(t *testing.T) {
	var lastModel string
	srv := fakeCompletionServer(t, "the verdict", &lastModel)
	defer srv.Close()

	p := NewOpenRouter(OpenRouterOptions{
		APIKey:  "test-key",
		Model:   "test/model-a",
		BaseURL: srv.URL,
	})

	got, err := p.Chat(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "you are a moderator"},
		{Role: RoleUser, Content: "check this"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "the verdict" {
		t.Errorf("Chat = %q", got)
	}
	if lastModel != "test/model-a" {
		t.Errorf("request model = %q, want test/model-a", lastModel)
	}
}

// TestOpenRouterSetModel: провайдер использует модель, актуальную на момент
// вызова.
func TestOpenRouterSetModel(t *testing.T) {
	var lastModel string
	srv := fakeCompletionServer(t, "ok", &lastModel)
	defer srv.Close()

	p := NewOpenRouter(OpenRouterOptions{APIKey: "k", BaseURL: srv.URL})
	if p.Model() != DefaultModel {
		t.Errorf("Model() = %q, want default", p.Model())
	}

	p.SetModel("test/model-b")
	if _, err := p.Chat(context.Background(), []ChatMessage{{Role: RoleUser, Content: "x"}}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if lastModel != "test/model-b" {
		t.Errorf("request model = %q, want test/model-b", lastModel)
	}
}

func TestOpenRouterTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewOpenRouter(OpenRouterOptions{
		APIKey:  "k",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})

	if _, err := p.Chat(context.Background(), []ChatMessage{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("Chat succeeded, want timeout error")
	}
}

func TestOpenRouterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenRouter(OpenRouterOptions{APIKey: "k", BaseURL: srv.URL})
	if _, err := p.Chat(context.Background(), []ChatMessage{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("Chat succeeded with empty choices")
	}
}
