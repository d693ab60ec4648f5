package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-kitchen/internal/config"
)

func TestOpenAIClientGenerateContent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_key" {
				t.Errorf("Expected bearer auth, got '%s'", got)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode request: %v", err)
				return
			}
			if body["model"] != "gpt-4o" {
				t.Errorf("Expected model gpt-4o, got %v", body["model"])
			}
			if body["max_tokens"] != float64(4000) {
				t.Errorf("Expected max_tokens 4000, got %v", body["max_tokens"])
			}
			format, _ := body["response_format"].(map[string]any)
			if format["type"] != "json_object" {
				t.Errorf("Expected json_object response format, got %v", body["response_format"])
			}
			msgs, _ := body["messages"].([]any)
			if len(msgs) != 2 {
				t.Errorf("Expected system and user messages, got %d", len(msgs))
				return
			}
			system := msgs[0].(map[string]any)
			if system["role"] != "system" || system["content"] != "be a chef" {
				t.Errorf("Unexpected system message %v", system)
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"model": "gpt-4o-2024-08-06",
				"choices": [{"message": {"content": "{\"ok\": true}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`)
		}))
		defer server.Close()

		cfg := &config.Config{LLMProvider: "openai", LLMBaseURL: server.URL + "/", LLMAPIKey: "test_key"}
		client := NewOpenAIClient(cfg, ModelOptions{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 4000})

		resp, err := client.GenerateContent(context.Background(), Request{System: "be a chef", User: "cook", JSON: true})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.Content != `{"ok": true}` {
			t.Errorf("Unexpected content %q", resp.Content)
		}
		if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 5 || resp.Usage.TotalTokens != 17 {
			t.Errorf("Unexpected usage %+v", resp.Usage)
		}
		if resp.Usage.Model != "gpt-4o-2024-08-06" {
			t.Errorf("Expected model from response, got '%s'", resp.Usage.Model)
		}
	})

	t.Run("ImagesAsDataURLs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Messages []struct {
					Role    string          `json:"role"`
					Content json.RawMessage `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Messages) == 0 {
				t.Errorf("failed to decode request: %v", err)
				return
			}
			user := body.Messages[len(body.Messages)-1]
			var parts []contentPart
			if err := json.Unmarshal(user.Content, &parts); err != nil {
				t.Errorf("Expected content parts for image request: %v", err)
				return
			}
			if len(parts) != 2 || parts[1].Type != "image_url" || parts[1].ImageURL == nil {
				t.Errorf("Unexpected parts %+v", parts)
				return
			}
			if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
				t.Errorf("Unexpected image URL %s", parts[1].ImageURL.URL)
			}
			fmt.Fprintln(w, `{"choices": [{"message": {"content": "{}"}}]}`)
		}))
		defer server.Close()

		cfg := &config.Config{LLMProvider: "openai", LLMBaseURL: server.URL, LLMAPIKey: "k"}
		client := NewOpenAIClient(cfg, ModelOptions{Model: "gpt-4o"})

		_, err := client.GenerateContent(context.Background(), Request{
			User:   "what is this?",
			Images: []Image{{Data: []byte{0xff, 0xd8}}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "slow down")
		}))
		defer server.Close()

		cfg := &config.Config{LLMProvider: "groq", LLMBaseURL: server.URL, LLMAPIKey: "k"}
		client := NewOpenAIClient(cfg, ModelOptions{Model: "llama"})

		_, err := client.GenerateContent(context.Background(), Request{User: "hi"})
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
		expected := "groq api error: status=429 body=slow down"
		if err.Error() != expected {
			t.Errorf("Expected error '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("NoChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"choices": []}`)
		}))
		defer server.Close()

		cfg := &config.Config{LLMProvider: "openai", LLMBaseURL: server.URL, LLMAPIKey: "k"}
		client := NewOpenAIClient(cfg, ModelOptions{Model: "gpt-4o"})

		_, err := client.GenerateContent(context.Background(), Request{User: "hi"})
		if err == nil || err.Error() != "no content generated" {
			t.Fatalf("Expected 'no content generated', got %v", err)
		}
	})
}

func TestBuildMessagesWithoutSystem(t *testing.T) {
	msgs := buildMessages(Request{User: "hello"})
	if len(msgs) != 1 || msgs[0].Role != "user" || msgs[0].Content != "hello" {
		t.Errorf("Unexpected messages %+v", msgs)
	}
}
