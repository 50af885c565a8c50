package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"skincarechat/internal/config"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		OpenAIAPIKey:      "sk-test",
		OpenAIBaseURL:     baseURL + "/",
		OpenAIModel:       "gpt-4o",
		AIProvider:        config.AIProviderOpenAI,
		AITemperature:     0.7,
		AIMaxOutputTokens: 800,
		AITimeoutSeconds:  2,
	}
}

func TestOpenAIClientFillsDefaults(t *testing.T) {
	t.Parallel()

	var (
		gotPath   string
		gotAuth   string
		gotBody   map[string]any
		decodeErr error
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		decodeErr = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(testConfig(server.URL), zerolog.Nop())
	resp, err := client.Complete(context.Background(), NewConversation([]Message{{Role: RoleUser, Content: "hello"}}))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if decodeErr != nil {
		t.Fatalf("decode upstream body: %v", decodeErr)
	}
	if !resp.OK() || resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Status)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o" || gotBody["temperature"] != 0.7 || gotBody["max_tokens"] != float64(800) {
		t.Fatalf("defaults not applied: %#v", gotBody)
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %#v", gotBody["messages"])
	}
	if reply, ok := ExtractReply(resp.Body); !ok || reply != "hi" {
		t.Fatalf("ExtractReply = %q, %v", reply, ok)
	}
}

func TestOpenAIClientKeepsExplicitValuesAndPassesErrors(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	temp := 0.0
	tokens := 50
	req := CompletionRequest{
		Messages:    json.RawMessage(`[{"role":"user","content":"x","name":"extra"}]`),
		Model:       "gpt-4o-mini",
		Temperature: &temp,
		MaxTokens:   &tokens,
	}
	resp, err := NewOpenAIClient(testConfig(server.URL), zerolog.Nop()).Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Status != http.StatusTooManyRequests || resp.OK() {
		t.Fatalf("expected upstream status to pass through, got %d", resp.Status)
	}
	if !strings.Contains(string(resp.Body), "slow down") {
		t.Fatalf("expected upstream body, got %s", resp.Body)
	}
	if gotBody["model"] != "gpt-4o-mini" || gotBody["temperature"] != 0.0 || gotBody["max_tokens"] != float64(50) {
		t.Fatalf("explicit values overwritten: %#v", gotBody)
	}
	first := gotBody["messages"].([]any)[0].(map[string]any)
	if first["name"] != "extra" {
		t.Fatalf("message fields not forwarded: %#v", first)
	}
}

func TestOpenAIClientRejectsNonArrayMessages(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(testConfig("http://127.0.0.1:0"), zerolog.Nop())
	for _, raw := range []string{``, `{}`, `"hi"`, `[1,`} {
		_, err := client.Complete(context.Background(), CompletionRequest{Messages: json.RawMessage(raw)})
		if !errors.Is(err, ErrMessagesNotArray) {
			t.Fatalf("messages %q: expected ErrMessagesNotArray, got %v", raw, err)
		}
	}
}

func TestOpenAIClientTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewOpenAIClient(testConfig(url), zerolog.Nop()).Complete(
		context.Background(),
		NewConversation([]Message{{Role: RoleUser, Content: "hello"}}),
	)
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://example.invalid")
	cfg.OpenAIAPIKey = " "
	_, err := NewOpenAIClient(cfg, zerolog.Nop()).Complete(context.Background(), NewConversation(nil))
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://example.invalid")
	if _, ok := New(cfg, zerolog.Nop()).(*OpenAIClient); !ok {
		t.Fatal("expected OpenAIClient for openai provider")
	}
	cfg.AIProvider = config.AIProviderMock
	if _, ok := New(cfg, zerolog.Nop()).(MockClient); !ok {
		t.Fatal("expected MockClient for mock provider")
	}
}

func TestMockClient(t *testing.T) {
	t.Parallel()

	resp, err := MockClient{}.Complete(context.Background(), NewConversation([]Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "ok"},
		{Role: RoleUser, Content: "what is niacinamide?"},
	}))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	reply, ok := ExtractReply(resp.Body)
	if !ok || reply != "Mock response: what is niacinamide?" {
		t.Fatalf("unexpected reply %q", reply)
	}

	resp, _ = MockClient{}.Complete(context.Background(), NewConversation([]Message{
		{Role: RoleUser, Content: "Build my routine please"},
	}))
	reply, _ = ExtractReply(resp.Body)
	if !strings.Contains(reply, "1. Cleanse") {
		t.Fatalf("expected routine reply, got %q", reply)
	}
}
