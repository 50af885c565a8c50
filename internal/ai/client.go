package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"skincarechat/internal/config"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var ErrMessagesNotArray = errors.New("messages must be an array")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest mirrors the chat completions body. Messages is kept as
// raw JSON so proxied requests reach the upstream untouched.
type CompletionRequest struct {
	Messages    json.RawMessage `json:"messages"`
	Model       string          `json:"model,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

// Response is the upstream status and body, unmodified.
type Response struct {
	Status int
	Body   []byte
}

func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Response, error)
}

// Defaults fills unset request fields.
type Defaults struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func DefaultsFromConfig(cfg config.Config) Defaults {
	d := Defaults{
		Model:       strings.TrimSpace(cfg.OpenAIModel),
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxOutputTokens,
	}
	if d.Model == "" {
		d.Model = "gpt-4o"
	}
	if d.MaxTokens <= 0 {
		d.MaxTokens = 800
	}
	return d
}

func (d Defaults) apply(req CompletionRequest) CompletionRequest {
	if strings.TrimSpace(req.Model) == "" {
		req.Model = d.Model
	}
	if req.Temperature == nil {
		t := d.Temperature
		req.Temperature = &t
	}
	if req.MaxTokens == nil {
		n := d.MaxTokens
		req.MaxTokens = &n
	}
	return req
}

// NewConversation encodes turns as the messages array of a request.
func NewConversation(turns []Message) CompletionRequest {
	if turns == nil {
		turns = []Message{}
	}
	raw, _ := json.Marshal(turns)
	return CompletionRequest{Messages: raw}
}

// ValidateMessages reports ErrMessagesNotArray unless raw is a JSON array.
func ValidateMessages(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		return ErrMessagesNotArray
	}
	return nil
}

type OpenAIClient struct {
	apiKey     string
	baseURL    string
	defaults   Defaults
	httpClient *http.Client
	log        zerolog.Logger
}

func NewOpenAIClient(cfg config.Config, log zerolog.Logger) *OpenAIClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &OpenAIClient{
		apiKey:   strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		defaults: DefaultsFromConfig(cfg),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		log: log,
	}
}

// New returns the client selected by AI_PROVIDER.
func New(cfg config.Config, log zerolog.Logger) Client {
	if cfg.AIProvider == config.AIProviderMock {
		return MockClient{Model: DefaultsFromConfig(cfg).Model}
	}
	return NewOpenAIClient(cfg, log)
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (Response, error) {
	if c.apiKey == "" {
		return Response{}, errors.New("OPENAI_API_KEY is not configured")
	}
	if c.baseURL == "" {
		return Response{}, errors.New("OPENAI_BASE_URL is not configured")
	}
	if err := ValidateMessages(req.Messages); err != nil {
		return Response{}, err
	}

	bodyRaw, err := json.Marshal(c.defaults.apply(req))
	if err != nil {
		return Response{}, err
	}
	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(bodyRaw),
	)
	if err != nil {
		return Response{}, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Response{}, fmt.Errorf("openai request failed: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read openai response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.log.Warn().
			Int("status", response.StatusCode).
			Str("body", truncateForLog(string(responseBody), 1200)).
			Msg("openai returned an error status")
	}
	return Response{Status: response.StatusCode, Body: responseBody}, nil
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}
