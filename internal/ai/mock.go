package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// MockClient answers locally with a chat completions shaped body.
type MockClient struct {
	Model string
}

func (m MockClient) Complete(_ context.Context, req CompletionRequest) (Response, error) {
	if err := ValidateMessages(req.Messages); err != nil {
		return Response{}, err
	}
	var turns []Message
	_ = json.Unmarshal(req.Messages, &turns)

	question := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if strings.EqualFold(turns[i].Role, RoleUser) {
			question = strings.TrimSpace(turns[i].Content)
			break
		}
	}
	if question == "" {
		question = "No question provided."
	}

	answer := "Mock response: " + question
	if strings.Contains(strings.ToLower(question), "routine") {
		answer = strings.Join([]string{
			"**Morning routine:** 1. Cleanse with lukewarm water",
			"- massage for 60 seconds",
			"2. Apply moisturizer",
			"3. Finish with sunscreen",
			"",
			"Evening routine:",
			"1. Remove makeup",
			"2. Apply serum",
			"",
			"Learn more at https://www.loreal.com/en/",
		}, "\n")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(m.Model)
	}
	if model == "" {
		model = "gpt-4o"
	}
	body, err := json.Marshal(map[string]any{
		"object": "chat.completion",
		"model":  model,
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    RoleAssistant,
					"content": answer,
				},
			},
		},
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: body}, nil
}
