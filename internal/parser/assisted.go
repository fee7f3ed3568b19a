// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the interface for assisted-parser providers
type Client interface {
	// ParseCapture asks the provider to structure the capture text
	ParseCapture(ctx context.Context, text string, anchorMs int64) (*Result, error)
}

// OpenAIClient implements the Client interface against a chat-completions API
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// ChatCompletionRequest represents the request body for the chat API
type ChatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []ChatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

// ChatMessage is one message in a chat request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the response from the chat API
type ChatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatErrorResponse represents an error response from the chat API
type ChatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

const assistedSystemPrompt = `You structure personal life-log captures. Given one raw capture and its anchor timestamp (ms epoch, user local time), return ONLY a JSON object:
{"events":[{"kind":"event","title":"...","start_at":ms|null,"end_at":ms|null,"explicit_time":bool,"tags":[],"people":[],"location":"","category":"","subcategory":"","importance":0,"difficulty":0,"duration_minutes":0,"notes":""}],
 "tasks":[{"kind":"task","title":"...","estimate_minutes":0,"due_at":ms|null,"checklist":[],"completed":false}],
 "meals":[{"title":"...","kind":"breakfast|lunch|dinner|snack","items":[{"name":"...","qty":1}]}],
 "workouts":[{"title":"...","exercises":[{"name":"...","sets":0,"reps":0,"weight_lb":0,"duration_min":0}]}]}
Only include times the text states explicitly. Importance and difficulty are 1-10, 0 when unstated. Leave arrays empty rather than inventing records.`

// NewOpenAIClient creates a new assisted-parser client
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ParseCapture asks the chat API to structure the capture text
func (c *OpenAIClient) ParseCapture(ctx context.Context, text string, anchorMs int64) (*Result, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: assistedSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("anchor_ms: %d\ncapture:\n%s", anchorMs, text)},
		},
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ChatErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("assisted parser error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("assisted parser error: status %d", resp.StatusCode)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("assisted parser returned no choices")
	}

	return decodeResultContent(chatResp.Choices[0].Message.Content)
}

// decodeResultContent parses the model's JSON payload, tolerating a fenced
// code block around it.
func decodeResultContent(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to decode parser output: %w", err)
	}

	for i := range result.Events {
		if result.Events[i].Kind == "" {
			result.Events[i].Kind = KindEvent
		}
	}
	for i := range result.Tasks {
		result.Tasks[i].Kind = KindTask
	}
	return &result, nil
}

// MockClient is a mock implementation for testing
type MockClient struct {
	ParseCaptureFunc func(ctx context.Context, text string, anchorMs int64) (*Result, error)
	CallCount        int
}

// ParseCapture calls the mock function
func (m *MockClient) ParseCapture(ctx context.Context, text string, anchorMs int64) (*Result, error) {
	m.CallCount++
	if m.ParseCaptureFunc != nil {
		return m.ParseCaptureFunc(ctx, text, anchorMs)
	}
	return &Result{}, nil
}

// AssistedStrategy adapts a Client to the strategy interface.
type AssistedStrategy struct {
	client Client
}

// NewAssistedStrategy wraps an assisted-parser client.
func NewAssistedStrategy(client Client) *AssistedStrategy {
	return &AssistedStrategy{client: client}
}

// Name identifies the strategy in logs
func (s *AssistedStrategy) Name() string {
	return "assisted"
}

// Parse delegates to the client.
func (s *AssistedStrategy) Parse(ctx context.Context, text string, anchorMs int64) (*Result, error) {
	return s.client.ParseCapture(ctx, text, anchorMs)
}
