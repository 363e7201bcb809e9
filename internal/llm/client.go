package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

const defaultModel = "gpt-4o-mini"

// wire types for the chat completions endpoint

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   *int         `json:"max_completion_tokens,omitempty"`
	Tools       []ToolDef    `json:"tools,omitempty"`
}

type apiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []apiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type apiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type apiResponse struct {
	Choices []struct {
		Message      apiMessage `json:"message"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions endpoint over plain
// net/http. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient builds a client for api.openai.com. An empty model falls back
// to the default. An empty apiKey yields a client whose calls fail; callers
// decide whether that is fatal.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL is NewClient pointed at a different endpoint. Used by
// tests to target an httptest server.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

func (c *Client) Model() string { return c.model }

// Chat sends the conversation with optional tool definitions and returns the
// assistant's reply. A nil tools slice requests a plain text completion.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, tools []ToolDef) (*ChatResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openai: API key is not configured")
	}

	req := apiRequest{
		Model:    c.model,
		Messages: make([]apiMessage, 0, len(messages)),
		Tools:    tools,
	}
	for _, msg := range messages {
		am := apiMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			atc := apiToolCall{ID: tc.ID, Type: "function"}
			atc.Function.Name = tc.Name
			atc.Function.Arguments = tc.ArgumentsString()
			am.ToolCalls = append(am.ToolCalls, atc)
		}
		req.Messages = append(req.Messages, am)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("chat completion request", "model", c.model, "messages", len(messages), "tools", len(tools))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("openai: parsing response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai: API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai: response has no choices")
	}

	choice := parsed.Choices[0]
	result := &ChatResult{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = uuid.New().String()
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	slog.Debug("chat completion response",
		"finish_reason", choice.FinishReason,
		"tool_calls", len(result.ToolCalls),
		"content_len", len(result.Content),
	)
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
