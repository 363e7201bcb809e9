package llm

import "encoding/json"

// ToolDef describes one callable function offered to the model, following
// the OpenAI function-calling schema.
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolParamDef `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type ToolParamDef struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Enum        []string                `json:"enum,omitempty"`
	Items       *ToolParamDef           `json:"items,omitempty"`
	Properties  map[string]ToolParamDef `json:"properties,omitempty"`
}

// ChatMessage is one turn of the request conversation. Tool result turns
// carry the ToolCallID they answer; assistant turns may carry tool calls.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-initiated request to invoke one named function.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ArgumentsString returns the call arguments as a JSON object string,
// defaulting to "{}" when the model sent none.
func (t *ToolCall) ArgumentsString() string {
	if len(t.Arguments) == 0 {
		return "{}"
	}
	return string(t.Arguments)
}

// ChatResult is the model's reply: text, tool calls, or both.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}
