package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatPlainCompletion(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-key", "gpt-4o-mini", srv.URL)
	result, err := client.Chat(context.Background(), []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", result.Content)
	assert.Empty(t, result.ToolCalls)

	assert.Equal(t, "gpt-4o-mini", received["model"])
	assert.Nil(t, received["tools"])
}

func TestChatParsesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_9","type":"function","function":{"name":"get_match_details","arguments":"{\"match_number\":\"M1\"}"}}]},"finish_reason":"tool_calls"}]}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-key", "", srv.URL)
	result, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "M1?"}}, []ToolDef{
		{Type: "function", Function: ToolFunction{Name: "get_match_details"}},
	})
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_9", result.ToolCalls[0].ID)
	assert.Equal(t, "get_match_details", result.ToolCalls[0].Name)
	assert.JSONEq(t, `{"match_number":"M1"}`, string(result.ToolCalls[0].Arguments))
}

func TestChatErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := NewClient("", "")
		_, err := client.Chat(context.Background(), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClientWithBaseURL("test-key", "", srv.URL)
		_, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "x"}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("API error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"bad model"}}`)
		}))
		defer srv.Close()

		client := NewClientWithBaseURL("test-key", "", srv.URL)
		_, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "x"}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad model")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		defer srv.Close()

		client := NewClientWithBaseURL("test-key", "", srv.URL)
		_, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "x"}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})
}
