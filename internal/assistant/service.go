package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/llm"
	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

// contextWindow is how many prior messages are replayed to the model.
const contextWindow = 10

// ErrConversationNotFound is returned when the supplied conversation id does
// not exist or belongs to a different user.
var ErrConversationNotFound = errors.New("conversation not found")

const failureReply = "I apologize, but I encountered an error processing your request. Please try again."

// TurnResult is the outcome of one chat turn, including which tool (if any)
// ran and its raw result for client-side transparency.
type TurnResult struct {
	ConversationID uint        `json:"conversation_id"`
	Response       string      `json:"response"`
	FunctionCalled string      `json:"function_called,omitempty"`
	FunctionResult interface{} `json:"function_result,omitempty"`
	Error          bool        `json:"error,omitempty"`
}

// Service owns the conversation turn: it builds the prompt, offers the query
// function library as tools, executes the tool the model selects, and
// produces the final natural-language reply.
type Service struct {
	db     *gorm.DB
	client *llm.Client
	store  *Store
}

// NewService wires the dispatch layer. Registry construction validates the
// tool schema, so a mismatched tool fails startup rather than a live turn.
// Each turn then builds its own registry bound to the turn's transaction.
func NewService(db *gorm.DB, client *llm.Client) (*Service, error) {
	if _, err := NewRegistry(NewQueries(db), NewSQLGate(db)); err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}
	return &Service{
		db:     db,
		client: client,
		store:  NewStore(db),
	}, nil
}

// Store exposes the conversation store for the HTTP handlers.
func (s *Service) Store() *Store {
	return s.store
}

// ProcessMessage runs one chat turn. The conversation is resolved (or created
// lazily), both turns are persisted, and any failure after validation rolls
// the turn's writes back and surfaces a generic failure reply. Model calls
// are one-shot; there are no retries.
func (s *Service) ProcessMessage(ctx context.Context, userID uint, message string, conversationID *uint) (*TurnResult, error) {
	var conversation *models.Conversation
	if conversationID != nil {
		owned, err := s.store.GetOwned(*conversationID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		conversation = owned
	} else {
		created, err := s.store.CreateConversation(userID, message)
		if err != nil {
			return nil, err
		}
		conversation = created
	}

	result := &TurnResult{ConversationID: conversation.ID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		// Tool reads and the query log share the turn's transaction.
		registry, err := NewRegistry(NewQueries(tx), NewSQLGate(tx))
		if err != nil {
			return err
		}

		history, err := store.RecentMessages(conversation.ID, contextWindow)
		if err != nil {
			return err
		}

		if _, err := store.AppendMessage(conversation.ID, models.RoleUser, message); err != nil {
			return err
		}

		chat := make([]llm.ChatMessage, 0, len(history)+2)
		chat = append(chat, llm.ChatMessage{Role: "system", Content: systemPrompt})
		for _, m := range history {
			chat = append(chat, llm.ChatMessage{Role: m.Role, Content: m.Content})
		}
		chat = append(chat, llm.ChatMessage{Role: models.RoleUser, Content: message})

		reply, err := s.client.Chat(ctx, chat, registry.Defs())
		if err != nil {
			return fmt.Errorf("model call: %w", err)
		}

		answer := reply.Content
		if len(reply.ToolCalls) > 0 {
			// Execute only the first requested call; one tool per turn.
			call := reply.ToolCalls[0]
			slog.Info("dispatching tool call",
				"user_id", userID,
				"conversation_id", conversation.ID,
				"function", call.Name,
			)

			toolResult, dispatchErr := registry.Dispatch(userID, call.Name, call.Arguments)
			if dispatchErr != nil {
				toolResult = map[string]interface{}{"error": dispatchErr.Error()}
			}
			result.FunctionCalled = call.Name
			result.FunctionResult = toolResult

			resultJSON, err := json.Marshal(toolResult)
			if err != nil {
				return fmt.Errorf("encoding tool result: %w", err)
			}

			chat = append(chat, llm.ChatMessage{
				Role:      models.RoleAssistant,
				ToolCalls: []llm.ToolCall{call},
			})
			chat = append(chat, llm.ChatMessage{
				Role:       "tool",
				Content:    string(resultJSON),
				ToolCallID: call.ID,
			})

			final, err := s.client.Chat(ctx, chat, nil)
			if err != nil {
				return fmt.Errorf("model call with tool result: %w", err)
			}
			answer = final.Content
		}

		if _, err := store.AppendMessage(conversation.ID, models.RoleAssistant, answer); err != nil {
			return err
		}
		if err := store.Touch(conversation.ID); err != nil {
			return err
		}

		result.Response = answer
		return nil
	})
	if err != nil {
		slog.Error("chat turn failed",
			"user_id", userID,
			"conversation_id", conversation.ID,
			"error", err,
		)
		return &TurnResult{
			ConversationID: conversation.ID,
			Response:       failureReply,
			Error:          true,
		}, nil
	}

	return result, nil
}
