package assistant

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

// Store is the persistence wrapper for conversations and their messages.
// All reads and writes are scoped to the owning user.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to the given transaction handle.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

const titleMaxLen = 60

// CreateConversation starts a conversation for the user, titling it from the
// first message.
func (s *Store) CreateConversation(userID uint, firstMessage string) (*models.Conversation, error) {
	title := firstMessage
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = string(runes[:titleMaxLen]) + "..."
	}
	conversation := models.Conversation{UserID: userID, Title: title}
	if err := s.db.Create(&conversation).Error; err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return &conversation, nil
}

// GetOwned fetches a conversation only if it belongs to the user. A missing
// row and an ownership mismatch are the same gorm.ErrRecordNotFound.
func (s *Store) GetOwned(conversationID, userID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// AppendMessage adds one turn to the conversation. Append-only.
func (s *Store) AppendMessage(conversationID uint, role, content string) (*models.Message, error) {
	message := models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}
	return &message, nil
}

// RecentMessages returns the most recent limit messages in chronological
// order, for use as model context.
func (s *Store) RecentMessages(conversationID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("loading context: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListByOwner returns the user's conversations, most recently updated first,
// with messages preloaded for the message_count field.
func (s *Store) ListByOwner(userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.Preload("Messages").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return conversations, nil
}

// FetchWithMessages returns an owned conversation with its messages in
// chronological order.
func (s *Store) FetchWithMessages(conversationID, userID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	}).Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// SetSaved updates the saved flag on an owned conversation.
func (s *Store) SetSaved(conversationID, userID uint, saved bool) error {
	result := s.db.Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Update("is_saved", saved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch bumps the conversation's updated_at so recency ordering reflects the
// latest turn.
func (s *Store) Touch(conversationID uint) error {
	return s.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now()).Error
}

// DeleteConversation removes an owned conversation and, explicitly, its
// messages. The cascade lives here rather than in implicit object traversal.
func (s *Store) DeleteConversation(conversationID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conversation).Error
	})
}
