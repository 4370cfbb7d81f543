package model

import (
	"time"
)

// Message roles as stored. Only user and assistant messages are replayed
// into the prompt window.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation groups the messages of one resident dialogue.
type Conversation struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	PropertyID int64     `json:"property_id" gorm:"index;not null"`
	Title      string    `json:"title" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "assistant_conversations"
}

// Message is a single turn inside a conversation.
type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID string    `json:"conversation_id" gorm:"type:varchar(64);index;not null"`
	Role           string    `json:"role" gorm:"type:varchar(16);not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	Tokens         int       `json:"tokens" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "assistant_messages"
}
