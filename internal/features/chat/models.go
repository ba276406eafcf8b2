package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the assistant conversation. User questions
// and assistant answers are separate rows sharing the owner's UserID.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// --- DTOs ---

type SendMessageRequest struct {
	Question string `json:"question"`
}

type SendMessageResponse struct {
	Question ChatMessage `json:"question"`
	Answer   ChatMessage `json:"answer"`
}

type HistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
	Total    int           `json:"total"`
}
