package chat

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/hook"
	"github.com/learnai-app/learnai-backend/internal/scope"
)

const (
	fallbackError    = "Désolé, une erreur est survenue. Veuillez réessayer."
	fallbackNoAnswer = "Désolé, je n'ai pas pu générer une réponse."
)

// reEdgeQuotes strips stray quoting the webhook sometimes wraps answers
// in: leading brackets or quotes and trailing quotes.
var reEdgeQuotes = regexp.MustCompile("^[\\[\"'`]+|[\"'`]+$")

// chatPayload is the wire shape the assistant webhook expects.
type chatPayload struct {
	Question string `json:"question"`
}

// ChatService persists the conversation and relays questions to the
// assistant webhook. Webhook failures never surface as errors; the
// assistant answers with canned French text so the conversation always
// gets a reply row.
type ChatService struct {
	db     *gorm.DB
	client *hook.Client
	url    string
}

func NewChatService(db *gorm.DB, client *hook.Client, url string) *ChatService {
	return &ChatService{db: db, client: client, url: url}
}

// SendMessage stores the question, asks the webhook, and stores the
// answer. Both rows are returned so the client can append them without
// refetching the history.
func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, question string) (*SendMessageResponse, error) {
	userMsg := ChatMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Role:    RoleUser,
		Content: question,
	}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return nil, err
	}

	answer := s.ask(ctx, question)

	aiMsg := ChatMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Role:    RoleAssistant,
		Content: answer,
	}
	if err := s.db.Create(&aiMsg).Error; err != nil {
		return nil, err
	}

	return &SendMessageResponse{Question: userMsg, Answer: aiMsg}, nil
}

func (s *ChatService) ask(ctx context.Context, question string) string {
	raw, err := s.client.Post(ctx, s.url, chatPayload{Question: question})
	if err != nil {
		slog.Error("chat webhook call failed", "error", err)
		return fallbackError
	}

	answer := strings.TrimSpace(hook.ExtractText(raw))
	answer = reEdgeQuotes.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)
	if answer == "" {
		slog.Warn("chat webhook returned empty response")
		return fallbackNoAnswer
	}
	return answer
}

// History returns the user's conversation in chronological order.
func (s *ChatService) History(userID uuid.UUID) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := s.db.Scopes(scope.ForUser(userID)).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Clear wipes the user's conversation.
func (s *ChatService) Clear(userID uuid.UUID) error {
	return s.db.Scopes(scope.ForUser(userID)).Delete(&ChatMessage{}).Error
}

// PurgeUser deletes the user's conversation inside the account deletion
// transaction.
func PurgeUser(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&ChatMessage{}).Error
}
