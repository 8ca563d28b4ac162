package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fibrelink/backend/internal/ai"
	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/ratelimit"
	"github.com/fibrelink/backend/internal/utils"
)

type ChatStore interface {
	LatestConversation(ctx context.Context, userID string) (models.Conversation, bool, error)
	InsertConversation(ctx context.Context, c models.Conversation) error
	InsertMessage(ctx context.Context, m models.Message) error
	ListMessagesBefore(ctx context.Context, conversationID, cursor string, limit int) ([]models.Message, error)
}

// SendResult is the outcome of one chat turn.
type SendResult struct {
	Reply            string
	SuggestedActions []json.RawMessage
	ConversationID   string
	MessageID        string
	ReplyMessageID   string
}

// HistoryPage is one page of chat history, chronological within the page.
// NextCursor is set only when the page was full; a partial page signals
// exhaustion.
type HistoryPage struct {
	ConversationID string
	Messages       []models.Message
	NextCursor     *string
}

// ChatService orchestrates chat turns: conversation continuity, message
// persistence, rate limiting, and the external AI reply call.
type ChatService struct {
	Store   ChatStore
	Replier ai.Replier
	Limiter ratelimit.Limiter
	Logger  zerolog.Logger
}

// Send runs one chat turn. The rate limit is checked first: a limited send
// persists nothing and never reaches the AI engine. An AI failure after the
// user message was stored is surfaced as an upstream error without rolling
// the user message back.
func (s *ChatService) Send(ctx context.Context, p auth.Principal, message string, chatContext json.RawMessage) (SendResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return SendResult{}, fmt.Errorf("%w: message required", ErrInvalidInput)
	}
	if !s.Limiter.Allow(p.UserID) {
		return SendResult{}, ErrRateLimited
	}

	conv, err := s.activeConversation(ctx, p.UserID)
	if err != nil {
		return SendResult{}, err
	}

	userMsg := models.Message{
		ID:             utils.NewID(),
		ConversationID: conv.ID,
		Sender:         models.SenderUser,
		Text:           &message,
		CreatedAt:      time.Now().UTC(),
	}
	if len(chatContext) > 0 {
		userMsg.Payload = wrapPayload("context", chatContext)
	}
	if err := s.Store.InsertMessage(ctx, userMsg); err != nil {
		return SendResult{}, err
	}

	reply, err := s.Replier.ReplyTo(ctx, p.UserID, message, chatContext)
	if err != nil {
		// The user message stays persisted; only the reply turn is lost.
		s.Logger.Warn().Err(err).Str("conversation_id", conv.ID).Str("user_id", p.UserID).
			Msg("ai reply failed after user message was stored")
		return SendResult{}, fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	aiMsg := models.Message{
		ID:             utils.NewID(),
		ConversationID: conv.ID,
		Sender:         models.SenderAI,
		Text:           &reply.Text,
		CreatedAt:      time.Now().UTC(),
	}
	if len(reply.SuggestedActions) > 0 {
		actions, _ := json.Marshal(reply.SuggestedActions)
		aiMsg.Payload = wrapPayload("suggested_actions", actions)
	}
	if err := s.Store.InsertMessage(ctx, aiMsg); err != nil {
		return SendResult{}, err
	}

	actions := reply.SuggestedActions
	if actions == nil {
		actions = []json.RawMessage{}
	}
	return SendResult{
		Reply:            reply.Text,
		SuggestedActions: actions,
		ConversationID:   conv.ID,
		MessageID:        userMsg.ID,
		ReplyMessageID:   aiMsg.ID,
	}, nil
}

// History returns up to limit most recent messages of the user's active
// conversation, strictly older than cursor when given, in chronological
// order within the page.
func (s *ChatService) History(ctx context.Context, p auth.Principal, limit int, cursor string) (HistoryPage, error) {
	if limit == 0 {
		limit = 20
	}
	if limit < 1 || limit > 100 {
		return HistoryPage{}, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidInput)
	}
	if cursor != "" && !utils.ValidID(cursor) {
		return HistoryPage{}, fmt.Errorf("%w: malformed cursor", ErrInvalidInput)
	}

	conv, ok, err := s.Store.LatestConversation(ctx, p.UserID)
	if err != nil {
		return HistoryPage{}, err
	}
	if !ok {
		return HistoryPage{Messages: []models.Message{}}, nil
	}

	msgs, err := s.Store.ListMessagesBefore(ctx, conv.ID, cursor, limit)
	if err != nil {
		return HistoryPage{}, err
	}
	// newest-first from the store; reverse to chronological
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	page := HistoryPage{ConversationID: conv.ID, Messages: msgs}
	if len(msgs) == limit {
		oldest := msgs[0].ID
		page.NextCursor = &oldest
	}
	return page, nil
}

// activeConversation resolves the user's most recently active conversation,
// creating one lazily on first send.
func (s *ChatService) activeConversation(ctx context.Context, userID string) (models.Conversation, error) {
	conv, ok, err := s.Store.LatestConversation(ctx, userID)
	if err != nil {
		return models.Conversation{}, err
	}
	if ok {
		return conv, nil
	}

	ts := time.Now().UTC()
	conv = models.Conversation{
		ID:            utils.NewID(),
		UserID:        userID,
		StartedAt:     ts,
		LastMessageAt: ts,
		Meta:          json.RawMessage(`{}`),
	}
	if err := s.Store.InsertConversation(ctx, conv); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

func wrapPayload(key string, value json.RawMessage) json.RawMessage {
	b, _ := json.Marshal(map[string]json.RawMessage{key: value})
	return b
}
