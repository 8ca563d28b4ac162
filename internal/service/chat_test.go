package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fibrelink/backend/internal/ai"
	"github.com/fibrelink/backend/internal/models"
	"github.com/fibrelink/backend/internal/ratelimit"
)

// scriptedReplier returns a fixed reply, or fails when broken.
type scriptedReplier struct {
	reply   ai.Reply
	broken  bool
	lastMsg string
}

func (r *scriptedReplier) ReplyTo(_ context.Context, _ string, message string, _ json.RawMessage) (ai.Reply, error) {
	r.lastMsg = message
	if r.broken {
		return ai.Reply{}, fmt.Errorf("engine unreachable")
	}
	return r.reply, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

func newChatService(store *memStore, replier ai.Replier, limiter ratelimit.Limiter) *ChatService {
	if limiter == nil {
		limiter = allowAll{}
	}
	return &ChatService{Store: store, Replier: replier, Limiter: limiter, Logger: zerolog.Nop()}
}

func TestSendCreatesConversationAndPersistsBothTurns(t *testing.T) {
	store := newMemStore()
	replier := &scriptedReplier{reply: ai.Reply{
		Text:             "Your connection looks healthy.",
		SuggestedActions: []json.RawMessage{json.RawMessage(`{"label":"Run speed test"}`)},
	}}
	svc := newChatService(store, replier, nil)
	ctx := context.Background()

	res, err := svc.Send(ctx, customer, "Why is my internet slow?", json.RawMessage(`{"page":"dashboard"}`))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Reply != "Your connection looks healthy." {
		t.Fatalf("reply = %q", res.Reply)
	}
	if len(res.SuggestedActions) != 1 {
		t.Fatalf("suggested actions = %d, want 1", len(res.SuggestedActions))
	}
	if replier.lastMsg != "Why is my internet slow?" {
		t.Fatalf("replier saw %q", replier.lastMsg)
	}

	if len(store.conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(store.conversations))
	}
	if len(store.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(store.messages))
	}
	userMsg, aiMsg := store.messages[0], store.messages[1]
	if userMsg.Sender != models.SenderUser || aiMsg.Sender != models.SenderAI {
		t.Fatalf("senders = %q, %q", userMsg.Sender, aiMsg.Sender)
	}
	if userMsg.ID != res.MessageID || aiMsg.ID != res.ReplyMessageID {
		t.Fatalf("result ids do not match stored messages")
	}

	var userPayload map[string]json.RawMessage
	if err := json.Unmarshal(userMsg.Payload, &userPayload); err != nil {
		t.Fatalf("user payload: %v", err)
	}
	if _, ok := userPayload["context"]; !ok {
		t.Fatalf("user payload missing context: %s", userMsg.Payload)
	}
	var aiPayload map[string]json.RawMessage
	if err := json.Unmarshal(aiMsg.Payload, &aiPayload); err != nil {
		t.Fatalf("ai payload: %v", err)
	}
	if _, ok := aiPayload["suggested_actions"]; !ok {
		t.Fatalf("ai payload missing suggested_actions: %s", aiMsg.Payload)
	}
}

func TestSendReusesActiveConversation(t *testing.T) {
	store := newMemStore()
	svc := newChatService(store, &scriptedReplier{reply: ai.Reply{Text: "ok"}}, nil)
	ctx := context.Background()

	first, err := svc.Send(ctx, customer, "hello", nil)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := svc.Send(ctx, customer, "still there?", nil)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if first.ConversationID != second.ConversationID {
		t.Fatalf("conversation changed between sends")
	}
	if len(store.conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(store.conversations))
	}
}

func TestSendRateLimitedPersistsNothing(t *testing.T) {
	store := newMemStore()
	limiter := ratelimit.NewSlidingWindow(20, time.Minute)
	svc := newChatService(store, &scriptedReplier{reply: ai.Reply{Text: "ok"}}, limiter)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if _, err := svc.Send(ctx, customer, "ping", nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	before := len(store.messages)

	if _, err := svc.Send(ctx, customer, "one more", nil); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(store.messages) != before {
		t.Fatalf("limited send persisted messages: %d -> %d", before, len(store.messages))
	}
}

func TestSendUpstreamErrorKeepsUserMessage(t *testing.T) {
	store := newMemStore()
	svc := newChatService(store, &scriptedReplier{broken: true}, nil)
	ctx := context.Background()

	if _, err := svc.Send(ctx, customer, "help", nil); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("messages = %d, want user message only", len(store.messages))
	}
	if store.messages[0].Sender != models.SenderUser {
		t.Fatalf("stored sender = %q", store.messages[0].Sender)
	}
}

func TestSendValidation(t *testing.T) {
	svc := newChatService(newMemStore(), &scriptedReplier{reply: ai.Reply{Text: "ok"}}, nil)
	if _, err := svc.Send(context.Background(), customer, "   ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank message: expected ErrInvalidInput, got %v", err)
	}
}

func TestHistoryPaginatesNewestFirst(t *testing.T) {
	store := newMemStore()
	svc := newChatService(store, &scriptedReplier{reply: ai.Reply{Text: "ok"}}, nil)
	ctx := context.Background()

	// 5 sends produce 10 messages alternating user/ai
	for i := 0; i < 5; i++ {
		if _, err := svc.Send(ctx, customer, fmt.Sprintf("msg %d", i), nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	page, err := svc.History(ctx, customer, 4, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Messages) != 4 {
		t.Fatalf("page = %d messages, want 4", len(page.Messages))
	}
	// chronological within the page, and these are the 4 newest overall
	for i := 1; i < len(page.Messages); i++ {
		if page.Messages[i].ID <= page.Messages[i-1].ID {
			t.Fatalf("page not chronological at %d", i)
		}
	}
	newest := store.messages[len(store.messages)-1]
	if page.Messages[len(page.Messages)-1].ID != newest.ID {
		t.Fatalf("page does not end at the newest message")
	}
	if page.NextCursor == nil || *page.NextCursor != page.Messages[0].ID {
		t.Fatalf("next_cursor = %v, want oldest id of the page", page.NextCursor)
	}

	older, err := svc.History(ctx, customer, 100, *page.NextCursor)
	if err != nil {
		t.Fatalf("history page 2: %v", err)
	}
	if len(older.Messages) != 6 {
		t.Fatalf("older page = %d messages, want 6", len(older.Messages))
	}
	if older.NextCursor != nil {
		t.Fatalf("partial page should not carry a cursor")
	}
	for _, m := range older.Messages {
		if m.ID >= *page.NextCursor {
			t.Fatalf("older page contains message %s at or after cursor", m.ID)
		}
	}
}

func TestHistoryEmptyWithoutConversation(t *testing.T) {
	svc := newChatService(newMemStore(), &scriptedReplier{}, nil)
	page, err := svc.History(context.Background(), customer, 0, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.ConversationID != "" || len(page.Messages) != 0 || page.NextCursor != nil {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestHistoryValidation(t *testing.T) {
	svc := newChatService(newMemStore(), &scriptedReplier{}, nil)
	ctx := context.Background()

	if _, err := svc.History(ctx, customer, 101, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("limit 101: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.History(ctx, customer, -1, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("limit -1: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.History(ctx, customer, 10, "not-a-cursor"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad cursor: expected ErrInvalidInput, got %v", err)
	}
}
