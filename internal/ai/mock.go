package ai

import (
	"context"
	"encoding/json"

	"github.com/fibrelink/backend/internal/utils"
)

// MockReplier serves canned replies so the portal runs without the AI
// engine. Replies are deterministic per message.
type MockReplier struct{}

var mockReplies = []string{
	"You can check available plans under Browse Plans; filters work by speed, price, and your pincode.",
	"Your installation engineer is assigned automatically when you place a setup order.",
	"For connection issues, raising a support ticket gets you the fastest response.",
	"I can help with plans, orders, and support tickets. What would you like to do?",
}

var mockActions = []json.RawMessage{
	json.RawMessage(`{"type":"navigate","target":"plans"}`),
	json.RawMessage(`{"type":"navigate","target":"tickets"}`),
}

func (m MockReplier) ReplyTo(_ context.Context, _, message string, _ json.RawMessage) (Reply, error) {
	h := utils.HashStringToUint64(message)
	reply := Reply{Text: mockReplies[int(h)%len(mockReplies)]}
	if h%3 == 0 {
		reply.SuggestedActions = []json.RawMessage{mockActions[int(h/3)%len(mockActions)]}
	}
	return reply, nil
}
