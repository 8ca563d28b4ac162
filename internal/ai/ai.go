package ai

import (
	"context"
	"encoding/json"
)

// Reply is the AI engine's answer to one chat turn.
type Reply struct {
	Text             string
	SuggestedActions []json.RawMessage
}

// Replier produces the AI reply for a user message. Implementations must
// treat any transport failure or contract violation as an error; callers
// surface those as upstream failures.
type Replier interface {
	ReplyTo(ctx context.Context, userID, message string, context json.RawMessage) (Reply, error)
}
