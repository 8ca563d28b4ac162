package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPReplier calls the external AI reply engine.
//
// Contract: POST <base>/webhook with {message, context, user_id}; the engine
// responds {reply: string, suggested_actions?: array}. Any status >= 400,
// non-JSON body, or missing reply field is a contract violation.
type HTTPReplier struct {
	BaseURL string
	Client  *http.Client
}

type webhookRequest struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
	UserID  string          `json:"user_id"`
}

type webhookResponse struct {
	Reply            *string         `json:"reply"`
	SuggestedActions json.RawMessage `json:"suggested_actions"`
}

// suggestedActions tolerates anything the engine puts in suggested_actions;
// only a well-formed array yields actions, everything else is an empty list.
func suggestedActions(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var actions []json.RawMessage
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil
	}
	return actions
}

func (h HTTPReplier) ReplyTo(ctx context.Context, userID, message string, context json.RawMessage) (Reply, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if len(context) == 0 {
		context = json.RawMessage(`{}`)
	}

	b, _ := json.Marshal(webhookRequest{Message: message, Context: context, UserID: userID})
	url := strings.TrimRight(h.BaseURL, "/") + "/webhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("ai engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Reply{}, fmt.Errorf("ai engine error: %s", resp.Status)
	}

	var r webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Reply{}, fmt.Errorf("ai engine returned malformed body: %w", err)
	}
	if r.Reply == nil {
		return Reply{}, errors.New("ai engine response missing reply")
	}

	return Reply{Text: *r.Reply, SuggestedActions: suggestedActions(r.SuggestedActions)}, nil
}
