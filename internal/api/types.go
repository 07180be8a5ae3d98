package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Credentials is the payload returned by a successful login.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   string `json:"user_id"`
}

// Conversation is a summary entry from the conversation listing.
// The full message history is fetched separately and never cached.
type Conversation struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// timestampLayouts covers RFC 3339 plus the zone-less ISO format the
// backend emits for updated_at. Zone-less values are taken as local time,
// matching how the recency buckets are computed.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON decodes the wire shape {id, title, updated_at}.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		UpdatedAt string `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := parseTimestamp(aux.UpdatedAt)
	if err != nil {
		return fmt.Errorf("conversation %s: %w", aux.ID, err)
	}
	c.ID = aux.ID
	c.Title = aux.Title
	c.UpdatedAt = ts
	return nil
}

// Message is a single turn of a conversation. Display-only.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles used by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatReply is the payload returned by a successful chat request.
// ConversationID is set when the backend created or resolved a
// conversation for the exchange.
type ChatReply struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// UploadResult reports the outcome of a file upload. HasStats is false
// when the backend acknowledged without a stats block.
type UploadResult struct {
	Mode     string
	HasStats bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type conversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

type conversationDetailResponse struct {
	Messages []Message `json:"messages"`
}

type uploadResponse struct {
	Stats *struct {
		Mode string `json:"mode"`
	} `json:"stats"`
}
