// Package api is the HTTP client for the chat backend. It covers the
// full endpoint surface (auth, conversations, chat, upload), classifies
// failures so callers can tell a rejected token from an unreachable
// server, and validates success payloads before decoding them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a backend client. A zero timeout disables the
// client-side deadline.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "api").Logger(),
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	body, err := c.doJSON(ctx, "login", http.MethodPost, "/login", "", loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if err := validatePayload(credentialsSchema, body); err != nil {
		return nil, newMalformedError("login", "", err)
	}
	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, newMalformedError("login", "", err)
	}
	return &creds, nil
}

// Register creates a new account. The backend reports rejection reasons
// (e.g. a taken username) through the error detail.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.doJSON(ctx, "register", http.MethodPost, "/register", "", loginRequest{
		Username: username,
		Password: password,
	})
	return err
}

// ListConversations fetches the caller's conversation summaries. Order
// is whatever the backend returned.
func (c *Client) ListConversations(ctx context.Context, token string) ([]Conversation, error) {
	body, err := c.doJSON(ctx, "conversations", http.MethodGet, "/conversations", token, nil)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(conversationsSchema, body); err != nil {
		return nil, newMalformedError("conversations", "", err)
	}
	var resp conversationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newMalformedError("conversations", "", err)
	}
	return resp.Conversations, nil
}

// GetConversation fetches the full message history of one conversation.
func (c *Client) GetConversation(ctx context.Context, token, id string) ([]Message, error) {
	body, err := c.doJSON(ctx, "conversation", http.MethodGet, "/conversations/"+id, token, nil)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(conversationDetailSchema, body); err != nil {
		return nil, newMalformedError("conversation", "", err)
	}
	var resp conversationDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newMalformedError("conversation", "", err)
	}
	return resp.Messages, nil
}

// DeleteConversation removes a conversation. Only the status matters.
func (c *Client) DeleteConversation(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, "delete", http.MethodDelete, "/conversations/"+id, token, nil)
	return err
}

// SendChat posts a user message. conversationID is empty when starting
// a new conversation; the backend then mints one and returns it.
func (c *Client) SendChat(ctx context.Context, token, message, conversationID string) (*ChatReply, error) {
	req := chatRequest{Message: message}
	if conversationID != "" {
		req.ConversationID = &conversationID
	}
	body, err := c.doJSON(ctx, "chat", http.MethodPost, "/chat", token, req)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(chatReplySchema, body); err != nil {
		return nil, newMalformedError("chat", "", err)
	}
	var reply ChatReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, newMalformedError("chat", "", err)
	}
	return &reply, nil
}

// Upload posts a file as a multipart payload. The endpoint is
// unauthenticated by contract.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResult, error) {
	requestID := uuid.NewString()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart payload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload source: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("X-Request-Id", requestID)

	body, err := c.send("upload", requestID, httpReq)
	if err != nil {
		return nil, err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Stats == nil {
		// Backend acknowledged without a stats block.
		return &UploadResult{}, nil
	}
	return &UploadResult{Mode: resp.Stats.Mode, HasStats: true}, nil
}

// doJSON issues a request with an optional JSON body and bearer token,
// returning the raw body of a 2xx response.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, payload any) ([]byte, error) {
	requestID := uuid.NewString()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set("X-Request-Id", requestID)

	return c.send(op, requestID, httpReq)
}

func (c *Client) send(op, requestID string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Str("op", op).Str("request_id", requestID).Err(err).Msg("request failed")
		return nil, newNetworkError(op, requestID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(op, requestID, fmt.Errorf("failed to read response: %w", err))
	}

	c.log.Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Op:        op,
			Status:    resp.StatusCode,
			Body:      string(body),
			RequestID: requestID,
		}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		return nil, apiErr
	}

	return body, nil
}
