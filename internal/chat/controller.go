// Package chat owns the client's mutable state: the session, the active
// conversation and the rendered directory. Every operation the UI can
// trigger (login, register, send, open, delete, upload, logout) runs
// through the Controller, which renders results through a ui.View.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChamsBouzaiene/chatline/internal/api"
	"github.com/ChamsBouzaiene/chatline/internal/directory"
	"github.com/ChamsBouzaiene/chatline/internal/session"
	"github.com/ChamsBouzaiene/chatline/internal/ui"
)

// User-facing notices. Kept byte-for-byte stable so scripted use
// doesn't break.
const (
	noticeLoginFirst     = "Please login first"
	noticeConnection     = "Connection error. Is the server running?"
	noticeSendFailed     = "Server connection failed."
	noticeSessionExpired = "Session expired. Please login again."
	noticeRegistered     = "Account created! Please login."
	noticeNoFile         = "Please choose a file first."
	noticeUploadFailed   = "Upload failed."
	noticeDeleteFailed   = "Failed to delete conversation."
	noticeLoggedOut      = "Logged out."
)

// Controller coordinates the API client, the session store and the
// view. All methods are safe for a single caller; state is additionally
// guarded so a delayed directory refresh cannot race a user action.
type Controller struct {
	client *api.Client
	store  *session.Store
	view   ui.View
	log    zerolog.Logger

	refreshPolicy RetryPolicy
	logoutDelay   time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sess     session.Session
	activeID string
	groups   directory.Groups
	visible  []api.Conversation
	prefill  string

	// Per-channel sequence numbers. A completion whose number is no
	// longer the latest for its channel is discarded, so an old
	// response can never paint over newer state.
	sendSeq    uint64
	openSeq    uint64
	refreshSeq uint64
}

// NewController wires a controller around the given client, store and
// view.
func NewController(client *api.Client, store *session.Store, view ui.View, log zerolog.Logger) *Controller {
	return &Controller{
		client:        client,
		store:         store,
		view:          view,
		log:           log.With().Str("component", "chat").Logger(),
		refreshPolicy: defaultRefreshPolicy(),
		logoutDelay:   2 * time.Second,
		now:           time.Now,
	}
}

// Restore loads the persisted session. A stored token is trusted
// without a validation round-trip; a stale one surfaces as a 401 on the
// first authenticated request. When restored, the directory is loaded
// immediately.
func (c *Controller) Restore(ctx context.Context) error {
	sess, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !sess.Authenticated() {
		return nil
	}

	c.mu.Lock()
	c.sess = *sess
	c.mu.Unlock()

	c.log.Info().Str("username", sess.Username).Msg("session restored")
	c.view.Notice(fmt.Sprintf("Welcome, %s!", sess.Username))
	return c.Refresh(ctx)
}

// Login exchanges credentials for a session. Success persists the
// session and loads the directory; failure leaves the anonymous state
// untouched and reports why.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	creds, err := c.client.Login(ctx, username, password)
	if err != nil {
		c.view.Notice(authFailureNotice(err, "Login failed"))
		return err
	}

	sess := session.Session{Token: creds.Token, Username: creds.Username, UserID: creds.UserID}
	if err := c.store.Save(&sess); err != nil {
		// The login itself succeeded; the session just won't survive a
		// restart.
		c.log.Warn().Err(err).Msg("failed to persist session")
	}

	c.mu.Lock()
	c.sess = sess
	c.prefill = ""
	c.mu.Unlock()

	c.log.Info().Str("username", creds.Username).Msg("logged in")
	c.view.Notice(fmt.Sprintf("Welcome, %s!", creds.Username))
	return c.Refresh(ctx)
}

// Register creates an account. Success keeps the submitted username
// around so the next login attempt can pre-fill it.
func (c *Controller) Register(ctx context.Context, username, password string) error {
	if err := c.client.Register(ctx, username, password); err != nil {
		c.view.Notice(authFailureNotice(err, "Registration failed"))
		return err
	}

	c.mu.Lock()
	c.prefill = username
	c.mu.Unlock()

	c.view.Notice(noticeRegistered)
	return nil
}

// LoginPrefill returns the username remembered from the last successful
// registration, if any.
func (c *Controller) LoginPrefill() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefill
}

// Refresh re-fetches the conversation listing and re-renders the
// directory. On failure the previous render stays on screen.
func (c *Controller) Refresh(ctx context.Context) error {
	seq := c.bumpRefresh()

	convs, err := c.client.ListConversations(ctx, c.token())
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load conversations")
		return err
	}

	c.applyDirectory(seq, convs)
	return nil
}

// Open fetches a conversation's history and renders it, replacing the
// message pane. On failure the pane keeps its prior content.
func (c *Controller) Open(ctx context.Context, id string) error {
	seq := c.bumpOpen()

	msgs, err := c.client.GetConversation(ctx, c.token(), id)
	if err != nil {
		c.log.Error().Err(err).Str("conversation_id", id).Msg("failed to load conversation")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.openSeq {
		c.log.Debug().Str("conversation_id", id).Msg("discarding superseded open")
		return nil
	}

	c.view.ClearMessages()
	for _, msg := range msgs {
		sender := ui.SenderBot
		if msg.Role == api.RoleUser {
			sender = ui.SenderUser
		}
		c.view.AppendMessage(sender, msg.Content)
	}

	c.activeID = id
	c.view.RenderDirectory(c.groups, id)
	return nil
}

// Delete removes a conversation. The caller is expected to have
// confirmed. Deleting the active conversation clears the message pane
// and the active id; the directory is re-fetched either way.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.client.DeleteConversation(ctx, c.token(), id); err != nil {
		c.log.Error().Err(err).Str("conversation_id", id).Msg("failed to delete conversation")
		c.view.Notice(noticeDeleteFailed)
		return err
	}

	c.mu.Lock()
	if id == c.activeID {
		c.activeID = ""
		c.view.ClearMessages()
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Send posts a user message to the active conversation, or starts a new
// one when none is active. Empty input and unauthenticated sends never
// reach the network.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !c.authenticated() {
		c.view.Notice(noticeLoginFirst)
		return nil
	}

	// Optimistic render before the round-trip.
	c.view.AppendMessage(ui.SenderUser, text)

	seq := c.bumpSend()
	reply, err := c.client.SendChat(ctx, c.token(), text, c.ActiveID())
	if err != nil {
		return c.handleSendError(err)
	}

	c.mu.Lock()
	if seq != c.sendSeq {
		c.mu.Unlock()
		c.log.Debug().Msg("discarding superseded chat reply")
		return nil
	}
	c.view.AppendMessage(ui.SenderBot, reply.Response)

	wasNew := false
	if reply.ConversationID != "" {
		wasNew = c.activeID == ""
		c.activeID = reply.ConversationID
	}
	c.mu.Unlock()

	if wasNew {
		c.log.Info().Str("conversation_id", reply.ConversationID).Msg("conversation started")
		return c.refreshNewConversation(ctx, reply.ConversationID)
	}
	return nil
}

func (c *Controller) handleSendError(err error) error {
	switch {
	case api.IsAuthRejected(err):
		c.view.AppendMessage(ui.SenderSystem, noticeSessionExpired)
		time.Sleep(c.logoutDelay)
		c.Logout()
	case api.IsNetwork(err):
		c.view.AppendMessage(ui.SenderSystem, noticeSendFailed)
	default:
		c.view.AppendMessage(ui.SenderSystem, "Error: "+serverMessage(err))
	}
	return err
}

// refreshNewConversation re-reads the listing until the freshly created
// conversation shows up, backing off between attempts. The backend's
// write may lag its read path, so a single immediate fetch can miss it;
// after the retry budget the latest listing is rendered regardless.
func (c *Controller) refreshNewConversation(ctx context.Context, id string) error {
	seq := c.bumpRefresh()

	var convs []api.Conversation
	for attempt := 0; ; attempt++ {
		var err error
		convs, err = c.client.ListConversations(ctx, c.token())
		if err == nil && containsConversation(convs, id) {
			break
		}
		if attempt >= c.refreshPolicy.MaxRetries {
			if err != nil {
				c.log.Warn().Err(err).Msg("failed to refresh after new conversation")
				return err
			}
			c.log.Warn().Str("conversation_id", id).Msg("new conversation not yet listed")
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.refreshPolicy.Delay(attempt)):
		}
	}

	c.applyDirectory(seq, convs)
	return nil
}

// NewChat clears the viewer and the active id so the next send starts a
// fresh conversation.
func (c *Controller) NewChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ""
	c.view.ClearMessages()
	c.view.RenderDirectory(c.groups, "")
}

// Logout clears the persisted session and resets all in-memory state.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear persisted session")
	}

	c.mu.Lock()
	c.sess = session.Session{}
	c.activeID = ""
	c.groups = directory.Groups{}
	c.visible = nil
	c.mu.Unlock()

	c.log.Info().Msg("logged out")
	c.view.ClearMessages()
	c.view.Notice(noticeLoggedOut)
}

// Upload sends a file to the backend and reports a status line. No
// validation, no progress, no retry.
func (c *Controller) Upload(ctx context.Context, name string, r io.Reader) error {
	if name == "" || r == nil {
		c.view.Notice(noticeNoFile)
		return nil
	}

	result, err := c.client.Upload(ctx, name, r)
	if err != nil {
		c.log.Error().Err(err).Str("file", name).Msg("upload failed")
		c.view.Notice(noticeUploadFailed)
		return err
	}

	if result.HasStats {
		c.view.Notice(fmt.Sprintf("Success! Mode: %s", result.Mode))
	} else {
		c.view.Notice("Upload complete.")
	}
	return nil
}

// Session returns a copy of the current session.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// ActiveID returns the active conversation id, or "" when none is
// active.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// ConversationAt resolves a 1-based display index into the directory's
// current render order.
func (c *Controller) ConversationAt(n int) (api.Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.visible) {
		return api.Conversation{}, false
	}
	return c.visible[n-1], true
}

func (c *Controller) applyDirectory(seq uint64, convs []api.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.refreshSeq {
		c.log.Debug().Msg("discarding superseded directory refresh")
		return
	}
	c.groups = directory.Group(convs, c.now())
	c.visible = c.groups.Flatten()
	c.view.RenderDirectory(c.groups, c.activeID)
}

func (c *Controller) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Token
}

func (c *Controller) authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Authenticated()
}

func (c *Controller) bumpSend() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendSeq++
	return c.sendSeq
}

func (c *Controller) bumpOpen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openSeq++
	return c.openSeq
}

func (c *Controller) bumpRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshSeq++
	return c.refreshSeq
}

// authFailureNotice maps an auth call failure to its inline message: a
// distinct line for an unreachable server, the backend's detail when it
// sent one, the fallback otherwise.
func authFailureNotice(err error, fallback string) string {
	if api.IsNetwork(err) {
		return noticeConnection
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// serverMessage extracts what the UI should show for a server
// rejection: the detail field, the raw body, or the error text itself.
func serverMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func containsConversation(convs []api.Conversation, id string) bool {
	for _, conv := range convs {
		if conv.ID == id {
			return true
		}
	}
	return false
}
