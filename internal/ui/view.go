// Package ui defines the rendering surface the controller draws on.
// The controller never touches an output stream directly; it renders
// through a View, which keeps every state transition testable with an
// in-memory fake.
package ui

import "github.com/ChamsBouzaiene/chatline/internal/directory"

// View receives every render the controller performs.
type View interface {
	// AppendMessage adds one line to the message pane, e.g.
	// ("You", "hi") or ("System", "Server connection failed.").
	AppendMessage(sender, text string)

	// ClearMessages empties the message pane.
	ClearMessages()

	// RenderDirectory replaces the conversation listing. activeID marks
	// the highlighted entry; it may match nothing.
	RenderDirectory(groups directory.Groups, activeID string)

	// Notice shows a status line outside the message pane (auth
	// feedback, upload results).
	Notice(text string)
}

// Message pane senders.
const (
	SenderUser   = "You"
	SenderBot    = "Bot"
	SenderSystem = "System"
)
