package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ChamsBouzaiene/chatline/internal/api"
	"github.com/ChamsBouzaiene/chatline/internal/directory"
)

func TestTerminalRenderDirectory(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	groups := directory.Groups{
		Today: []api.Conversation{
			{ID: "c1", Title: "groceries", UpdatedAt: time.Now()},
		},
		Older: []api.Conversation{
			{ID: "c2", Title: "trip notes", UpdatedAt: time.Now().AddDate(0, 0, -30)},
		},
	}

	term.RenderDirectory(groups, "c2")

	out := buf.String()
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "  [1] groceries")
	assert.Contains(t, out, "Older")
	assert.Contains(t, out, "» [2] trip notes")
	// Empty groups render no header at all.
	assert.NotContains(t, out, "Yesterday")
	assert.NotContains(t, out, "Last 7 Days")
}

func TestTerminalRenderEmptyDirectory(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.RenderDirectory(directory.Groups{}, "")

	assert.Equal(t, "No conversations yet\n", buf.String())
}

func TestTerminalAppendMessage(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.AppendMessage(SenderUser, "hi")
	term.AppendMessage(SenderBot, "hello")

	assert.Equal(t, "You: hi\nBot: hello\n", buf.String())
}
