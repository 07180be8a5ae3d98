package ui

import (
	"fmt"
	"io"

	"github.com/ChamsBouzaiene/chatline/internal/api"
	"github.com/ChamsBouzaiene/chatline/internal/directory"
)

// Terminal renders to a writer, normally stdout. Conversation items are
// numbered in display order so the REPL can address them by index.
type Terminal struct {
	w io.Writer
}

// NewTerminal creates a terminal view writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) AppendMessage(sender, text string) {
	fmt.Fprintf(t.w, "%s: %s\n", sender, text)
}

func (t *Terminal) ClearMessages() {
	fmt.Fprintln(t.w, "────────────────────────────")
}

func (t *Terminal) RenderDirectory(groups directory.Groups, activeID string) {
	if groups.Empty() {
		fmt.Fprintln(t.w, "No conversations yet")
		return
	}

	n := 0
	t.renderGroup("Today", groups.Today, &n, activeID)
	t.renderGroup("Yesterday", groups.Yesterday, &n, activeID)
	t.renderGroup("Last 7 Days", groups.LastWeek, &n, activeID)
	t.renderGroup("Older", groups.Older, &n, activeID)
}

func (t *Terminal) renderGroup(title string, convs []api.Conversation, n *int, activeID string) {
	if len(convs) == 0 {
		return
	}
	fmt.Fprintf(t.w, "%s\n", title)
	for _, conv := range convs {
		*n++
		marker := "  "
		if conv.ID == activeID {
			marker = "» "
		}
		fmt.Fprintf(t.w, "%s[%d] %s\n", marker, *n, conv.Title)
	}
}

func (t *Terminal) Notice(text string) {
	fmt.Fprintln(t.w, text)
}
