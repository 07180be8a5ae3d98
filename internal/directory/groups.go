// Package directory buckets conversation summaries by recency for
// display: today, yesterday, the rest of the last seven days, older.
package directory

import (
	"time"

	"github.com/ChamsBouzaiene/chatline/internal/api"
)

// Groups holds conversations partitioned by the calendar day of their
// last update. Within a group, backend order is preserved.
type Groups struct {
	Today     []api.Conversation
	Yesterday []api.Conversation
	LastWeek  []api.Conversation
	Older     []api.Conversation
}

// Empty reports whether no group has any conversation.
func (g Groups) Empty() bool {
	return len(g.Today) == 0 && len(g.Yesterday) == 0 && len(g.LastWeek) == 0 && len(g.Older) == 0
}

// Flatten returns all conversations in display order: today first, then
// yesterday, last week, older. Item numbering in the UI follows this
// order.
func (g Groups) Flatten() []api.Conversation {
	out := make([]api.Conversation, 0, len(g.Today)+len(g.Yesterday)+len(g.LastWeek)+len(g.Older))
	out = append(out, g.Today...)
	out = append(out, g.Yesterday...)
	out = append(out, g.LastWeek...)
	out = append(out, g.Older...)
	return out
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Group partitions conversations by comparing each update date, as a
// local calendar day, against now. The last-week group runs from two to
// six days back; the day exactly seven days before now belongs to Older.
func Group(convs []api.Conversation, now time.Time) Groups {
	today := dayOf(now)
	yesterday := today.AddDate(0, 0, -1)
	weekStart := today.AddDate(0, 0, -7)

	var g Groups
	for _, conv := range convs {
		day := dayOf(conv.UpdatedAt.In(now.Location()))
		switch {
		case day.Equal(today):
			g.Today = append(g.Today, conv)
		case day.Equal(yesterday):
			g.Yesterday = append(g.Yesterday, conv)
		case day.After(weekStart) && day.Before(yesterday):
			g.LastWeek = append(g.LastWeek, conv)
		default:
			g.Older = append(g.Older, conv)
		}
	}
	return g
}
