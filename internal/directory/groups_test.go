package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChamsBouzaiene/chatline/internal/api"
)

func conv(id string, updatedAt time.Time) api.Conversation {
	return api.Conversation{ID: id, Title: "conv " + id, UpdatedAt: updatedAt}
}

func TestGroupBuckets(t *testing.T) {
	// A fixed reference point mid-day avoids midnight edge flakiness.
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

	convs := []api.Conversation{
		conv("a", now.Add(-time.Hour)),   // today
		conv("b", now.AddDate(0, 0, -1)), // yesterday
		conv("c", now.AddDate(0, 0, -2)), // last week
		conv("d", now.AddDate(0, 0, -6)), // last week
		conv("e", now.AddDate(0, 0, -8)), // older
		conv("f", now.AddDate(0, -2, 0)), // older
	}

	g := Group(convs, now)

	assert.Equal(t, []string{"a"}, ids(g.Today))
	assert.Equal(t, []string{"b"}, ids(g.Yesterday))
	assert.Equal(t, []string{"c", "d"}, ids(g.LastWeek))
	assert.Equal(t, []string{"e", "f"}, ids(g.Older))
}

func TestGroupTodayNeverElsewhere(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 45, 0, 0, time.Local)

	// Any update on the current calendar day is "today", even one
	// second after midnight.
	earliest := time.Date(2024, 3, 15, 0, 0, 1, 0, time.Local)
	g := Group([]api.Conversation{conv("x", earliest)}, now)

	require.Len(t, g.Today, 1)
	assert.Empty(t, g.Yesterday)
	assert.Empty(t, g.LastWeek)
	assert.Empty(t, g.Older)
}

func TestGroupSevenDayBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	// Exactly seven calendar days back falls in Older; six days back is
	// the last day of the week bucket.
	g := Group([]api.Conversation{
		conv("seven", now.AddDate(0, 0, -7)),
		conv("six", now.AddDate(0, 0, -6)),
	}, now)

	assert.Equal(t, []string{"seven"}, ids(g.Older))
	assert.Equal(t, []string{"six"}, ids(g.LastWeek))
}

func TestGroupPreservesBackendOrderWithinBucket(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	// Deliberately not sorted by recency: backend order is trusted.
	g := Group([]api.Conversation{
		conv("first", now.AddDate(0, 0, -3)),
		conv("second", now.AddDate(0, 0, -2)),
		conv("third", now.AddDate(0, 0, -5)),
	}, now)

	assert.Equal(t, []string{"first", "second", "third"}, ids(g.LastWeek))
}

func TestGroupEmptyAndFlatten(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	assert.True(t, Group(nil, now).Empty())

	g := Group([]api.Conversation{
		conv("old", now.AddDate(0, 0, -30)),
		conv("new", now),
		conv("mid", now.AddDate(0, 0, -4)),
	}, now)

	require.False(t, g.Empty())
	assert.Equal(t, []string{"new", "mid", "old"}, ids(g.Flatten()))
}

func ids(convs []api.Conversation) []string {
	var out []string
	for _, c := range convs {
		out = append(out, c.ID)
	}
	return out
}
