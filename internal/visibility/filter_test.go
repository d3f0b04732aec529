package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsIsZero(t *testing.T) {
	assert.True(t, Flags{}.IsZero())
	assert.False(t, Flags{Blocked: true}.IsZero())
	assert.False(t, Flags{BlockedBy: true}.IsZero())
	assert.False(t, Flags{Muted: true}.IsZero())
	assert.False(t, FeedFlags.IsZero())
	assert.False(t, ProfileFlags.IsZero())
}

func TestSetOperations(t *testing.T) {
	set := make(Set)
	assert.False(t, set.Contains("a"))
	assert.Nil(t, set.IDs())

	set.Add("a")
	set.Add("b")
	set.Add("a") // adding twice is harmless

	assert.True(t, set.Contains("a"))
	assert.True(t, set.Contains("b"))
	assert.False(t, set.Contains("c"))
	assert.ElementsMatch(t, []string{"a", "b"}, set.IDs())
}

func TestNextCursor(t *testing.T) {
	// A full page points at its last row
	assert.Equal(t, "p3", NextCursor([]string{"p1", "p2", "p3"}, 3))

	// A short page is the end of the stream
	assert.Equal(t, "", NextCursor([]string{"p1", "p2"}, 3))
	assert.Equal(t, "", NextCursor(nil, 3))

	// Degenerate limits never produce a cursor
	assert.Equal(t, "", NextCursor([]string{"p1"}, 0))
	assert.Equal(t, "", NextCursor([]string{"p1"}, -1))
}
