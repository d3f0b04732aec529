package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("repotted my #bonsai today, first #juniper of the #season")
	assert.Equal(t, []string{"bonsai", "juniper", "season"}, tags)
}

func TestExtractHashtagsDeduplicatesAndLowercases(t *testing.T) {
	tags := ExtractHashtags("#Bonsai #BONSAI #bonsai")
	assert.Equal(t, []string{"bonsai"}, tags)
}

func TestExtractHashtagsUnicode(t *testing.T) {
	tags := ExtractHashtags("styling session #盆栽 with friends")
	assert.Equal(t, []string{"盆栽"}, tags)
}

func TestExtractHashtagsEmpty(t *testing.T) {
	assert.Empty(t, ExtractHashtags("no tags here"))
	assert.Empty(t, ExtractHashtags(""))
}

func TestExtractMentions(t *testing.T) {
	mentions := ExtractMentions("thanks @alice and @Bob! also @alice")
	assert.Equal(t, []string{"alice", "bob"}, mentions)
}

func TestExtractMentionsLengthBounds(t *testing.T) {
	// Too short to be a username
	assert.Empty(t, ExtractMentions("hi @ab"))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 20, ParseLimit("", 20, 100))
	assert.Equal(t, 50, ParseLimit("50", 20, 100))
	assert.Equal(t, 100, ParseLimit("9999", 20, 100))
	assert.Equal(t, 20, ParseLimit("-5", 20, 100))
	assert.Equal(t, 20, ParseLimit("abc", 20, 100))
}

func TestParseGenreArray(t *testing.T) {
	assert.Equal(t, []string{"bonsai", "orchid"}, ParseGenreArray("bonsai, orchid"))
	assert.Equal(t, []string{"bonsai"}, ParseGenreArray("bonsai,,"))
	assert.Empty(t, ParseGenreArray(""))
}
