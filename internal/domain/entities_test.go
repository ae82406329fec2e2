package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShowCategory(t *testing.T) {
	for _, c := range ShowCategories() {
		got, err := ParseShowCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseShowCategory("upcoming")
	assert.Error(t, err)
}

func TestShowWebURL(t *testing.T) {
	tests := []struct {
		name string
		ids  ShowIDs
		want string
	}{
		{"slug", ShowIDs{Trakt: 1390, Slug: "game-of-thrones"}, "https://trakt.tv/shows/game-of-thrones"},
		{"trakt id", ShowIDs{Trakt: 1390}, "https://trakt.tv/shows/1390"},
		{"none", ShowIDs{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Show{IDs: tt.ids}.WebURL())
		})
	}
}

func TestShowDescription(t *testing.T) {
	assert.Equal(t, "42 watching", Show{Watchers: 42, Year: 2011}.GetDescription())
	assert.Equal(t, "on 7 lists", Show{ListCount: 7}.GetDescription())
	assert.Equal(t, "2011", Show{Year: 2011}.GetDescription())
	assert.Empty(t, Show{}.GetDescription())
}

func TestNetworkStateEquality(t *testing.T) {
	assert.Equal(t, Loading(), Loading())
	assert.NotEqual(t, Failure("a", "b"), Failure("a", "c"))
	assert.True(t, Failure("a", "b").IsError())
	assert.Equal(t, "error: Not found: gone", Failure("Not found", "gone").String())
	assert.Equal(t, "idle", Idle().String())
}
