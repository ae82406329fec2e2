package shows

import (
	"testing"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShows(t *testing.T, s domain.ShowStore, names ...string) {
	t.Helper()
	shows := make([]*domain.Show, len(names))
	for i, n := range names {
		shows[i] = &domain.Show{ID: int64(i + 1), Title: n, Category: domain.CategoryPopular}
	}
	require.NoError(t, s.InsertShows(domain.CategoryPopular, shows))
}

func TestSearchShowsRanksMatches(t *testing.T) {
	s := newTestStore(t)
	seedShows(t, s, "Mr. Robot", "Better Call Saul", "Breaking Bad", "Robot Chicken")
	q := NewQueries(s)

	matches := q.SearchShows(domain.CategoryPopular, "robot")
	require.Len(t, matches, 2)
	got := []string{matches[0].Show.Title, matches[1].Show.Title}
	assert.ElementsMatch(t, []string{"Mr. Robot", "Robot Chicken"}, got)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	assert.NotEmpty(t, matches[0].MatchedIndexes)
}

func TestSearchShowsIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	seedShows(t, s, "Breaking Bad")
	q := NewQueries(s)

	matches := q.SearchShows(domain.CategoryPopular, "BRBD")
	require.Len(t, matches, 1)
	assert.Equal(t, "Breaking Bad", matches[0].Show.Title)
}

func TestSearchShowsEmpty(t *testing.T) {
	s := newTestStore(t)
	q := NewQueries(s)
	assert.Empty(t, q.SearchShows(domain.CategoryPopular, "anything"))

	seedShows(t, s, "Lost")
	assert.Empty(t, q.SearchShows(domain.CategoryPopular, "   "))
	assert.Empty(t, q.SearchShows(domain.CategoryTrending, "lost"))
}

func seedCountries(t *testing.T, s domain.ShowStore) {
	t.Helper()
	require.NoError(t, s.UpsertCountries(domain.MediaShows, []*domain.Country{
		{Code: "ci", Name: "Côte d'Ivoire", Category: domain.MediaShows},
		{Code: "de", Name: "Germany", Category: domain.MediaShows},
		{Code: "us", Name: "United States", Category: domain.MediaShows},
		{Code: "gb", Name: "United Kingdom", Category: domain.MediaShows},
	}))
}

func TestMatchCountriesIgnoresCaseAndDiacritics(t *testing.T) {
	s := newTestStore(t)
	seedCountries(t, s)
	q := NewQueries(s)

	matches := q.MatchCountries(domain.MediaShows, "COTE")
	require.Len(t, matches, 1)
	assert.Equal(t, "ci", matches[0].Code)
}

func TestMatchCountriesCodeRanksFirst(t *testing.T) {
	s := newTestStore(t)
	seedCountries(t, s)
	q := NewQueries(s)

	matches := q.MatchCountries(domain.MediaShows, "GB")
	require.NotEmpty(t, matches)
	assert.Equal(t, "gb", matches[0].Code)

	codes := make([]string, len(matches))
	for i, m := range matches {
		codes[i] = m.Code
	}
	assert.Len(t, codes, len(uniq(codes)), "exact code match is not repeated")
}

func TestMatchCountriesRanksCloserNames(t *testing.T) {
	s := newTestStore(t)
	seedCountries(t, s)
	q := NewQueries(s)

	matches := q.MatchCountries(domain.MediaShows, "united")
	require.Len(t, matches, 2)
	assert.Equal(t, "us", matches[0].Code, "shorter name is the closer match")
	assert.Equal(t, "gb", matches[1].Code)
}

func TestMatchCountriesEmptyQueryReturnsAll(t *testing.T) {
	s := newTestStore(t)
	q := NewQueries(s)
	assert.Nil(t, q.MatchCountries(domain.MediaShows, ""))

	seedCountries(t, s)
	assert.Len(t, q.MatchCountries(domain.MediaShows, ""), 4)
	assert.Nil(t, q.MatchCountries(domain.MediaMovies, "de"))
}

func uniq(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, i := range items {
		set[i] = struct{}{}
	}
	return set
}
