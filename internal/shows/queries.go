package shows

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store domain.ShowStore
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.ShowStore) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetCachedShows(category domain.ShowCategory) ([]*domain.Show, bool) {
	return q.store.GetShows(category)
}

func (q *Queries) GetCachedCountries(category domain.MediaCategory) ([]*domain.Country, bool) {
	return q.store.GetCountries(category)
}

// ShowMatch is a search hit with the title positions that matched
type ShowMatch struct {
	Show           *domain.Show
	MatchedIndexes []int
	Score          int // Higher is better
}

// titleIndex implements sahilm/fuzzy.Source over pre-lowered titles
type titleIndex struct {
	shows       []*domain.Show
	lowerTitles []string
}

func (idx *titleIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx *titleIndex) Len() int            { return len(idx.shows) }

// SearchShows fuzzy-matches query against the cached titles of a category.
// Results are ordered best first; an empty query matches nothing.
func (q *Queries) SearchShows(category domain.ShowCategory, query string) []ShowMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	shows, ok := q.store.GetShows(category)
	if !ok || len(shows) == 0 {
		return nil
	}

	idx := &titleIndex{shows: shows, lowerTitles: make([]string, len(shows))}
	for i, s := range shows {
		idx.lowerTitles[i] = strings.ToLower(s.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]ShowMatch, len(matches))
	for i, m := range matches {
		results[i] = ShowMatch{
			Show:           shows[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// MatchCountries finds cached countries whose name contains the query's
// characters in order, ignoring case and diacritics. An exact code match
// ranks first. An empty query returns every cached country.
func (q *Queries) MatchCountries(category domain.MediaCategory, query string) []*domain.Country {
	countries, ok := q.store.GetCountries(category)
	if !ok {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return countries
	}

	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}
	ranks := lfuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	results := make([]*domain.Country, 0, len(ranks)+1)
	exact := -1
	for i, c := range countries {
		if strings.EqualFold(c.Code, query) {
			exact = i
			results = append(results, c)
			break
		}
	}
	for _, r := range ranks {
		if r.OriginalIndex == exact {
			continue
		}
		results = append(results, countries[r.OriginalIndex])
	}
	return results
}
