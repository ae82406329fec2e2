package domain

import (
	"fmt"
	"strconv"
)

// ShowCategory identifies which remote list a show was fetched from
type ShowCategory string

const (
	CategoryPopular     ShowCategory = "popular"
	CategoryTrending    ShowCategory = "trending"
	CategoryAnticipated ShowCategory = "anticipated"
)

// ShowCategories returns every browsable category in display order
func ShowCategories() []ShowCategory {
	return []ShowCategory{CategoryPopular, CategoryTrending, CategoryAnticipated}
}

// ParseShowCategory converts user input into a ShowCategory
func ParseShowCategory(s string) (ShowCategory, error) {
	for _, c := range ShowCategories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown show category %q", s)
}

// MediaCategory distinguishes metadata scopes (countries exist per scope)
type MediaCategory string

const (
	MediaShows  MediaCategory = "shows"
	MediaMovies MediaCategory = "movies"
)

// ShowIDs holds the external identifiers of a show
type ShowIDs struct {
	Trakt int64  `json:"trakt"`
	Slug  string `json:"slug,omitempty"`
	TVDB  int64  `json:"tvdb,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
}

// Show is the persisted representation of a show row
type Show struct {
	ID       int64        `json:"id"` // Local primary key, copied from IDs.Trakt
	Title    string       `json:"title"`
	Year     int          `json:"year,omitempty"`
	IDs      ShowIDs      `json:"ids"`
	Category ShowCategory `json:"category"`

	// Category-specific counters (zero when not applicable)
	Watchers  int `json:"watchers,omitempty"`   // trending
	ListCount int `json:"list_count,omitempty"` // anticipated
}

// Key returns the identity used by the store
func (s Show) Key() string {
	return strconv.FormatInt(s.ID, 10)
}

// WebURL returns the show's page on trakt.tv
func (s Show) WebURL() string {
	switch {
	case s.IDs.Slug != "":
		return "https://trakt.tv/shows/" + s.IDs.Slug
	case s.IDs.Trakt != 0:
		return "https://trakt.tv/shows/" + strconv.FormatInt(s.IDs.Trakt, 10)
	default:
		return ""
	}
}

// GetTitle returns the display title
func (s Show) GetTitle() string {
	return s.Title
}

// GetDescription returns secondary info for display
func (s Show) GetDescription() string {
	switch {
	case s.Watchers > 0:
		return fmt.Sprintf("%d watching", s.Watchers)
	case s.ListCount > 0:
		return fmt.Sprintf("on %d lists", s.ListCount)
	case s.Year > 0:
		return fmt.Sprintf("%d", s.Year)
	default:
		return ""
	}
}

// Country is a metadata row scoped to a media category
type Country struct {
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Category MediaCategory `json:"category"`
}

// Key returns the identity used by the store
func (c Country) Key() string {
	return c.Code
}

// GetTitle returns the display title
func (c Country) GetTitle() string {
	return c.Name
}

// GetDescription returns secondary info for display
func (c Country) GetDescription() string {
	return c.Code
}
