package trakt

import "github.com/mmcdole/shelf/internal/domain"

// MapShows converts popular-list shows, copying the Trakt id into the local key.
// Shows without a Trakt id cannot be keyed and are dropped.
func MapShows(shows []Show) []*domain.Show {
	items := make([]*domain.Show, 0, len(shows))
	for _, s := range shows {
		if show := mapShow(s, domain.CategoryPopular); show != nil {
			items = append(items, show)
		}
	}
	return items
}

// MapTrendingShows unwraps trending entries and keeps the watcher count
func MapTrendingShows(entries []TrendingShow) []*domain.Show {
	items := make([]*domain.Show, 0, len(entries))
	for _, e := range entries {
		show := mapShow(e.Show, domain.CategoryTrending)
		if show == nil {
			continue
		}
		show.Watchers = e.Watchers
		items = append(items, show)
	}
	return items
}

// MapAnticipatedShows unwraps anticipated entries and keeps the list count
func MapAnticipatedShows(entries []AnticipatedShow) []*domain.Show {
	items := make([]*domain.Show, 0, len(entries))
	for _, e := range entries {
		show := mapShow(e.Show, domain.CategoryAnticipated)
		if show == nil {
			continue
		}
		show.ListCount = e.ListCount
		items = append(items, show)
	}
	return items
}

func mapShow(s Show, category domain.ShowCategory) *domain.Show {
	if s.IDs.Trakt == 0 {
		return nil
	}
	return &domain.Show{
		ID:    s.IDs.Trakt,
		Title: s.Title,
		Year:  s.Year,
		IDs: domain.ShowIDs{
			Trakt: s.IDs.Trakt,
			Slug:  s.IDs.Slug,
			TVDB:  s.IDs.TVDB,
			IMDB:  s.IDs.IMDB,
			TMDB:  s.IDs.TMDB,
		},
		Category: category,
	}
}

// MapCountries converts countries and tags them with their media category
func MapCountries(category domain.MediaCategory, countries []Country) []*domain.Country {
	items := make([]*domain.Country, 0, len(countries))
	for _, c := range countries {
		if c.Code == "" {
			continue
		}
		items = append(items, &domain.Country{Code: c.Code, Name: c.Name, Category: category})
	}
	return items
}
