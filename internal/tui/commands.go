package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/shows"
)

// Command factories for async operations

// Repository opens category listings and tears them all down
type Repository interface {
	Invoke(ctx context.Context, category domain.ShowCategory) (*shows.Listing, error)
	OnCleared()
}

// OpenListingCmd opens a listing for category
func OpenListingCmd(ctx context.Context, repo Repository, category domain.ShowCategory) tea.Cmd {
	return func() tea.Msg {
		listing, err := repo.Invoke(ctx, category)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening " + string(category)}
		}
		return ListingOpenedMsg{Category: category, Listing: listing}
	}
}

// Opener shows a web page outside the terminal
type Opener interface {
	Open(url string) error
}

// OpenShowCmd opens the show's web page
func OpenShowCmd(o Opener, show *domain.Show) tea.Cmd {
	return func() tea.Msg {
		if err := o.Open(show.WebURL()); err != nil {
			return ErrMsg{Err: err, Context: "opening " + show.Title}
		}
		return nil
	}
}

// RetryCmd re-issues the failed requests of a listing
func RetryCmd(l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		l.Retry()
		return nil
	}
}

// RefreshCmd clears a listing's rows and reloads it from the first page
func RefreshCmd(l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		l.Refresh()
		return nil
	}
}

// LoadMoreCmd requests the next page of a listing
func LoadMoreCmd(l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		l.LoadMore()
		return nil
	}
}
