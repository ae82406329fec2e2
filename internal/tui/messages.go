package tui

import (
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/shows"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ListingOpenedMsg signals that a category listing is ready to observe
type ListingOpenedMsg struct {
	Category domain.ShowCategory
	Listing  *shows.Listing
}

// ShowsMsg carries a fresh content snapshot for a category
type ShowsMsg struct {
	Category domain.ShowCategory
	Shows    []*domain.Show
}

// NetworkStateMsg carries the latest request state of a category
type NetworkStateMsg struct {
	Category domain.ShowCategory
	State    domain.NetworkState
}

// RefreshStateMsg carries the state of a user-triggered refresh
type RefreshStateMsg struct {
	Category domain.ShowCategory
	State    domain.NetworkState
}

// StreamClosedMsg signals that one of a listing's streams ended
type StreamClosedMsg struct {
	Category domain.ShowCategory
	Stream   string
}
