package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/shows"
)

// Bubble Tea reads one value per command; Update re-arms the wait after
// handling each message so a listing's streams are drained in order.

func waitForShows(category domain.ShowCategory, l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-l.Model()
		if !ok {
			return StreamClosedMsg{Category: category, Stream: "model"}
		}
		return ShowsMsg{Category: category, Shows: items}
	}
}

func waitForNetworkState(category domain.ShowCategory, l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-l.NetworkState()
		if !ok {
			return StreamClosedMsg{Category: category, Stream: "network"}
		}
		return NetworkStateMsg{Category: category, State: state}
	}
}

func waitForRefreshState(category domain.ShowCategory, l *shows.Listing) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-l.RefreshState()
		if !ok {
			return StreamClosedMsg{Category: category, Stream: "refresh"}
		}
		return RefreshStateMsg{Category: category, State: state}
	}
}

// observeListing starts draining every stream of a listing
func observeListing(category domain.ShowCategory, l *shows.Listing) tea.Cmd {
	return tea.Batch(
		waitForShows(category, l),
		waitForNetworkState(category, l),
		waitForRefreshState(category, l),
	)
}
