package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/adapter"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/shows"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/trakt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct{}

func (stubRemote) PopularShows(ctx context.Context, page, limit int) ([]trakt.Show, error) {
	if page > 1 {
		return nil, nil
	}
	return []trakt.Show{{Title: "Fargo", IDs: trakt.IDs{Trakt: 1}}}, nil
}

func (stubRemote) TrendingShows(ctx context.Context, page, limit int) ([]trakt.TrendingShow, error) {
	return nil, nil
}

func (stubRemote) AnticipatedShows(ctx context.Context, page, limit int) ([]trakt.AnticipatedShow, error) {
	return nil, nil
}

func (stubRemote) Countries(ctx context.Context, category domain.MediaCategory) ([]trakt.Country, error) {
	return nil, nil
}

type failingRepo struct{ cleared bool }

func (r *failingRepo) Invoke(context.Context, domain.ShowCategory) (*shows.Listing, error) {
	return nil, errors.New("boom")
}

func (r *failingRepo) OnCleared() { r.cleared = true }

func newTestModel(t *testing.T) (Model, *shows.Repository) {
	t.Helper()
	s, err := store.NewShowStore(t.TempDir(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := shows.NewRepository(stubRemote{}, s, 10, adapter.NullLogger())
	t.Cleanup(repo.OnCleared)

	m := NewModel(context.Background(), repo, domain.CategoryPopular, adapter.NullLogger())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model), repo
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func openPopular(t *testing.T, m Model, repo *shows.Repository) Model {
	t.Helper()
	msg := OpenListingCmd(context.Background(), repo, domain.CategoryPopular)()
	opened, ok := msg.(ListingOpenedMsg)
	require.True(t, ok, "got %T", msg)
	m, cmd := update(t, m, opened)
	assert.NotNil(t, cmd, "opening starts observing")
	return m
}

func TestNewModelStartsOnDefaultCategory(t *testing.T) {
	m := NewModel(context.Background(), &failingRepo{}, domain.CategoryAnticipated, nil)
	assert.Equal(t, domain.CategoryAnticipated, m.current().category)
	assert.Len(t, m.tabs, 3)
}

func TestStateMessagesDriveTheList(t *testing.T) {
	m, repo := newTestModel(t)
	m = openPopular(t, m, repo)
	list := m.current().list

	m, _ = update(t, m, NetworkStateMsg{Category: domain.CategoryPopular, State: domain.Loading()})
	assert.Equal(t, 1, list.ItemCount(), "loading footer on empty list")

	m, _ = update(t, m, ShowsMsg{Category: domain.CategoryPopular, Shows: []*domain.Show{{ID: 1, Title: "Fargo"}}})
	m, _ = update(t, m, NetworkStateMsg{Category: domain.CategoryPopular, State: domain.Success()})
	assert.Equal(t, 1, list.ItemCount())
	assert.False(t, list.IsEmpty())

	m, _ = update(t, m, NetworkStateMsg{Category: domain.CategoryPopular, State: domain.Failure("Connection problem", "offline")})
	assert.Equal(t, 2, list.ItemCount())
	assert.Contains(t, m.View(), "Connection problem")
}

func TestMessagesForUnopenedTabsAreIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, ShowsMsg{Category: domain.CategoryTrending, Shows: []*domain.Show{{ID: 1}}})
	assert.Nil(t, cmd)
	assert.True(t, m.tabFor(domain.CategoryTrending).list.IsEmpty())
}

func TestRefreshStateUpdatesStatusBar(t *testing.T) {
	m, repo := newTestModel(t)
	m = openPopular(t, m, repo)

	m, _ = update(t, m, RefreshStateMsg{Category: domain.CategoryPopular, State: domain.Loading()})
	assert.Equal(t, "Refreshing Popular...", m.StatusMsg)

	m, _ = update(t, m, RefreshStateMsg{Category: domain.CategoryPopular, State: domain.Failure("Not found", "gone")})
	assert.True(t, m.StatusIsErr)
	assert.Equal(t, "Not found: gone", m.StatusMsg)
}

func TestTabSwitchOpensListingOnce(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.CategoryTrending, m.current().category)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.CategoryTrending, m.current().category)
	assert.Nil(t, cmd, "listing is already opening")
}

func TestOpenFailureShowsError(t *testing.T) {
	repo := &failingRepo{}
	m := NewModel(context.Background(), repo, domain.CategoryPopular, nil)

	msg := OpenListingCmd(context.Background(), repo, domain.CategoryPopular)()
	m, _ = update(t, m, msg)
	assert.True(t, m.StatusIsErr)
	assert.Contains(t, m.StatusMsg, "boom")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, repo.cleared)
}

type recordingOpener struct{ urls []string }

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func TestOpenKeyOpensSelectedShow(t *testing.T) {
	m, repo := newTestModel(t)
	m = openPopular(t, m, repo)
	opener := &recordingOpener{}
	m = m.WithOpener(opener)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	assert.Nil(t, cmd, "nothing selected yet")

	m, _ = update(t, m, ShowsMsg{Category: domain.CategoryPopular, Shows: []*domain.Show{
		{ID: 1, Title: "Fargo", IDs: domain.ShowIDs{Trakt: 1, Slug: "fargo"}},
	}})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"https://trakt.tv/shows/fargo"}, opener.urls)
}

func TestViewBeforeSize(t *testing.T) {
	m := NewModel(context.Background(), &failingRepo{}, domain.CategoryPopular, nil)
	assert.Equal(t, "Loading...", m.View())
}
