package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/shows"
	"github.com/mmcdole/shelf/internal/tui/components"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// Vertical chrome: tab bar on top, status bar at the bottom
const ChromeHeight = 2

// tab is one category pane
type tab struct {
	category domain.ShowCategory
	list     *components.PagedList[*domain.Show]
	listing  *shows.Listing
	opening  bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	ctx    context.Context
	repo   Repository
	opener Opener
	logger *slog.Logger
	keys   KeyMap

	tabs   []*tab
	active int

	spinner spinner.Model

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates the application model with one tab per category,
// starting on defaultCategory.
func NewModel(ctx context.Context, repo Repository, defaultCategory domain.ShowCategory, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		ctx:     ctx,
		repo:    repo,
		logger:  logger,
		keys:    DefaultKeyMap(),
		spinner: sp,
	}
	for i, c := range domain.ShowCategories() {
		list := components.NewPagedList[*domain.Show](titleFor(c))
		category := c
		list.OnRowChange(func(change components.RowChange) {
			logger.Debug("footer row changed", "category", category, "change", change.Kind, "position", change.Position)
		})
		m.tabs = append(m.tabs, &tab{category: c, list: list})
		if c == defaultCategory {
			m.active = i
		}
	}
	m.tabs[m.active].list.SetFocused(true)
	return m
}

// WithOpener enables opening the selected show's web page
func (m Model) WithOpener(o Opener) Model {
	m.opener = o
	return m
}

func titleFor(c domain.ShowCategory) string {
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Init opens the starting tab and starts the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.openActive(), m.spinner.Tick)
}

func (m Model) current() *tab {
	return m.tabs[m.active]
}

func (m Model) tabFor(category domain.ShowCategory) *tab {
	for _, t := range m.tabs {
		if t.category == category {
			return t
		}
	}
	return nil
}

// openActive opens the active tab's listing once
func (m Model) openActive() tea.Cmd {
	t := m.current()
	if t.listing != nil || t.opening {
		return nil
	}
	t.opening = true
	return OpenListingCmd(m.ctx, m.repo, t.category)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		frame := m.spinner.View()
		for _, t := range m.tabs {
			t.list.SetSpinner(frame)
		}
		return m, cmd

	case ListingOpenedMsg:
		t := m.tabFor(msg.Category)
		if t == nil {
			return m, nil
		}
		t.listing = msg.Listing
		t.opening = false
		m.logger.Debug("observing listing", "category", msg.Category)
		return m, observeListing(msg.Category, msg.Listing)

	case ShowsMsg:
		t := m.tabFor(msg.Category)
		if t == nil || t.listing == nil {
			return m, nil
		}
		t.list.SubmitList(msg.Shows)
		return m, waitForShows(msg.Category, t.listing)

	case NetworkStateMsg:
		t := m.tabFor(msg.Category)
		if t == nil || t.listing == nil {
			return m, nil
		}
		state := msg.State
		t.list.SetNetworkState(&state)
		return m, waitForNetworkState(msg.Category, t.listing)

	case RefreshStateMsg:
		t := m.tabFor(msg.Category)
		if t == nil || t.listing == nil {
			return m, nil
		}
		m.applyRefreshState(msg.Category, msg.State)
		return m, waitForRefreshState(msg.Category, t.listing)

	case StreamClosedMsg:
		m.logger.Debug("listing stream closed", "category", msg.Category, "stream", msg.Stream)
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "error", msg.Err, "context", msg.Context)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		for _, t := range m.tabs {
			t.opening = false
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) applyRefreshState(category domain.ShowCategory, state domain.NetworkState) {
	name := titleFor(category)
	switch state.Kind {
	case domain.StateLoading:
		m.StatusMsg = "Refreshing " + name + "..."
		m.StatusIsErr = false
	case domain.StateSuccess:
		m.StatusMsg = name + " refreshed"
		m.StatusIsErr = false
	case domain.StateError:
		m.StatusMsg = fmt.Sprintf("%s: %s", state.Heading, state.Message)
		m.StatusIsErr = true
	}
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.repo.OnCleared()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(-1)

	case key.Matches(msg, m.keys.Retry):
		if t.listing == nil {
			return m, m.openActive()
		}
		return m, RetryCmd(t.listing)

	case key.Matches(msg, m.keys.Refresh):
		if t.listing == nil {
			return m, nil
		}
		return m, RefreshCmd(t.listing)

	case key.Matches(msg, m.keys.Open):
		show, ok := t.list.SelectedItem()
		if !ok || m.opener == nil {
			return m, nil
		}
		return m, OpenShowCmd(m.opener, show)
	}

	t.list.Update(msg)
	if t.listing != nil && t.list.EndReached() {
		return m, LoadMoreCmd(t.listing)
	}
	return m, nil
}

func (m *Model) switchTab(delta int) tea.Cmd {
	m.current().list.SetFocused(false)
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.current().list.SetFocused(true)
	return m.openActive()
}

func (m *Model) updateLayout() {
	height := max(m.Height-ChromeHeight, 3)
	for _, t := range m.tabs {
		t.list.SetSize(m.Width, height)
	}
}

// View renders the tab bar, the active list and the status bar
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		m.current().list.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		label := titleFor(t.category)
		if state := t.list.NetworkState(); state != nil && state.IsLoading() {
			label += " " + m.spinner.View()
		}
		if i == m.active {
			parts[i] = styles.ActiveTabStyle.Render(label)
		} else {
			parts[i] = styles.InactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderStatusBar() string {
	if m.StatusMsg != "" {
		style := styles.SuccessStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		return styles.StatusBarStyle.Width(m.Width).Render(style.Render(m.StatusMsg))
	}

	help := make([]string, 0, 5)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return styles.StatusBarStyle.Width(m.Width).Render(strings.Join(help, "  "))
}
