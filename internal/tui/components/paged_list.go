package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// Layout constants for list panes
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// Item is anything a paged list can display
type Item interface {
	GetTitle() string
	GetDescription() string
}

// ViewType identifies how a row is rendered
type ViewType int

const (
	ViewItem ViewType = iota
	ViewLoadingFooter
	ViewErrorFooter
)

// ChangeKind describes a row-level change
type ChangeKind int

const (
	RowInserted ChangeKind = iota
	RowRemoved
	RowChanged
)

func (k ChangeKind) String() string {
	switch k {
	case RowInserted:
		return "inserted"
	case RowRemoved:
		return "removed"
	case RowChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// RowChange is emitted when a single row must be re-rendered
type RowChange struct {
	Kind     ChangeKind
	Position int
}

// PagedList is a scrollable list of content rows followed by an optional
// footer row reflecting the latest network state.
type PagedList[T Item] struct {
	items []T
	state *domain.NetworkState // nil until the first state arrives

	onChange func(RowChange)
	keys     ListKeyMap

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title   string
	spinner string
}

// NewPagedList creates an empty list with the given title
func NewPagedList[T Item](title string) *PagedList[T] {
	return &PagedList[T]{
		title: title,
		keys:  DefaultListKeyMap(),
	}
}

// OnRowChange registers fn to receive footer row changes
func (l *PagedList[T]) OnRowChange(fn func(RowChange)) {
	l.onChange = fn
}

// hasExtraRow reports whether the footer row is shown
func (l *PagedList[T]) hasExtraRow() bool {
	return l.state != nil && (l.state.IsLoading() || l.state.IsError())
}

// NetworkState returns the current state (nil when none was set)
func (l *PagedList[T]) NetworkState() *domain.NetworkState {
	return l.state
}

// SetNetworkState replaces the current state and notifies only the footer
// row that changed. Setting an equal state is a no-op.
func (l *PagedList[T]) SetNetworkState(state *domain.NetworkState) {
	previous := l.state
	hadExtraRow := l.hasExtraRow()
	if state != nil {
		s := *state
		l.state = &s
	} else {
		l.state = nil
	}
	hasExtraRow := l.hasExtraRow()

	switch {
	case hadExtraRow != hasExtraRow:
		if hadExtraRow {
			l.notify(RowChange{Kind: RowRemoved, Position: len(l.items)})
		} else {
			l.notify(RowChange{Kind: RowInserted, Position: len(l.items)})
		}
	case hasExtraRow && !sameState(previous, l.state):
		l.notify(RowChange{Kind: RowChanged, Position: l.ItemCount() - 1})
	}
}

func sameState(a, b *domain.NetworkState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (l *PagedList[T]) notify(change RowChange) {
	if l.onChange != nil {
		l.onChange(change)
	}
}

// ItemCount returns the number of rows including the footer
func (l *PagedList[T]) ItemCount() int {
	if l.hasExtraRow() {
		return len(l.items) + 1
	}
	return len(l.items)
}

// ItemViewType resolves how the row at pos is rendered
func (l *PagedList[T]) ItemViewType(pos int) ViewType {
	if l.hasExtraRow() && pos == l.ItemCount()-1 {
		if l.state.IsError() {
			return ViewErrorFooter
		}
		return ViewLoadingFooter
	}
	return ViewItem
}

// IsEmpty reports whether there is no content, ignoring the footer
func (l *PagedList[T]) IsEmpty() bool {
	return len(l.items) == 0
}

// IsWithinIndexBounds reports whether pos addresses a content row
func (l *PagedList[T]) IsWithinIndexBounds(pos int) bool {
	return pos >= 0 && pos < len(l.items)
}

// SubmitList replaces the content rows, keeping the cursor in range
func (l *PagedList[T]) SubmitList(items []T) {
	l.items = items
	if l.cursor >= len(items) {
		l.cursor = max(len(items)-1, 0)
	}
	l.ensureVisible()
}

// Items returns the content rows
func (l *PagedList[T]) Items() []T {
	return l.items
}

// SelectedItem returns the row under the cursor
func (l *PagedList[T]) SelectedItem() (T, bool) {
	if !l.IsWithinIndexBounds(l.cursor) {
		var zero T
		return zero, false
	}
	return l.items[l.cursor], true
}

func (l *PagedList[T]) SelectedIndex() int {
	return l.cursor
}

// EndReached reports whether the cursor sits on the last content row
func (l *PagedList[T]) EndReached() bool {
	return len(l.items) > 0 && l.cursor == len(l.items)-1
}

func (l *PagedList[T]) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *PagedList[T]) SetFocused(focused bool) {
	l.focused = focused
}

func (l *PagedList[T]) Title() string {
	return l.title
}

// SetSpinner sets the rendered spinner frame used by the loading footer
func (l *PagedList[T]) SetSpinner(frame string) {
	l.spinner = frame
}

// Update handles cursor movement over content rows
func (l *PagedList[T]) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.items) == 0 {
		return nil
	}

	last := len(l.items) - 1
	switch {
	case key.Matches(keyMsg, l.keys.Down):
		if l.cursor < last {
			l.cursor++
		}
	case key.Matches(keyMsg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(keyMsg, l.keys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, l.keys.End):
		l.cursor = last
	case key.Matches(keyMsg, l.keys.HalfDown):
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), last)
	case key.Matches(keyMsg, l.keys.HalfUp):
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
	default:
		return nil
	}
	l.ensureVisible()
	return nil
}

func (l *PagedList[T]) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	l.maxVisible = l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *PagedList[T]) ensureVisible() {
	// Don't adjust offset if size hasn't been set yet
	if l.maxVisible <= 0 {
		return
	}
	// Keep the footer in view when the cursor is on the last row
	target := l.cursor
	if l.EndReached() && l.hasExtraRow() {
		target = l.ItemCount() - 1
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if target >= l.offset+l.maxVisible {
		l.offset = target - l.maxVisible + 1
	}
}

// Rendering

func (l *PagedList[T]) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

// titleStyle highlights the title of the focused list
func (l *PagedList[T]) titleStyle() lipgloss.Style {
	if l.focused {
		return styles.TitleStyle.Foreground(styles.Amber)
	}
	return styles.TitleStyle
}

func (l *PagedList[T]) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := l.titleStyle().Render(styles.Truncate(l.title, itemWidth))

	count := l.ItemCount()
	if count == 0 {
		return titleLine + "\n \n" + styles.DimStyle.Render("No items") + "\n "
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		switch l.ItemViewType(i) {
		case ViewLoadingFooter:
			lines = append(lines, l.renderLoadingFooter(itemWidth))
		case ViewErrorFooter:
			lines = append(lines, l.renderErrorFooter(itemWidth))
		default:
			lines = append(lines, l.renderItem(l.items[i], i == l.cursor, itemWidth))
		}
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	return titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
}

func (l *PagedList[T]) renderItem(item T, selected bool, width int) string {
	title := item.GetTitle()
	desc := item.GetDescription()

	available := width - 4
	if desc != "" {
		available -= len(desc) + 1
	}
	title = styles.Truncate(title, max(available, 5))

	accent := styles.Amber
	parts := []styles.RowPart{
		{Text: styles.Bullet, Foreground: &accent},
		{Text: " " + title},
	}
	if desc != "" {
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: " " + desc, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func (l *PagedList[T]) renderLoadingFooter(width int) string {
	spinner := l.spinner
	if spinner == "" {
		spinner = "…"
	}
	return styles.DimStyle.Render(styles.Truncate(spinner+" Loading...", width))
}

func (l *PagedList[T]) renderErrorFooter(width int) string {
	heading := styles.ErrorStyle.Render("✗ " + l.state.Heading)
	msg := fmt.Sprintf(" %s (r to retry)", l.state.Message)
	return heading + styles.DimStyle.Render(styles.Truncate(msg, max(width-lenRunes(l.state.Heading)-2, 0)))
}

func lenRunes(s string) int {
	return len([]rune(s))
}
