package shares

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitshare/internal/models"
)

type UpvoteMsg struct {
	Share models.Share
}

type OpenChatMsg struct {
	Share models.Share
}

type DeleteShareMsg struct {
	Share models.Share
}

type RefreshMsg struct{}

// FilterMsg switches between every share and those of one habit
type FilterMsg struct{}

type Item struct {
	Share models.Share
	Mine  bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s: %s", i.Share.UserName, i.Share.HabitName)
	if i.Mine {
		title += " (you)"
	}
	return title
}

func (i Item) Description() string {
	return fmt.Sprintf("%d%% | ▲ %d | %s", i.Share.Completion, i.Share.Upvotes, i.Share.Comment)
}

func (i Item) FilterValue() string { return i.Share.HabitName + " " + i.Share.Comment }

type KeyMap struct {
	Upvote  key.Binding
	Chat    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Filter  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Upvote: key.NewBinding(
			key.WithKeys("u", "+"),
			key.WithHelp("u", "upvote"),
		),
		Chat: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "chat"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "this habit/all"),
		),
	}
}

type Model struct {
	list   list.Model
	keys   KeyMap
	userID string
	Title  string
}

func New(userID string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Upvote, keys.Chat, keys.Filter, keys.Delete, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys, userID: userID}
}

func (m *Model) SetShares(title string, shares []models.Share) {
	m.Title = title
	sel := m.list.Index()
	out := make([]list.Item, len(shares))
	for i, s := range shares {
		out[i] = Item{Share: s, Mine: s.UserID == m.userID}
	}
	m.list.SetItems(out)
	if sel < len(out) {
		m.list.Select(sel)
	}
}

// Replace swaps in an updated copy of a listed share
func (m *Model) Replace(s models.Share) {
	for i, it := range m.list.Items() {
		if item, ok := it.(Item); ok && item.Share.ID == s.ID {
			item.Share = s
			m.list.SetItem(i, item)
			return
		}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		case key.Matches(msg, m.keys.Filter):
			return m, func() tea.Msg { return FilterMsg{} }
		}
		if i, ok := m.list.SelectedItem().(Item); ok {
			switch {
			case key.Matches(msg, m.keys.Upvote):
				return m, func() tea.Msg { return UpvoteMsg{Share: i.Share} }
			case key.Matches(msg, m.keys.Chat):
				return m, func() tea.Msg { return OpenChatMsg{Share: i.Share} }
			case key.Matches(msg, m.keys.Delete):
				if i.Mine {
					return m, func() tea.Msg { return DeleteShareMsg{Share: i.Share} }
				}
				return m, nil
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	heading := m.Title + "\n\n"
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return heading + "  No shared progress yet."
	}
	return heading + m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height-2)
}
