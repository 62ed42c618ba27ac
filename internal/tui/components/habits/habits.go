package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitshare/internal/models"
)

type AddHabitMsg struct{}

type ToggleDayMsg struct {
	Habit models.Habit
	Index int
}

type DeleteHabitMsg struct {
	Habit models.Habit
}

type ShareHabitMsg struct {
	Habit models.Habit
}

type OpenWeekMsg struct {
	Habit models.Habit
}

type Item struct {
	Habit models.Habit
	Today string
}

// todayIndex is the position of today in the habit's week, or -1
func (i Item) todayIndex() int {
	for idx, d := range i.Habit.Week {
		if d.Date == i.Today {
			return idx
		}
	}
	return -1
}

func (i Item) Title() string {
	idx := i.todayIndex()
	if idx >= 0 && i.Habit.Week[idx].Status == models.StatusDone {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%d/%d days (%d%%)", i.Habit.DoneCount(), len(i.Habit.Week), i.Habit.Completion())
	if !i.Habit.IsCurrent(i.Today) {
		desc += " | past week"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Share  key.Binding
	Week   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "toggle today"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "share"),
		),
		Week: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "week"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, today string, width, height int) Model {
	l := list.New(items(habits, today), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Share, keys.Week}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(habits []models.Habit, today string) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Today: today}
	}
	return out
}

func (m *Model) SetHabits(habits []models.Habit, today string) {
	m.list.SetItems(items(habits, today))
}

// Selected returns the highlighted habit
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddHabitMsg{} }
		}
		if i, ok := m.list.SelectedItem().(Item); ok {
			switch {
			case key.Matches(msg, m.keys.Toggle):
				if idx := i.todayIndex(); idx >= 0 {
					return m, func() tea.Msg { return ToggleDayMsg{Habit: i.Habit, Index: idx} }
				}
				return m, nil
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{Habit: i.Habit} }
			case key.Matches(msg, m.keys.Share):
				return m, func() tea.Msg { return ShareHabitMsg{Habit: i.Habit} }
			case key.Matches(msg, m.keys.Week):
				return m, func() tea.Msg { return OpenWeekMsg{Habit: i.Habit} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
