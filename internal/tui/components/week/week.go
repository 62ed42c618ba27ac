package week

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
)

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

// ToggleDayMsg asks for the day at Index of Habit to flip
type ToggleDayMsg struct {
	Habit models.Habit
	Index int
}

type KeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "up", "k"),
			key.WithHelp("←", "prev day"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "down", "j"),
			key.WithHelp("→", "next day"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
	}
}

type Model struct {
	habit  models.Habit
	found  bool
	today  string
	cursor int
	keys   KeyMap
}

func New() Model {
	return Model{keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetHabit shows h; found=false renders the not-found message. The cursor
// starts on today when the week covers it.
func (m *Model) SetHabit(h models.Habit, found bool, today string) {
	switching := h.ID != m.habit.ID
	m.habit, m.found, m.today = h, found, today
	if switching {
		m.cursor = 0
		for i, d := range h.Week {
			if d.Date == today {
				m.cursor = i
			}
		}
	}
	if m.cursor >= len(h.Week) {
		m.cursor = 0
	}
}

func (m Model) HabitID() string { return m.habit.ID }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	msg2, ok := msg.(tea.KeyMsg)
	if !ok || !m.found || len(m.habit.Week) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg2, m.keys.Prev):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg2, m.keys.Next):
		if m.cursor < len(m.habit.Week)-1 {
			m.cursor++
		}
	case key.Matches(msg2, m.keys.Toggle):
		h, idx := m.habit, m.cursor
		return m, func() tea.Msg { return ToggleDayMsg{Habit: h, Index: idx} }
	}
	return m, nil
}

func (m Model) View() string {
	if !m.found {
		return "Habit not found."
	}
	if len(m.habit.Week) == 0 {
		return "No week data."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d%%", m.habit.Name, m.habit.Completion())))
	b.WriteString("\n")
	for i, d := range m.habit.Week {
		mark := "·"
		if d.Status == models.StatusDone {
			mark = doneStyle.Render("✓")
		}
		label := d.Date
		if t, err := time.ParseInLocation(constants.DateFormat, d.Date, time.Local); err == nil {
			label = t.Format("Mon Jan 02")
		}
		line := fmt.Sprintf(" %s  %s", mark, label)
		switch {
		case d.Date == m.today:
			line += "  (today)"
		case d.Date > m.today:
			line = upcomingStyle.Render(line + "  upcoming")
		}
		prefix := " "
		if i == m.cursor {
			prefix = cursorStyle.Render(">")
		}
		b.WriteString(prefix + line + "\n")
	}
	if !m.habit.IsCurrent(m.today) {
		b.WriteString(upcomingStyle.Render("\nThis week no longer includes today."))
	}
	return b.String()
}
