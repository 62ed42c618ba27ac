package greeting

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitshare/internal/constants"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)
)

// PartOfDay names the part of the day hour falls in
func PartOfDay(hour int) string {
	switch {
	case hour < 12:
		return "Morning"
	case hour < 17:
		return "Afternoon"
	case hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

type Model struct {
	Name string
	Time time.Time
}

func New(name string, now time.Time) Model {
	return Model{Name: name, Time: now}
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(TickMsg); ok {
		m.Time = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	title := "Good " + PartOfDay(m.Time.Hour())
	if m.Name != "" {
		title += ", " + m.Name
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(title),
		timeStyle.Render(m.Time.Format("Mon Jan 2 "+constants.TimeFormat)),
	)
}
