package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/tracker"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateWeek:
		content = docStyle.Render(m.weekModel.View())
	case constants.StateReport:
		content = docStyle.Render(m.viewReport())
	case constants.StateShares:
		content = docStyle.Render(m.sharesModel.View())
	case constants.StateChatInput:
		if m.chatModel != nil {
			content = docStyle.Render(m.chatModel.View())
		}
	case constants.StateAddHabit, constants.StateShareForm:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete, constants.StateConfirmDeleteShare, constants.StateConfirmDeleteMessage:
		content = lipgloss.Place(m.width, max(m.height-6, 0),
			lipgloss.Center, lipgloss.Center,
			dangerStyle.Render(m.form.View()),
		)
	}

	var banner string
	switch {
	case m.alert != "":
		banner = dangerStyle.Render("⚠ "+m.alert) + warningStyle.Render("  (press any key)")
	case m.status != "":
		banner = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.greeting.View(),
		m.viewTabs(),
		banner,
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Habits", "Week", "Report", "Shares"} {
		active := m.state == constants.SessionState(i) ||
			(i == int(constants.StateShares) && m.state == constants.StateChatInput)
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewReport() string {
	report := tracker.BuildReport(m.deps.State.Habits())
	if len(report.Rows) == 0 {
		return "No habits to report on yet."
	}

	rows := make([]table.Row, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, table.Row{r.Name, fmt.Sprintf("%d/%d", r.Done, r.Total), fmt.Sprintf("%d%%", r.Percent)})
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Habit", Width: 30},
			{Title: "Done", Width: 8},
			{Title: "Completion", Width: 12},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		t.View(),
		"",
		fmt.Sprintf("Overall: %d/%d days (%d%%)", report.TotalDone, report.TotalDays, report.Overall),
	)
}
