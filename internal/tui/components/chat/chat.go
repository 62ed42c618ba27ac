package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitshare/internal/models"
)

var (
	nameStyle   = lipgloss.NewStyle().Bold(true)
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

type SendMsg struct {
	ShareID string
	Text    string
}

type DeleteMessageMsg struct {
	ShareID string
	Message models.KeyedMessage
}

type CloseMsg struct{}

type KeyMap struct {
	Send   key.Binding
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Close  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "select older"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "select newer"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete message"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close chat"),
		),
	}
}

// Model is the chat panel of one share: the ordered log in a viewport and an
// input line
type Model struct {
	share    models.Share
	userID   string
	messages []models.KeyedMessage
	selected int // -1 when no message is selected
	input    textinput.Model
	viewport viewport.Model
	keys     KeyMap
	Err      string
}

func New(share models.Share, userID string, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Say something encouraging..."
	ti.Focus()
	ti.CharLimit = 2000

	m := Model{
		share:    share,
		userID:   userID,
		selected: -1,
		input:    ti,
		viewport: viewport.New(width, max(height-4, 1)),
		keys:     DefaultKeyMap(),
	}
	m.render()
	return m
}

func (m Model) ShareID() string { return m.share.ID }

func (m Model) Keys() KeyMap { return m.keys }

// SetLog replaces the visible log with a fresh snapshot
func (m *Model) SetLog(log models.ChatLog) {
	var selectedKey string
	if m.selected >= 0 && m.selected < len(m.messages) {
		selectedKey = m.messages[m.selected].Key
	}
	m.messages = log.Ordered()
	m.selected = -1
	for i, msg := range m.messages {
		if msg.Key == selectedKey {
			m.selected = i
		}
	}
	m.render()
	if m.selected < 0 {
		m.viewport.GotoBottom()
	}
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height-4, 1)
	m.input.Width = width - 4
	m.render()
}

func (m *Model) render() {
	if len(m.messages) == 0 {
		m.viewport.SetContent("No messages yet.")
		return
	}
	var b strings.Builder
	for i, msg := range m.messages {
		name := nameStyle.Render(msg.UserName)
		if msg.UserID == m.userID {
			name = mineStyle.Render(msg.UserName + " (you)")
		}
		prefix := "  "
		if i == m.selected {
			prefix = cursorStyle.Render("> ")
		}
		stamp := time.UnixMilli(msg.Timestamp).Format("15:04")
		fmt.Fprintf(&b, "%s%s %s: %s\n", prefix, timeStyle.Render(stamp), name, msg.Message)
	}
	m.viewport.SetContent(b.String())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Close):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Send):
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			id := m.share.ID
			return m, func() tea.Msg { return SendMsg{ShareID: id, Text: text} }
		case key.Matches(msg, m.keys.Up):
			if m.selected < 0 {
				m.selected = len(m.messages)
			}
			if m.selected > 0 {
				m.selected--
			}
			m.render()
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.selected >= 0 && m.selected < len(m.messages)-1 {
				m.selected++
			} else {
				m.selected = -1
			}
			m.render()
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if m.selected < 0 || m.selected >= len(m.messages) {
				return m, nil
			}
			target := m.messages[m.selected]
			if target.UserID != m.userID {
				m.Err = "You can only delete your own messages."
				return m, nil
			}
			id := m.share.ID
			return m, func() tea.Msg { return DeleteMessageMsg{ShareID: id, Message: target} }
		}
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Chat: %s's %s", m.share.UserName, m.share.HabitName))
	footer := m.input.View()
	if m.Err != "" {
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.Err) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
