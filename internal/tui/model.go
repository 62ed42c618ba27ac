package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitshare/internal/chat"
	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/state"
	"github.com/julianstephens/habitshare/internal/tracker"
	chatpanel "github.com/julianstephens/habitshare/internal/tui/components/chat"
	"github.com/julianstephens/habitshare/internal/tui/components/greeting"
	"github.com/julianstephens/habitshare/internal/tui/components/habits"
	"github.com/julianstephens/habitshare/internal/tui/components/shares"
	"github.com/julianstephens/habitshare/internal/tui/components/week"
)

// ChatConn is the part of the real-time client the TUI uses
type ChatConn interface {
	Subscribe(ctx context.Context, shareID string, fn chat.Listener) (func(), error)
	Send(ctx context.Context, shareID string, msg models.ChatMessage) error
	Delete(ctx context.Context, shareID string, msg models.KeyedMessage, callerID string) error
}

// Deps are the services the TUI drives. Chat may be nil; the chat panel is
// then unavailable.
type Deps struct {
	Tracker *tracker.Tracker
	State   *state.Controller
	Chat    ChatConn
	Session models.Session
	Now     func() time.Time
}

type HabitFormModel struct {
	Name string
}

type ShareFormModel struct {
	Comment string
}

type ConfirmFormModel struct {
	Confirmed bool
}

type Model struct {
	ctx     context.Context
	deps    Deps
	state   constants.SessionState
	keys    KeyMap
	help    help.Model
	width   int
	height  int
	changes chan struct{}
	chatLog chan chatUpdate

	greeting    greeting.Model
	habitsModel habits.Model
	weekModel   week.Model
	sharesModel shares.Model
	chatModel   *chatpanel.Model
	unsubscribe func()

	form        *huh.Form
	habitForm   *HabitFormModel
	shareForm   *ShareFormModel
	confirmForm *ConfirmFormModel

	shareHabit  models.Habit
	pending     func() tea.Cmd
	returnState constants.SessionState
	sharesOf    string

	status   string
	alert    string
	quitting bool
}

// habitsChangedMsg is sent whenever the controller's habit set changes
type habitsChangedMsg struct{}

type chatUpdate struct {
	shareID string
	log     models.ChatLog
}

type sharesLoadedMsg struct {
	title  string
	shares []models.Share
	status string
}

type shareUpdatedMsg struct {
	share models.Share
}

type chatOpenedMsg struct {
	share       models.Share
	unsubscribe func()
}

// alertMsg carries a failed operation's user-facing message
type alertMsg struct {
	text string
}

type statusMsg struct {
	text string
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	now := deps.Now()
	today := models.Today(now)

	m := Model{
		ctx:         ctx,
		deps:        deps,
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		changes:     make(chan struct{}, 1),
		chatLog:     make(chan chatUpdate, 16),
		greeting:    greeting.New(deps.Session.DisplayName, now),
		habitsModel: habits.New(deps.State.Habits(), today, 0, 0),
		weekModel:   week.New(),
		sharesModel: shares.New(deps.Session.UserID, 0, 0),
		sharesOf:    constants.AllShares,
	}

	changes := m.changes
	deps.State.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.greeting.Init(), m.waitForChange(), m.waitForChat(), m.loadShares())
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return habitsChangedMsg{}
	}
}

func (m Model) waitForChat() tea.Cmd {
	updates := m.chatLog
	return func() tea.Msg {
		return <-updates
	}
}

func (m Model) actionKeys() []key.Binding {
	switch m.state {
	case constants.StateHabits:
		k := habits.DefaultKeyMap()
		return []key.Binding{k.Add, k.Toggle, k.Week, k.Share, k.Delete}
	case constants.StateWeek:
		k := m.weekModel.Keys()
		return []key.Binding{k.Prev, k.Next, k.Toggle}
	case constants.StateShares:
		k := shares.DefaultKeyMap()
		return []key.Binding{k.Upvote, k.Chat, k.Filter, k.Delete, k.Refresh}
	case constants.StateChatInput:
		if m.chatModel != nil {
			k := m.chatModel.Keys()
			return []key.Binding{k.Send, k.Up, k.Down, k.Delete, k.Close}
		}
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == constants.StateChatInput {
		return m.actionKeys()
	}
	return append([]key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}, m.actionKeys()...)
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help},
		m.actionKeys(),
	}
}
