package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
	chatpanel "github.com/julianstephens/habitshare/internal/tui/components/chat"
	"github.com/julianstephens/habitshare/internal/tui/components/greeting"
	"github.com/julianstephens/habitshare/internal/tui/components/habits"
	"github.com/julianstephens/habitshare/internal/tui/components/shares"
	"github.com/julianstephens/habitshare/internal/tui/components/week"
)

const tabCount = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - 8
		m.habitsModel.SetSize(msg.Width-4, h)
		m.sharesModel.SetSize(msg.Width-4, h)
		if m.chatModel != nil {
			m.chatModel.SetSize(msg.Width-4, h)
		}
		return m, nil

	case greeting.TickMsg:
		var cmd tea.Cmd
		m.greeting, cmd = m.greeting.Update(msg)
		return m, cmd

	case habitsChangedMsg:
		m.refreshHabits()
		return m, m.waitForChange()

	case chatUpdate:
		if m.chatModel != nil && m.chatModel.ShareID() == msg.shareID {
			m.chatModel.SetLog(msg.log)
		}
		return m, m.waitForChat()

	case sharesLoadedMsg:
		m.sharesModel.SetShares(msg.title, msg.shares)
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case shareUpdatedMsg:
		m.sharesModel.Replace(msg.share)
		return m, nil

	case chatOpenedMsg:
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		panel := chatpanel.New(msg.share, m.deps.Session.UserID, m.width-4, m.height-8)
		m.chatModel = &panel
		m.unsubscribe = msg.unsubscribe
		m.state = constants.StateChatInput
		return m, nil

	case alertMsg:
		m.alert = msg.text
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyCtrlC {
		m.quitting = true
		m.closeChat()
		return m, tea.Quit
	}

	// alerts block until dismissed
	if _, ok := msg.(tea.KeyMsg); ok && m.alert != "" {
		m.alert = ""
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateShareForm,
		constants.StateConfirmDelete, constants.StateConfirmDeleteShare, constants.StateConfirmDeleteMessage:
		return m.updateForm(msg)
	case constants.StateChatInput:
		return m.updateChat(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.closeChat()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			return m, m.switchTab((int(m.state) + 1) % tabCount)
		case key.Matches(msg, m.keys.ShiftTab):
			return m, m.switchTab((int(m.state) - 1 + tabCount) % tabCount)
		}
	}

	// component messages
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm)
		m.returnState = m.state
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habits.ToggleDayMsg:
		return m, m.toggleDay(msg.Habit, msg.Index)

	case week.ToggleDayMsg:
		return m, m.toggleDay(msg.Habit, msg.Index)

	case habits.OpenWeekMsg:
		m.weekModel.SetHabit(msg.Habit, true, m.today())
		m.state = constants.StateWeek
		return m, nil

	case habits.ShareHabitMsg:
		m.shareHabit = msg.Habit
		m.shareForm = &ShareFormModel{}
		m.form = newShareForm(msg.Habit, m.shareForm)
		m.returnState = m.state
		m.state = constants.StateShareForm
		return m, m.form.Init()

	case habits.DeleteHabitMsg:
		id := msg.Habit.ID
		return m, m.confirm(constants.StateConfirmDelete,
			"Delete habit \""+msg.Habit.Name+"\"?",
			func() tea.Cmd { return m.deleteHabit(id) })

	case shares.RefreshMsg:
		return m, m.loadShares()

	case shares.FilterMsg:
		if h, ok := m.habitsModel.Selected(); ok && m.sharesOf == constants.AllShares {
			m.sharesOf = h.ID
		} else {
			m.sharesOf = constants.AllShares
		}
		return m, m.loadShares()

	case shares.UpvoteMsg:
		return m, m.upvote(msg.Share.ID)

	case shares.OpenChatMsg:
		if m.deps.Chat == nil {
			m.alert = "Chat is unavailable."
			return m, nil
		}
		return m, m.openChat(msg.Share)

	case shares.DeleteShareMsg:
		sh := msg.Share
		return m, m.confirm(constants.StateConfirmDeleteShare,
			"Delete this post?",
			func() tea.Cmd { return m.deleteShare(sh) })
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StateWeek:
		m.weekModel, cmd = m.weekModel.Update(msg)
	case constants.StateShares:
		m.sharesModel, cmd = m.sharesModel.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) switchTab(next int) tea.Cmd {
	m.state = constants.SessionState(next)
	switch m.state {
	case constants.StateWeek:
		h, ok := m.habitsModel.Selected()
		m.weekModel.SetHabit(h, ok, m.today())
	case constants.StateShares:
		return m.loadShares()
	}
	return nil
}

// refreshHabits re-reads the controller after a change
func (m *Model) refreshHabits() {
	today := m.today()
	m.habitsModel.SetHabits(m.deps.State.Habits(), today)
	if id := m.weekModel.HabitID(); id != "" {
		h, ok := m.deps.State.Find(id)
		m.weekModel.SetHabit(h, ok, today)
	}
}

func (m Model) today() string {
	return models.Today(m.deps.Now())
}

func (m *Model) confirm(s constants.SessionState, question string, action func() tea.Cmd) tea.Cmd {
	m.confirmForm = &ConfirmFormModel{}
	m.form = newConfirmForm(question, m.confirmForm)
	m.pending = action
	m.returnState = m.state
	m.state = s
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.pending = nil
		m.state = m.returnState
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		switch m.state {
		case constants.StateAddHabit:
			cmds = append(cmds, m.createHabit(m.habitForm.Name))
		case constants.StateShareForm:
			cmds = append(cmds, m.share(m.shareHabit, m.shareForm.Comment))
		default:
			if m.confirmForm.Confirmed && m.pending != nil {
				cmds = append(cmds, m.pending())
			}
		}
		m.pending = nil
		m.state = m.returnState
	case huh.StateAborted:
		m.pending = nil
		m.state = m.returnState
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chatpanel.CloseMsg:
		m.closeChat()
		m.state = constants.StateShares
		return m, nil
	case chatpanel.SendMsg:
		return m, m.sendChat(msg.ShareID, msg.Text)
	case chatpanel.DeleteMessageMsg:
		shareID, target := msg.ShareID, msg.Message
		cmd := m.confirm(constants.StateConfirmDeleteMessage, "Delete this message?",
			func() tea.Cmd { return m.deleteMessage(shareID, target) })
		return m, cmd
	}

	var cmd tea.Cmd
	panel := *m.chatModel
	panel, cmd = panel.Update(msg)
	m.chatModel = &panel
	return m, cmd
}

func (m *Model) closeChat() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.chatModel = nil
}
