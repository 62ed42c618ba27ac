package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/tracker"
)

// Every network call runs as a tea.Cmd. Successful habit writes reach the
// view through the controller's change notification.

func failed(err error) tea.Msg {
	return alertMsg{text: apperrors.Alert(err)}
}

func (m Model) toggleDay(h models.Habit, index int) tea.Cmd {
	ctx, t := m.ctx, m.deps.Tracker
	return func() tea.Msg {
		if _, err := t.Toggle(ctx, h, index); err != nil {
			return failed(err)
		}
		return nil
	}
}

func (m Model) createHabit(name string) tea.Cmd {
	ctx, t, userID := m.ctx, m.deps.Tracker, m.deps.Session.UserID
	return func() tea.Msg {
		h, err := t.CreateHabit(ctx, name, userID)
		if apperrors.Is(err, tracker.ErrEmptyName) {
			return nil
		}
		if err != nil {
			return failed(err)
		}
		return statusMsg{text: "Added " + h.Name + "."}
	}
}

func (m Model) deleteHabit(id string) tea.Cmd {
	ctx, t := m.ctx, m.deps.Tracker
	return func() tea.Msg {
		if err := t.DeleteHabit(ctx, id); err != nil {
			return failed(err)
		}
		return statusMsg{text: "Habit deleted."}
	}
}

func (m Model) loadShares() tea.Cmd {
	ctx, t, of := m.ctx, m.deps.Tracker, m.sharesOf
	return func() tea.Msg {
		return reloadShares(ctx, t, of, "")
	}
}

func reloadShares(ctx context.Context, t *tracker.Tracker, habitID, status string) tea.Msg {
	title, list, err := t.ListShares(ctx, habitID)
	if err != nil {
		return failed(err)
	}
	return sharesLoadedMsg{title: title, shares: list, status: status}
}

func (m Model) share(h models.Habit, comment string) tea.Cmd {
	ctx, t, session, of := m.ctx, m.deps.Tracker, m.deps.Session, m.sharesOf
	return func() tea.Msg {
		if _, err := t.Share(ctx, h, session, comment); err != nil {
			return failed(err)
		}
		return reloadShares(ctx, t, of, "Progress shared!")
	}
}

func (m Model) upvote(shareID string) tea.Cmd {
	ctx, t := m.ctx, m.deps.Tracker
	return func() tea.Msg {
		s, err := t.Upvote(ctx, shareID)
		if err != nil {
			return failed(err)
		}
		return shareUpdatedMsg{share: s}
	}
}

func (m Model) deleteShare(s models.Share) tea.Cmd {
	ctx, t, caller, of := m.ctx, m.deps.Tracker, m.deps.Session.UserID, m.sharesOf
	return func() tea.Msg {
		if err := t.DeleteShare(ctx, s, caller); err != nil {
			return failed(err)
		}
		return reloadShares(ctx, t, of, "Post deleted.")
	}
}

func (m Model) openChat(s models.Share) tea.Cmd {
	ctx, conn, updates := m.ctx, m.deps.Chat, m.chatLog
	return func() tea.Msg {
		unsubscribe, err := conn.Subscribe(ctx, s.ID, func(log models.ChatLog) {
			select {
			case updates <- chatUpdate{shareID: s.ID, log: log}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return failed(err)
		}
		return chatOpenedMsg{share: s, unsubscribe: unsubscribe}
	}
}

func (m Model) sendChat(shareID, text string) tea.Cmd {
	ctx, conn, session, now := m.ctx, m.deps.Chat, m.deps.Session, m.deps.Now
	return func() tea.Msg {
		err := conn.Send(ctx, shareID, models.ChatMessage{
			UserID:    session.UserID,
			UserName:  session.DisplayName,
			Message:   text,
			Timestamp: now().UnixMilli(),
		})
		if err != nil {
			return failed(err)
		}
		return nil
	}
}

func (m Model) deleteMessage(shareID string, msg models.KeyedMessage) tea.Cmd {
	ctx, conn, caller := m.ctx, m.deps.Chat, m.deps.Session.UserID
	return func() tea.Msg {
		if err := conn.Delete(ctx, shareID, msg, caller); err != nil {
			return failed(err)
		}
		return nil
	}
}
