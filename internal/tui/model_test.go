package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/state"
	"github.com/julianstephens/habitshare/internal/tracker"
	"github.com/julianstephens/habitshare/internal/tui/components/habits"
)

var errDown = errors.New("remote down")

type fakeRemote struct {
	mu     sync.Mutex
	habits map[string]models.Habit
	shares map[string]models.Share
	fail   bool
}

func newFake(hs ...models.Habit) *fakeRemote {
	f := &fakeRemote{habits: map[string]models.Habit{}, shares: map[string]models.Share{}}
	for _, h := range hs {
		f.habits[h.ID] = h
	}
	return f
}

func (f *fakeRemote) check() error {
	if f.fail {
		return errDown
	}
	return nil
}

func (f *fakeRemote) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Habit, 0, len(f.habits))
	for _, h := range f.habits {
		out = append(out, h)
	}
	return out, f.check()
}

func (f *fakeRemote) AddHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return models.Habit{}, err
	}
	f.habits[h.ID] = h
	return h, nil
}

func (f *fakeRemote) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	return f.AddHabit(ctx, h)
}

func (f *fakeRemote) DeleteHabit(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.habits, id)
	return f.check()
}

func (f *fakeRemote) FetchShares(ctx context.Context) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Share, 0, len(f.shares))
	for _, s := range f.shares {
		out = append(out, s)
	}
	return out, f.check()
}

func (f *fakeRemote) GetShare(ctx context.Context, id string) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shares[id], f.check()
}

func (f *fakeRemote) AddShare(ctx context.Context, s models.Share) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares[s.ID] = s
	return s, f.check()
}

func (f *fakeRemote) UpdateShare(ctx context.Context, s models.Share) (models.Share, error) {
	return f.AddShare(ctx, s)
}

func (f *fakeRemote) IncrementUpvotes(ctx context.Context, id string) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.shares[id]
	s.Upvotes++
	f.shares[id] = s
	return s, f.check()
}

func (f *fakeRemote) DeleteShare(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.shares, id)
	return f.check()
}

func (f *fakeRemote) FetchUpvotes(ctx context.Context, shareID string) ([]models.Upvote, error) {
	return nil, f.check()
}

func (f *fakeRemote) AddUpvote(ctx context.Context, u models.Upvote) (models.Upvote, error) {
	return u, f.check()
}

var now = time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)

func clock() time.Time { return now }

func newTestModel(t *testing.T, remote *fakeRemote) Model {
	t.Helper()
	ctrl := state.New(remote)
	if err := ctrl.SignIn(context.Background(), "me"); err != nil {
		t.Fatal(err)
	}
	tr := tracker.New(remote, remote, ctrl).WithClock(clock)
	m := NewModel(context.Background(), Deps{
		Tracker: tr,
		State:   ctrl,
		Session: models.Session{UserID: "me", DisplayName: "Ada"},
		Now:     clock,
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func readHabit() models.Habit {
	return models.NewHabit("Read", "me", now.AddDate(0, 0, -2))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msg to the model and then runs the returned command chain
// synchronously, following one message per command
func drive(m Model, msg tea.Msg) Model {
	for i := 0; msg != nil && i < 10; i++ {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func TestGreetingAndTabs(t *testing.T) {
	m := newTestModel(t, newFake(readHabit()))
	view := m.View()
	if !strings.Contains(view, "Good Morning, Ada") {
		t.Errorf("missing greeting:\n%s", view)
	}

	for _, want := range []constants.SessionState{constants.StateWeek, constants.StateReport, constants.StateShares, constants.StateHabits} {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(Model)
		if m.state != want {
			t.Fatalf("state = %v, want %v", m.state, want)
		}
	}
}

func TestToggleTodayFromHabitsTab(t *testing.T) {
	remote := newFake(readHabit())
	m := newTestModel(t, remote)

	m = drive(m, runes("m"))
	// the refresh command blocks on the next change, so it is not run
	next, _ := m.Update(habitsChangedMsg{})
	m = next.(Model)

	h := m.deps.State.Habits()[0]
	if h.Week[2].Status != models.StatusDone {
		t.Errorf("today not marked: %+v", h.Week)
	}
	if !strings.Contains(m.View(), "✓ Read") {
		t.Errorf("list should show the habit as done:\n%s", m.View())
	}
}

func TestRemoteFailureShowsAlert(t *testing.T) {
	remote := newFake(readHabit())
	m := newTestModel(t, remote)
	remote.fail = true

	m = drive(m, habits.ToggleDayMsg{Habit: m.deps.State.Habits()[0], Index: 0})
	if m.alert != "Failed to update." {
		t.Fatalf("alert = %q", m.alert)
	}
	if !strings.Contains(m.View(), "Failed to update.") {
		t.Error("alert should be rendered")
	}

	// any key dismisses without reaching the list
	next, _ := m.Update(runes("d"))
	m = next.(Model)
	if m.alert != "" || m.state != constants.StateHabits {
		t.Errorf("alert not dismissed cleanly: %q %v", m.alert, m.state)
	}
}

func TestFutureDayRefusedInWeekView(t *testing.T) {
	m := newTestModel(t, newFake(readHabit()))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	// move past today onto an upcoming day and try to mark it
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	m = drive(m, runes(" "))
	if m.alert != tracker.ErrFutureDay.Msg {
		t.Errorf("alert = %q, want future-day refusal", m.alert)
	}
}

func TestWeekViewWithoutHabits(t *testing.T) {
	m := newTestModel(t, newFake())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if !strings.Contains(m.View(), "Habit not found.") {
		t.Errorf("week view:\n%s", m.View())
	}
}

func TestReportView(t *testing.T) {
	h := readHabit().WithStatus(0, models.StatusDone).WithStatus(1, models.StatusDone)
	m := newTestModel(t, newFake(h))
	m.state = constants.StateReport
	if !strings.Contains(m.View(), "Overall: 2/7 days (29%)") {
		t.Errorf("report:\n%s", m.View())
	}
}

func TestShareAndUpvote(t *testing.T) {
	remote := newFake(readHabit())
	m := newTestModel(t, remote)

	m = drive(m, shareDone(m, "halfway there"))
	shares, _ := remote.FetchShares(context.Background())
	if len(shares) != 1 || shares[0].Comment != "halfway there" {
		t.Fatalf("shares = %+v", shares)
	}

	m.state = constants.StateShares
	m = drive(m, sharesLoadedMsg{title: constants.AllSharesTitle, shares: shares})
	m = drive(m, runes("u"))
	if got, _ := remote.GetShare(context.Background(), shares[0].ID); got.Upvotes != 1 {
		t.Errorf("upvotes = %d, want 1", got.Upvotes)
	}
	if !strings.Contains(m.View(), "▲ 1") {
		t.Errorf("upvote not reflected:\n%s", m.View())
	}
}

// shareDone runs the share command directly, skipping the form
func shareDone(m Model, comment string) tea.Msg {
	cmd := m.share(m.deps.State.Habits()[0], comment)
	return cmd()
}
