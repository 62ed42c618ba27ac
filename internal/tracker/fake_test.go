package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/state"
)

var errDown = errors.New("503 service unavailable")

// fakeRemote is an in-memory stand-in for habitshared
type fakeRemote struct {
	mu      sync.Mutex
	habits  map[string]models.Habit
	shares  map[string]models.Share
	upvotes []models.Upvote
	writes  int
	fail    bool

	// readBarrier, when set, holds every GetShare until all readers arrived
	readBarrier *sync.WaitGroup
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		habits: make(map[string]models.Habit),
		shares: make(map[string]models.Share),
	}
}

func (f *fakeRemote) FetchHabits(context.Context) ([]models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	out := make([]models.Habit, 0, len(f.habits))
	for _, h := range f.habits {
		out = append(out, h.Clone())
	}
	return out, nil
}

func (f *fakeRemote) AddHabit(_ context.Context, h models.Habit) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.fail {
		return models.Habit{}, errDown
	}
	f.habits[h.ID] = h.Clone()
	return h.Clone(), nil
}

func (f *fakeRemote) UpdateHabit(_ context.Context, h models.Habit) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.fail {
		return models.Habit{}, errDown
	}
	f.habits[h.ID] = h.Clone()
	return h.Clone(), nil
}

func (f *fakeRemote) DeleteHabit(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.fail {
		return errDown
	}
	delete(f.habits, id)
	return nil
}

func (f *fakeRemote) FetchShares(context.Context) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	out := make([]models.Share, 0, len(f.shares))
	for _, s := range f.shares {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRemote) GetShare(_ context.Context, id string) (models.Share, error) {
	f.mu.Lock()
	s, ok := f.shares[id]
	barrier := f.readBarrier
	f.mu.Unlock()

	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	if !ok {
		return models.Share{}, errors.New("404")
	}
	return s, nil
}

func (f *fakeRemote) AddShare(_ context.Context, s models.Share) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.fail {
		return models.Share{}, errDown
	}
	f.shares[s.ID] = s
	return s, nil
}

func (f *fakeRemote) UpdateShare(_ context.Context, s models.Share) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.shares[s.ID] = s
	return s, nil
}

func (f *fakeRemote) IncrementUpvotes(_ context.Context, id string) (models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.fail {
		return models.Share{}, errDown
	}
	s := f.shares[id]
	s.Upvotes++
	f.shares[id] = s
	return s, nil
}

func (f *fakeRemote) DeleteShare(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	delete(f.shares, id)
	return nil
}

func (f *fakeRemote) FetchUpvotes(_ context.Context, shareID string) ([]models.Upvote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Upvote
	for _, u := range f.upvotes {
		if shareID == "" || u.ShareID == shareID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRemote) AddUpvote(_ context.Context, u models.Upvote) (models.Upvote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.upvotes = append(f.upvotes, u)
	return u, nil
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeRemote) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeRemote) upvotesOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shares[id].Upvotes
}

func newTracker(remote *fakeRemote) *Tracker {
	return New(remote, remote, state.New(remote))
}
