// Package state holds the signed-in user's habits in memory and keeps them
// in step with the remote store.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
)

// HabitFetcher lists every habit in the remote store
type HabitFetcher interface {
	FetchHabits(ctx context.Context) ([]models.Habit, error)
}

type Phase int

const (
	Anonymous Phase = iota
	Authenticated
)

func (p Phase) String() string {
	if p == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Controller is the single source of truth for the signed-in user's habits.
// Reducers are applied only after the matching remote write succeeded.
//
// Every fetch is stamped with a sequence number. A fetch is applied only if
// its number is above the barrier; applying a fetch raises the barrier to
// its own number and any local mutation raises it to the newest number
// issued so far, so a slow response can never overwrite newer state.
type Controller struct {
	fetcher  HabitFetcher
	interval time.Duration

	mu      sync.Mutex
	phase   Phase
	userID  string
	habits  []models.Habit
	issued  uint64
	barrier uint64

	subsMu sync.Mutex
	subs   map[int]func()
	nextID int
}

func New(fetcher HabitFetcher) *Controller {
	return &Controller{
		fetcher:  fetcher,
		interval: constants.RefreshInterval,
		subs:     make(map[int]func()),
	}
}

// WithInterval overrides the refresh period used by Run
func (c *Controller) WithInterval(d time.Duration) *Controller {
	c.interval = d
	return c
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// SignIn moves to Authenticated for userID, clears the set, then loads it
func (c *Controller) SignIn(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.phase = Authenticated
	c.userID = userID
	c.habits = nil
	c.barrier = c.issued
	c.mu.Unlock()
	c.notify()

	logger.Debug("Signed in", "user", userID)
	return c.Load(ctx, userID)
}

// SignOut moves to Anonymous and clears the set. In-flight fetches are discarded.
func (c *Controller) SignOut() {
	c.mu.Lock()
	c.phase = Anonymous
	c.userID = ""
	c.habits = nil
	c.barrier = c.issued
	c.mu.Unlock()
	c.notify()
}

// Load fetches all habits and keeps those owned by userID. A transport error
// is logged and leaves an empty set. Stale results are dropped silently.
func (c *Controller) Load(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	all, err := c.fetcher.FetchHabits(ctx)

	c.mu.Lock()
	if c.phase != Authenticated || c.userID != userID || seq <= c.barrier {
		c.mu.Unlock()
		logger.Debug("Discarding stale habit fetch", "seq", seq)
		return nil
	}
	c.barrier = seq
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		c.habits = nil
	} else {
		c.habits = models.FilterByUser(all, userID)
	}
	c.mu.Unlock()

	c.notify()
	return err
}

// RefreshTick reloads the current user's habits; it does nothing while anonymous
func (c *Controller) RefreshTick(ctx context.Context) error {
	c.mu.Lock()
	phase, userID := c.phase, c.userID
	c.mu.Unlock()

	if phase != Authenticated {
		return nil
	}
	return c.Load(ctx, userID)
}

// Run refreshes on every interval until ctx is done. Each tick runs in its
// own goroutine so a slow response never delays the next tick.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go func() {
				_ = c.RefreshTick(ctx)
			}()
		}
	}
}

// Add inserts a habit the server just created
func (c *Controller) Add(h models.Habit) {
	c.mutate(func() bool {
		if h.UserID != c.userID {
			return false
		}
		for i := range c.habits {
			if c.habits[i].ID == h.ID {
				c.habits[i] = h.Clone()
				return true
			}
		}
		c.habits = append(c.habits, h.Clone())
		return true
	})
}

// Update replaces the habit with h's id by the server's representation
func (c *Controller) Update(h models.Habit) {
	c.mutate(func() bool {
		for i := range c.habits {
			if c.habits[i].ID == h.ID {
				c.habits[i] = h.Clone()
				return true
			}
		}
		return false
	})
}

// Remove drops the habit with id after the server deleted it
func (c *Controller) Remove(id string) {
	c.mutate(func() bool {
		for i := range c.habits {
			if c.habits[i].ID == id {
				c.habits = append(c.habits[:i:i], c.habits[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (c *Controller) mutate(fn func() bool) {
	c.mu.Lock()
	if c.phase != Authenticated {
		c.mu.Unlock()
		return
	}
	changed := fn()
	if changed {
		c.barrier = c.issued
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Habits returns a deep copy of the current set
func (c *Controller) Habits() []models.Habit {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Habit, len(c.habits))
	for i, h := range c.habits {
		out[i] = h.Clone()
	}
	return out
}

// Find looks a habit up by id
func (c *Controller) Find(id string) (models.Habit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range c.habits {
		if h.ID == id {
			return h.Clone(), true
		}
	}
	return models.Habit{}, false
}

// OnChange registers fn to run after every state change and returns a func
// that unregisters it. fn runs on the goroutine that made the change.
func (c *Controller) OnChange(fn func()) func() {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

func (c *Controller) notify() {
	c.subsMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
