// Package tracker implements the user actions on habits and shares: marking
// days, creating and deleting habits, sharing, upvoting and reporting. Every
// action writes to the remote store first and reconciles the controller only
// after the write succeeded.
package tracker

import (
	"context"
	"time"

	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/state"
)

// HabitStore is the remote habit collection
type HabitStore interface {
	AddHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
}

// ShareStore is the remote share and upvote collections
type ShareStore interface {
	FetchShares(ctx context.Context) ([]models.Share, error)
	GetShare(ctx context.Context, id string) (models.Share, error)
	AddShare(ctx context.Context, s models.Share) (models.Share, error)
	UpdateShare(ctx context.Context, s models.Share) (models.Share, error)
	IncrementUpvotes(ctx context.Context, id string) (models.Share, error)
	DeleteShare(ctx context.Context, id string) error
	FetchUpvotes(ctx context.Context, shareID string) ([]models.Upvote, error)
	AddUpvote(ctx context.Context, u models.Upvote) (models.Upvote, error)
}

var (
	ErrFutureDay     = apperrors.New(apperrors.KindValidation, "You cannot mark future days!")
	ErrDayOutOfRange = apperrors.New(apperrors.KindValidation, "That day is not part of this habit's week.")
	ErrEmptyName     = apperrors.New(apperrors.KindValidation, "Please enter a habit name.")
	ErrEmptyComment  = apperrors.New(apperrors.KindValidation, "Please enter a comment.")
	ErrNotOwner      = apperrors.New(apperrors.KindForbidden, "You can only delete your own posts.")
	ErrHabitNotFound = apperrors.New(apperrors.KindNotFound, "Habit not found.")
)

type Tracker struct {
	habits HabitStore
	shares ShareStore
	state  *state.Controller
	now    func() time.Time
}

func New(habits HabitStore, shares ShareStore, ctrl *state.Controller) *Tracker {
	return &Tracker{
		habits: habits,
		shares: shares,
		state:  ctrl,
		now:    time.Now,
	}
}

// WithClock replaces time.Now; "today" is always the clock's local date
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Today is the client's local calendar date
func (t *Tracker) Today() string {
	return models.Today(t.now())
}

// State exposes the controller the tracker reconciles into
func (t *Tracker) State() *state.Controller {
	return t.state
}

// alert keeps the failure's kind and attaches the message shown to the user
func alert(msg string, err error) error {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnknown {
		kind = apperrors.KindTransport
	}
	return &apperrors.Error{Kind: kind, Msg: msg, Err: err}
}
