package tracker

import (
	"context"
	"strings"

	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
)

// SetStatus marks day index of habit. Future days are refused without any
// remote call. The caller's habit is never modified; on success the
// controller receives the store's representation.
func (t *Tracker) SetStatus(ctx context.Context, habit models.Habit, index int, status models.DayStatus) (models.Habit, error) {
	if index < 0 || index >= len(habit.Week) {
		return habit, ErrDayOutOfRange
	}
	if habit.IsFuture(index, t.Today()) {
		return habit, ErrFutureDay
	}

	updated := habit.WithStatus(index, status)
	stored, err := t.habits.UpdateHabit(ctx, updated)
	if err != nil {
		logger.Error("Failed to update habit", "habit", habit.ID, "error", err)
		return habit, alert("Failed to update.", err)
	}

	t.state.Update(stored)
	return stored, nil
}

// Toggle flips the status of day index
func (t *Tracker) Toggle(ctx context.Context, habit models.Habit, index int) (models.Habit, error) {
	if index < 0 || index >= len(habit.Week) {
		return habit, ErrDayOutOfRange
	}
	return t.SetStatus(ctx, habit, index, habit.Week[index].Status.Toggle())
}

// CreateHabit stores a new habit for userID whose week starts today.
// A blank name returns ErrEmptyName without a write; views ignore it.
func (t *Tracker) CreateHabit(ctx context.Context, name, userID string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, ErrEmptyName
	}

	stored, err := t.habits.AddHabit(ctx, models.NewHabit(name, userID, t.now()))
	if err != nil {
		logger.Error("Failed to add habit", "error", err)
		return models.Habit{}, alert("Failed to add habit.", err)
	}

	t.state.Add(stored)
	return stored, nil
}

func (t *Tracker) DeleteHabit(ctx context.Context, id string) error {
	if err := t.habits.DeleteHabit(ctx, id); err != nil {
		logger.Error("Failed to delete habit", "habit", id, "error", err)
		return alert("Failed to delete habit.", err)
	}
	t.state.Remove(id)
	return nil
}

// Lookup resolves a habit id or a case-insensitive name in the controller's set
func (t *Tracker) Lookup(ref string) (models.Habit, error) {
	if h, ok := t.state.Find(ref); ok {
		return h, nil
	}
	for _, h := range t.state.Habits() {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, ErrHabitNotFound
}
