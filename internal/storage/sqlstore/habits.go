package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/storage"
)

const habitColumns = `id, name, user_id, week`

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	week, err := json.Marshal(h.Week)
	if err != nil {
		return fmt.Errorf("failed to encode week: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?)`,
		h.ID, h.Name, h.UserID, string(week))
	if isUniqueViolation(err) {
		return fmt.Errorf("habit %s: %w", h.ID, storage.ErrConflict)
	}
	return err
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return scanHabit(s.queryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
}

// GetAllHabits returns every habit in creation order; ids are time-ordered
func (s *Store) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := s.query(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// UpdateHabit replaces name and week. Ownership never changes.
func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	week, err := json.Marshal(h.Week)
	if err != nil {
		return fmt.Errorf("failed to encode week: %w", err)
	}
	return mustAffect(s.exec(ctx, `UPDATE habits SET name = ?, week = ? WHERE id = ?`,
		h.Name, string(week), h.ID))
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return mustAffect(s.exec(ctx, `DELETE FROM habits WHERE id = ?`, id))
}

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var h models.Habit
	var week []byte
	if err := row.Scan(&h.ID, &h.Name, &h.UserID, &week); err != nil {
		return models.Habit{}, notFound(err)
	}
	if err := json.Unmarshal(week, &h.Week); err != nil {
		return models.Habit{}, fmt.Errorf("failed to decode week of habit %s: %w", h.ID, err)
	}
	return h, nil
}
