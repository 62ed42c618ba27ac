package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitshare/internal/models"
)

// FetchHabits lists every habit the server returns; callers filter by owner
func (c *Client) FetchHabits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	err := c.do(ctx, http.MethodGet, "/habits", nil, nil, &out)
	return out, err
}

// AddHabit creates h and returns the stored representation
func (c *Client) AddHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, http.MethodPost, "/habits", nil, h, &out)
	return out, err
}

// UpdateHabit sends the full document; the response may be normalized by the server
func (c *Client) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	var out models.Habit
	err := c.do(ctx, http.MethodPut, "/habits/"+url.PathEscape(h.ID), nil, h, &out)
	return out, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(id), nil, nil, nil)
}
