package models

import (
	"strings"
	"time"

	"github.com/julianstephens/habitshare/internal/constants"
)

// Share is a public snapshot of a habit's completion at a point in time.
// Editing the habit afterwards does not touch the share.
type Share struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	HabitID    string `json:"habitId" validate:"required"`
	HabitName  string `json:"habitName"`
	Completion int    `json:"completion" validate:"min=0,max=100"`
	Comment    string `json:"comment" validate:"required,max=500"`
	CreatedAt  string `json:"createdAt"` // RFC3339 timestamp
	Upvotes    int    `json:"upvotes" validate:"min=0"`
}

// Upvote is a legacy per-vote record; the embedded counter on Share is authoritative
type Upvote struct {
	ID      string `json:"id"`
	ShareID string `json:"shareId" validate:"required"`
	UserID  string `json:"userId"`
}

// ShareFromHabit snapshots h's current week into a new share
func ShareFromHabit(h Habit, userID, userName, comment string, now time.Time) Share {
	if strings.TrimSpace(userName) == "" {
		userName = constants.AnonymousName
	}
	return Share{
		ID:         NewID(),
		UserID:     userID,
		UserName:   userName,
		HabitID:    h.ID,
		HabitName:  h.Name,
		Completion: h.Completion(),
		Comment:    comment,
		CreatedAt:  now.UTC().Format(time.RFC3339),
		Upvotes:    0,
	}
}

// FilterShares returns every share when habitID is "all", otherwise the shares of that habit
func FilterShares(shares []Share, habitID string) []Share {
	if habitID == constants.AllShares {
		return shares
	}
	out := make([]Share, 0, len(shares))
	for _, s := range shares {
		if s.HabitID == habitID {
			out = append(out, s)
		}
	}
	return out
}
