package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitshare/internal/constants"
)

type DayStatus string

const (
	StatusDone    DayStatus = "done"
	StatusNotDone DayStatus = "notDone"
)

// Valid reports whether s is one of the two known statuses
func (s DayStatus) Valid() bool {
	return s == StatusDone || s == StatusNotDone
}

// Toggle flips done to notDone and anything else to done
func (s DayStatus) Toggle() DayStatus {
	if s == StatusDone {
		return StatusNotDone
	}
	return StatusDone
}

// Day is a single entry of a habit's week
type Day struct {
	Date   string    `json:"date" validate:"required,isodate"` // YYYY-MM-DD format
	Status DayStatus `json:"status" validate:"oneof=done notDone"`
}

// Habit represents a tracked activity with a seven day status window
type Habit struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required,max=120"`
	UserID string `json:"userId"`
	Week   []Day  `json:"week" validate:"len=7,dive"`
}

// NewID returns a fresh time-ordered identifier
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Today returns the local calendar date of now in YYYY-MM-DD form
func Today(now time.Time) string {
	return now.Format(constants.DateFormat)
}

// GenerateWeek returns seven consecutive notDone days starting at start's calendar date
func GenerateWeek(start time.Time) []Day {
	y, m, d := start.Date()
	first := time.Date(y, m, d, 12, 0, 0, 0, start.Location())

	week := make([]Day, constants.WeekLength)
	for i := range week {
		week[i] = Day{
			Date:   first.AddDate(0, 0, i).Format(constants.DateFormat),
			Status: StatusNotDone,
		}
	}
	return week
}

// NewHabit builds a habit owned by userID whose week starts on now's date
func NewHabit(name, userID string, now time.Time) Habit {
	return Habit{
		ID:     NewID(),
		Name:   name,
		UserID: userID,
		Week:   GenerateWeek(now),
	}
}

func (h Habit) DoneCount() int {
	n := 0
	for _, d := range h.Week {
		if d.Status == StatusDone {
			n++
		}
	}
	return n
}

// Completion is the rounded percentage of done days, 0 for an empty week
func (h Habit) Completion() int {
	return Percent(h.DoneCount(), len(h.Week))
}

// Percent returns round(done/total*100), or 0 when total is 0
func Percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Clone returns a deep copy so the week slice is never shared
func (h Habit) Clone() Habit {
	c := h
	if h.Week != nil {
		c.Week = make([]Day, len(h.Week))
		copy(c.Week, h.Week)
	}
	return c
}

// WithStatus returns a copy of h with the status of day index replaced.
// The receiver is left untouched.
func (h Habit) WithStatus(index int, status DayStatus) Habit {
	c := h.Clone()
	c.Week[index].Status = status
	return c
}

// IsCurrent reports whether today falls inside the habit's week.
// Weeks are anchored at creation and never re-windowed, so an old habit
// eventually stops being current.
func (h Habit) IsCurrent(today string) bool {
	if len(h.Week) == 0 {
		return false
	}
	return h.Week[0].Date <= today && today <= h.Week[len(h.Week)-1].Date
}

// IsFuture reports whether day index lies after today.
// Dates are fixed width YYYY-MM-DD so string order is calendar order.
func (h Habit) IsFuture(index int, today string) bool {
	return h.Week[index].Date > today
}

// FilterByUser returns the habits owned by userID, preserving order
func FilterByUser(habits []Habit, userID string) []Habit {
	out := make([]Habit, 0, len(habits))
	for _, h := range habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}
