package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
)

// validate is the shared struct validator with the custom rules registered
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("isodate", validateISODate)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(constants.DateFormat, fl.Field().String())
	return err == nil
}

// Struct runs the tag rules on any wire model
func Struct(v any) error {
	return validate.Struct(v)
}

// ValidateHabit checks the tag rules plus week shape: seven strictly consecutive dates
func ValidateHabit(h models.Habit) error {
	if err := validate.Struct(h); err != nil {
		return err
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	return validateWeek(h.Week)
}

func validateWeek(week []models.Day) error {
	var prev time.Time
	for i, d := range week {
		cur, err := time.Parse(constants.DateFormat, d.Date)
		if err != nil {
			return fmt.Errorf("day %d: invalid date %q", i, d.Date)
		}
		if i > 0 && !cur.Equal(prev.AddDate(0, 0, 1)) {
			return fmt.Errorf("day %d: %s does not follow %s", i, d.Date, prev.Format(constants.DateFormat))
		}
		prev = cur
	}
	return nil
}

// ValidateShare checks a share's tag rules; comments must contain more than whitespace
func ValidateShare(s models.Share) error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if strings.TrimSpace(s.Comment) == "" {
		return fmt.Errorf("comment cannot be empty")
	}
	return nil
}

// ValidateChatMessage rejects blank and oversized messages
func ValidateChatMessage(m models.ChatMessage, maxLen int) error {
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if maxLen > 0 && len(m.Message) > maxLen {
		return fmt.Errorf("message exceeds %d bytes", maxLen)
	}
	return validate.Struct(m)
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidWeek        ConflictType = "invalid_week"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictStaleWeek          ConflictType = "stale_week"
	ConflictForeignHabit       ConflictType = "foreign_habit"
)

// Conflict represents a detected problem in the loaded habit set
type Conflict struct {
	Type        ConflictType
	Description string
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// ValidateHabits inspects a user's habit set. Stale weeks are reported but are
// not errors: weeks stay anchored to their creation date.
func ValidateHabits(habits []models.Habit, userID, today string) ValidationResult {
	var res ValidationResult
	seen := make(map[string]string)

	for _, h := range habits {
		if err := ValidateHabit(h); err != nil {
			res.Conflicts = append(res.Conflicts, Conflict{
				Type:        ConflictInvalidWeek,
				Description: fmt.Sprintf("habit %q is malformed: %v", h.Name, err),
				HabitIDs:    []string{h.ID},
			})
			continue
		}
		if userID != "" && h.UserID != userID {
			res.Conflicts = append(res.Conflicts, Conflict{
				Type:        ConflictForeignHabit,
				Description: fmt.Sprintf("habit %q belongs to another user", h.Name),
				HabitIDs:    []string{h.ID},
			})
		}

		key := strings.ToLower(strings.TrimSpace(h.Name))
		if prev, ok := seen[key]; ok {
			res.Conflicts = append(res.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("habit name %q is used more than once", h.Name),
				HabitIDs:    []string{prev, h.ID},
			})
		} else {
			seen[key] = h.ID
		}

		if !h.IsCurrent(today) {
			res.Conflicts = append(res.Conflicts, Conflict{
				Type: ConflictStaleWeek,
				Description: fmt.Sprintf("habit %q tracks %s to %s, which does not include today",
					h.Name, h.Week[0].Date, h.Week[len(h.Week)-1].Date),
				HabitIDs: []string{h.ID},
			})
		}
	}
	return res
}
