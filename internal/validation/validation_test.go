package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitshare/internal/models"
)

func habitOn(name, user string, y int, m time.Month, d int) models.Habit {
	return models.NewHabit(name, user, time.Date(y, m, d, 9, 0, 0, 0, time.Local))
}

func TestValidateHabit(t *testing.T) {
	good := habitOn("Read", "u1", 2024, 1, 1)

	gap := good.Clone()
	gap.Week[3].Date = "2024-01-09"

	badDate := good.Clone()
	badDate.Week[0].Date = "01/01/2024"

	short := good.Clone()
	short.Week = short.Week[:6]

	badStatus := good.Clone()
	badStatus.Week[2].Status = "maybe"

	blank := good.Clone()
	blank.Name = "   "

	tests := []struct {
		name    string
		habit   models.Habit
		wantErr bool
	}{
		{"valid habit", good, false},
		{"gap in week", gap, true},
		{"non iso date", badDate, true},
		{"six days", short, true},
		{"unknown status", badStatus, true},
		{"blank name", blank, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHabit(tt.habit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHabit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateShare(t *testing.T) {
	tests := []struct {
		name    string
		share   models.Share
		wantErr bool
	}{
		{"valid", models.Share{HabitID: "h1", Comment: "nice", Completion: 43}, false},
		{"empty comment", models.Share{HabitID: "h1", Comment: ""}, true},
		{"whitespace comment", models.Share{HabitID: "h1", Comment: "  \t"}, true},
		{"completion over 100", models.Share{HabitID: "h1", Comment: "x", Completion: 101}, true},
		{"negative upvotes", models.Share{HabitID: "h1", Comment: "x", Upvotes: -1}, true},
		{"missing habit", models.Share{Comment: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShare(tt.share)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateShare() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChatMessage(t *testing.T) {
	if err := ValidateChatMessage(models.ChatMessage{Message: "hi"}, 10); err != nil {
		t.Errorf("ValidateChatMessage() error = %v", err)
	}
	if err := ValidateChatMessage(models.ChatMessage{Message: " "}, 10); err == nil {
		t.Error("blank message should be rejected")
	}
	if err := ValidateChatMessage(models.ChatMessage{Message: strings.Repeat("a", 11)}, 10); err == nil {
		t.Error("oversized message should be rejected")
	}
}

func TestValidateHabits(t *testing.T) {
	current := habitOn("Read", "u1", 2024, 1, 1)
	dup := habitOn("read ", "u1", 2024, 1, 2)
	stale := habitOn("Run", "u1", 2023, 12, 1)
	foreign := habitOn("Swim", "u2", 2024, 1, 1)

	res := ValidateHabits([]models.Habit{current, dup, stale, foreign}, "u1", "2024-01-03")

	counts := make(map[ConflictType]int)
	for _, c := range res.Conflicts {
		counts[c.Type]++
	}

	if counts[ConflictDuplicateHabitName] != 1 {
		t.Errorf("duplicate conflicts = %d, want 1", counts[ConflictDuplicateHabitName])
	}
	if counts[ConflictStaleWeek] != 1 {
		t.Errorf("stale conflicts = %d, want 1", counts[ConflictStaleWeek])
	}
	if counts[ConflictForeignHabit] != 1 {
		t.Errorf("foreign conflicts = %d, want 1", counts[ConflictForeignHabit])
	}
	if !strings.HasPrefix(res.FormatReport(), "Conflicts detected:") {
		t.Errorf("FormatReport() = %q", res.FormatReport())
	}

	clean := ValidateHabits([]models.Habit{current}, "u1", "2024-01-03")
	if clean.HasConflicts() {
		t.Errorf("unexpected conflicts: %s", clean.FormatReport())
	}
	if clean.FormatReport() != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", clean.FormatReport())
	}
}
