package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitshare/internal/models"
)

func newHabitForm(f *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New habit").
				Placeholder("e.g. Read 20 pages").
				Value(&f.Name),
		),
	)
}

func newShareForm(h models.Habit, f *ShareFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Share %s (%d%%)", h.Name, h.Completion())).
				Placeholder("How is it going?").
				CharLimit(500).
				Value(&f.Comment).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("please enter a comment")
					}
					return nil
				}),
		),
	)
}

func newConfirmForm(question string, f *ConfirmFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&f.Confirmed),
		),
	)
}
