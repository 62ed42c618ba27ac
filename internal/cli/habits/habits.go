package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitshare/internal/cli"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/tracker"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a habit whose week starts today."`
	List   HabitListCmd   `cmd:"" help:"List your habits."`
	Mark   HabitMarkCmd   `cmd:"" help:"Mark a day of a habit as done or not done."`
	Week   HabitWeekCmd   `cmd:"" help:"Show a habit's week."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
	Report HabitReportCmd `cmd:"" help:"Show completion per habit and overall."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	h, err := ctx.Tracker.CreateHabit(ctx.Ctx, c.Name, ctx.Session.UserID)
	if err != nil {
		if apperrors.Is(err, tracker.ErrEmptyName) {
			return nil
		}
		return err
	}
	ctx.Printf("Added habit: %s (%s to %s)\n", h.Name, h.Week[0].Date, h.Week[len(h.Week)-1].Date)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	habits := ctx.State.Habits()
	if len(habits) == 0 {
		ctx.Printf("No habits yet. Add one with 'habitshare habit add <name>'.\n")
		return nil
	}

	today := ctx.Tracker.Today()
	for _, h := range habits {
		stale := ""
		if !h.IsCurrent(today) {
			stale = " [past week]"
		}
		ctx.Printf("%-24s %s  %d/%d (%d%%)%s\n", h.Name, strip(h), h.DoneCount(), len(h.Week), h.Completion(), stale)
	}
	return nil
}

// strip renders a week as ✓ and · marks
func strip(h models.Habit) string {
	var b strings.Builder
	for _, d := range h.Week {
		if d.Status == models.StatusDone {
			b.WriteString("✓")
		} else {
			b.WriteString("·")
		}
	}
	return b.String()
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Day   string `help:"Date (YYYY-MM-DD) or day number 1-7 (default: today)." default:""`
	Undo  bool   `help:"Mark the day as not done."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	h, err := ctx.Tracker.Lookup(c.Habit)
	if err != nil {
		return err
	}

	day := c.Day
	if day == "" {
		day = ctx.Tracker.Today()
	}
	index, err := dayIndex(h, day)
	if err != nil {
		return err
	}

	status := models.StatusDone
	if c.Undo {
		status = models.StatusNotDone
	}
	updated, err := ctx.Tracker.SetStatus(ctx.Ctx, h, index, status)
	if err != nil {
		return err
	}

	ctx.Printf("%s %s: %s  (%d%%)\n", updated.Name, updated.Week[index].Date, updated.Week[index].Status, updated.Completion())
	return nil
}

// dayIndex resolves a date or a 1-based day number within h's week
func dayIndex(h models.Habit, day string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(day, "%d", &n); err == nil && !strings.Contains(day, "-") {
		if n < 1 || n > len(h.Week) {
			return 0, tracker.ErrDayOutOfRange
		}
		return n - 1, nil
	}
	for i, d := range h.Week {
		if d.Date == day {
			return i, nil
		}
	}
	return 0, tracker.ErrDayOutOfRange
}

type HabitWeekCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitWeekCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	h, err := ctx.Tracker.Lookup(c.Habit)
	if err != nil {
		ctx.Printf("Habit not found.\n")
		return nil
	}
	if len(h.Week) == 0 {
		ctx.Printf("No week data.\n")
		return nil
	}

	today := ctx.Tracker.Today()
	ctx.Printf("%s\n", h.Name)
	for i, d := range h.Week {
		mark := "[ ]"
		if d.Status == models.StatusDone {
			mark = "[✓]"
		}
		note := ""
		switch {
		case d.Date == today:
			note = "  today"
		case h.IsFuture(i, today):
			note = "  upcoming"
		}
		ctx.Printf("  %d %s %s%s\n", i+1, mark, d.Date, note)
	}
	ctx.Printf("Completion: %d%%\n", h.Completion())
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	h, err := ctx.Tracker.Lookup(c.Habit)
	if err != nil {
		return err
	}
	ok, err := ctx.Confirm(fmt.Sprintf("Delete habit %q?", h.Name), c.Yes)
	if err != nil || !ok {
		return err
	}
	if err := ctx.Tracker.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitReportCmd struct{}

func (c *HabitReportCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	r := tracker.BuildReport(ctx.State.Habits())
	if len(r.Rows) == 0 {
		ctx.Printf("No habits to report on.\n")
		return nil
	}
	for _, row := range r.Rows {
		ctx.Printf("%-24s %d/%d  %3d%%\n", row.Name, row.Done, row.Total, row.Percent)
	}
	ctx.Printf("\nOverall: %d/%d days (%d%%)\n", r.TotalDone, r.TotalDays, r.Overall)
	return nil
}
