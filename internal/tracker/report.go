package tracker

import "github.com/julianstephens/habitshare/internal/models"

type ReportRow struct {
	HabitID string
	Name    string
	Done    int
	Total   int
	Percent int
}

type Report struct {
	Rows      []ReportRow
	TotalDone int
	TotalDays int
	// Overall is round(TotalDone/TotalDays*100), 0 when there are no days
	Overall int
}

// BuildReport summarizes completion per habit and overall
func BuildReport(habits []models.Habit) Report {
	r := Report{Rows: make([]ReportRow, 0, len(habits))}
	for _, h := range habits {
		done, total := h.DoneCount(), len(h.Week)
		r.Rows = append(r.Rows, ReportRow{
			HabitID: h.ID,
			Name:    h.Name,
			Done:    done,
			Total:   total,
			Percent: models.Percent(done, total),
		})
		r.TotalDone += done
		r.TotalDays += total
	}
	r.Overall = models.Percent(r.TotalDone, r.TotalDays)
	return r
}
