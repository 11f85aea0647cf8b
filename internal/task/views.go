package task

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"taskflow/internal/model"
)

// FilterTasks returns the tasks matching opt in their original order.
func FilterTasks(tasks []model.Task, opt model.FilterOption) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch opt {
		case model.FilterActive:
			if t.Completed {
				continue
			}
		case model.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func ComputeStats(tasks []model.Task, now time.Time) model.Stats {
	s := model.Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}

// SortForDisplay orders incomplete before completed, then earlier due date,
// then higher priority. Equal tasks keep their input order. The input slice
// is not modified.
func SortForDisplay(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, compareForDisplay)
	return out
}

func compareForDisplay(a, b model.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if c := compareDue(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
}

func compareDue(a, b model.Task) int {
	da, errA := a.Due()
	db, errB := b.Due()
	if errA != nil || errB != nil {
		return strings.Compare(a.DueDate, b.DueDate)
	}
	return da.Compare(db)
}

// Recent returns the first n tasks in store order.
func Recent(tasks []model.Task, n int) []model.Task {
	if n < 0 {
		n = 0
	}
	if n > len(tasks) {
		n = len(tasks)
	}
	return slices.Clone(tasks[:n])
}
