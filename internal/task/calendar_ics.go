package task

import (
	"fmt"
	"strings"
	"time"

	"taskflow/internal/model"
)

const icsDateLayout = "20060102"

// BuildTaskCalendarICS builds an all-day iCalendar event on the task's due
// date (UTC day).
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	due, err := t.Due()
	if err != nil {
		return "", ErrMissingDueDate
	}
	day := due.UTC()
	end := day.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "TaskFlow Task"
	}

	uid := fmt.Sprintf("task-%s@taskflow", strings.TrimSpace(t.ID))
	if strings.TrimSpace(t.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@taskflow", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//TaskFlow//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + day.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
		fmt.Sprintf("PRIORITY:%d", icsPriority(t.Priority)),
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if created, err := t.Created(); err == nil {
		lines = append(lines, "CREATED:"+created.UTC().Format("20060102T150405Z"))
	}
	if t.Completed {
		lines = append(lines, "STATUS:COMPLETED")
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

// icsPriority maps to RFC 5545 PRIORITY, where 1 is highest.
func icsPriority(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 1
	case model.PriorityLow:
		return 9
	default:
		return 5
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
