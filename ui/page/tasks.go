package page

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"taskflow/internal/model"
)

const displayDate = "Jan 2, 2006"

type DashboardData struct {
	Stats  model.Stats
	Recent []model.Task
	Now    time.Time
}

// Dashboard shows the four stat cards and the recent tasks.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="stats">`)
		statCard(hw, "Total Tasks", d.Stats.Total, "")
		statCard(hw, "Active Tasks", d.Stats.Active, "blue")
		statCard(hw, "Completed", d.Stats.Completed, "green")
		statCard(hw, "Overdue", d.Stats.Overdue, "red")
		hw.raw(`</section><section class="panel"><h2>Recent Tasks</h2>`)
		taskItems(hw, d.Recent, d.Now, "/")
		hw.raw(`</section>`)
		return hw.err
	})
}

func statCard(hw *htmlWriter, label string, n int, tone string) {
	hw.raw(`<div class="stat-card"><h3>`)
	hw.text(label)
	hw.raw(`</h3><p class="stat-value`)
	if tone != "" {
		hw.raw(` tone-` + tone)
	}
	hw.raw(`">`)
	hw.text(strconv.Itoa(n))
	hw.raw(`</p></div>`)
}

type ListData struct {
	Heading string
	// Filter is the active filter tab. Empty hides the tabs.
	Filter string
	Tasks  []model.Task
	Now    time.Time
	// Path is the page's own URL without query, used for filter links and
	// as the return target of row actions.
	Path string
}

var filterTabs = []struct{ value, label string }{
	{string(model.FilterAll), "All"},
	{string(model.FilterActive), "Active"},
	{string(model.FilterCompleted), "Completed"},
}

func TaskList(d ListData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		ret := returnOr(d.Path, "/tasks")
		if d.Filter != "" {
			ret += "?filter=" + url.QueryEscape(d.Filter)
		}

		hw.raw(`<section class="list"><div class="list-head"><h1>`)
		hw.text(d.Heading)
		hw.raw(`</h1>`)
		if d.Filter != "" {
			hw.raw(`<nav class="filters">`)
			for _, tab := range filterTabs {
				hw.raw(`<a href="`)
				hw.text(returnOr(d.Path, "/tasks") + "?filter=" + tab.value)
				hw.raw(`" class="filter`)
				if tab.value == d.Filter {
					hw.raw(` active`)
				}
				hw.raw(`">`)
				hw.text(tab.label)
				hw.raw(`</a>`)
			}
			hw.raw(`</nav>`)
		}
		hw.raw(`</div>`)
		taskItems(hw, d.Tasks, d.Now, ret)
		hw.raw(`</section>`)
		return hw.err
	})
}

func taskItems(hw *htmlWriter, tasks []model.Task, now time.Time, ret string) {
	if len(tasks) == 0 {
		hw.raw(`<p class="empty">No tasks found</p>`)
		return
	}
	hw.raw(`<ul class="tasks">`)
	for _, t := range tasks {
		taskItem(hw, t, now, ret)
	}
	hw.raw(`</ul>`)
}

func taskItem(hw *htmlWriter, t model.Task, now time.Time, ret string) {
	base := "/tasks/" + url.PathEscape(t.ID)
	retQuery := "?return=" + url.QueryEscape(ret)

	hw.raw(`<li class="task`)
	if t.Completed {
		hw.raw(` completed`)
	}
	hw.raw(`" id="task-`)
	hw.text(t.ID)
	hw.raw(`">`)

	hw.raw(`<form method="post" action="`)
	hw.text(base + "/toggle" + retQuery)
	hw.raw(`" class="inline"><button type="submit" class="check" aria-label="`)
	if t.Completed {
		hw.raw(`Mark as incomplete">&#10003;`)
	} else {
		hw.raw(`Mark as complete">&#9675;`)
	}
	hw.raw(`</button></form>`)

	hw.raw(`<div class="task-body"><div class="task-line"><h3>`)
	hw.text(t.Title)
	hw.raw(`</h3><span class="badge priority-`)
	hw.text(string(t.Priority))
	hw.raw(`">`)
	hw.text(priorityLabel(t.Priority))
	hw.raw(`</span><span class="due`)
	if t.IsOverdue(now) {
		hw.raw(` overdue`)
	}
	hw.raw(`">`)
	hw.text(formatDate(t.DueDate))
	hw.raw(`</span></div>`)

	hw.raw(`<details><summary>Show details</summary>`)
	if t.Description != "" {
		hw.raw(`<p class="description">`)
		hw.text(t.Description)
		hw.raw(`</p>`)
	}
	if t.Image != "" {
		hw.raw(`<figure class="attachment"><figcaption>Attachment</figcaption><img alt="Task attachment" src="`)
		hw.text(t.Image)
		hw.raw(`"></figure>`)
	}
	hw.raw(`<p class="meta">Created: `)
	hw.text(formatDate(t.CreatedAt))
	hw.raw(`</p></details>`)

	hw.raw(`<div class="actions"><a href="`)
	hw.text(base + "/edit" + retQuery)
	hw.raw(`" aria-label="Edit task">Edit</a><a href="`)
	hw.text("/api/tasks/" + url.PathEscape(t.ID) + "/calendar.ics")
	hw.raw(`">Calendar</a><form method="post" action="`)
	hw.text(base + "/delete" + retQuery)
	hw.raw(`" class="inline" onsubmit="return confirm('Delete this task?')">`)
	hw.raw(`<button type="submit" class="danger" aria-label="Delete task">Delete</button></form></div>`)

	hw.raw(`</div></li>`)
}

func priorityLabel(p model.Priority) string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatDate renders a stored timestamp as its UTC calendar day. Unparseable
// values are shown as stored.
func formatDate(s string) string {
	t, err := model.ParseTime(s)
	if err != nil {
		return s
	}
	return t.UTC().Format(displayDate)
}
