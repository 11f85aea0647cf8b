package page

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout_MarksActiveNav(t *testing.T) {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>body</p>")
		return err
	})
	html := render(t, Layout(LayoutData{Title: "Upcoming", Active: NavUpcoming, Return: "/upcoming"}, body))

	assert.Contains(t, html, `<title>Upcoming · TaskFlow</title>`)
	assert.Contains(t, html, `<a href="/upcoming" class="nav-link active" aria-current="page">Upcoming</a>`)
	assert.Contains(t, html, `<a href="/tasks" class="nav-link">All Tasks</a>`)
	assert.Contains(t, html, `href="/tasks/new?return=%2Fupcoming"`)
	assert.Contains(t, html, "<p>body</p>")
}

func TestDashboard(t *testing.T) {
	html := render(t, Dashboard(DashboardData{
		Stats: model.Stats{Total: 3, Active: 2, Completed: 1, Overdue: 1},
		Now:   now,
	}))
	assert.Contains(t, html, `<h3>Overdue</h3><p class="stat-value tone-red">1</p>`)
	assert.Contains(t, html, `<h3>Total Tasks</h3><p class="stat-value">3</p>`)
	assert.Contains(t, html, "No tasks found")
}

func TestTaskList_EscapesAndFlagsOverdue(t *testing.T) {
	tasks := []model.Task{{
		ID:        "a1",
		Title:     `<script>alert("x")</script>`,
		DueDate:   "2026-03-01T00:00:00.000Z",
		Priority:  model.PriorityHigh,
		CreatedAt: "2026-02-20T00:00:00.000Z",
	}}
	html := render(t, TaskList(ListData{Heading: "All Tasks", Filter: "active", Tasks: tasks, Now: now, Path: "/tasks"}))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `<span class="due overdue">Mar 1, 2026</span>`)
	assert.Contains(t, html, `>High</span>`)
	assert.Contains(t, html, `action="/tasks/a1/toggle?return=%2Ftasks%3Ffilter%3Dactive"`)
	assert.Contains(t, html, `class="filter active">Active</a>`)
	assert.Contains(t, html, "Created: Feb 20, 2026")
}

func TestTaskList_UpcomingHasNoFilterTabs(t *testing.T) {
	html := render(t, TaskList(ListData{Heading: "Upcoming Tasks", Now: now, Path: "/upcoming"}))
	assert.False(t, strings.Contains(html, `class="filters"`))
}

func TestTaskForm(t *testing.T) {
	html := render(t, TaskForm(FormData{Action: "/tasks", Return: "/", Error: "Title is required", Priority: ""}))
	assert.Contains(t, html, "Add New Task")
	assert.Contains(t, html, `<p class="form-error" role="alert">Title is required</p>`)
	assert.Contains(t, html, `<option value="medium" selected>`)
	assert.NotContains(t, html, "remove_image")

	html = render(t, TaskForm(FormData{Editing: true, Action: "/tasks/a1/edit", Title: "Pay rent", Priority: "high", Image: "data:image/png;base64,AAAA"}))
	assert.Contains(t, html, "Update Task")
	assert.Contains(t, html, `value="Pay rent"`)
	assert.Contains(t, html, `<option value="high" selected>`)
	assert.Contains(t, html, `name="remove_image"`)
}

func TestUploadSize(t *testing.T) {
	assert.Equal(t, "3.75MB", uploadSize(5<<20))
	assert.Equal(t, "3MB", uploadSize(4<<20))
	assert.Equal(t, "1.5KB", uploadSize(2048))
	assert.Equal(t, "768 bytes", uploadSize(1024))
}

func TestSettings(t *testing.T) {
	html := render(t, Settings(SettingsData{Backend: "sqlite", DataDir: "data", Key: "tasks", MaxImageBytes: 1024, TaskCount: 2}))
	assert.Contains(t, html, "<dt>Storage backend</dt><dd>sqlite</dd>")
	assert.Contains(t, html, "<dd>1024 bytes</dd>")
}
