// Package page renders the TaskFlow HTML screens as templ components.
package page

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// Nav targets, matched against LayoutData.Active.
const (
	NavDashboard = "dashboard"
	NavTasks     = "tasks"
	NavUpcoming  = "upcoming"
	NavSettings  = "settings"
)

type LayoutData struct {
	Title  string
	Active string
	// Return is where the header's Add Task form sends the user back to.
	Return string
}

type navItem struct {
	key, href, label string
}

var navItems = []navItem{
	{NavDashboard, "/", "Dashboard"},
	{NavTasks, "/tasks", "All Tasks"},
	{NavUpcoming, "/upcoming", "Upcoming"},
}

// Layout wraps body in the page chrome: sidebar navigation and header.
func Layout(d LayoutData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		if d.Title != "" {
			hw.text(d.Title)
			hw.raw(` · `)
		}
		hw.raw(`TaskFlow</title><link rel="stylesheet" href="/static/css/app.css"></head><body>`)

		hw.raw(`<div class="shell"><aside class="sidebar"><div class="brand">TaskFlow</div><nav>`)
		for _, it := range navItems {
			navLink(hw, it, d.Active)
		}
		hw.raw(`</nav><div class="sidebar-foot">`)
		navLink(hw, navItem{NavSettings, "/settings", "Settings"}, d.Active)
		hw.raw(`</div></aside>`)

		hw.raw(`<div class="content"><header class="topbar">`)
		hw.raw(`<a class="btn btn-primary" href="/tasks/new?return=`)
		hw.text(url.QueryEscape(returnOr(d.Return, "/")))
		hw.raw(`">Add Task</a></header><main>`)
		hw.render(ctx, body)
		hw.raw(`</main></div></div></body></html>`)
		return hw.err
	})
}

func navLink(hw *htmlWriter, it navItem, active string) {
	hw.raw(`<a href="`)
	hw.text(it.href)
	hw.raw(`" class="nav-link`)
	if it.key == active {
		hw.raw(` active" aria-current="page`)
	}
	hw.raw(`">`)
	hw.text(it.label)
	hw.raw(`</a>`)
}

func returnOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}
