package serverapp

import "net/http"

type RouteDoc struct {
	Method      string `json:"method"`
	Pattern     string `json:"pattern"`
	Summary     string `json:"summary,omitempty"`
	ExampleBody string `json:"example_body,omitempty"`
}

type RouteRegistry struct {
	routes []RouteDoc
}

func (rr *RouteRegistry) Add(doc RouteDoc) {
	rr.routes = append(rr.routes, doc)
}

func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	return out
}

const draftExample = `{"title":"Buy milk","description":"","dueDate":"2026-03-11","priority":"high"}`

// apiRoutes documents the JSON API served by task.Handler.
func apiRoutes() *RouteRegistry {
	rr := &RouteRegistry{}
	for _, d := range []RouteDoc{
		{Method: http.MethodGet, Pattern: "/api/tasks?filter=all|active|completed", Summary: "List tasks in display order"},
		{Method: http.MethodPost, Pattern: "/api/tasks", Summary: "Create a task", ExampleBody: draftExample},
		{Method: http.MethodGet, Pattern: "/api/tasks/{id}", Summary: "Read one task"},
		{Method: http.MethodPut, Pattern: "/api/tasks/{id}", Summary: "Replace the editable fields of a task", ExampleBody: draftExample},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id}", Summary: "Delete a task"},
		{Method: http.MethodPost, Pattern: "/api/tasks/{id}/toggle", Summary: "Flip completion"},
		{Method: http.MethodGet, Pattern: "/api/tasks/{id}/calendar.ics", Summary: "Export as an all-day iCalendar event"},
		{Method: http.MethodGet, Pattern: "/api/stats", Summary: "Total, active, completed and overdue counts"},
		{Method: http.MethodGet, Pattern: "/api/config", Summary: "Effective configuration"},
		{Method: http.MethodGet, Pattern: "/api/routes", Summary: "This list"},
		{Method: http.MethodGet, Pattern: "/healthz", Summary: "Liveness"},
		{Method: http.MethodGet, Pattern: "/readyz", Summary: "Storage reachability"},
	} {
		rr.Add(d)
	}
	return rr
}
