package task

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"taskflow/internal/config"
	"taskflow/internal/httpmw"
	"taskflow/internal/model"
	"taskflow/ui/page"
)

// multipartMemory is how much of a form upload is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// Pages serves the HTML screens and their form posts.
type Pages struct {
	svc    *Service
	cfg    *config.Config
	logger *log.Logger
}

func NewPages(svc *Service, cfg *config.Config, logger *log.Logger) *Pages {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pages{svc: svc, cfg: cfg, logger: logger}
}

func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", p.Dashboard)
	mux.HandleFunc("/tasks", p.TasksRoot)
	mux.HandleFunc("/tasks/", p.TasksSub)
	mux.HandleFunc("/upcoming", p.Upcoming)
	mux.HandleFunc("/settings", p.Settings)
}

func (p *Pages) show(w http.ResponseWriter, r *http.Request, status int, ld page.LayoutData, body templ.Component) {
	templ.Handler(page.Layout(ld, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

// /
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p.show(w, r, http.StatusOK, page.LayoutData{Title: "Dashboard", Active: page.NavDashboard, Return: "/"},
		page.Dashboard(page.DashboardData{
			Stats:  p.svc.Stats(),
			Recent: p.svc.Recent(p.cfg.Tasks.RecentLimit),
			Now:    p.svc.Now(),
		}))
}

// /tasks
func (p *Pages) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		view := NewView()
		_ = view.Navigate(string(ViewTasks))
		if err := view.SetFilter(r.URL.Query().Get("filter")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.show(w, r, http.StatusOK, page.LayoutData{Title: "All Tasks", Active: page.NavTasks, Return: "/tasks"},
			page.TaskList(page.ListData{
				Heading: "All Tasks",
				Filter:  string(view.Filter),
				Tasks:   p.svc.List(view.Filter),
				Now:     p.svc.Now(),
				Path:    "/tasks",
			}))

	case http.MethodPost:
		p.submit(w, r, nil)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /upcoming
func (p *Pages) Upcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view := NewView()
	_ = view.Navigate(string(ViewUpcoming))
	p.show(w, r, http.StatusOK, page.LayoutData{Title: "Upcoming", Active: page.NavUpcoming, Return: "/upcoming"},
		page.TaskList(page.ListData{
			Heading: "Upcoming Tasks",
			Tasks:   p.svc.List(view.Filter),
			Now:     p.svc.Now(),
			Path:    "/upcoming",
		}))
}

// /settings
func (p *Pages) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p.show(w, r, http.StatusOK, page.LayoutData{Title: "Settings", Active: page.NavSettings, Return: "/settings"},
		page.Settings(page.SettingsData{
			Backend:       p.cfg.Storage.Backend,
			DataDir:       p.cfg.Storage.DataDir,
			Key:           p.cfg.Storage.Key,
			MaxImageBytes: p.svc.Validator().MaxImageBytes(),
			TaskCount:     len(p.svc.List(model.FilterAll)),
		}))
}

// /tasks/new, /tasks/{id}/edit, /tasks/{id}/delete, /tasks/{id}/toggle
func (p *Pages) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/tasks/"), "/")
	parts := strings.Split(tail, "/")

	if len(parts) == 1 && parts[0] == "new" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ret := safeReturn(r.URL.Query().Get("return"))
		p.showForm(w, r, http.StatusOK, page.FormData{
			Action:  "/tasks",
			Return:  ret,
			DueDate: p.svc.Now().AddDate(0, 0, 1).UTC().Format(dateOnly),
		})
		return
	}
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	switch parts[1] {
	case "edit":
		switch r.Method {
		case http.MethodGet:
			t, ok := p.svc.Get(id)
			if !ok {
				http.NotFound(w, r)
				return
			}
			p.showForm(w, r, http.StatusOK, editForm(t, DraftFrom(t), safeReturn(r.URL.Query().Get("return"))))
		case http.MethodPost:
			t, ok := p.svc.Get(id)
			if !ok {
				http.NotFound(w, r)
				return
			}
			p.submit(w, r, &t)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	case "delete":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := p.svc.DeleteTask(r.Context(), id); err != nil {
			p.fail(w, r, err)
			return
		}
		http.Redirect(w, r, returnFrom(r), http.StatusSeeOther)

	case "toggle":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, err := p.svc.ToggleComplete(r.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			p.fail(w, r, err)
			return
		}
		http.Redirect(w, r, returnFrom(r), http.StatusSeeOther)

	default:
		http.NotFound(w, r)
	}
}

// submit handles the add form (original nil) and the edit form.
func (p *Pages) submit(w http.ResponseWriter, r *http.Request, original *model.Task) {
	limit := p.svc.Validator().MaxImageBytes()
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit)*2+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	d := Draft{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		DueDate:     r.FormValue("dueDate"),
		Priority:    r.FormValue("priority"),
	}
	if original != nil && r.FormValue("remove_image") == "" {
		d.Image = original.Image
	}
	ret := safeReturn(r.FormValue("return"))

	form := page.FormData{Action: "/tasks", Return: ret}
	if original != nil {
		form = editForm(*original, d, ret)
	} else {
		form.Title, form.Description, form.DueDate, form.Priority = d.Title, d.Description, d.DueDate, d.Priority
	}

	img, err := readUpload(r, limit)
	if err != nil {
		form.Error = uploadMessage(err)
		p.showForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	if img != "" {
		d.Image = img
	}

	if original != nil {
		_, err = p.svc.EditTask(r.Context(), original.ID, d)
	} else {
		_, err = p.svc.AddTask(r.Context(), d)
	}
	var verr *ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, ret, http.StatusSeeOther)
	case errors.As(err, &verr):
		form.Error = verr.Message
		p.showForm(w, r, http.StatusUnprocessableEntity, form)
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	default:
		p.fail(w, r, err)
	}
}

func (p *Pages) showForm(w http.ResponseWriter, r *http.Request, status int, f page.FormData) {
	f.MaxImageBytes = p.svc.Validator().MaxImageBytes()
	title := "Add Task"
	if f.Editing {
		title = "Edit Task"
	}
	p.show(w, r, status, page.LayoutData{Title: title, Return: f.Return}, page.TaskForm(f))
}

func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpmw.Error(p.logger, "task_write_failed", map[string]any{
		"request_id": httpmw.RequestIDFromContext(r.Context()),
		"path":       r.URL.Path,
		"error":      err.Error(),
	})
	http.Error(w, "could not save tasks", http.StatusInternalServerError)
}

func editForm(t model.Task, d Draft, ret string) page.FormData {
	return page.FormData{
		Editing:     true,
		Action:      "/tasks/" + t.ID + "/edit",
		Return:      ret,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Image:       t.Image,
	}
}

// readUpload returns the "image" file as a data URL, or "" when none was sent.
func readUpload(r *http.Request, limit int) (string, error) {
	f, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	return EncodeImage(f, hdr.Header.Get("Content-Type"), limit)
}

func uploadMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrNotImage):
		return "Attachment must be an image"
	default:
		return "Could not read the uploaded image"
	}
}

func returnFrom(r *http.Request) string {
	if v := r.URL.Query().Get("return"); v != "" {
		return safeReturn(v)
	}
	return safeReturn(r.FormValue("return"))
}

// safeReturn accepts only local absolute paths.
func safeReturn(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.Contains(s, `\`) {
		return "/"
	}
	return s
}
