package task

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"taskflow/internal/httpmw"
	"taskflow/internal/model"
)

// Handler serves the JSON API over a Service.
type Handler struct {
	svc    *Service
	logger *log.Logger
}

func NewHandler(svc *Service, logger *log.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// jsonOverhead is the room a draft needs beyond its image.
const jsonOverhead = 64 << 10

// decodeJSON reads a draft body no larger than the image ceiling allows.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	limit := int64(h.svc.Validator().MaxImageBytes()) + jsonOverhead
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	return dec.Decode(out)
}

func writeDecodeErr(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeErr(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeErr(w, 400, "bad json")
}

// writeServiceErr maps a Service error onto a status code.
func (h *Handler) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, verr)
	case errors.Is(err, ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrDuplicateID):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		httpmw.Error(h.logger, "task_write_failed", map[string]any{
			"request_id": httpmw.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
		writeErr(w, http.StatusInternalServerError, "could not save tasks")
	}
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		opt, err := model.ParseFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		writeJSON(w, 200, h.svc.List(opt))
		return

	case http.MethodPost:
		var in Draft
		if err := h.decodeJSON(w, r, &in); err != nil {
			writeDecodeErr(w, err)
			return
		}
		t, err := h.svc.AddTask(r.Context(), in)
		if err != nil {
			h.writeServiceErr(w, r, err)
			return
		}
		writeJSON(w, 201, t)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id}
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			t, ok := h.svc.Get(id)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodPut:
			var in Draft
			if err := h.decodeJSON(w, r, &in); err != nil {
				writeDecodeErr(w, err)
				return
			}
			t, err := h.svc.EditTask(r.Context(), id, in)
			if err != nil {
				h.writeServiceErr(w, r, err)
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodDelete:
			if err := h.svc.DeleteTask(r.Context(), id); err != nil {
				h.writeServiceErr(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return

		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	// /api/tasks/{id}/toggle
	if len(parts) == 2 && parts[1] == "toggle" {
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		t, err := h.svc.ToggleComplete(r.Context(), id)
		if err != nil {
			h.writeServiceErr(w, r, err)
			return
		}
		writeJSON(w, 200, t)
		return
	}

	// /api/tasks/{id}/calendar.ics
	if len(parts) == 2 && parts[1] == "calendar.ics" {
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}
		t, ok := h.svc.Get(id)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		ics, err := BuildTaskCalendarICS(t, h.svc.Now())
		if err != nil {
			h.writeServiceErr(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="task-`+id+`.ics"`)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(ics))
		return
	}

	writeErr(w, 404, "not found")
}

// /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.svc.Stats())
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/tasks", h.TasksRoot)
	mux.HandleFunc("/api/tasks/", h.TasksSub)
	mux.HandleFunc("/api/stats", h.Stats)
}
