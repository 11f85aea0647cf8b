package task

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func newHandlerForTests(t *testing.T) (*Handler, *Service, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	v := testValidator()
	svc := NewService(NewStore(context.Background(), p, v), v, NewFakeClock(testNow))
	return NewHandler(svc, nil), svc, p
}

func jsonReq(method, path string, body any) *http.Request {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestTasksRoot_CreateAndList(t *testing.T) {
	h, _, p := newHandlerForTests(t)

	rr := serve(h, jsonReq(http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Buy milk",
		"dueDate":  "2026-03-11",
		"priority": "high",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "2026-03-11T00:00:00.000Z", created.DueDate)
	assert.False(t, created.Completed)
	assert.Len(t, p.saves, 1)

	rr = serve(h, jsonReq(http.MethodGet, "/api/tasks?filter=active", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, []model.Task{created}, listed)

	rr = serve(h, jsonReq(http.MethodGet, "/api/tasks?filter=completed", nil))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestTasksRoot_Errors(t *testing.T) {
	h, _, p := newHandlerForTests(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, serve(h, req).Code)

	rr := serve(h, jsonReq(http.MethodPost, "/api/tasks", map[string]any{"title": "a"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"code":"missing_due_date","error":"Due date is required"}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(h, jsonReq(http.MethodGet, "/api/tasks?filter=later", nil)).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, jsonReq(http.MethodPatch, "/api/tasks", nil)).Code)
	assert.Empty(t, p.saves)
}

func TestTasksSub_Lifecycle(t *testing.T) {
	h, svc, _ := newHandlerForTests(t)
	created, err := svc.AddTask(context.Background(), Draft{Title: "a", DueDate: "2026-03-11"})
	require.NoError(t, err)
	path := "/api/tasks/" + created.ID

	rr := serve(h, jsonReq(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, jsonReq(http.MethodPut, path, map[string]any{"title": "b", "dueDate": "2026-03-12", "priority": "low"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var edited model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &edited))
	assert.Equal(t, "b", edited.Title)
	assert.Equal(t, created.CreatedAt, edited.CreatedAt)

	rr = serve(h, jsonReq(http.MethodPut, path, map[string]any{"title": "b", "dueDate": "2026-03-12", "priority": "urgent"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = serve(h, jsonReq(http.MethodPost, path+"/toggle", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var toggled model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &toggled))
	assert.True(t, toggled.Completed)

	rr = serve(h, jsonReq(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodGet, path, nil)).Code)
}

func TestTasksSub_NotFound(t *testing.T) {
	h, _, _ := newHandlerForTests(t)

	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodGet, "/api/tasks/nope", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodPut, "/api/tasks/nope", map[string]any{"title": "a", "dueDate": "2026-03-11"})).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodPost, "/api/tasks/nope/toggle", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodGet, "/api/tasks/nope/calendar.ics", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, jsonReq(http.MethodGet, "/api/tasks/nope/other", nil)).Code)
}

func TestTasksSub_CalendarExport(t *testing.T) {
	h, svc, _ := newHandlerForTests(t)
	created, err := svc.AddTask(context.Background(), Draft{Title: "Dentist", DueDate: "2026-03-11"})
	require.NoError(t, err)

	rr := serve(h, jsonReq(http.MethodGet, "/api/tasks/"+created.ID+"/calendar.ics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "SUMMARY:Dentist\r\n")
}

func TestHandler_WriteFailureIs500(t *testing.T) {
	h, _, p := newHandlerForTests(t)
	p.fail = errors.New("disk full")

	rr := serve(h, jsonReq(http.MethodPost, "/api/tasks", map[string]any{"title": "a", "dueDate": "2026-03-11"}))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"could not save tasks"}`, rr.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	h, svc, _ := newHandlerForTests(t)
	_, err := svc.AddTask(context.Background(), Draft{Title: "late", DueDate: "2026-03-01"})
	require.NoError(t, err)

	rr := serve(h, jsonReq(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total":1,"active":1,"completed":0,"overdue":1}`, rr.Body.String())
}

func TestHandler_RejectsOversizedBody(t *testing.T) {
	v := NewValidator(NewFakeClock(testNow), 1024)
	svc := NewService(NewStore(context.Background(), &recordingPersister{}, v), v, NewFakeClock(testNow))
	h := NewHandler(svc, nil)
	body := `{"title":"` + strings.Repeat("x", jsonOverhead+2048) + `","dueDate":"2026-03-11"}`

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rr.Body.String())

	created, err := svc.AddTask(context.Background(), Draft{Title: "a", DueDate: "2026-03-11"})
	require.NoError(t, err)
	rr = serve(h, httptest.NewRequest(http.MethodPut, "/api/tasks/"+created.ID, strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	got, _ := svc.Get(created.ID)
	assert.Equal(t, "a", got.Title)
	assert.Len(t, svc.List(model.FilterAll), 1)
}
