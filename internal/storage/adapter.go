package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"taskflow/internal/httpmw"
	"taskflow/internal/model"
)

// Adapter reads and writes the whole task collection as a JSON array in one
// slot key.
type Adapter struct {
	slot   Slot
	key    string
	logger *log.Logger
}

func NewAdapter(slot Slot, key string, logger *log.Logger) *Adapter {
	if key == "" {
		key = "tasks"
	}
	return &Adapter{slot: slot, key: key, logger: logger}
}

func (a *Adapter) Key() string { return a.key }

// Load returns the persisted collection. An empty, unreadable or malformed
// slot yields an empty collection; the cause is logged, never returned.
func (a *Adapter) Load(ctx context.Context) []model.Task {
	raw, ok, err := a.slot.Get(ctx, a.key)
	if err != nil {
		httpmw.Warn(a.logger, "tasks_load_failed", map[string]any{"key": a.key, "error": err.Error()})
		return []model.Task{}
	}
	if !ok || raw == "" {
		return []model.Task{}
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		httpmw.Warn(a.logger, "tasks_parse_failed", map[string]any{"key": a.key, "error": err.Error()})
		return []model.Task{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

// Save overwrites the slot with the full collection.
func (a *Adapter) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrWrite, err)
	}
	if err := a.slot.Set(ctx, a.key, string(b)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Check reports whether the slot can currently be read.
func (a *Adapter) Check(ctx context.Context) error {
	_, _, err := a.slot.Get(ctx, a.key)
	return err
}
