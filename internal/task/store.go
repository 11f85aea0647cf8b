package task

import (
	"context"
	"slices"
	"sync"

	"taskflow/internal/model"
)

// Persister is the storage contract the Store writes through to.
type Persister interface {
	Load(ctx context.Context) []model.Task
	Save(ctx context.Context, tasks []model.Task) error
}

// Store is the in-memory task collection for the running process. Every
// mutation saves the full next collection before it is applied, so memory
// never runs ahead of what was persisted.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	validator *Validator
	tasks     []model.Task
}

func NewStore(ctx context.Context, p Persister, v *Validator) *Store {
	if v == nil {
		v = NewValidator(nil, 0)
	}
	return &Store{
		persister: p,
		validator: v,
		tasks:     p.Load(ctx),
	}
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) Add(ctx context.Context, t model.Task) error {
	if err := s.validator.Check(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(t.ID) >= 0 {
		return ErrDuplicateID
	}
	next := append(slices.Clone(s.tasks), t)
	return s.commitLocked(ctx, next)
}

// Update replaces the record with t's id. An unknown id is a no-op.
func (s *Store) Update(ctx context.Context, t model.Task) error {
	if err := s.validator.Check(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(t.ID)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.tasks)
	next[i] = t
	return s.commitLocked(ctx, next)
}

// Remove deletes the record with id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	return s.commitLocked(ctx, next)
}

// ToggleCompleted flips the completed flag on id. An unknown id is a no-op.
func (s *Store) ToggleCompleted(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.tasks)
	next[i].Completed = !next[i].Completed
	return s.commitLocked(ctx, next)
}

// Replace rewrites the record with id through fn while holding the lock, so
// nothing can remove it in between. A missing id is ErrNotFound.
func (s *Store) Replace(ctx context.Context, id string, fn func(model.Task) (model.Task, error)) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	t, err := fn(s.tasks[i])
	if err != nil {
		return model.Task{}, err
	}
	t.ID = id
	if err := s.validator.Check(t); err != nil {
		return model.Task{}, err
	}
	next := slices.Clone(s.tasks)
	next[i] = t
	if err := s.commitLocked(ctx, next); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) commitLocked(ctx context.Context, next []model.Task) error {
	if err := s.persister.Save(ctx, next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}
