package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/model"
)

// Service is the set of user intents the presentation layer dispatches.
type Service struct {
	store     *Store
	validator *Validator
	clock     Clock
}

func NewService(store *Store, validator *Validator, clock Clock) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	return &Service{store: store, validator: validator, clock: clock}
}

func (s *Service) Validator() *Validator { return s.validator }

func (s *Service) Now() time.Time { return s.clock.Now() }

func (s *Service) AddTask(ctx context.Context, d Draft) (model.Task, error) {
	t, err := s.validator.Accept(d, nil)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.store.Add(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Service) EditTask(ctx context.Context, id string, d Draft) (model.Task, error) {
	return s.store.Replace(ctx, id, func(cur model.Task) (model.Task, error) {
		return s.validator.Accept(d, &cur)
	})
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.store.Remove(ctx, id)
}

func (s *Service) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	return s.store.Replace(ctx, id, func(cur model.Task) (model.Task, error) {
		cur.Completed = !cur.Completed
		return cur, nil
	})
}

func (s *Service) Get(id string) (model.Task, bool) {
	return s.store.Get(id)
}

// List returns the filtered tasks in display order.
func (s *Service) List(opt model.FilterOption) []model.Task {
	return SortForDisplay(FilterTasks(s.store.Tasks(), opt))
}

// Recent returns the first n stored tasks in display order.
func (s *Service) Recent(n int) []model.Task {
	return SortForDisplay(Recent(s.store.Tasks(), n))
}

func (s *Service) Stats() model.Stats {
	return ComputeStats(s.store.Tasks(), s.clock.Now())
}

type ViewName string

const (
	ViewDashboard ViewName = "dashboard"
	ViewTasks     ViewName = "tasks"
	ViewUpcoming  ViewName = "upcoming"
	ViewSettings  ViewName = "settings"
)

// View is the presentation state of one page: which screen is shown and
// which filter its list uses.
type View struct {
	Name   ViewName
	Filter model.FilterOption
}

func NewView() View {
	return View{Name: ViewDashboard, Filter: model.FilterAll}
}

func (v *View) SetFilter(opt string) error {
	f, err := model.ParseFilter(opt)
	if err != nil {
		return fmt.Errorf("%w: %q", err, opt)
	}
	v.Filter = f
	return nil
}

// Navigate switches screens. The task list resets to all tasks and the
// upcoming list shows only active ones.
func (v *View) Navigate(name string) error {
	switch n := ViewName(strings.ToLower(strings.TrimSpace(name))); n {
	case ViewDashboard, ViewSettings:
		v.Name = n
	case ViewTasks:
		v.Name, v.Filter = n, model.FilterAll
	case ViewUpcoming:
		v.Name, v.Filter = n, model.FilterActive
	default:
		return fmt.Errorf("unknown view %q", name)
	}
	return nil
}
