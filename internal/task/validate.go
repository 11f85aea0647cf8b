package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/config"
	"taskflow/internal/model"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrDuplicateID = errors.New("task id already exists")
)

// ValidationError is a user-facing rejection of a draft or record. Two
// errors match under errors.Is when their codes are equal.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrMissingTitle    = &ValidationError{Code: "missing_title", Message: "Title is required"}
	ErrMissingDueDate  = &ValidationError{Code: "missing_due_date", Message: "Due date is required"}
	ErrInvalidPriority = &ValidationError{Code: "invalid_priority", Message: "Priority must be low, medium or high"}
	ErrImageTooLarge   = &ValidationError{Code: "image_too_large", Message: "Image must be less than 5MB"}
	ErrInvalidRecord   = &ValidationError{Code: "invalid_record", Message: "Task record is invalid"}
)

// dateOnly is what an HTML date input submits.
const dateOnly = "2006-01-02"

// Draft holds the user-editable fields of a task.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Image       string `json:"image,omitempty"`
}

// DraftFrom pre-fills an edit form from a stored task.
func DraftFrom(t model.Task) Draft {
	d := Draft{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
		Image:       t.Image,
	}
	if due, err := t.Due(); err == nil {
		d.DueDate = due.UTC().Format(dateOnly)
	}
	return d
}

type Validator struct {
	clock         Clock
	newID         func() string
	maxImageBytes int
}

func NewValidator(clock Clock, maxImageBytes int) *Validator {
	if clock == nil {
		clock = RealClock{}
	}
	if maxImageBytes <= 0 {
		maxImageBytes = config.DefaultMaxImageBytes
	}
	return &Validator{clock: clock, newID: uuid.NewString, maxImageBytes: maxImageBytes}
}

// WithIDs swaps the id generator.
func (v *Validator) WithIDs(fn func() string) *Validator {
	v.newID = fn
	return v
}

func (v *Validator) MaxImageBytes() int { return v.maxImageBytes }

// Accept turns a draft into a task. original is nil when creating; when
// editing, its id, completion flag and creation time carry over unchanged.
// Only the first failing rule is reported.
func (v *Validator) Accept(d Draft, original *model.Task) (model.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.Task{}, ErrMissingTitle
	}
	due, err := parseDueDate(d.DueDate)
	if err != nil {
		return model.Task{}, ErrMissingDueDate
	}
	priority, err := parsePriority(d.Priority)
	if err != nil {
		return model.Task{}, err
	}
	if err := v.checkImage(d.Image); err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		Title:       title,
		Description: d.Description,
		DueDate:     model.FormatTime(due),
		Priority:    priority,
		Image:       d.Image,
	}
	if original != nil {
		t.ID = original.ID
		t.Completed = original.Completed
		t.CreatedAt = original.CreatedAt
	} else {
		t.ID = v.newID()
		t.CreatedAt = model.FormatTime(v.clock.Now())
	}
	return t, nil
}

// Check validates a complete record before it enters the store.
func (v *Validator) Check(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrMissingTitle
	}
	if _, err := t.Due(); err != nil {
		return ErrMissingDueDate
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if err := v.checkImage(t.Image); err != nil {
		return err
	}
	if err := t.Check(); err != nil {
		return &ValidationError{Code: ErrInvalidRecord.Code, Message: err.Error()}
	}
	return nil
}

func (v *Validator) checkImage(image string) error {
	if len(image) <= v.maxImageBytes {
		return nil
	}
	return imageTooLarge(v.maxImageBytes)
}

func imageTooLarge(limit int) *ValidationError {
	if limit == config.DefaultMaxImageBytes {
		return ErrImageTooLarge
	}
	return &ValidationError{
		Code:    ErrImageTooLarge.Code,
		Message: "Image must be less than " + humanBytes(limit),
	}
}

func humanBytes(n int) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= kib && n%kib == 0:
		return fmt.Sprintf("%dKB", n/kib)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty due date")
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}, err
		}
	}
	// The stored form has a four-digit year.
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return time.Time{}, fmt.Errorf("due date year %d out of range", y)
	}
	return t, nil
}

func parsePriority(s string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return model.PriorityMedium, nil
	}
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}
