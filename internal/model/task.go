package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 form stored for dueDate and createdAt.
// It matches what a browser produces with Date.prototype.toISOString.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for display: high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	Image       string   `json:"image,omitempty"` // data: URL
	CreatedAt   string   `json:"createdAt"`
}

// Due parses DueDate.
func (t Task) Due() (time.Time, error) {
	return ParseTime(t.DueDate)
}

func (t Task) Created() (time.Time, error) {
	return ParseTime(t.CreatedAt)
}

// IsOverdue reports whether an incomplete task is due strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, err := t.Due()
	if err != nil {
		return false
	}
	return due.Before(now)
}

// Check verifies the record invariants every stored task must satisfy.
func (t Task) Check() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	if _, err := t.Due(); err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	if _, err := t.Created(); err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("priority %q is not one of low, medium, high", t.Priority)
	}
	return nil
}

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts RFC 3339 timestamps with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, s)
}
