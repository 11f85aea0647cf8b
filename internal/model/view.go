package model

import (
	"errors"
	"strings"
)

var ErrUnknownFilter = errors.New("unknown filter")

type FilterOption string

const (
	FilterAll       FilterOption = "all"
	FilterActive    FilterOption = "active"
	FilterCompleted FilterOption = "completed"
)

// ParseFilter maps user input to a FilterOption. Empty input means all.
func ParseFilter(s string) (FilterOption, error) {
	switch FilterOption(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", ErrUnknownFilter
	}
}

// Stats is the dashboard summary.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}
