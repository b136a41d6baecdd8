package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrTransitionNotAllowed is returned when a status change falls outside the
// transition table.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// TransitionError names the rejected change. It matches
// ErrTransitionNotAllowed with errors.Is.
type TransitionError struct {
	From, To string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrTransitionNotAllowed, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrTransitionNotAllowed
}

// ValidationErrors maps a field name to one human-readable message.
type ValidationErrors map[string]string

// Error lists the failing fields in a stable order.
func (v ValidationErrors) Error() string {
	fields := slices.Sorted(maps.Keys(v))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns v as an error, or nil when empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
