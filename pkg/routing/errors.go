package routing

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/model"
)

var (
	// ErrUnknownField is returned when a mutation or resolution addresses a
	// field key that owns no routing entry.
	ErrUnknownField = errors.New("routing: unknown field")
	// ErrInvalidTarget is returned when a target position falls outside the
	// registered question range.
	ErrInvalidTarget = errors.New("routing: invalid target")
)

// FieldError carries the context of an UnknownField or InvalidTarget failure.
// Use errors.Is against the sentinels to classify it.
type FieldError struct {
	Err      error
	FieldKey string
	Target   model.Target
	Size     int
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if errors.Is(e.Err, ErrInvalidTarget) {
		return fmt.Sprintf("%v: field %q targets %s, want [0, %d) or submit", e.Err, e.FieldKey, e.Target, e.Size)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.FieldKey)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func unknownField(fieldKey string) error {
	return &FieldError{Err: ErrUnknownField, FieldKey: fieldKey}
}

// CheckTarget verifies that a position target lies within [0, size). Submit
// and unset targets are always valid.
func CheckTarget(fieldKey string, target model.Target, size int) error {
	pos, ok := target.Position()
	if !ok {
		return nil
	}
	if pos < 0 || pos >= size {
		return &FieldError{Err: ErrInvalidTarget, FieldKey: fieldKey, Target: target, Size: size}
	}
	return nil
}
