// Package registry assigns stable positions to the answerable controls of a
// loaded form. Positions are contiguous, start at zero, and follow the order
// in which fields are registered.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
)

var (
	// ErrEmptyFieldKey reports a field without a usable key.
	ErrEmptyFieldKey = errors.New("registry: empty field key")
	// ErrDuplicateFieldKey reports a field whose key was already registered.
	ErrDuplicateFieldKey = errors.New("registry: duplicate field key")
)

// Rejection records a field that was skipped during registration. Rejected
// fields never consume a position.
type Rejection struct {
	Index int
	Field model.Field
	Err   error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%v (input %d, key %q)", r.Err, r.Index, r.Field.Key)
}

func (r Rejection) Unwrap() error {
	return r.Err
}

// Registry is the ordered question sequence of one form session.
type Registry struct {
	questions []model.Question
	index     map[string]int
	rejected  []Rejection
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register rebuilds the registry from the supplied fields. Positions 0..N-1
// are assigned in input order; fields with an empty or repeated key are
// skipped and reported through Rejected.
func (r *Registry) Register(fields []model.Field) []model.Question {
	r.questions = make([]model.Question, 0, len(fields))
	r.index = make(map[string]int, len(fields))
	r.rejected = nil

	for i, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			r.rejected = append(r.rejected, Rejection{Index: i, Field: field, Err: ErrEmptyFieldKey})
			continue
		}
		if _, exists := r.index[key]; exists {
			r.rejected = append(r.rejected, Rejection{Index: i, Field: field, Err: ErrDuplicateFieldKey})
			continue
		}
		q := model.Question{
			Position: len(r.questions),
			FieldKey: key,
			Label:    strings.TrimSpace(field.Label),
		}
		r.index[key] = q.Position
		r.questions = append(r.questions, q)
	}

	return r.Questions()
}

// Size reports the number of registered questions.
func (r *Registry) Size() int {
	if r == nil {
		return 0
	}
	return len(r.questions)
}

// Questions returns a copy of the registered questions in position order.
func (r *Registry) Questions() []model.Question {
	if r == nil || len(r.questions) == 0 {
		return nil
	}
	return append([]model.Question(nil), r.questions...)
}

// At returns the question at position.
func (r *Registry) At(position int) (model.Question, bool) {
	if r == nil || position < 0 || position >= len(r.questions) {
		return model.Question{}, false
	}
	return r.questions[position], true
}

// Lookup returns the question registered under fieldKey.
func (r *Registry) Lookup(fieldKey string) (model.Question, bool) {
	if r == nil {
		return model.Question{}, false
	}
	pos, ok := r.index[strings.TrimSpace(fieldKey)]
	if !ok {
		return model.Question{}, false
	}
	return r.questions[pos], true
}

// Rejected lists the fields skipped by the last Register call.
func (r *Registry) Rejected() []Rejection {
	if r == nil || len(r.rejected) == 0 {
		return nil
	}
	return append([]Rejection(nil), r.rejected...)
}
