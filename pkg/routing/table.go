// Package routing holds the per-question branching rules of a wizard: a
// default next step plus answer-specific overrides, and the serialisable
// document those rules persist as.
package routing

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// Entry is the branching rule owned by one question.
type Entry struct {
	Default model.Target
	Answers map[string]model.Target
}

func (e Entry) clone() Entry {
	out := Entry{Default: e.Default, Answers: make(map[string]model.Target, len(e.Answers))}
	for answer, target := range e.Answers {
		out.Answers[answer] = target
	}
	return out
}

// Option configures a Table.
type Option func(*Table)

// WithEagerValidation makes SetDefault and SetAnswerOverride reject position
// targets outside the registered range with ErrInvalidTarget instead of
// deferring the check to resolution time.
func WithEagerValidation() Option {
	return func(t *Table) {
		t.eager = true
	}
}

// Table maps field keys to routing entries.
type Table struct {
	entries map[string]*Entry
	order   []string
	size    int
	eager   bool
}

// NewTable returns an empty table. Call SeedDefaults before use.
func NewTable(options ...Option) *Table {
	t := &Table{entries: make(map[string]*Entry)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// SeedDefaults discards every entry and creates one per question with a
// linear default chain: position+1 while in range, Submit for the last
// question. Answer overrides start empty.
func (t *Table) SeedDefaults(questions []model.Question) {
	t.entries = make(map[string]*Entry, len(questions))
	t.order = make([]string, 0, len(questions))
	t.size = len(questions)

	for i, q := range questions {
		next := model.Submit()
		if i+1 < len(questions) {
			next = model.Position(i + 1)
		}
		t.entries[q.FieldKey] = &Entry{
			Default: next,
			Answers: make(map[string]model.Target),
		}
		t.order = append(t.order, q.FieldKey)
	}
}

// Size reports the question count the table was seeded with.
func (t *Table) Size() int {
	return t.size
}

// Keys returns the field keys in seeding order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.order...)
}

// Entry returns a copy of the entry owned by fieldKey.
func (t *Table) Entry(fieldKey string) (Entry, bool) {
	entry, ok := t.entries[fieldKey]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// SetDefault overwrites the default target of fieldKey.
func (t *Table) SetDefault(fieldKey string, target model.Target) error {
	entry, ok := t.entries[fieldKey]
	if !ok {
		return unknownField(fieldKey)
	}
	if t.eager {
		if err := CheckTarget(fieldKey, target, t.size); err != nil {
			return err
		}
	}
	entry.Default = target
	return nil
}

// SetAnswerOverride inserts or overwrites the target used when fieldKey is
// answered with answer. An unset target keeps the key but never matches, so
// resolution falls through to the default.
func (t *Table) SetAnswerOverride(fieldKey, answer string, target model.Target) error {
	entry, ok := t.entries[fieldKey]
	if !ok {
		return unknownField(fieldKey)
	}
	if t.eager {
		if err := CheckTarget(fieldKey, target, t.size); err != nil {
			return err
		}
	}
	if entry.Answers == nil {
		entry.Answers = make(map[string]model.Target)
	}
	entry.Answers[answer] = target
	return nil
}

// RemoveAnswerOverride deletes an override. Removing a missing answer is a
// no-op.
func (t *Table) RemoveAnswerOverride(fieldKey, answer string) error {
	entry, ok := t.entries[fieldKey]
	if !ok {
		return unknownField(fieldKey)
	}
	delete(entry.Answers, answer)
	return nil
}

// Resolve picks the next step for fieldKey given its current answer. A set
// override for a non-empty answer wins; otherwise the default applies; an
// unset default degrades to Submit. Range validity is not checked here.
func (t *Table) Resolve(fieldKey, answer string) (model.Target, error) {
	entry, ok := t.entries[fieldKey]
	if !ok {
		return model.Target{}, unknownField(fieldKey)
	}
	if answer != "" {
		if target, found := entry.Answers[answer]; found && target.IsSet() {
			return target, nil
		}
	}
	return entry.Default.OrSubmit(), nil
}

// Validate checks every stored target against the seeded range and returns
// the first failure in seeding order, answers sorted.
func (t *Table) Validate() error {
	for _, key := range t.order {
		entry := t.entries[key]
		if err := CheckTarget(key, entry.Default, t.size); err != nil {
			return err
		}
		for _, answer := range sortedAnswers(entry.Answers) {
			if err := CheckTarget(key, entry.Answers[answer], t.size); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedAnswers(answers map[string]model.Target) []string {
	keys := make([]string, 0, len(answers))
	for answer := range answers {
		keys = append(keys, answer)
	}
	sort.Strings(keys)
	return keys
}

func normaliseKey(key string) string {
	return strings.TrimSpace(key)
}
