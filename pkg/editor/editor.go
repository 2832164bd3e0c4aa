// Package editor backs the routing editor panel: it lists every question with
// the default-next choices an author may pick and forwards selections to the
// routing table through plain method calls.
package editor

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

// ErrOptionNotOffered is returned by SelectDefault when the chosen value is
// not one of the options listed for the question.
var ErrOptionNotOffered = errors.New("editor: option not offered")

// Target is the part of a session the editor needs.
type Target interface {
	Questions() []model.Question
	Entry(fieldKey string) (routing.Entry, bool)
	SetDefault(fieldKey string, target model.Target) error
	SetAnswerOverride(fieldKey, answer string, target model.Target) error
	RemoveAnswerOverride(fieldKey, answer string) error
}

// Option is one selectable next step.
type Option struct {
	Value    string
	Label    string
	Target   model.Target
	Selected bool
}

// Override is an answer-specific branch shown under a question.
type Override struct {
	Answer string
	Target model.Target
	Label  string
}

// Item is one question row of the editor panel.
type Item struct {
	Position  int
	FieldKey  string
	Title     string
	Label     string
	Options   []Option
	Overrides []Override
}

// Editor lists and edits routing rules.
type Editor struct {
	target Target
}

// New wraps target.
func New(target Target) *Editor {
	return &Editor{target: target}
}

// Items builds the editor rows. Default choices are the later questions
// followed by Submit; backward jumps are not offered.
func (e *Editor) Items() []Item {
	questions := e.target.Questions()
	items := make([]Item, 0, len(questions))
	for _, q := range questions {
		entry, _ := e.target.Entry(q.FieldKey)
		item := Item{
			Position: q.Position,
			FieldKey: q.FieldKey,
			Title:    q.Title(),
			Label:    q.Label,
			Options:  options(questions, q.Position, entry.Default.OrSubmit()),
		}
		for _, answer := range sortedKeys(entry.Answers) {
			target := entry.Answers[answer]
			item.Overrides = append(item.Overrides, Override{
				Answer: answer,
				Target: target,
				Label:  targetLabel(target),
			})
		}
		items = append(items, item)
	}
	return items
}

// Item returns the row of fieldKey.
func (e *Editor) Item(fieldKey string) (Item, bool) {
	for _, item := range e.Items() {
		if item.FieldKey == fieldKey {
			return item, true
		}
	}
	return Item{}, false
}

// SelectDefault applies the option value picked for fieldKey ("3" or
// "submit").
func (e *Editor) SelectDefault(fieldKey, value string) error {
	item, ok := e.Item(fieldKey)
	if !ok {
		return fmt.Errorf("editor: select default: %w", &routing.FieldError{Err: routing.ErrUnknownField, FieldKey: fieldKey})
	}
	for _, opt := range item.Options {
		if opt.Value == value {
			return e.target.SetDefault(fieldKey, opt.Target)
		}
	}
	return fmt.Errorf("%w: %q for %q", ErrOptionNotOffered, value, fieldKey)
}

// SetOverride parses value and stores it as the branch for answer. An empty
// value removes the override.
func (e *Editor) SetOverride(fieldKey, answer, value string) error {
	target, err := model.ParseTarget(value)
	if err != nil {
		return fmt.Errorf("editor: set override: %w", err)
	}
	if !target.IsSet() {
		return e.target.RemoveAnswerOverride(fieldKey, answer)
	}
	return e.target.SetAnswerOverride(fieldKey, answer, target)
}

func options(questions []model.Question, current int, selected model.Target) []Option {
	var out []Option
	for _, q := range questions {
		if q.Position <= current {
			continue
		}
		target := model.Position(q.Position)
		out = append(out, Option{
			Value:    strconv.Itoa(q.Position),
			Label:    q.Title(),
			Target:   target,
			Selected: target == selected,
		})
	}
	submit := model.Submit()
	out = append(out, Option{
		Value:    model.SubmitKeyword,
		Label:    "Submit",
		Target:   submit,
		Selected: selected == submit,
	})
	return out
}

func targetLabel(target model.Target) string {
	if pos, ok := target.Position(); ok {
		return "Question " + strconv.Itoa(pos+1)
	}
	return "Submit"
}

func sortedKeys(answers map[string]model.Target) []string {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
