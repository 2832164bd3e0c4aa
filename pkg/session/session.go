// Package session wires the question registry, routing table, and navigation
// engine of one loaded form. A Session is created on form load and rebuilt in
// full by Reload; nothing outlives it.
package session

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/navigation"
	"github.com/goliatone/go-formwizard/pkg/registry"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

// ErrBusy is returned by mutations attempted while a transition runs. It
// wraps navigation.ErrTransitionInFlight.
var ErrBusy = fmt.Errorf("session: %w", navigation.ErrTransitionInFlight)

// Input is what the markup loader hands over on every (re)load.
type Input struct {
	Fields []model.Field
	Panels []model.Panel
	// Routing, when set, is applied on top of the seeded defaults.
	Routing routing.Document
}

// Option customises a Session.
type Option func(*Session)

// WithLogger injects the logger shared with the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmitHook registers the form submission side effect.
func WithSubmitHook(fn func(navigation.Frame)) Option {
	return func(s *Session) {
		s.onSubmit = fn
	}
}

// WithFrameHook registers a callback for every visibility frame.
func WithFrameHook(fn func(navigation.Frame)) Option {
	return func(s *Session) {
		s.onFrame = fn
	}
}

// WithEagerValidation rejects out-of-range targets when routing is edited.
func WithEagerValidation() Option {
	return func(s *Session) {
		s.tableOptions = append(s.tableOptions, routing.WithEagerValidation())
	}
}

// Session owns the state of one active form.
type Session struct {
	logger       *slog.Logger
	onSubmit     func(navigation.Frame)
	onFrame      func(navigation.Frame)
	tableOptions []routing.Option

	registry *registry.Registry
	table    *routing.Table
	engine   *navigation.Engine
	panels   []model.Panel
	answers  map[string]string
	loading  bool
}

// New builds a session from the loaded input.
func New(input Input, options ...Option) (*Session, error) {
	s := &Session{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if err := s.load(input); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards registry, routing, answers, and cursor and rebuilds them
// from input.
func (s *Session) Reload(input Input) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.load(input)
}

func (s *Session) load(input Input) error {
	s.loading = true
	defer func() { s.loading = false }()

	reg := registry.New()
	questions := reg.Register(input.Fields)
	for _, rejected := range reg.Rejected() {
		s.logger.Warn("session: field skipped", "index", rejected.Index, "key", rejected.Field.Key, "error", rejected.Err)
	}

	table := routing.NewTable(s.tableOptions...)
	table.SeedDefaults(questions)
	if len(input.Routing) > 0 {
		if err := table.Apply(input.Routing); err != nil {
			return fmt.Errorf("session: load: %w", err)
		}
	}

	answers := make(map[string]string, len(questions))
	for _, field := range input.Fields {
		q, ok := reg.Lookup(field.Key)
		if !ok {
			continue
		}
		if _, seen := answers[q.FieldKey]; !seen {
			answers[q.FieldKey] = field.Value
		}
	}

	s.registry = reg
	s.table = table
	s.answers = answers
	s.panels = append([]model.Panel(nil), input.Panels...)
	s.engine = navigation.New(questions, table, navigation.AnswersFunc(s.Answer),
		navigation.WithPanels(s.panels...),
		navigation.WithLogger(s.logger),
		navigation.WithFrameHook(s.onFrame),
		navigation.WithSubmitHook(s.onSubmit),
	)
	s.logger.Debug("session: loaded", "questions", len(questions), "panels", len(s.panels))
	return nil
}

// Answer returns the current answer of fieldKey, "" when absent.
func (s *Session) Answer(fieldKey string) string {
	return s.answers[strings.TrimSpace(fieldKey)]
}

// Answers returns a copy of every registered field's current answer.
func (s *Session) Answers() map[string]string {
	out := make(map[string]string, len(s.answers))
	for key, value := range s.answers {
		out[key] = value
	}
	return out
}

// SetAnswer records the operator's answer for a registered field.
func (s *Session) SetAnswer(fieldKey, value string) error {
	if err := s.guard(); err != nil {
		return err
	}
	q, ok := s.registry.Lookup(fieldKey)
	if !ok {
		return fmt.Errorf("session: set answer: %w", &routing.FieldError{Err: routing.ErrUnknownField, FieldKey: fieldKey})
	}
	s.answers[q.FieldKey] = value
	return nil
}

// Advance moves forward according to the routing table.
func (s *Session) Advance() (model.Target, error) {
	if err := s.guard(); err != nil {
		return model.Target{}, err
	}
	return s.engine.Advance()
}

// Retreat moves one position back.
func (s *Session) Retreat() (int, error) {
	if err := s.guard(); err != nil {
		if s.engine == nil {
			return 0, err
		}
		pos, _ := s.engine.Position()
		return pos, err
	}
	return s.engine.Retreat()
}

// Restart returns to the first question without reloading.
func (s *Session) Restart() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.engine.Reset()
}

// SetDefault edits the default target of fieldKey.
func (s *Session) SetDefault(fieldKey string, target model.Target) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.table.SetDefault(fieldKey, target)
}

// SetAnswerOverride edits one answer-specific target of fieldKey.
func (s *Session) SetAnswerOverride(fieldKey, answer string, target model.Target) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.table.SetAnswerOverride(fieldKey, answer, target)
}

// RemoveAnswerOverride drops one answer-specific target of fieldKey.
func (s *Session) RemoveAnswerOverride(fieldKey, answer string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.table.RemoveAnswerOverride(fieldKey, answer)
}

// ApplyDocument overlays a routing document onto the current table.
func (s *Session) ApplyDocument(doc routing.Document) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.table.Apply(doc)
}

// Entry returns the routing entry of fieldKey.
func (s *Session) Entry(fieldKey string) (routing.Entry, bool) {
	return s.table.Entry(fieldKey)
}

// Resolve exposes routing resolution without moving the cursor.
func (s *Session) Resolve(fieldKey, answer string) (model.Target, error) {
	return s.table.Resolve(fieldKey, answer)
}

// Document exports the routing configuration.
func (s *Session) Document() routing.Document {
	return s.table.Document()
}

// Validate reports the first out-of-range routing target, if any.
func (s *Session) Validate() error {
	return s.table.Validate()
}

// Questions lists the registered questions.
func (s *Session) Questions() []model.Question {
	return s.registry.Questions()
}

// Panels lists the appended panels.
func (s *Session) Panels() []model.Panel {
	return append([]model.Panel(nil), s.panels...)
}

// Rejected lists fields skipped during the last load.
func (s *Session) Rejected() []registry.Rejection {
	return s.registry.Rejected()
}

// Current returns the question under the cursor.
func (s *Session) Current() (model.Question, bool) {
	return s.engine.Current()
}

// Frame returns the latest visibility frame.
func (s *Session) Frame() navigation.Frame {
	return s.engine.Frame()
}

// Submitted reports whether navigation has ended.
func (s *Session) Submitted() bool {
	return s.engine.Submitted()
}

// IsLast reports whether the forward control should read "submit".
func (s *Session) IsLast() bool {
	return s.engine.IsLast()
}

func (s *Session) guard() error {
	if s.loading || (s.engine != nil && s.engine.Busy()) {
		return ErrBusy
	}
	return nil
}
