package navigation

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/atomic"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

var (
	// ErrTransitionInFlight is returned when a transition or mutation is
	// attempted while another transition is still being applied.
	ErrTransitionInFlight = errors.New("navigation: transition in flight")
	// ErrSubmitted is returned by Advance and Retreat once the form submitted.
	ErrSubmitted = errors.New("navigation: form already submitted")
	// ErrNoResolver is returned when the engine was built without a resolver.
	ErrNoResolver = errors.New("navigation: resolver is nil")
)

// Status is the coarse engine state.
type Status string

const (
	StatusAtQuestion Status = "at_question"
	StatusSubmitted  Status = "submitted"
)

// Resolver decides the next step for a field key and answer.
type Resolver interface {
	Resolve(fieldKey, answer string) (model.Target, error)
}

// Answers supplies the current answer of a field. Absent answers are "".
type Answers interface {
	Answer(fieldKey string) string
}

// AnswersFunc adapts a function into Answers.
type AnswersFunc func(fieldKey string) string

// Answer delegates to the function.
func (fn AnswersFunc) Answer(fieldKey string) string {
	return fn(fieldKey)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPanels appends extra display units after the questions.
func WithPanels(panels ...model.Panel) Option {
	return func(e *Engine) {
		e.panels = append(e.panels, panels...)
	}
}

// WithLogger routes transition logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFrameHook registers a callback invoked with every published frame,
// including the initial one.
func WithFrameHook(fn func(Frame)) Option {
	return func(e *Engine) {
		e.onFrame = fn
	}
}

// WithSubmitHook registers the submission side effect. It runs once, when an
// Advance resolves to Submit.
func WithSubmitHook(fn func(Frame)) Option {
	return func(e *Engine) {
		e.onSubmit = fn
	}
}

// Engine is the navigation cursor of one form session.
type Engine struct {
	questions []model.Question
	panels    []model.Panel
	resolver  Resolver
	answers   Answers
	logger    *slog.Logger
	onFrame   func(Frame)
	onSubmit  func(Frame)

	cursor int
	status Status
	frame  Frame
	busy   *atomic.Bool
}

// New builds an engine over questions and publishes the initial frame. With
// no questions the engine starts in the submitted state.
func New(questions []model.Question, resolver Resolver, answers Answers, options ...Option) *Engine {
	e := &Engine{
		questions: append([]model.Question(nil), questions...),
		resolver:  resolver,
		answers:   answers,
		logger:    slog.New(slog.DiscardHandler),
		busy:      atomic.NewBool(false),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.answers == nil {
		e.answers = AnswersFunc(func(string) string { return "" })
	}
	e.busy.Store(true)
	e.reset()
	e.busy.Store(false)
	return e
}

// Reset returns the cursor to the first question, as on a fresh load.
func (e *Engine) Reset() error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrTransitionInFlight
	}
	defer e.busy.Store(false)
	e.reset()
	return nil
}

func (e *Engine) reset() {
	if len(e.questions) == 0 {
		e.cursor = -1
		e.status = StatusSubmitted
		e.frame = buildFrame(e.questions, e.panels, -1)
		e.logger.Debug("navigation: no questions registered, starting submitted")
		e.publish()
		return
	}
	e.cursor = 0
	e.status = StatusAtQuestion
	e.frame = buildFrame(e.questions, e.panels, 0)
	e.publish()
}

// Advance resolves the answer of the current question and moves to the
// resolved position or submits. On error nothing changes.
func (e *Engine) Advance() (model.Target, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return model.Target{}, ErrTransitionInFlight
	}
	defer e.busy.Store(false)

	if e.status == StatusSubmitted {
		return model.Target{}, ErrSubmitted
	}
	if e.resolver == nil {
		return model.Target{}, ErrNoResolver
	}

	current := e.questions[e.cursor]
	answer := e.answers.Answer(current.FieldKey)

	target, err := e.resolver.Resolve(current.FieldKey, answer)
	if err != nil {
		e.logger.Warn("navigation: resolve failed",
			"fieldKey", current.FieldKey,
			"position", e.cursor,
			"error", err,
		)
		return model.Target{}, fmt.Errorf("navigation: advance from %q: %w", current.FieldKey, err)
	}
	target = target.OrSubmit()

	if target.IsSubmit() {
		e.status = StatusSubmitted
		e.logger.Info("navigation: submitting",
			"fieldKey", current.FieldKey,
			"position", e.cursor,
		)
		if e.onSubmit != nil {
			e.onSubmit(e.frame.clone())
		}
		return target, nil
	}

	if err := routing.CheckTarget(current.FieldKey, target, len(e.questions)); err != nil {
		e.logger.Warn("navigation: invalid target",
			"fieldKey", current.FieldKey,
			"position", e.cursor,
			"target", target.String(),
		)
		return model.Target{}, fmt.Errorf("navigation: advance from %q: %w", current.FieldKey, err)
	}

	next, _ := target.Position()
	e.logger.Debug("navigation: advance",
		"fieldKey", current.FieldKey,
		"answer", answer,
		"from", e.cursor,
		"to", next,
	)
	e.moveTo(next)
	return target, nil
}

// Retreat moves one position back. At the first question it is a no-op.
func (e *Engine) Retreat() (int, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return e.cursor, ErrTransitionInFlight
	}
	defer e.busy.Store(false)

	if e.status == StatusSubmitted {
		return e.cursor, ErrSubmitted
	}
	if e.cursor == 0 {
		return 0, nil
	}
	e.logger.Debug("navigation: retreat", "from", e.cursor, "to", e.cursor-1)
	e.moveTo(e.cursor - 1)
	return e.cursor, nil
}

func (e *Engine) moveTo(position int) {
	frame := buildFrame(e.questions, e.panels, position)
	e.cursor = position
	e.frame = frame
	e.publish()
}

func (e *Engine) publish() {
	if e.onFrame != nil {
		e.onFrame(e.frame.clone())
	}
}

// Position reports the current question position; false once submitted.
func (e *Engine) Position() (int, bool) {
	if e.status == StatusSubmitted {
		return -1, false
	}
	return e.cursor, true
}

// Current returns the question under the cursor.
func (e *Engine) Current() (model.Question, bool) {
	pos, ok := e.Position()
	if !ok {
		return model.Question{}, false
	}
	return e.questions[pos], true
}

// Status reports the engine state.
func (e *Engine) Status() Status {
	return e.status
}

// Submitted reports whether navigation has ended.
func (e *Engine) Submitted() bool {
	return e.status == StatusSubmitted
}

// IsLast reports whether the cursor sits on the last display unit, panels
// included. It drives the forward control label only.
func (e *Engine) IsLast() bool {
	return e.frame.Last
}

// Frame returns a copy of the latest published frame.
func (e *Engine) Frame() Frame {
	return e.frame.clone()
}

// Busy reports whether a transition is being applied.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// Size reports the number of questions.
func (e *Engine) Size() int {
	return len(e.questions)
}
