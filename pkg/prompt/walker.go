// Package prompt drives a wizard session and its routing editor from a
// terminal. The Driver interface hides the survey library so walks can be
// scripted in tests.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/editor"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/navigation"
)

const (
	actionNext   = "Next"
	actionSubmit = "Submit"
	actionBack   = "Back"
)

// Wizard is the session surface a walk needs.
type Wizard interface {
	Current() (model.Question, bool)
	Answer(fieldKey string) string
	SetAnswer(fieldKey, value string) error
	Advance() (model.Target, error)
	Retreat() (int, error)
	Submitted() bool
	Frame() navigation.Frame
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger routes walk logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Walker asks one question at a time until the form submits.
type Walker struct {
	driver Driver
	logger *slog.Logger
}

// NewWalker builds a walker; a nil driver falls back to the survey driver.
func NewWalker(driver Driver, options ...Option) *Walker {
	w := &Walker{driver: driver, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if w.driver == nil {
		w.driver = NewSurveyDriver()
	}
	return w
}

// Walk runs the wizard. Routing failures are shown to the operator and the
// walk continues on the same question.
func (w *Walker) Walk(ctx context.Context, wiz Wizard) error {
	for !wiz.Submitted() {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, ok := wiz.Current()
		if !ok {
			break
		}

		answer, err := w.driver.Input(ctx, InputConfig{
			Message: heading(q),
			Default: wiz.Answer(q.FieldKey),
			Help:    q.FieldKey,
		})
		if err != nil {
			return err
		}
		if err := wiz.SetAnswer(q.FieldKey, answer); err != nil {
			return fmt.Errorf("prompt: record answer: %w", err)
		}

		frame := wiz.Frame()
		actions := []string{actionNext}
		if frame.Affordance == navigation.AffordanceSubmit {
			actions[0] = actionSubmit
		}
		if frame.BackVisible {
			actions = append(actions, actionBack)
		}

		idx, err := w.driver.Select(ctx, SelectConfig{
			Message: "Continue",
			Options: actions,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			return ErrNoChoice
		}

		if actions[idx] == actionBack {
			if _, err := wiz.Retreat(); err != nil {
				return fmt.Errorf("prompt: retreat: %w", err)
			}
			continue
		}

		if _, err := wiz.Advance(); err != nil {
			if errors.Is(err, navigation.ErrTransitionInFlight) || errors.Is(err, navigation.ErrSubmitted) {
				return err
			}
			w.logger.Warn("prompt: advance failed", "fieldKey", q.FieldKey, "error", err)
			if infoErr := w.driver.Info(ctx, fmt.Sprintf("Cannot continue: %v", err)); infoErr != nil {
				return infoErr
			}
		}
	}

	return w.driver.Info(ctx, "Form submitted.")
}

// EditRouting lets the operator pick the default next step of every question
// and optionally add answer overrides.
func (w *Walker) EditRouting(ctx context.Context, ed *editor.Editor) error {
	for _, item := range ed.Items() {
		labels := make([]string, len(item.Options))
		selected := len(item.Options) - 1
		for i, opt := range item.Options {
			labels[i] = opt.Label
			if opt.Selected {
				selected = i
			}
		}

		idx, err := w.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("%s: %s. Default next question", item.Title, item.Label),
			Options:      labels,
			DefaultIndex: selected,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(item.Options) {
			return ErrNoChoice
		}
		if err := ed.SelectDefault(item.FieldKey, item.Options[idx].Value); err != nil {
			return err
		}

		for {
			more, err := w.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add an answer-specific branch for %s?", item.Title),
			})
			if err != nil {
				return err
			}
			if !more {
				break
			}
			answer, err := w.driver.Input(ctx, InputConfig{Message: "Answer value"})
			if err != nil {
				return err
			}
			idx, err := w.driver.Select(ctx, SelectConfig{
				Message: fmt.Sprintf("When answered %q go to", answer),
				Options: labels,
			})
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(item.Options) {
				return ErrNoChoice
			}
			if err := ed.SetOverride(item.FieldKey, answer, item.Options[idx].Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func heading(q model.Question) string {
	if q.Label == "" {
		return q.Title()
	}
	return q.Title() + ": " + q.Label
}
