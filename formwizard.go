package formwizard

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formwizard/pkg/bundle"
	"github.com/goliatone/go-formwizard/pkg/editor"
	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// Target aliases model.Target for callers editing routing from the root
// package.
type Target = model.Target

// Session aliases session.Session.
type Session = session.Session

// Document aliases routing.Document.
type Document = routing.Document

// Bundle aliases bundle.Bundle.
type Bundle = bundle.Bundle

// Position builds a position target.
func Position(n int) Target {
	return model.Position(n)
}

// Submit builds the submit target.
func Submit() Target {
	return model.Submit()
}

// Input converts a parsed form into session input, optionally carrying a
// routing document to apply over the seeded defaults.
func Input(form markup.Form, doc routing.Document) session.Input {
	return session.Input{
		Fields:  form.Fields,
		Panels:  form.Panels,
		Routing: doc,
	}
}

// Load reads markup from src and starts a session over it.
func Load(ctx context.Context, src markup.Source, doc routing.Document, options ...session.Option) (*Session, markup.Form, error) {
	form, err := markup.NewLoader().Load(ctx, src)
	if err != nil {
		return nil, markup.Form{}, err
	}
	s, err := session.New(Input(form, doc), options...)
	if err != nil {
		return nil, markup.Form{}, fmt.Errorf("formwizard: %w", err)
	}
	return s, form, nil
}

// NewEditor returns the routing editor of s.
func NewEditor(s *Session) *editor.Editor {
	return editor.New(s)
}

// Save composes the bundle of a session loaded from form.
func Save(formID string, form markup.Form, s *Session, options ...bundle.Option) (Bundle, error) {
	composer, err := bundle.NewComposer(options...)
	if err != nil {
		return Bundle{}, err
	}
	return composer.Compose(formID, form, s.Document())
}

// Replay rebuilds a session from a saved bundle.
func Replay(b Bundle, options ...session.Option) (*Session, error) {
	return bundle.Replay(b, options...)
}

// EmbeddedTemplates exposes the bundle templates so callers can extend them.
func EmbeddedTemplates() fs.FS {
	return bundle.TemplatesFS()
}
