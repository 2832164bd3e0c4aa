// Package bundle produces the saved form configuration: the prepared markup
// with its panels appended, and the routing document. A bundle alone is
// enough to replay navigation; Replay does so with the same navigation engine
// the editor uses, so there is a single definition of the wizard behaviour.
package bundle

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/render/template"
	"github.com/goliatone/go-formwizard/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formwizard/pkg/routing"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// ErrFormIDRequired is returned when composing without a form id.
var ErrFormIDRequired = errors.New("bundle: form id is required")

// Bundle is the persisted configuration of one wizard form.
type Bundle struct {
	FormID  string           `json:"formId"`
	HTML    string           `json:"html"`
	Routing routing.Document `json:"routing"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithTemplateRenderer swaps the template engine.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(c *Composer) {
		if renderer != nil {
			c.templates = renderer
		}
	}
}

// WithTemplateDir lets templates found under dir replace the embedded ones
// of the same name, e.g. dir/templates/bundle.tmpl.
func WithTemplateDir(dir string) Option {
	return func(c *Composer) {
		c.templateDir = strings.TrimSpace(dir)
	}
}

// WithPanelPolicy overrides the sanitiser applied to panel markup.
func WithPanelPolicy(policy *bluemonday.Policy) Option {
	return func(c *Composer) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// Composer renders bundles.
type Composer struct {
	templates   template.TemplateRenderer
	templateDir string
	policy      *bluemonday.Policy
}

var (
	panelPolicyOnce sync.Once
	panelPolicy     *bluemonday.Policy
)

func defaultPanelPolicy() *bluemonday.Policy {
	panelPolicyOnce.Do(func() {
		panelPolicy = bluemonday.UGCPolicy()
	})
	return panelPolicy
}

// NewComposer builds a composer backed by the embedded template.
func NewComposer(options ...Option) (*Composer, error) {
	c := &Composer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithBaseDir(c.templateDir),
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("bundle: configure template renderer: %w", err)
		}
		c.templates = engine
	}
	if c.policy == nil {
		c.policy = defaultPanelPolicy()
	}
	return c, nil
}

// Compose renders the bundle markup for form and attaches doc.
func (c *Composer) Compose(formID string, form markup.Form, doc routing.Document) (Bundle, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return Bundle{}, ErrFormIDRequired
	}

	panels := make([]any, 0, len(form.Panels))
	for _, panel := range form.Panels {
		panels = append(panels, map[string]any{
			"name":   panel.Name,
			"markup": c.policy.Sanitize(panel.Markup),
		})
	}

	html, err := c.templates.RenderTemplate(TemplateName, map[string]any{
		"form_id":   formID,
		"form_html": form.HTML,
		"panels":    panels,
	})
	if err != nil {
		return Bundle{}, fmt.Errorf("bundle: render: %w", err)
	}

	return Bundle{
		FormID:  formID,
		HTML:    html,
		Routing: doc,
	}, nil
}

// Replay parses the bundle markup and builds a fresh session with the stored
// routing applied.
func Replay(b Bundle, options ...session.Option) (*session.Session, error) {
	form, err := markup.Parse(strings.NewReader(b.HTML))
	if err != nil {
		return nil, fmt.Errorf("bundle: replay: %w", err)
	}
	s, err := session.New(session.Input{
		Fields:  form.Fields,
		Panels:  form.Panels,
		Routing: b.Routing,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("bundle: replay: %w", err)
	}
	return s, nil
}

// Encode renders the bundle as indented JSON.
func Encode(b Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON bundle.
func Decode(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("bundle: decode: %w", err)
	}
	if b.Routing == nil {
		b.Routing = routing.Document{}
	}
	return b, nil
}
