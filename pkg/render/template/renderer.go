package template

import (
	"io"
)

// TemplateRenderer renders named templates with the supplied data. Output is
// returned and also copied to every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
}
