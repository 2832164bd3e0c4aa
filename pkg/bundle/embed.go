package bundle

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplateName is the template used by Compose.
const TemplateName = "templates/bundle.tmpl"

// TemplatesFS exposes the embedded bundle template so callers can extend or
// replace it.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
