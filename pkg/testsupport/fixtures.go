package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// TargetComparer lets cmp compare model.Target values, whose fields are
// unexported.
var TargetComparer = cmp.Comparer(func(a, b model.Target) bool { return a == b })

// Fields builds one field per key, labelled "Label <key>".
func Fields(keys ...string) []model.Field {
	out := make([]model.Field, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.Field{Key: key, Label: "Label " + key})
	}
	return out
}

// NewSession starts a session over fields built from keys.
func NewSession(t *testing.T, keys []string, options ...session.Option) *session.Session {
	t.Helper()

	s, err := session.New(session.Input{Fields: Fields(keys...)}, options...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// MustLoadForm parses a markup fixture from disk.
func MustLoadForm(t *testing.T, path string) markup.Form {
	t.Helper()

	form, err := markup.NewLoader().Load(context.Background(), markup.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load form %s: %v", path, err)
	}
	return form
}

// MustLoadDocument reads a routing document fixture (JSON or YAML).
func MustLoadDocument(t *testing.T, path string) routing.Document {
	t.Helper()

	doc, err := routing.LoadFile(path)
	if err != nil {
		t.Fatalf("load routing %s: %v", path, err)
	}
	return doc
}

// CompareDocuments returns a diff string if the routing documents differ.
func CompareDocuments(want, got routing.Document) string {
	return cmp.Diff(want, got, TargetComparer)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// WriteDocument writes doc to a temp file with the given extension and
// returns its path.
func WriteDocument(t *testing.T, doc routing.Document, ext string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), fmt.Sprintf("routing%s", ext))
	if err := routing.WriteFile(path, doc); err != nil {
		t.Fatalf("write routing: %v", err)
	}
	return path
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
