package markup

import "path/filepath"

// SourceKind enumerates where form markup can be read from.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindInline SourceKind = "inline"
)

// Source identifies a markup fragment.
type Source interface {
	Kind() SourceKind
	Location() string
}

// fileSource identifies on-disk markup.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within the loader's fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// inlineSource carries the markup itself, as pasted into the editor.
type inlineSource struct {
	content string
}

func (s inlineSource) Location() string {
	return s.content
}

func (s inlineSource) Kind() SourceKind {
	return SourceKindInline
}

// SourceFromString wraps pasted markup.
func SourceFromString(content string) Source {
	return inlineSource{content: content}
}
