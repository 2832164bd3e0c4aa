package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the filesystem used by SourceFromFS sources.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// Loader reads markup from a Source and parses it into a Form.
type Loader struct {
	fs fs.FS
}

// NewLoader constructs a loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load fetches the fragment and parses it.
func (l *Loader) Load(ctx context.Context, src Source) (Form, error) {
	if src == nil {
		return Form{}, errors.New("markup loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return Form{}, errors.New("markup loader: fs source without filesystem")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindInline:
		data = []byte(src.Location())
	default:
		err = errors.New("markup loader: unsupported source kind")
	}
	if err != nil {
		return Form{}, fmt.Errorf("markup loader: read %s: %w", src.Kind(), err)
	}

	return Parse(bytes.NewReader(data))
}
