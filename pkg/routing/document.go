package routing

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// Document is the persisted routing configuration: field key to rule. It is
// sufficient, together with the form markup, to replay navigation.
type Document map[string]DocumentEntry

// DocumentEntry is the serialised form of Entry.
type DocumentEntry struct {
	Default model.Target            `json:"default" yaml:"default"`
	Answers map[string]model.Target `json:"answers" yaml:"answers"`
}

// Document exports the table. Every target is a position or Submit: an unset
// default is written as Submit and unset overrides, which never match, are
// left out. Answers are always present, possibly empty.
func (t *Table) Document() Document {
	doc := make(Document, len(t.entries))
	for key, entry := range t.entries {
		answers := make(map[string]model.Target, len(entry.Answers))
		for answer, target := range entry.Answers {
			if !target.IsSet() {
				continue
			}
			answers[answer] = target
		}
		doc[key] = DocumentEntry{Default: entry.Default.OrSubmit(), Answers: answers}
	}
	return doc
}

// Apply overlays a document onto the seeded table. Every key must already own
// an entry; on any failure the table is left untouched. Keys seeded but absent
// from the document keep their current rule.
func (t *Table) Apply(doc Document) error {
	staged := make(map[string]Entry, len(doc))
	for rawKey, docEntry := range doc {
		key := normaliseKey(rawKey)
		if _, ok := t.entries[key]; !ok {
			return fmt.Errorf("routing: apply document: %w", unknownField(key))
		}
		entry := Entry{Default: docEntry.Default, Answers: make(map[string]model.Target, len(docEntry.Answers))}
		for answer, target := range docEntry.Answers {
			entry.Answers[answer] = target
		}
		if t.eager {
			if err := CheckTarget(key, entry.Default, t.size); err != nil {
				return fmt.Errorf("routing: apply document: %w", err)
			}
			for _, answer := range sortedAnswers(entry.Answers) {
				if err := CheckTarget(key, entry.Answers[answer], t.size); err != nil {
					return fmt.Errorf("routing: apply document: %w", err)
				}
			}
		}
		staged[key] = entry
	}

	for key, entry := range staged {
		stored := entry
		t.entries[key] = &stored
	}
	return nil
}

// EncodeJSON renders the document as indented JSON.
func EncodeJSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(normaliseDocument(doc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("routing: encode json: %w", err)
	}
	return data, nil
}

// EncodeYAML renders the document as YAML.
func EncodeYAML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(normaliseDocument(doc)); err != nil {
		return nil, fmt.Errorf("routing: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("routing: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses JSON first and falls back to YAML. The source name is
// only used in error messages.
func DecodeDocument(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("routing: document %s is empty", source)
	}

	var doc Document
	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return normaliseDocument(doc), nil
	}

	doc = nil
	yamlErr := yaml.Unmarshal(data, &doc)
	if yamlErr == nil {
		return normaliseDocument(doc), nil
	}

	if errors.Is(jsonErr, model.ErrInvalidTargetValue) || errors.Is(yamlErr, model.ErrInvalidTargetValue) {
		return nil, fmt.Errorf("routing: parse %s: %w", source, model.ErrInvalidTargetValue)
	}
	return nil, fmt.Errorf("routing: parse %s: invalid JSON or YAML", source)
}

// LoadFile reads a JSON or YAML routing document from disk.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: read %s: %w", path, err)
	}
	return DecodeDocument(data, path)
}

// WriteFile stores the document, choosing YAML for .yaml/.yml paths and JSON
// otherwise.
func WriteFile(path string, doc Document) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = EncodeYAML(doc)
	default:
		data, err = EncodeJSON(doc)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("routing: write %s: %w", path, err)
	}
	return nil
}

func normaliseDocument(doc Document) Document {
	out := make(Document, len(doc))
	for key, entry := range doc {
		if entry.Answers == nil {
			entry.Answers = make(map[string]model.Target)
		}
		out[normaliseKey(key)] = entry
	}
	return out
}
