package routing_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func TestDocumentExportShape(t *testing.T) {
	table := seeded("q0", "q1", "q2")
	if err := table.SetAnswerOverride("q0", "yes", model.Position(2)); err != nil {
		t.Fatalf("set override: %v", err)
	}

	data, err := routing.EncodeJSON(table.Document())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := `{
  "q0": {
    "default": 1,
    "answers": {
      "yes": 2
    }
  },
  "q1": {
    "default": 2,
    "answers": {}
  },
  "q2": {
    "default": "submit",
    "answers": {}
  }
}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("document json mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocumentJSONAndYAML(t *testing.T) {
	jsonDoc := `{"q0": {"default": "submit", "answers": {"yes": "2"}}}`
	yamlDoc := "q0:\n  default: submit\n  answers:\n    yes: 2\n"

	for name, payload := range map[string]string{"json": jsonDoc, "yaml": yamlDoc} {
		doc, err := routing.DecodeDocument([]byte(payload), name)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		entry := doc["q0"]
		if !entry.Default.IsSubmit() {
			t.Fatalf("%s: expected submit default, got %v", name, entry.Default)
		}
		if entry.Answers["yes"] != model.Position(2) {
			t.Fatalf("%s: expected yes -> 2, got %v", name, entry.Answers["yes"])
		}
	}

	if _, err := routing.DecodeDocument([]byte("   "), "empty"); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := routing.DecodeDocument([]byte("[1, 2"), "broken"); err == nil {
		t.Fatalf("expected error for broken document")
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	table := seeded("q0", "q1", "q2")
	doc := routing.Document{
		"q0":    {Default: model.Submit()},
		"ghost": {Default: model.Position(1)},
	}

	err := table.Apply(doc)
	if !errors.Is(err, routing.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if entry, _ := table.Entry("q0"); entry.Default != model.Position(1) {
		t.Fatalf("failed apply must not touch q0, got %v", entry.Default)
	}

	if err := table.Apply(routing.Document{"q0": {Default: model.Submit()}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if entry, _ := table.Entry("q0"); !entry.Default.IsSubmit() {
		t.Fatalf("expected q0 default submit, got %v", entry.Default)
	}
	if entry, _ := table.Entry("q1"); entry.Default != model.Position(2) {
		t.Fatalf("keys absent from the document keep their rule, got %v", entry.Default)
	}
}

func TestWriteAndLoadFile(t *testing.T) {
	table := seeded("q0", "q1")
	if err := table.SetAnswerOverride("q0", "skip", model.Submit()); err != nil {
		t.Fatalf("set override: %v", err)
	}
	dir := t.TempDir()

	for _, name := range []string{"routing.yaml", "routing.json"} {
		path := filepath.Join(dir, name)
		if err := routing.WriteFile(path, table.Document()); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		doc, err := routing.LoadFile(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if diff := cmp.Diff(table.Document(), doc, cmp.Comparer(func(a, b model.Target) bool { return a == b })); diff != "" {
			t.Fatalf("%s: document mismatch (-want +got):\n%s", name, diff)
		}
	}

	data, err := routing.EncodeYAML(table.Document())
	if err != nil {
		t.Fatalf("encode yaml: %v", err)
	}
	if !strings.Contains(string(data), "skip: submit") {
		t.Fatalf("unexpected yaml:\n%s", data)
	}
}

func TestEncodeYAMLGolden(t *testing.T) {
	table := seeded("q0", "q1")
	if err := table.SetAnswerOverride("q0", "more", model.Submit()); err != nil {
		t.Fatalf("set override: %v", err)
	}
	data, err := routing.EncodeYAML(table.Document())
	if err != nil {
		t.Fatalf("encode yaml: %v", err)
	}

	const golden = "testdata/document.golden.yaml"
	if testsupport.WriteMaybeGolden(t, golden, data) {
		return
	}
	if diff := cmp.Diff(testsupport.MustReadGoldenString(t, golden), string(data)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentExportsOnlyPositionsAndSubmit(t *testing.T) {
	table := seeded("q0", "q1", "q2")
	if err := table.SetDefault("q1", model.Target{}); err != nil {
		t.Fatalf("unset default: %v", err)
	}
	if err := table.SetAnswerOverride("q1", "maybe", model.Target{}); err != nil {
		t.Fatalf("unset override: %v", err)
	}

	want := routing.Document{
		"q0": {Default: model.Position(1), Answers: map[string]model.Target{}},
		"q1": {Default: model.Submit(), Answers: map[string]model.Target{}},
		"q2": {Default: model.Submit(), Answers: map[string]model.Target{}},
	}
	if diff := testsupport.CompareDocuments(want, table.Document()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	path := testsupport.WriteDocument(t, table.Document(), ".json")
	doc := testsupport.MustLoadDocument(t, path)
	if diff := testsupport.CompareDocuments(want, doc); diff != "" {
		t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(testsupport.MustReadGolden(t, path)), `"default": "submit"`) {
		t.Fatalf("unset default should be written as submit")
	}

	for _, answer := range []string{"", "maybe"} {
		before, _ := table.Resolve("q1", answer)
		fresh := seeded("q0", "q1", "q2")
		if err := fresh.Apply(doc); err != nil {
			t.Fatalf("apply: %v", err)
		}
		after, _ := fresh.Resolve("q1", answer)
		if before != after {
			t.Fatalf("answer %q: resolution changed across export, %v vs %v", answer, before, after)
		}
	}
}
