package registry_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/registry"
)

func TestRegisterAssignsPositionsInOrder(t *testing.T) {
	reg := registry.New()
	got := reg.Register([]model.Field{
		{Key: "name", Label: "Name"},
		{Key: ""},
		{Key: "email"},
		{Key: "name"},
		{Key: "  plan  "},
	})

	want := []model.Question{
		{Position: 0, FieldKey: "name", Label: "Name"},
		{Position: 1, FieldKey: "email"},
		{Position: 2, FieldKey: "plan"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}
	if reg.Size() != 3 {
		t.Fatalf("expected size 3, got %d", reg.Size())
	}

	rejected := reg.Rejected()
	if len(rejected) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(rejected))
	}
	if !errors.Is(rejected[0], registry.ErrEmptyFieldKey) || rejected[0].Index != 1 {
		t.Fatalf("unexpected first rejection: %v", rejected[0])
	}
	if !errors.Is(rejected[1], registry.ErrDuplicateFieldKey) || rejected[1].Index != 3 {
		t.Fatalf("unexpected second rejection: %v", rejected[1])
	}

	if q, ok := reg.Lookup("email"); !ok || q.Position != 1 {
		t.Fatalf("lookup email: %v %v", q, ok)
	}
	if _, ok := reg.At(3); ok {
		t.Fatalf("position 3 should not exist")
	}
}

func TestRegisterRebuildsFromScratch(t *testing.T) {
	reg := registry.New()
	reg.Register([]model.Field{{Key: "a"}, {Key: ""}})
	reg.Register([]model.Field{{Key: "b"}})

	if reg.Size() != 1 {
		t.Fatalf("expected size 1 after rebuild, got %d", reg.Size())
	}
	if _, ok := reg.Lookup("a"); ok {
		t.Fatalf("stale key survived rebuild")
	}
	if len(reg.Rejected()) != 0 {
		t.Fatalf("stale rejections survived rebuild")
	}
}

func TestRegisterPositionsAreContiguous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOf(rapid.SampledFrom([]string{"", "a", "b", "c", "d", "e", "f"})).Draw(t, "keys")
		fields := make([]model.Field, len(keys))
		for i, key := range keys {
			fields[i] = model.Field{Key: key}
		}

		reg := registry.New()
		questions := reg.Register(fields)
		for i, q := range questions {
			if q.Position != i {
				t.Fatalf("position %d at index %d", q.Position, i)
			}
		}
		if len(questions)+len(reg.Rejected()) != len(fields) {
			t.Fatalf("every field must be registered or rejected")
		}
	})
}
