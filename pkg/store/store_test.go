package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/bundle"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "bundles.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := bundle.Bundle{
		FormID: "signup",
		HTML:   `<div class="formwizard"></div>`,
		Routing: routing.Document{
			"q1": {Default: model.Submit(), Answers: map[string]model.Target{"more": model.Position(1)}},
		},
	}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "signup")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b model.Target) bool { return a == b })); diff != "" {
		t.Fatalf("bundle mismatch (-want +got):\n%s", diff)
	}

	want.HTML = "<p>v2</p>"
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err = s.Load(ctx, "signup")
	if err != nil || got.HTML != "<p>v2</p>" {
		t.Fatalf("expected overwrite, got %q (%v)", got.HTML, err)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, bundle.Bundle{FormID: id, Routing: routing.Document{}}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := s.Load(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresFormID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(context.Background(), bundle.Bundle{}); !errors.Is(err, bundle.ErrFormIDRequired) {
		t.Fatalf("expected ErrFormIDRequired, got %v", err)
	}
}
