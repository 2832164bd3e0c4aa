package routing_test

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/routing"
)

func questions(keys ...string) []model.Question {
	out := make([]model.Question, len(keys))
	for i, key := range keys {
		out[i] = model.Question{Position: i, FieldKey: key}
	}
	return out
}

func seeded(keys ...string) *routing.Table {
	table := routing.NewTable()
	table.SeedDefaults(questions(keys...))
	return table
}

func TestSeedDefaultsBuildsLinearChain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		keys := make([]string, n)
		for i := range keys {
			keys[i] = fmt.Sprintf("q%d", i)
		}
		table := seeded(keys...)

		for i, key := range keys {
			entry, ok := table.Entry(key)
			if !ok {
				t.Fatalf("missing entry for %s", key)
			}
			if len(entry.Answers) != 0 {
				t.Fatalf("answers should start empty")
			}
			if i == n-1 {
				if !entry.Default.IsSubmit() {
					t.Fatalf("last question should default to submit, got %v", entry.Default)
				}
				continue
			}
			if entry.Default != model.Position(i+1) {
				t.Fatalf("question %d should default to %d, got %v", i, i+1, entry.Default)
			}
		}
	})
}

func TestResolvePrefersSetOverride(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		table := seeded("q0", "q1", "q2", "q3")
		answer := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "answer")
		override := model.Position(rapid.IntRange(0, 3).Draw(t, "override"))
		if rapid.Bool().Draw(t, "submitOverride") {
			override = model.Submit()
		}
		defaultTarget := model.Position(rapid.IntRange(0, 3).Draw(t, "default"))

		if err := table.SetDefault("q0", defaultTarget); err != nil {
			t.Fatalf("set default: %v", err)
		}
		if err := table.SetAnswerOverride("q0", answer, override); err != nil {
			t.Fatalf("set override: %v", err)
		}

		got, err := table.Resolve("q0", answer)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got != override {
			t.Fatalf("want override %v, got %v", override, got)
		}

		got, err = table.Resolve("q0", answer+"-other")
		if err != nil {
			t.Fatalf("resolve unmatched: %v", err)
		}
		if got != defaultTarget {
			t.Fatalf("want default %v, got %v", defaultTarget, got)
		}
	})
}

func TestResolveFallsBackToDefaultThenSubmit(t *testing.T) {
	table := seeded("q0", "q1", "q2")

	got, err := table.Resolve("q0", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != model.Position(1) {
		t.Fatalf("want default 1, got %v", got)
	}

	if err := table.SetDefault("q0", model.Target{}); err != nil {
		t.Fatalf("unset default: %v", err)
	}
	got, err = table.Resolve("q0", "anything")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.IsSubmit() {
		t.Fatalf("unset default should resolve to submit, got %v", got)
	}
}

func TestResolveIgnoresUnsetOverrideAndEmptyAnswer(t *testing.T) {
	table := seeded("q0", "q1", "q2")
	if err := table.SetAnswerOverride("q0", "maybe", model.Target{}); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if err := table.SetAnswerOverride("q0", "", model.Position(2)); err != nil {
		t.Fatalf("set empty-answer override: %v", err)
	}

	for _, answer := range []string{"maybe", ""} {
		got, err := table.Resolve("q0", answer)
		if err != nil {
			t.Fatalf("resolve %q: %v", answer, err)
		}
		if got != model.Position(1) {
			t.Fatalf("answer %q: want default 1, got %v", answer, got)
		}
	}
}

func TestUnknownField(t *testing.T) {
	table := seeded("q0")

	if _, err := table.Resolve("ghost", "x"); !errors.Is(err, routing.ErrUnknownField) {
		t.Fatalf("resolve: expected ErrUnknownField, got %v", err)
	}
	if err := table.SetDefault("ghost", model.Submit()); !errors.Is(err, routing.ErrUnknownField) {
		t.Fatalf("set default: expected ErrUnknownField, got %v", err)
	}
	if err := table.SetAnswerOverride("ghost", "x", model.Submit()); !errors.Is(err, routing.ErrUnknownField) {
		t.Fatalf("set override: expected ErrUnknownField, got %v", err)
	}

	var fieldErr *routing.FieldError
	_, err := table.Resolve("ghost", "x")
	if !errors.As(err, &fieldErr) || fieldErr.FieldKey != "ghost" {
		t.Fatalf("expected FieldError for ghost, got %v", err)
	}
}

func TestSetTargetsAreLazyUnlessEager(t *testing.T) {
	lazy := seeded("q0", "q1")
	if err := lazy.SetDefault("q0", model.Position(9)); err != nil {
		t.Fatalf("lazy table should accept out-of-range target: %v", err)
	}
	if err := lazy.Validate(); !errors.Is(err, routing.ErrInvalidTarget) {
		t.Fatalf("validate: expected ErrInvalidTarget, got %v", err)
	}

	eager := routing.NewTable(routing.WithEagerValidation())
	eager.SeedDefaults(questions("q0", "q1"))
	if err := eager.SetDefault("q0", model.Position(9)); !errors.Is(err, routing.ErrInvalidTarget) {
		t.Fatalf("eager default: expected ErrInvalidTarget, got %v", err)
	}
	if err := eager.SetAnswerOverride("q0", "x", model.Position(-1)); !errors.Is(err, routing.ErrInvalidTarget) {
		t.Fatalf("eager override: expected ErrInvalidTarget, got %v", err)
	}
	if entry, _ := eager.Entry("q0"); entry.Default != model.Position(1) {
		t.Fatalf("rejected edit must not change the entry, got %v", entry.Default)
	}
}

func TestSeedDefaultsResetsTable(t *testing.T) {
	table := seeded("q0", "q1")
	if err := table.SetAnswerOverride("q0", "yes", model.Submit()); err != nil {
		t.Fatalf("set override: %v", err)
	}
	table.SeedDefaults(questions("a", "b", "c"))

	if _, ok := table.Entry("q0"); ok {
		t.Fatalf("old entries must be discarded")
	}
	if table.Size() != 3 {
		t.Fatalf("expected size 3, got %d", table.Size())
	}
}

func TestEntryReturnsCopy(t *testing.T) {
	table := seeded("q0", "q1")
	entry, _ := table.Entry("q0")
	entry.Answers["leak"] = model.Submit()

	again, _ := table.Entry("q0")
	if _, ok := again.Answers["leak"]; ok {
		t.Fatalf("entry mutation leaked into the table")
	}
}
