package formwizard_test

import (
	"context"
	"testing"

	formwizard "github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/pkg/markup"
)

const survey = `
<div class="infusion-field"><label>Role</label>
  <select name="role"><option>dev</option><option>ops</option></select>
</div>
<div class="infusion-field"><label>Language</label><input name="language"></div>
<div class="infusion-field"><label>Pager</label><input name="pager"></div>
<div class="infusion-submit"><button>Send</button></div>`

func TestLoadEditSaveReplay(t *testing.T) {
	s, form, err := formwizard.Load(context.Background(), markup.SourceFromString(survey), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ed := formwizard.NewEditor(s)
	if err := ed.SetOverride("role", "ops", "2"); err != nil {
		t.Fatalf("override: %v", err)
	}
	if err := ed.SelectDefault("language", "submit"); err != nil {
		t.Fatalf("select default: %v", err)
	}

	b, err := formwizard.Save("team", form, s)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	replayed, err := formwizard.Replay(b)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if err := replayed.SetAnswer("role", "ops"); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if _, err := replayed.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if current, _ := replayed.Current(); current.FieldKey != "pager" {
		t.Fatalf("expected ops to jump to pager, got %q", current.FieldKey)
	}

	dev, err := formwizard.Replay(b)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if dev.Answer("role") != "dev" {
		t.Fatalf("select default should seed the answer, got %q", dev.Answer("role"))
	}
	for !dev.Submitted() {
		if _, err := dev.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if current, ok := dev.Current(); ok {
		t.Fatalf("expected submission, still at %q", current.FieldKey)
	}
}

func TestTargetsFromRootPackage(t *testing.T) {
	if pos, ok := formwizard.Position(3).Position(); !ok || pos != 3 {
		t.Fatalf("unexpected position target")
	}
	if !formwizard.Submit().IsSubmit() {
		t.Fatalf("unexpected submit target")
	}
	if formwizard.EmbeddedTemplates() == nil {
		t.Fatalf("expected embedded templates")
	}
}
