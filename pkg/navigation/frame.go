package navigation

import "github.com/goliatone/go-formwizard/pkg/model"

// UnitKind tells questions apart from appended panels.
type UnitKind string

const (
	UnitQuestion UnitKind = "question"
	UnitPanel    UnitKind = "panel"
)

// Affordance is the label of the forward control.
type Affordance string

const (
	AffordanceNext   Affordance = "next"
	AffordanceSubmit Affordance = "submit"
)

// Unit is one display unit and its visibility bookkeeping.
type Unit struct {
	Kind     UnitKind
	Key      string
	Index    int
	Active   bool
	Required bool
}

// Frame is the visibility state published after every transition.
type Frame struct {
	// Position is the active display index, -1 once submitted or when no
	// question exists.
	Position    int
	Units       []Unit
	BackVisible bool
	Last        bool
	Affordance  Affordance
}

// Active returns the active unit, if any.
func (f Frame) Active() (Unit, bool) {
	if f.Position < 0 || f.Position >= len(f.Units) {
		return Unit{}, false
	}
	return f.Units[f.Position], true
}

// ActiveCount counts active units.
func (f Frame) ActiveCount() int {
	n := 0
	for _, unit := range f.Units {
		if unit.Active {
			n++
		}
	}
	return n
}

// RequiredCount counts required units.
func (f Frame) RequiredCount() int {
	n := 0
	for _, unit := range f.Units {
		if unit.Required {
			n++
		}
	}
	return n
}

func (f Frame) clone() Frame {
	f.Units = append([]Unit(nil), f.Units...)
	return f
}

// buildFrame computes the whole frame for position in one pass so callers can
// swap it in atomically. A negative position yields an all-inactive frame.
// Units are indexed by slice order, the same order the cursor walks.
func buildFrame(questions []model.Question, panels []model.Panel, position int) Frame {
	total := len(questions) + len(panels)
	frame := Frame{
		Position:   position,
		Units:      make([]Unit, 0, total),
		Affordance: AffordanceNext,
	}
	for i, q := range questions {
		active := i == position
		frame.Units = append(frame.Units, Unit{
			Kind:     UnitQuestion,
			Key:      q.FieldKey,
			Index:    i,
			Active:   active,
			Required: active,
		})
	}
	for i, panel := range panels {
		index := len(questions) + i
		frame.Units = append(frame.Units, Unit{
			Kind:   UnitPanel,
			Key:    panel.Name,
			Index:  index,
			Active: index == position,
		})
	}
	if position < 0 {
		frame.Position = -1
		return frame
	}
	frame.BackVisible = position != 0
	frame.Last = position == total-1
	if frame.Last {
		frame.Affordance = AffordanceSubmit
	}
	return frame
}
