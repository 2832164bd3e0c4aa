package model

import "strconv"

// Field is the input pair handed over by the markup loader: the name of an
// answerable control and its current value, in document order.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Question is a registered answerable unit. Position is assigned by
// registration order and is the only ordering that matters for routing.
type Question struct {
	Position int    `json:"position" yaml:"position"`
	FieldKey string `json:"fieldKey" yaml:"fieldKey"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Title returns the operator-facing "Question N" heading (1-based).
func (q Question) Title() string {
	return "Question " + strconv.Itoa(q.Position+1)
}

// Panel is an extra display unit appended after all questions. Panels take
// part in visibility and last-step detection but are never routing targets.
type Panel struct {
	Name   string `json:"name" yaml:"name"`
	Markup string `json:"markup,omitempty" yaml:"markup,omitempty"`
}
