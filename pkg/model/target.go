package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SubmitKeyword is the serialised form of the Submit target.
const SubmitKeyword = "submit"

// TargetKind discriminates the Target variant.
type TargetKind uint8

const (
	// TargetUnset marks a missing branch. Resolution degrades it to Submit.
	TargetUnset TargetKind = iota
	// TargetPosition points at a registered question position.
	TargetPosition
	// TargetSubmit ends navigation and triggers form submission.
	TargetSubmit
)

// ErrInvalidTargetValue is returned when a serialised target is neither an
// integer position nor the submit keyword.
var ErrInvalidTargetValue = errors.New("model: invalid target value")

// Target is either Position(n) or Submit. The zero value is unset.
type Target struct {
	kind     TargetKind
	position int
}

// Position builds a target pointing at the supplied question position.
func Position(n int) Target {
	return Target{kind: TargetPosition, position: n}
}

// Submit builds the submit target.
func Submit() Target {
	return Target{kind: TargetSubmit}
}

// Kind reports the variant.
func (t Target) Kind() TargetKind {
	return t.kind
}

// IsSet reports whether the target carries a value.
func (t Target) IsSet() bool {
	return t.kind != TargetUnset
}

// IsSubmit reports whether the target is Submit.
func (t Target) IsSubmit() bool {
	return t.kind == TargetSubmit
}

// Position returns the target position and true when the target is a
// Position variant.
func (t Target) Position() (int, bool) {
	if t.kind != TargetPosition {
		return 0, false
	}
	return t.position, true
}

// OrSubmit returns the target itself when set and Submit otherwise.
func (t Target) OrSubmit() Target {
	if !t.IsSet() {
		return Submit()
	}
	return t
}

// String renders the target the way routing documents store it.
func (t Target) String() string {
	switch t.kind {
	case TargetPosition:
		return strconv.Itoa(t.position)
	case TargetSubmit:
		return SubmitKeyword
	default:
		return ""
	}
}

// ParseTarget converts the editor/document representation into a Target.
// Empty input yields an unset target.
func ParseTarget(raw string) (Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Target{}, nil
	}
	if strings.EqualFold(trimmed, SubmitKeyword) {
		return Submit(), nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTargetValue, raw)
	}
	return Position(n), nil
}

// MarshalJSON encodes positions as numbers, Submit as "submit" and unset as null.
func (t Target) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TargetPosition:
		return []byte(strconv.Itoa(t.position)), nil
	case TargetSubmit:
		return []byte(`"` + SubmitKeyword + `"`), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, numeric strings, "submit", and the empty
// forms (null, "", false) which decode to an unset target.
func (t *Target) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch string(raw) {
	case "null", `""`, "false":
		*t = Target{}
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		unquoted, err := strconv.Unquote(string(raw))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTargetValue, raw)
		}
		parsed, err := ParseTarget(unquoted)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTargetValue, raw)
	}
	*t = Position(n)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (t Target) MarshalYAML() (any, error) {
	switch t.kind {
	case TargetPosition:
		return t.position, nil
	case TargetSubmit:
		return SubmitKeyword, nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node == nil || node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar", ErrInvalidTargetValue)
	}
	switch node.Tag {
	case "!!null":
		*t = Target{}
		return nil
	case "!!bool":
		if node.Value == "false" {
			*t = Target{}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrInvalidTargetValue, node.Value)
	}
	parsed, err := ParseTarget(node.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
