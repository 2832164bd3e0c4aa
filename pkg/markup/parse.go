// Package markup turns a pasted form fragment into the inputs of a wizard
// session: the answerable fields in document order, the extra panels to append
// after them, and the prepared markup that ends up in the saved bundle.
//
// Preparation drops every div.infusion-submit block and every empty div other
// than panels, which count as display units even when blank. Each
// .infusion-field container contributes one field named after its first
// input, select, or textarea; containers without a named control still produce
// a field with an empty key so the registry can reject it. Elements marked
// .custom-div are lifted out of the markup and returned as panels.
package markup

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formwizard/pkg/model"
)

const (
	FieldClass  = "infusion-field"
	SubmitClass = "infusion-submit"
	PanelClass  = "custom-div"
)

// Form is the parsed fragment.
type Form struct {
	Fields []model.Field
	Panels []model.Panel
	// HTML is the prepared markup with submit blocks, empty divs, and panels
	// removed.
	HTML string
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Parse reads a markup fragment.
func Parse(r io.Reader) (Form, error) {
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(r, body)
	if err != nil {
		return Form{}, fmt.Errorf("markup: parse fragment: %w", err)
	}

	root := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, node := range nodes {
		root.AppendChild(node)
	}

	removeAll(collect(root, func(n *xhtml.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, SubmitClass)
	}))
	removeAll(collect(root, func(n *xhtml.Node) bool {
		return n.DataAtom == atom.Div && n.FirstChild == nil && !hasClass(n, PanelClass)
	}))

	var form Form
	for i, node := range collect(root, func(n *xhtml.Node) bool { return hasClass(n, PanelClass) }) {
		form.Panels = append(form.Panels, model.Panel{
			Name:   panelName(node, i),
			Markup: innerHTML(node),
		})
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}

	for _, container := range collect(root, func(n *xhtml.Node) bool { return hasClass(n, FieldClass) }) {
		form.Fields = append(form.Fields, fieldOf(container))
	}

	form.HTML = innerHTML(root)
	return form, nil
}

func fieldOf(container *xhtml.Node) model.Field {
	var field model.Field
	if label := first(container, func(n *xhtml.Node) bool { return n.DataAtom == atom.Label }); label != nil {
		field.Label = LabelText(innerHTML(label))
	}

	control := first(container, isControl)
	if control == nil {
		return field
	}
	field.Key = strings.TrimSpace(attr(control, "name"))

	switch control.DataAtom {
	case atom.Select:
		field.Value = selectValue(control)
	case atom.Textarea:
		field.Value = textContent(control)
	default:
		field.Value = inputValue(container, control)
	}
	return field
}

func inputValue(container, control *xhtml.Node) string {
	switch strings.ToLower(attr(control, "type")) {
	case "radio":
		name := attr(control, "name")
		checked := first(container, func(n *xhtml.Node) bool {
			return n.DataAtom == atom.Input && attr(n, "name") == name && hasAttr(n, "checked")
		})
		if checked == nil {
			return ""
		}
		return attr(checked, "value")
	case "checkbox":
		if !hasAttr(control, "checked") {
			return ""
		}
		if value, ok := attrOK(control, "value"); ok {
			return value
		}
		return "on"
	default:
		return attr(control, "value")
	}
}

func selectValue(sel *xhtml.Node) string {
	options := collect(sel, func(n *xhtml.Node) bool { return n.DataAtom == atom.Option })
	if len(options) == 0 {
		return ""
	}
	chosen := options[0]
	for _, opt := range options {
		if hasAttr(opt, "selected") {
			chosen = opt
			break
		}
	}
	if value, ok := attrOK(chosen, "value"); ok {
		return value
	}
	return strings.TrimSpace(textContent(chosen))
}

// LabelText reduces label markup to plain, whitespace-collapsed text.
func LabelText(markup string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	cleaned := html.UnescapeString(textPolicy.Sanitize(markup))
	return strings.Join(strings.Fields(cleaned), " ")
}

func panelName(node *xhtml.Node, index int) string {
	for _, key := range []string{"data-panel", "id", "data-name"} {
		if value := strings.TrimSpace(attr(node, key)); value != "" {
			return value
		}
	}
	return "panel-" + strconv.Itoa(index+1)
}

func isControl(n *xhtml.Node) bool {
	switch n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea:
		return true
	default:
		return false
	}
}

func collect(root *xhtml.Node, match func(*xhtml.Node) bool) []*xhtml.Node {
	var out []*xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xhtml.ElementNode && match(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

func first(root *xhtml.Node, match func(*xhtml.Node) bool) *xhtml.Node {
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xhtml.ElementNode && match(child) {
			return child
		}
		if found := first(child, match); found != nil {
			return found
		}
	}
	return nil
}

func removeAll(nodes []*xhtml.Node) {
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func hasClass(n *xhtml.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *xhtml.Node, key string) string {
	value, _ := attrOK(n, key)
	return value
}

func attrOK(n *xhtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *xhtml.Node, key string) bool {
	_, ok := attrOK(n, key)
	return ok
}

func textContent(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(node *xhtml.Node) {
		if node.Type == xhtml.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func innerHTML(n *xhtml.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		_ = xhtml.Render(&buf, child)
	}
	return buf.String()
}
