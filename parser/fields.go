// Package parser extracts book records from list and detail page HTML.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector matches elements by tag name and a single attribute value.
// Class attributes match by class token, other attributes by equality.
type Selector struct {
	Tag   string
	Attr  string
	Value string
}

// CSS renders the selector for goquery.
func (s Selector) CSS() string {
	switch {
	case s.Attr == "":
		return s.Tag
	case s.Attr == "class":
		return s.Tag + "." + strings.Join(strings.Fields(s.Value), ".")
	default:
		return s.Tag + `[` + s.Attr + `="` + s.Value + `"]`
	}
}

// Find returns the first element matching sel under root.
func Find(root *goquery.Selection, sel Selector) (*goquery.Selection, bool) {
	if root == nil {
		return nil, false
	}
	match := root.Find(sel.CSS()).First()
	if match.Length() == 0 {
		return nil, false
	}
	return match, true
}

// Text returns the trimmed text of the first match.
func Text(root *goquery.Selection, sel Selector) (string, bool) {
	match, ok := Find(root, sel)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(match.Text()), true
}

// Attr returns the named attribute of the first match.
func Attr(root *goquery.Selection, sel Selector, name string) (string, bool) {
	match, ok := Find(root, sel)
	if !ok {
		return "", false
	}
	return match.Attr(name)
}

// All returns the trimmed text of every match in document order.
func All(root *goquery.Selection, sel Selector) []string {
	if root == nil {
		return nil
	}
	var out []string
	root.Find(sel.CSS()).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
