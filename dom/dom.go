// Package dom is a thin query/mutate layer over golang.org/x/net/html
// node trees. It provides only what the rendering pipeline needs:
// deterministic depth-first lookup, attribute mutation, node detachment
// and fragment parsing.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Walk visits root and every descendant in depth-first document order.
// Returning false from visit stops the walk.
func Walk(root *html.Node, visit func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// FindFirst returns the first element with the given tag, in document
// order, for which match returns true. A nil match accepts any element
// with the tag.
func FindFirst(root *html.Node, tag atom.Atom, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == tag && (match == nil || match(n)) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every element with the given tag, in document order,
// for which match returns true. A nil match accepts any element with
// the tag.
func FindAll(root *html.Node, tag atom.Atom, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == tag && (match == nil || match(n)) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Attr returns the value of the named attribute and whether it is set.
// Attribute keys are lowercased by the parser, so name must be given in
// lowercase.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrEqualFold reports whether the named attribute is set to value,
// compared case-insensitively.
func AttrEqualFold(n *html.Node, name, value string) bool {
	v, ok := Attr(n, name)
	return ok && strings.EqualFold(v, value)
}

// SetAttr sets the named attribute, replacing an existing value in
// place. Setting the same value again is a no-op change.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes the named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Detach removes n from its parent, fixing up sibling pointers. A node
// without a parent is left untouched.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// MoveChildren detaches every child of src and appends them to dst in
// order.
func MoveChildren(dst, src *html.Node) {
	for src.FirstChild != nil {
		c := src.FirstChild
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Head returns the <head> element of a parsed document, or nil.
func Head(doc *html.Node) *html.Node {
	return FindFirst(doc, atom.Head, nil)
}

// Body returns the <body> element of a parsed document, or nil.
func Body(doc *html.Node) *html.Node {
	return FindFirst(doc, atom.Body, nil)
}

// Render serializes n to w.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}
