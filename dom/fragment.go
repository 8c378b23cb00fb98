package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses raw markup in a <head> insertion context and
// returns a detached container element holding the parsed nodes. The
// container is never serialized itself; it exists so the fragment can be
// queried and mutated as a subtree before its children are merged into a
// document.
func ParseFragment(raw string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Head.String(),
		DataAtom: atom.Head,
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, err
	}
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Head.String(),
		DataAtom: atom.Head,
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// ParseBodyFragment parses raw markup in a <body> insertion context and
// returns a detached container element holding the parsed nodes.
func ParseBodyFragment(raw string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, err
	}
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}
