package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/andreituicu/helix-html-pipeline/csp"
)

// Metadata describes the head of a rendered document. It is typically
// decoded from a sidecar JSON resource next to the content.
type Metadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Canonical   string  `json:"canonical"`
	Image       string  `json:"image"`
	Lang        string  `json:"lang"`
	JSONLD      string  `json:"jsonLd"`
	CSP         CSPMeta `json:"csp"`
}

// CSPMeta is an authored Content-Security-Policy for the document. When
// KeepAsMeta is set the policy stays in the markup instead of being
// promoted into the response header.
type CSPMeta struct {
	Content    string `json:"content"`
	KeepAsMeta bool   `json:"keepAsMeta"`
}

// renderHead appends the metadata tags to the head element: title,
// canonical link, description, social tags, sanitized JSON-LD and the
// authored CSP meta tag.
func renderHead(head *html.Node, meta Metadata) {
	if meta.Title != "" {
		title := element(atom.Title)
		title.AppendChild(text(meta.Title))
		head.AppendChild(title)
	}
	if meta.Canonical != "" {
		head.AppendChild(element(atom.Link, "rel", "canonical", "href", meta.Canonical))
	}
	if meta.Description != "" {
		head.AppendChild(element(atom.Meta, "name", "description", "content", meta.Description))
	}

	if meta.Title != "" {
		head.AppendChild(element(atom.Meta, "property", "og:title", "content", meta.Title))
	}
	if meta.Description != "" {
		head.AppendChild(element(atom.Meta, "property", "og:description", "content", meta.Description))
	}
	if meta.Canonical != "" {
		head.AppendChild(element(atom.Meta, "property", "og:url", "content", meta.Canonical))
	}
	if meta.Image != "" {
		head.AppendChild(element(atom.Meta, "property", "og:image", "content", meta.Image))
		head.AppendChild(element(atom.Meta, "name", "twitter:card", "content", "summary_large_image"))
		head.AppendChild(element(atom.Meta, "name", "twitter:image", "content", meta.Image))
	}

	if meta.JSONLD != "" {
		if sanitized, ok := sanitizeJSONLD(meta.JSONLD); ok {
			script := element(atom.Script, "type", "application/ld+json")
			script.AppendChild(text(sanitized))
			head.AppendChild(script)
		} else {
			log.Warn().Msg("dropping invalid JSON-LD")
		}
	}

	if meta.CSP.Content != "" {
		attrs := []string{"http-equiv", "content-security-policy", "content", meta.CSP.Content}
		if meta.CSP.KeepAsMeta {
			attrs = append(attrs, csp.KeepAsMetaAttr, "true")
		}
		head.AppendChild(element(atom.Meta, attrs...))
	}
}

// sanitizeJSONLD re-serializes authored JSON-LD so only well-formed JSON
// ever reaches the document. Invalid input is dropped, not shipped.
func sanitizeJSONLD(raw string) (string, bool) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return "", false
	}
	return buf.String(), true
}

// element builds a detached element node from alternating attribute
// key/value pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
