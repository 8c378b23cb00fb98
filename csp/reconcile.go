package csp

import (
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/andreituicu/helix-html-pipeline/dom"
)

// KeepAsMetaAttr marks an authored CSP meta tag that must not be
// promoted into the response header. It is a one-shot authoring escape
// hatch: read and stripped during reconciliation, never shipped.
const KeepAsMetaAttr = "keep-as-meta"

// Apply reconciles the CSP declared by the first
// <meta http-equiv="content-security-policy"> element under root with
// the response's Content-Security-Policy header, injecting a nonce where
// either declaration asks for one.
//
// root may be a full document or an isolated head fragment; the
// reconciliation is identical either way and governs only elements
// already present in that subtree.
//
// When a meta policy exists without a header policy it is promoted: its
// (possibly rewritten) content becomes the header value and the meta
// element is removed, unless the element carries the keep-as-meta
// attribute, in which case only the attribute is stripped. An existing
// header suppresses promotion entirely.
//
// The only error is a failure of the secure random source; every other
// condition is a normal branch.
func Apply(headers http.Header, root *html.Node) error {
	meta := findMetaPolicy(root)
	headerValue := headers.Get(HeaderName)
	hasHeader := headerValue != ""
	if meta == nil && !hasHeader {
		return nil
	}

	var metaContent string
	if meta != nil {
		metaContent, _ = dom.Attr(meta, "content")
	}

	if strings.Contains(metaContent, "nonce") || strings.Contains(headerValue, "nonce") {
		nonce, err := NewNonce()
		if err != nil {
			return err
		}
		var need NonceRequirement
		if meta != nil {
			need = need.Or(Parse(metaContent).RequiresNonce())
			metaContent = Rewrite(metaContent, nonce)
			dom.SetAttr(meta, "content", metaContent)
		}
		if hasHeader {
			need = need.Or(Parse(headerValue).RequiresNonce())
			headers.Set(HeaderName, Rewrite(headerValue, nonce))
		}
		// Stamping runs before promotion so element lookups happen while
		// the tree is still intact.
		if need.Script {
			applyScriptNonce(root, nonce)
		}
		if need.Style {
			applyStyleNonce(root, nonce)
		}
	}

	if meta != nil && !hasHeader {
		if _, keep := dom.Attr(meta, KeepAsMetaAttr); keep {
			dom.RemoveAttr(meta, KeepAsMetaAttr)
		} else {
			content, _ := dom.Attr(meta, "content")
			headers.Set(HeaderName, content)
			dom.Detach(meta)
		}
	}
	return nil
}

// findMetaPolicy returns the first meta element declaring a CSP, in
// document order. Additional CSP meta tags are not disambiguated.
func findMetaPolicy(root *html.Node) *html.Node {
	return dom.FindFirst(root, atom.Meta, func(n *html.Node) bool {
		return dom.AttrEqualFold(n, "http-equiv", "content-security-policy")
	})
}

// applyScriptNonce stamps the nonce on every <script> element in the
// subtree.
func applyScriptNonce(root *html.Node, nonce string) {
	for _, n := range dom.FindAll(root, atom.Script, nil) {
		dom.SetAttr(n, "nonce", nonce)
	}
}

// applyStyleNonce stamps the nonce on every <style> element and every
// stylesheet <link> element in the subtree.
func applyStyleNonce(root *html.Node, nonce string) {
	for _, n := range dom.FindAll(root, atom.Style, nil) {
		dom.SetAttr(n, "nonce", nonce)
	}
	for _, n := range dom.FindAll(root, atom.Link, func(n *html.Node) bool {
		return dom.AttrEqualFold(n, "rel", "stylesheet")
	}) {
		dom.SetAttr(n, "nonce", nonce)
	}
}
