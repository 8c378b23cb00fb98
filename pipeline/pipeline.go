// Package pipeline assembles HTML responses from structured content and
// metadata. A render builds the document, fills in the head, reconciles
// the Content-Security-Policy exactly once and serializes the result;
// the response headers are mutated in place alongside the tree.
package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/andreituicu/helix-html-pipeline/csp"
	"github.com/andreituicu/helix-html-pipeline/dom"
)

const documentSkeleton = `<!DOCTYPE html><html><head></head><body></body></html>`

// Render assembles a full document from metadata and a body fragment,
// reconciles the CSP against the whole document tree and writes the
// serialized result to w. headers is mutated in place; the caller ships
// it with the written body.
func Render(w io.Writer, headers http.Header, meta Metadata, bodyHTML string) error {
	doc, err := html.Parse(strings.NewReader(documentSkeleton))
	if err != nil {
		return fmt.Errorf("pipeline: document skeleton: %w", err)
	}
	if meta.Lang != "" {
		dom.SetAttr(dom.FindFirst(doc, atom.Html, nil), "lang", meta.Lang)
	}

	renderHead(dom.Head(doc), meta)

	body, err := dom.ParseBodyFragment(bodyHTML)
	if err != nil {
		return fmt.Errorf("pipeline: body fragment: %w", err)
	}
	dom.MoveChildren(dom.Body(doc), body)

	if err := csp.Apply(headers, doc); err != nil {
		return err
	}
	headers.Set("Content-Type", "text/html; charset=utf-8")

	log.Debug().Str("title", meta.Title).Msg("rendered document")
	return dom.Render(w, doc)
}

// RenderStatic takes a pre-authored full page and an externally supplied
// head fragment, reconciles the CSP against the isolated fragment before
// merging it into the document head, and writes the serialized result.
// The document-level reconciliation is not run again: one render
// performs exactly one reconciliation.
func RenderStatic(w io.Writer, headers http.Header, pageHTML, headHTML string) error {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return fmt.Errorf("pipeline: static page: %w", err)
	}

	frag, err := dom.ParseFragment(headHTML)
	if err != nil {
		return fmt.Errorf("pipeline: head fragment: %w", err)
	}
	if err := csp.Apply(headers, frag); err != nil {
		return err
	}
	dom.MoveChildren(dom.Head(doc), frag)
	headers.Set("Content-Type", "text/html; charset=utf-8")

	log.Debug().Msg("rendered static document")
	return dom.Render(w, doc)
}
