package dom_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/andreituicu/helix-html-pipeline/dom"
	expect "github.com/andreituicu/helix-html-pipeline/testing"
)

func parse(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	expect.NoError(t, err)
	return doc
}

func TestFindFirstDocumentOrder(t *testing.T) {
	doc := parse(t, `<html><head></head><body><p id="a"></p><div><p id="b"></p></div><p id="c"></p></body></html>`)
	first := dom.FindFirst(doc, atom.P, nil)
	expect.NotNil(t, first)
	id, _ := dom.Attr(first, "id")
	expect.Equal(t, id, "a")

	withID := dom.FindFirst(doc, atom.P, func(n *html.Node) bool {
		v, _ := dom.Attr(n, "id")
		return v == "b"
	})
	expect.NotNil(t, withID)

	expect.Nil(t, dom.FindFirst(doc, atom.Table, nil))
}

func TestFindAll(t *testing.T) {
	doc := parse(t, `<html><body><script></script><div><script></script></div></body></html>`)
	expect.Equal(t, len(dom.FindAll(doc, atom.Script, nil)), 2)
	expect.Equal(t, len(dom.FindAll(doc, atom.Style, nil)), 0)
}

func TestAttrMutation(t *testing.T) {
	doc := parse(t, `<html><body><p id="a" class="x"></p></body></html>`)
	p := dom.FindFirst(doc, atom.P, nil)

	v, ok := dom.Attr(p, "id")
	expect.True(t, ok)
	expect.Equal(t, v, "a")

	dom.SetAttr(p, "id", "b")
	v, _ = dom.Attr(p, "id")
	expect.Equal(t, v, "b")
	expect.Equal(t, len(p.Attr), 2)

	dom.SetAttr(p, "data-new", "1")
	expect.Equal(t, len(p.Attr), 3)

	dom.RemoveAttr(p, "class")
	_, ok = dom.Attr(p, "class")
	expect.False(t, ok)

	// removing an absent attribute is a no-op
	dom.RemoveAttr(p, "class")
	expect.Equal(t, len(p.Attr), 2)
}

func TestAttrEqualFold(t *testing.T) {
	doc := parse(t, `<html><body><link rel="StyleSheet"></body></html>`)
	link := dom.FindFirst(doc, atom.Link, nil)
	expect.True(t, dom.AttrEqualFold(link, "rel", "stylesheet"))
	expect.False(t, dom.AttrEqualFold(link, "rel", "icon"))
	expect.False(t, dom.AttrEqualFold(link, "href", ""))
}

func TestDetach(t *testing.T) {
	doc := parse(t, `<html><body><p></p><span></span></body></html>`)
	p := dom.FindFirst(doc, atom.P, nil)
	dom.Detach(p)
	expect.Nil(t, dom.FindFirst(doc, atom.P, nil))
	expect.Nil(t, p.Parent)
	// detached nodes tolerate a second Detach
	dom.Detach(p)
}

func TestParseFragment(t *testing.T) {
	frag, err := dom.ParseFragment(`<meta name="a" content="1"><script src="/x.js"></script>`)
	expect.NoError(t, err)
	expect.NotNil(t, dom.FindFirst(frag, atom.Meta, nil))
	expect.NotNil(t, dom.FindFirst(frag, atom.Script, nil))
}

func TestMoveChildren(t *testing.T) {
	doc := parse(t, `<html><head></head><body></body></html>`)
	frag, err := dom.ParseFragment(`<meta name="a"><meta name="b">`)
	expect.NoError(t, err)

	head := dom.Head(doc)
	dom.MoveChildren(head, frag)
	expect.Nil(t, frag.FirstChild)
	expect.Equal(t, len(dom.FindAll(doc, atom.Meta, nil)), 2)
}

func TestRenderRoundTrip(t *testing.T) {
	doc := parse(t, `<html><head><title>t</title></head><body><p>hi</p></body></html>`)
	var sb strings.Builder
	expect.NoError(t, dom.Render(&sb, doc))
	expect.StringsContain(t, sb.String(), "<title>t</title>")
	expect.StringsContain(t, sb.String(), "<p>hi</p>")
}
