package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/andreituicu/helix-html-pipeline/content"
	"github.com/andreituicu/helix-html-pipeline/csp"
	expect "github.com/andreituicu/helix-html-pipeline/testing"
)

func testRouter(t *testing.T, resources map[string]string) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := resources[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	fetcher := expect.Must(content.NewFetcher(content.Options{BaseURL: srv.URL}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.NoRoute(renderPage(fetcher))
	return router
}

func TestRenderPage(t *testing.T) {
	router := testRouter(t, map[string]string{
		"/hello.plain.html":    `<main><h1>Hello</h1></main>`,
		"/hello.metadata.json": `{"title":"Hello","csp":{"content":"script-src 'nonce'"}}`,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	router.ServeHTTP(w, req)

	expect.Equal(t, w.Code, http.StatusOK)
	expect.Equal(t, w.Header().Get("Content-Type"), "text/html; charset=utf-8")
	expect.StringsContain(t, w.Header().Get(csp.HeaderName), "script-src 'nonce-")
	expect.StringsContain(t, w.Body.String(), "<title>Hello</title>")
	expect.StringsContain(t, w.Body.String(), "<h1>Hello</h1>")
}

func TestRenderPageWithoutMetadata(t *testing.T) {
	router := testRouter(t, map[string]string{
		"/bare.plain.html": `<p>bare</p>`,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bare", nil)
	router.ServeHTTP(w, req)

	expect.Equal(t, w.Code, http.StatusOK)
	expect.StringsContain(t, w.Body.String(), "<p>bare</p>")
	expect.Empty(t, w.Header().Get(csp.HeaderName))
}

func TestRenderPageNotFound(t *testing.T) {
	router := testRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	router.ServeHTTP(w, req)
	expect.Equal(t, w.Code, http.StatusNotFound)
}

func TestRenderPageDirectoryIndex(t *testing.T) {
	router := testRouter(t, map[string]string{
		"/index.plain.html": `<p>home</p>`,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	expect.Equal(t, w.Code, http.StatusOK)
	expect.StringsContain(t, w.Body.String(), "<p>home</p>")
}

func TestRenderPageRejectsTraversal(t *testing.T) {
	router := testRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/a/../secret", nil)
	router.ServeHTTP(w, req)
	expect.Equal(t, w.Code, http.StatusBadRequest)
}

func TestRenderPageUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	fetcher := expect.Must(content.NewFetcher(content.Options{BaseURL: srv.URL}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.NoRoute(renderPage(fetcher))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	router.ServeHTTP(w, req)
	expect.Equal(t, w.Code, http.StatusBadGateway)
}
