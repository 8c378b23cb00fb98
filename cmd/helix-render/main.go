// Command helix-render serves HTML documents rendered from a content
// source: body fragments plus sidecar metadata, with the
// Content-Security-Policy reconciled per render.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andreituicu/helix-html-pipeline/content"
	"github.com/andreituicu/helix-html-pipeline/env"
	"github.com/andreituicu/helix-html-pipeline/httputils"
	"github.com/andreituicu/helix-html-pipeline/pipeline"
	"github.com/andreituicu/helix-html-pipeline/server"
)

var (
	envContentURL    = env.GetEnvString("CONTENT_URL", "")
	envContentTTL    = env.GetEnvDuration("CONTENT_TTL", time.Minute)
	envFetchRetries  = env.GetEnvInt("FETCH_RETRIES", 3)
	envHTTPAddr      = env.GetEnvString("HTTP_ADDR", ":8080")
	envHTTPSAddr     = env.GetEnvString("HTTPS_ADDR", "")
	envProxyProtocol = env.GetEnvBool("PROXY_PROTOCOL", false)
)

func main() {
	if envContentURL == "" {
		log.Fatal().Msg("HELIX_CONTENT_URL is required")
	}
	fetcher, err := content.NewFetcher(content.Options{
		BaseURL: envContentURL,
		Retries: envFetchRetries,
		TTL:     envContentTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid content source")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.NoRoute(renderPage(fetcher))

	srv := server.New(server.Options{
		Name:                 "helix-render",
		HTTPAddr:             envHTTPAddr,
		HTTPSAddr:            envHTTPSAddr,
		Handler:              router,
		SupportProxyProtocol: envProxyProtocol,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv.Start(ctx)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// renderPage fetches the body fragment and sidecar metadata for the
// requested path and streams the rendered document.
func renderPage(fetcher *content.Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.Contains(path, "..") {
			c.String(http.StatusBadRequest, "bad path")
			return
		}
		if strings.HasSuffix(path, "/") {
			path += "index"
		}

		body, err := fetcher.Fetch(c.Request.Context(), path+".plain.html")
		if errors.Is(err, content.ErrNotFound) {
			c.String(http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			httputils.LogError(c.Request).Err(err).Msg("content fetch failed")
			c.String(http.StatusBadGateway, "content unavailable")
			return
		}

		var meta pipeline.Metadata
		if raw, err := fetcher.Fetch(c.Request.Context(), path+".metadata.json"); err == nil {
			if err := json.Unmarshal(raw, &meta); err != nil {
				httputils.LogWarn(c.Request).Err(err).Msg("ignoring malformed metadata")
			}
		} else if !errors.Is(err, content.ErrNotFound) {
			httputils.LogWarn(c.Request).Err(err).Msg("metadata fetch failed")
		}

		var buf bytes.Buffer
		headers := http.Header{}
		if err := pipeline.Render(&buf, headers, meta, string(body)); err != nil {
			httputils.LogError(c.Request).Err(err).Msg("render failed")
			c.String(http.StatusInternalServerError, "render failed")
			return
		}

		httputils.CopyHeaders(c.Writer.Header(), headers)
		c.Status(http.StatusOK)
		c.Writer.Write(buf.Bytes())
	}
}
