// Package httputils carries small HTTP helpers shared by the render
// daemon's handlers.
package httputils

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func reqLogger(r *http.Request, level zerolog.Level) *zerolog.Event {
	return log.WithLevel(level). //nolint:zerologlint
					Str("remote", r.RemoteAddr).
					Str("host", r.Host).
					Str("uri", r.Method+" "+r.RequestURI)
}

func LogError(r *http.Request) *zerolog.Event { return reqLogger(r, zerolog.ErrorLevel) }
func LogWarn(r *http.Request) *zerolog.Event  { return reqLogger(r, zerolog.WarnLevel) }
func LogInfo(r *http.Request) *zerolog.Event  { return reqLogger(r, zerolog.InfoLevel) }
func LogDebug(r *http.Request) *zerolog.Event { return reqLogger(r, zerolog.DebugLevel) }

// CopyHeaders merges src into dst, replacing existing values key by key.
func CopyHeaders(dst http.Header, src http.Header) {
	for k, vs := range src {
		dst[k] = append([]string(nil), vs...)
	}
}
