package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/quic-go/quic-go/http3"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"

	"github.com/andreituicu/helix-html-pipeline/httputils"
)

// advertiseHTTP3 adds Alt-Svc QUIC headers to responses served over TCP
// so clients can upgrade.
func advertiseHTTP3(handler http.Handler, h3 *http3.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor < 3 {
			err := h3.SetQUICHeaders(w.Header())
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled),
					errors.Is(err, syscall.EPIPE),
					errors.Is(err, syscall.ECONNRESET):
					return
				}
				httputils.LogError(r).Msg(err.Error())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}
		handler.ServeHTTP(w, r)
	})
}

func tcpProto(srv *http.Server) string {
	if srv.TLSConfig == nil {
		return "http"
	}
	return "https"
}

func setDebugLogger(srv *http.Server, logger *zerolog.Logger) {
	srv.ErrorLog = log.New(logger, "", 0)
}

func setH3DebugLogger(srv *http3.Server, logger *zerolog.Logger) {
	logOpts := slogzerolog.Option{Level: slog.LevelDebug, Logger: logger}
	srv.Logger = slog.New(logOpts.NewZerologHandler())
}

func convertError(err error) error {
	switch {
	case err == nil, errors.Is(err, http.ErrServerClosed), errors.Is(err, context.Canceled), errors.Is(err, net.ErrClosed):
		return nil
	default:
		return err
	}
}
