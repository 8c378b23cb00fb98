// Package server runs the render daemon's listeners: plain HTTP, TLS,
// and optionally HTTP/3, with PROXY protocol support for deployments
// behind a TCP load balancer.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pires/go-proxyproto"
	h2proxy "github.com/pires/go-proxyproto/helper/http2"
	"github.com/quic-go/quic-go/http3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andreituicu/helix-html-pipeline/env"
)

// CertProvider supplies the TLS certificate for the HTTPS and HTTP/3
// listeners.
type CertProvider interface {
	GetCert(_ *tls.ClientHelloInfo) (*tls.Certificate, error)
}

type Options struct {
	Name         string
	HTTPAddr     string
	HTTPSAddr    string
	CertProvider CertProvider
	Handler      http.Handler

	SupportProxyProtocol bool
}

type Server struct {
	Name string

	http      *http.Server
	https     *http.Server
	h3        *http3.Server
	closers   []func(ctx context.Context) error
	wg        sync.WaitGroup
	startTime time.Time
	opts      Options
	bound     map[string]string

	l zerolog.Logger
}

var (
	envServerDebug  = env.GetEnvBool("SERVER_DEBUG", false) || env.GetEnvBool("DEBUG", false)
	envHTTP3Enabled = env.GetEnvBool("HTTP3_ENABLED", false)
)

func New(opts Options) *Server {
	s := &Server{
		Name:  opts.Name,
		opts:  opts,
		bound: make(map[string]string),
		l:     log.With().Str("server", opts.Name).Logger(),
	}

	if opts.HTTPAddr != "" {
		s.http = &http.Server{
			Addr:    opts.HTTPAddr,
			Handler: opts.Handler,
		}
	}

	certAvailable := false
	if opts.CertProvider != nil {
		_, err := opts.CertProvider.GetCert(nil)
		certAvailable = err == nil
	}
	if certAvailable && opts.HTTPSAddr != "" {
		s.https = &http.Server{
			Addr:    opts.HTTPSAddr,
			Handler: opts.Handler,
			TLSConfig: &tls.Config{
				GetCertificate: opts.CertProvider.GetCert,
				MinVersion:     tls.VersionTLS12,
			},
		}
	}
	return s
}

// Start brings up every configured listener. It is non-blocking; use
// Shutdown to stop. With no listeners configured it does nothing.
func (s *Server) Start(ctx context.Context) {
	s.startTime = time.Now()

	if s.https != nil && envHTTP3Enabled {
		if s.opts.SupportProxyProtocol {
			// TODO: support proxy protocol for HTTP/3
			s.l.Warn().Msg("HTTP/3 is enabled, but proxy protocol is not supported for HTTP/3")
		} else {
			s.https.TLSConfig.NextProtos = []string{http3.NextProtoH3, "h2", "http/1.1"}
			s.h3 = &http3.Server{
				Addr:      s.https.Addr,
				Handler:   s.https.Handler,
				TLSConfig: http3.ConfigureTLSConfig(s.https.TLSConfig),
			}
			s.startH3(ctx)
			if s.http != nil {
				s.http.Handler = advertiseHTTP3(s.http.Handler, s.h3)
			}
			s.https.Handler = advertiseHTTP3(s.https.Handler, s.h3)
		}
	}

	s.startTCP(ctx, s.http)
	s.startTCP(ctx, s.https)
}

func (s *Server) startTCP(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	proto := tcpProto(srv)

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		s.l.Fatal().Err(err).Str("proto", proto).Msg("failed to listen on port")
		return
	}
	if s.opts.SupportProxyProtocol {
		l = &proxyproto.Listener{Listener: l}
	}
	if srv.TLSConfig != nil {
		l = tls.NewListener(l, srv.TLSConfig)
	}
	srv.BaseContext = func(net.Listener) context.Context { return ctx }
	if envServerDebug {
		setDebugLogger(srv, &s.l)
	}

	serve := srv.Serve
	if s.opts.SupportProxyProtocol {
		serve = h2proxy.NewServer(srv, nil).Serve
	}
	s.closers = append(s.closers, func(ctx context.Context) error {
		return convertError(srv.Shutdown(ctx))
	})
	s.bound[proto] = l.Addr().String()
	s.logStarted(proto, l.Addr().String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := convertError(serve(l)); err != nil {
			s.l.Fatal().Err(err).Msg("failed to serve " + proto + " server")
		}
	}()
}

func (s *Server) startH3(ctx context.Context) {
	var lc net.ListenConfig
	l, err := lc.ListenPacket(ctx, "udp", s.h3.Addr)
	if err != nil {
		s.l.Fatal().Err(err).Str("proto", "h3").Msg("failed to listen on port")
		return
	}
	if envServerDebug {
		setH3DebugLogger(s.h3, &s.l)
	}
	h3 := s.h3
	s.closers = append(s.closers, func(ctx context.Context) error {
		return convertError(h3.Shutdown(ctx))
	})
	s.bound["h3"] = l.LocalAddr().String()
	s.logStarted("h3", l.LocalAddr().String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := convertError(h3.Serve(l)); err != nil {
			s.l.Fatal().Err(err).Msg("failed to serve h3 server")
		}
	}()
}

// Shutdown stops every listener gracefully and waits for the serve
// goroutines to drain.
func (s *Server) Shutdown(ctx context.Context) {
	for _, closeFn := range s.closers {
		if err := closeFn(ctx); err != nil {
			s.l.Error().Err(err).Msg("failed to shutdown server")
		}
	}
	s.wg.Wait()
	s.l.Info().Msg("server stopped")
}

func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// BoundAddr returns the address a started listener actually bound,
// keyed by protocol ("http", "https", "h3").
func (s *Server) BoundAddr(proto string) string {
	return s.bound[proto]
}

func (s *Server) logStarted(proto, addr string) {
	s.l.Info().Str("proto", proto).Str("addr", addr).Msg("server started")
}
