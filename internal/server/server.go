// Package server exposes palette extraction over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/swatch/internal/extract"
)

// DefaultMaxUploadBytes bounds request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 20 << 20

// shutdownTimeout bounds the graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64
	Logger         hclog.Logger

	// RateLimit caps extraction requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64

	// Burst is the number of requests allowed above RateLimit at once.
	// Defaults to one second's worth of requests.
	Burst int
}

// Server serves the extraction API.
type Server struct {
	service   *extract.Service
	logger    hclog.Logger
	maxUpload int64
	engine    *gin.Engine
}

// New creates a Server backed by service.
func New(service *extract.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		service:   service,
		logger:    opts.Logger,
		maxUpload: opts.MaxUploadBytes,
		engine:    gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestID(), s.logRequests())
	s.routes(limiter(opts))
	return s
}

func limiter(opts Options) *rate.Limiter {
	if opts.RateLimit <= 0 {
		return nil
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = max(1, int(opts.RateLimit))
	}
	return rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
}

func (s *Server) routes(l *rate.Limiter) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := s.engine.Group("/v1")
	v1.GET("/version", s.handleVersion)

	extraction := v1.Group("")
	if l != nil {
		extraction.Use(rateLimit(l))
	}
	extraction.POST("/palette", s.handlePalette)
	extraction.POST("/color", s.handleColor)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
