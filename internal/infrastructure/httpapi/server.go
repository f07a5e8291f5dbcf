// Package httpapi serves a derived family graph over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// ErrNoGraph is returned by requests served before any graph was published.
var ErrNoGraph = errors.New("no graph loaded")

// Options configures the server.
type Options struct {
	Title string
}

// Server serves the currently published graph. Reloads build a new graph
// off to the side and swap it in; a served graph is never modified.
type Server struct {
	loader *handlers.GraphHandler
	graph  atomic.Pointer[handlers.Graph]
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
}

// NewServer creates a server. Call Reload or Publish before serving.
func NewServer(loader *handlers.GraphHandler, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		loader: loader,
		opts:   opts,
		logger: logger.Named("http"),
	}
	s.engine = s.routes()
	return s
}

// Publish makes g the served graph.
func (s *Server) Publish(g *handlers.Graph) {
	s.graph.Store(g)
	g.RecordMetrics()
}

// Current returns the served graph or nil.
func (s *Server) Current() *handlers.Graph {
	return s.graph.Load()
}

// Reload loads and derives the dataset again. On failure the previously
// published graph stays in service.
func (s *Server) Reload(ctx context.Context) error {
	g, err := s.loader.Load(ctx)
	if err != nil {
		metrics.Reloads.WithLabelValues("failure").Inc()
		s.logger.Error("reload failed, keeping current graph", zap.Error(err))
		return err
	}
	s.Publish(g)
	metrics.Reloads.WithLabelValues("success").Inc()
	return nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	r.GET("/", s.handlePage)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", s.requireGraph)
	api.GET("/graph", s.handleGraph)
	api.GET("/stats", s.handleStats)
	api.GET("/derived", s.handleDerived)
	api.GET("/people", s.handleSearch)
	api.GET("/people/:id", s.handleDetail)

	return r
}

// requestLogger logs each request at debug level, errors at warn.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	}
}
