// Package api exposes the bulletin service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/go-price-bulletin/bulletin"
	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 5 * time.Minute
	idleTimeout  = 120 * time.Second
)

// BulletinService is the subset of bulletin.Service the handlers use.
type BulletinService interface {
	Today() time.Time
	FetchDay(ctx context.Context, day time.Time) (*models.DayBulletin, error)
	FetchRange(ctx context.Context, from, to time.Time, handle bulletin.DayHandler) (*models.RangeResult, error)
	ParseDocument(data []byte, date, source string) (*models.DayBulletin, error)
}

// Server serves the bulletin API.
type Server struct {
	cfg      *config.Config
	service  BulletinService
	registry *prometheus.Registry
	engine   *gin.Engine
	http     *http.Server
}

// NewServer builds the router. registry may be nil, in which case /metrics
// is not mounted.
func NewServer(cfg *config.Config, service BulletinService, registry *prometheus.Registry) *Server {
	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(), Recovery(), cors.Default())
	engine.MaxMultipartMemory = int64(cfg.MaxBodySize)

	s := &Server{
		cfg:      cfg,
		service:  service,
		registry: registry,
		engine:   engine,
	}
	s.routes()

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	if s.cfg.MetricsEnabled && s.registry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/api/v1/boletin")
	v1.GET("", s.handleDay)
	v1.GET("/rango", s.handleRange)
	v1.POST("/parse", s.handleParse)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("http server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
