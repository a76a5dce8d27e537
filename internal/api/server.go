// Package api serves the route weather form, result pages and JSON API.
package api

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/models"
)

// Comparer runs a route weather check.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*models.Result, error)
}

// ChartRenderer turns weather snapshots into PNG charts.
type ChartRenderer interface {
	Comparison(start, end models.Snapshot) ([]byte, error)
	Snapshot(title string, s models.Snapshot) ([]byte, error)
}

type Server struct {
	comparer Comparer
	charts   ChartRenderer
	logger   *slog.Logger
	port     string
	tmpl     *template.Template
}

func NewServer(comparer Comparer, charts ChartRenderer, logger *slog.Logger, port string) *Server {
	return &Server{
		comparer: comparer,
		charts:   charts,
		logger:   logger,
		port:     port,
		tmpl:     newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(recordMetrics)
	r.Use(s.recoverer)
	r.Use(middleware.CleanPath)

	r.Get("/", s.handleIndex)
	r.Post("/weather", s.handleWeather)
	r.Get("/dash", http.RedirectHandler("/dash/", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/dash/", s.handleDash)
	r.Post("/api/weather", s.handleAPIWeather)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return gzhttp.GzipHandler(r)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown server", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
