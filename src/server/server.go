package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"ouvidoria-analytics/src/repositories"
	"ouvidoria-analytics/src/services/analytics"
)

// Server representa o servidor HTTP da API de analytics
type Server struct {
	logger           *slog.Logger
	server           *http.Server
	mux              *http.ServeMux
	port             int
	analyticsService *analytics.AnalyticsService
	statsReader      repositories.CacheStatsReader
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	analyticsService *analytics.AnalyticsService,
	statsReader repositories.CacheStatsReader,
) *Server {
	server := &Server{
		mux:              http.NewServeMux(),
		port:             port,
		logger:           logger,
		analyticsService: analyticsService,
		statsReader:      statsReader,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Rotas de Leitura
	server.mux.HandleFunc("GET /v1/analytics/overview", server.GetOverview)
	server.mux.HandleFunc("GET /v1/analytics/status", server.GetStatusSummary)
	server.mux.HandleFunc("GET /v1/analytics/distinct/{field}", server.GetDistinctValues)

	// Rotas operacionais
	server.mux.HandleFunc("GET /v1/analytics/cache/stats", server.GetCacheStats)

	return server
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
