package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/usecase"
)

// AdminServer exposes health, metrics and a JSON stats endpoint on a
// side port. It is not meant to be public.
type AdminServer struct {
	srv   *http.Server
	stats usecase.StatsUseCase
	log   *zerolog.Logger
}

func NewAdminServer(addr string, stats usecase.StatsUseCase, logger *zerolog.Logger) *AdminServer {
	s := &AdminServer{stats: stats, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/stats", s.handleStats)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Start blocks until the server exits.
func (s *AdminServer) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("admin server listening")
	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Totals(r.Context())
	if err != nil {
		http.Error(w, "failed to collect stats", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Error().Err(err).Msg("encode stats response")
	}
}
