// Package dashboard exposes a minimal, read-only JSON status surface
// over the broker's current state and the most recent trading cycle.
// It never places orders itself — the trading engine is the only
// writer.
package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eddiefleurent/trdr/internal/broker"
	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Config configures a Server.
type Config struct {
	Port      int
	AuthToken string // empty disables auth on the protected routes
}

// CycleSummary is a snapshot of the most recently completed trading
// cycle, recorded by the caller after each engine.Execute invocation.
type CycleSummary struct {
	RanAt    time.Time
	Duration time.Duration
	Err      error
}

// Server is the read-only status HTTP surface.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	broker    broker.Broker
	logger    *logrus.Logger
	port      int
	authToken string

	mu        sync.RWMutex
	lastCycle CycleSummary
}

// NewServer constructs a Server over broker, reporting through logger.
func NewServer(cfg Config, brokerCore broker.Broker, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		broker:    brokerCore,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}
	s.setupRoutes()
	return s
}

// RecordCycle stores the outcome of the most recent trading cycle for
// the status endpoint to report. Safe for concurrent use.
func (s *Server) RecordCycle(ranAt time.Time, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCycle = CycleSummary{RanAt: ranAt, Duration: duration, Err: err}
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLoggerMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(15 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/", func(r chi.Router) {
		if s.authToken != "" {
			r.Use(s.authMiddleware)
		}
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/positions", s.handleGetPositions)
	})
}

func (s *Server) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logEntry := s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		logEntry.WithFields(logrus.Fields{
			"status":   wrapped.Status(),
			"duration": time.Since(start),
		}).Info("http request")
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if !s.isValidToken(token) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isValidToken(token string) bool {
	if len(token) != len(s.authToken) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

// statusResponse is the JSON body served by /api/status.
type statusResponse struct {
	Cash            string             `json:"cash"`
	Equity          string             `json:"equity"`
	AccountExposure string             `json:"account_exposure"`
	OpenPositions   int                `json:"open_positions"`
	LastCycleRanAt  *time.Time         `json:"last_cycle_ran_at,omitempty"`
	LastCycleMillis int64              `json:"last_cycle_duration_ms"`
	LastCycleError  string             `json:"last_cycle_error,omitempty"`
	Positions       []positionResponse `json:"positions"`
}

type positionResponse struct {
	Symbol       string `json:"symbol"`
	Size         string `json:"size"`
	Side         string `json:"side"`
	AverageCost  string `json:"average_cost"`
	MarketValue  string `json:"market_value"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cash, err := s.broker.AvailableCash()
	if err != nil {
		s.logger.WithError(err).Error("failed to read available cash")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	equity, err := s.broker.Equity()
	if err != nil {
		s.logger.WithError(err).Error("failed to read equity")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	exposure, err := s.broker.AccountExposure()
	if err != nil {
		s.logger.WithError(err).Error("failed to read account exposure")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	positions, err := s.broker.Positions()
	if err != nil {
		s.logger.WithError(err).Error("failed to read positions")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	lastCycle := s.lastCycle
	s.mu.RUnlock()

	resp := statusResponse{
		Cash:            cash.String(),
		Equity:          equity.String(),
		AccountExposure: exposure.String(),
		OpenPositions:   len(positions),
		Positions:       convertPositions(positions),
	}
	if !lastCycle.RanAt.IsZero() {
		ranAt := lastCycle.RanAt
		resp.LastCycleRanAt = &ranAt
		resp.LastCycleMillis = lastCycle.Duration.Milliseconds()
		if lastCycle.Err != nil {
			resp.LastCycleError = lastCycle.Err.Error()
		}
	}

	s.writeJSON(w, resp)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.broker.Positions()
	if err != nil {
		s.logger.WithError(err).Error("failed to read positions")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, convertPositions(positions))
}

func convertPositions(positions map[string]models.Position) []positionResponse {
	out := make([]positionResponse, 0, len(positions))
	for _, pos := range positions {
		out = append(out, positionResponse{
			Symbol:      pos.Symbol,
			Size:        pos.Size().String(),
			Side:        string(pos.Side()),
			AverageCost: pos.AverageCost().String(),
			MarketValue: pos.MarketValue().String(),
		})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// Start runs the HTTP server, blocking until it is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Infof("starting dashboard server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
