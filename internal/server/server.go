// Package server provides the HTTP REST API for applicant screening.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/intake"
	"github.com/martina/applicant-screener/internal/server/ratelimit"
)

// Store is the persistence surface the handlers need.
type Store interface {
	GetApplicantDetail(ctx context.Context, id uuid.UUID) (*db.ApplicantDetail, error)
	ListApplicants(ctx context.Context, filter db.ApplicantFilter) ([]db.ApplicantDetail, error)
	DeleteApplicant(ctx context.Context, id uuid.UUID) (bool, error)
	CountApplicants(ctx context.Context) (int, error)
	CountScreened(ctx context.Context) (int, error)
	CountRecommended(ctx context.Context) (int, error)
	AverageScore(ctx context.Context) (float64, error)

	CreateHistoricalHire(ctx context.Context, h *db.HistoricalHire) (*db.HistoricalHire, error)
	ListHistoricalHires(ctx context.Context, outcome db.HireOutcome, skip, limit int) ([]db.HistoricalHire, error)
	GetHistoricalStats(ctx context.Context) (*db.HistoricalStats, error)
	DeleteHistoricalHire(ctx context.Context, id uuid.UUID) (bool, error)

	CreateJobPosting(ctx context.Context, p *db.JobPosting) (*db.JobPosting, error)
	ListJobPostings(ctx context.Context, activeOnly bool) ([]db.JobPosting, error)
	DeleteJobPosting(ctx context.Context, id uuid.UUID) (bool, error)
}

// Intake accepts new applications.
type Intake interface {
	Process(ctx context.Context, meta intake.Metadata, uploads []intake.Upload) (*db.Applicant, error)
}

// Enqueuer schedules background screening.
type Enqueuer interface {
	Enqueue(applicantID uuid.UUID)
}

// Rankings answers population-level score queries.
type Rankings interface {
	TopPerformers(ctx context.Context, percentage, minScore float64) ([]db.ApplicantDetail, int, error)
	ScoreDistribution(ctx context.Context) (map[string]int, error)
	RecomputeRankings(ctx context.Context) error
}

// Files removes stored documents when an applicant is deleted.
type Files interface {
	DeleteApplicantFiles(applicantID uuid.UUID) error
}

// Config holds server settings.
type Config struct {
	Port              int
	MaxUploadBytes    int64
	TopPercentage     float64
	MinScoreThreshold float64
}

// Server is the HTTP API.
type Server struct {
	httpServer *http.Server
	store      Store
	intake     Intake
	queue      Enqueuer
	rankings   Rankings
	files      Files

	cfg         Config
	log         *zap.Logger
	rateLimiter *ratelimit.Limiter
}

// New wires the HTTP API around its dependencies.
func New(cfg Config, store Store, in Intake, queue Enqueuer, rankings Rankings, files Files, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		store:       store,
		intake:      in,
		queue:       queue,
		rankings:    rankings,
		files:       files,
		cfg:         cfg,
		log:         log,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /applicants/upload", s.handleUploadApplication)
	mux.HandleFunc("GET /applicants", s.handleListApplicants)
	mux.HandleFunc("GET /applicants/top-candidates", s.handleTopCandidates)
	mux.HandleFunc("GET /applicants/analytics/summary", s.handleAnalyticsSummary)
	mux.HandleFunc("GET /applicants/{id}", s.handleGetApplicant)
	mux.HandleFunc("DELETE /applicants/{id}", s.handleDeleteApplicant)
	mux.HandleFunc("POST /applicants/{id}/rescreen", s.handleRescreen)

	mux.HandleFunc("POST /historical-hires", s.handleCreateHistoricalHire)
	mux.HandleFunc("GET /historical-hires", s.handleListHistoricalHires)
	mux.HandleFunc("GET /historical-hires/stats", s.handleHistoricalStats)
	mux.HandleFunc("DELETE /historical-hires/{id}", s.handleDeleteHistoricalHire)

	mux.HandleFunc("POST /job-postings", s.handleCreateJobPosting)
	mux.HandleFunc("GET /job-postings", s.handleListJobPostings)
	mux.HandleFunc("DELETE /job-postings/{id}", s.handleDeleteJobPosting)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.log.Info("server stopped")
	return nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handlerError maps a typed error onto the wire.
func (s *Server) handlerError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID identifies the caller for rate limiting, by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":     "rate_limit_exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	})
}
