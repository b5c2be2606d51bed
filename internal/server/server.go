// Package server exposes a Client over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/discochess/hotpath"
)

// Method names under which the admin endpoints time themselves.
const (
	methodGetMetrics   = "getMetrics"
	methodResetMetrics = "resetMetrics"
)

// Server routes word and metrics requests to a Client.
type Server struct {
	client   *hotpath.Client
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer serves g on /metrics in the Prometheus text format.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a server for client.
func New(client *hotpath.Client, opts ...Option) *Server {
	s := &Server{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewHTTPServer wraps h in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Full paths on the root router: a subrouter answers a method
	// mismatch with 404 instead of 405.
	router.HandleFunc("/words/word-of-the-day", s.handleWordOfTheDay).Methods(http.MethodGet)
	router.HandleFunc("/words/word-exists", s.handleWordExists).Methods(http.MethodGet)
	router.HandleFunc("/words/metrics", s.handleMetrics).Methods(http.MethodGet)
	router.HandleFunc("/words/analysis", s.handleAnalysis).Methods(http.MethodGet)
	router.HandleFunc("/words/reset-metrics", s.handleResetMetrics).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/words/cache-stats", s.handleCacheStats).Methods(http.MethodGet)

	return router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleWordOfTheDay(w http.ResponseWriter, r *http.Request) {
	word, err := s.client.WordOfTheDay(r.Context())
	if err != nil {
		s.fail(w, r, "Error retrieving word of the day", err)
		return
	}
	writeText(w, http.StatusOK, word)
}

func (s *Server) handleWordExists(w http.ResponseWriter, r *http.Request) {
	word, ok := r.URL.Query()["word"]
	if !ok || len(word) == 0 {
		writeText(w, http.StatusBadRequest, "missing query parameter: word")
		return
	}

	exists, err := s.client.Exists(r.Context(), word[0])
	if err != nil {
		s.fail(w, r, "Error validating word", err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("%t", exists))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep := s.client.Snapshot()
	s.client.Registry().RecordMethodExecution(hotpath.EndpointMethod(methodGetMetrics), time.Since(start))
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, s.client.Analyze())
		return
	}
	writeText(w, http.StatusOK, s.client.GenerateReport())
}

func (s *Server) handleResetMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.client.Reset()
	s.client.Registry().RecordMethodExecution(hotpath.EndpointMethod(methodResetMetrics), time.Since(start))
	writeText(w, http.StatusOK, "Metrics reset successfully")
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	cs, ok := s.client.CacheStats()
	if !ok {
		writeText(w, http.StatusNotFound, "strategy "+s.client.Strategy().Name()+" keeps no cache")
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, hotpath.ErrDataUnavailable) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Error(msg,
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeText(w, status, msg+": "+err.Error())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
