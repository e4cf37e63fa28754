package diag

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/pkg/log"
)

// Server exposes diagnostics over HTTP.
type Server struct {
	mu     *sync.Mutex
	ring   *ring.Log
	logger log.Logger

	srv *http.Server
	lis net.Listener
}

// New builds a diag server around an engine. lock serializes engine
// access; pass the same mutex the writer holds. gatherer serves /metrics
// and may be nil to disable it.
func New(l *ring.Log, lock *sync.Mutex, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		mu:     lock,
		ring:   l,
		logger: logger.With(log.Component("diag")),
	}
	r := mux.NewRouter()
	r.HandleFunc("/v1/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/dump", s.handleDump).Methods(http.MethodGet)
	r.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.srv = &http.Server{Handler: r}
	return s
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = lis
	s.logger.Info("diag server listening", log.Str("addr", lis.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(lis) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDump(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.Dump(w)
}

type statsResponse struct {
	Capacity      int  `json:"capacity"`
	EstimateCount int  `json:"estimateCount"`
	ExactCount    *int `json:"exactCount,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := statsResponse{Capacity: s.ring.Capacity()}
	est, err := s.ring.EstimateCount()
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	resp.EstimateCount = est

	// The exact walk reads the medium; make it opt-in.
	if r.URL.Query().Get("exact") == "true" {
		n, err := s.ring.ExactCount()
		if err != nil {
			s.logger.Warn("exact count failed", log.Err(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.ExactCount = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
