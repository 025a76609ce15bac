package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/schema"
)

// Handler runs one orchestration end to end.
type Handler interface {
	Handle(ctx context.Context, query, document string) schema.ServiceResponseEnvelope
}

// Server exposes the orchestrator over HTTP.
type Server struct {
	handler Handler
	httpSrv *http.Server
}

type orchestrateRequest struct {
	Query    string `json:"query"`
	Document string `json:"document,omitempty"`
}

// New builds the HTTP server.
func New(addr string, h Handler) *Server {
	s := &Server{handler: h}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orchestrate", s.handleOrchestrate)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server: listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	log := logger.With("request_id", reqID)

	var req orchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("server: malformed request body: %v", err)
		writeJSON(w, http.StatusBadRequest, schema.ServiceResponseEnvelope{
			OK:           false,
			ErrorMessage: "request body must be valid JSON",
			StatusCode:   http.StatusBadRequest,
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		log.Warnf("server: request missing query field")
		writeJSON(w, http.StatusBadRequest, schema.ServiceResponseEnvelope{
			OK:           false,
			ErrorMessage: "query is required",
			StatusCode:   http.StatusBadRequest,
		})
		return
	}

	env := s.handler.Handle(r.Context(), req.Query, req.Document)
	log.Infof("server: orchestration finished ok=%v", env.OK)
	writeJSON(w, http.StatusOK, env)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("server: write response failed: %v", err)
	}
}
