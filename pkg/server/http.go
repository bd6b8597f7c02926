package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
)

// maxBodyBytes bounds a single JSON-RPC request posted over http
const maxBodyBytes = 1 << 20

// Router exposes the same JSON-RPC surface as the stdio transport plus health and metrics
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/rpc", s.serveRPC)
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe serves Router on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string, allowedOrigins []string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP listener on", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, protocol.NewJsonRpcErrorResponse(protocol.ErrParse, "failed to read body", nil, nil))
		return
	}
	req, err := protocol.ParseJsonRpcRequest(body)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, protocol.NewJsonRpcErrorResponse(protocol.ErrParse, err.Error(), nil, nil))
		return
	}

	resp := s.Handle(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"tools":     len(s.GetTools()),
		"timestamp": time.Now().UTC(),
	})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to write response:", err)
	}
}
