package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zeusync/hazards/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the event feed on /events plus /healthz and /stats.
type HTTPServer struct {
	server *http.Server
	feed   *Feed
	stats  func() any
	log    log.Log
}

// NewHTTPServer builds the server. stats, when set, must be safe to call from
// the HTTP goroutines.
func NewHTTPServer(addr string, feed *Feed, stats func() any, logger log.Log) (*HTTPServer, error) {
	if addr == "" || feed == nil {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &HTTPServer{feed: feed, stats: stats, log: logger}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// ListenAndServe blocks until ctx is done, then shuts the server down and
// closes the feed.
func (s *HTTPServer) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("event feed listening", log.String("addr", s.server.Addr))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.feed.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.feed.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/events":
		s.feed.ServeHTTP(w, r)
	case "/healthz":
		writeJSON(w, map[string]any{"status": "healthy", "clients": s.feed.Clients()})
	case "/stats":
		body := map[string]any{"feed": s.feed.Metrics()}
		if s.stats != nil {
			body["simulation"] = s.stats()
		}
		writeJSON(w, body)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
