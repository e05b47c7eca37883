package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// rootBody is the fixed plaintext liveness body. It carries no
// application semantics.
const rootBody = "ClassPulse Backend Server\n"

// StatsSource reports registry sizes for the health endpoint.
type StatsSource interface {
	Stats() map[string]int
}

// Server is the small HTTP surface next to the websocket endpoint:
// a plaintext liveness probe at / and a JSON /health.
type Server struct {
	stats  StatsSource
	router *http.ServeMux
	log    zerolog.Logger
}

func NewServer(stats StatsSource, logger zerolog.Logger) *Server {
	s := &Server{
		stats:  stats,
		router: http.NewServeMux(),
		log:    logger.With().Str("component", "api").Logger(),
	}
	s.router.HandleFunc("/", s.handleRoot)
	s.router.HandleFunc("/health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(rootBody))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"stats":     s.stats.Stats(),
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}
