// Package server provides the HTTP transport for the game service: routing,
// the login session cookie, and JSON rendering of the state projection.
package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"crayon-rails/internal/config"
	"crayon-rails/internal/service"
	"crayon-rails/static"
)

// Server routes requests to the game service.
type Server struct {
	cfg *config.ServerConfig
	svc *service.Service
}

// New creates a Server instance.
func New(cfg *config.ServerConfig, svc *service.Service) *Server {
	return &Server{cfg: cfg, svc: svc}
}

// Handler builds the full HTTP handler with logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/game/join", s.handleJoinGame)
	mux.HandleFunc("POST /api/game/leave", s.handleLeaveGame)
	mux.HandleFunc("POST /api/game/new", s.handleNewGame)
	mux.HandleFunc("POST /api/gain", s.handleGain)
	mux.HandleFunc("POST /api/spend", s.handleSpend)
	mux.HandleFunc("POST /api/draw", s.handleDraw)
	mux.HandleFunc("POST /api/discard", s.handleDiscard)
	mux.HandleFunc("POST /api/complete", s.handleComplete)

	var h http.Handler = mux
	h = recoverer(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("Request handled")
	})(h)
	h = hlog.NewHandler(log.Logger)(h)
	return h
}

// handleIndex serves the static entry page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.FS.ReadFile("index.html")
	if err != nil {
		http.Error(w, "entry page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).
					Str("path", r.URL.Path).Msg("Handler panicked")
				writeErr(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
