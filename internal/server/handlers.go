package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"crayon-rails/internal/deck"
	"crayon-rails/internal/model"
	"crayon-rails/internal/repository"
	"crayon-rails/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// writeServiceError maps service failures to the wire. Missing referenced
// entities and session-less requests are the client's fault; integrity
// failures are ours and must not look user-correctable.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrWorldNotFound),
		errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrContractNotFound),
		errors.Is(err, service.ErrNotInGame),
		errors.Is(err, service.ErrEmptyName):
		writeErr(w, http.StatusBadRequest, "bad request")
	case errors.Is(err, repository.ErrDuplicatePlayer),
		errors.Is(err, deck.ErrNoCards):
		hlog.FromRequest(r).Error().Err(err).Msg("Data integrity failure")
		writeErr(w, http.StatusInternalServerError, "data integrity error")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Operation failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

// sessionToken extracts the session cookie value, if any.
func (s *Server) sessionToken(r *http.Request) string {
	c, err := r.Cookie(s.cfg.SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// currentPlayer resolves the session cookie to a player. A missing cookie,
// unknown token, or vanished player all resolve to nil.
func (s *Server) currentPlayer(r *http.Request) (*model.Player, error) {
	token := s.sessionToken(r)
	if token == "" {
		return nil, nil
	}
	player, err := s.svc.ResolvePlayer(r.Context(), token)
	if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// requirePlayer resolves the current player or fails the request with a
// client error. Acting without a session is a bad request, not a redirect.
func (s *Server) requirePlayer(w http.ResponseWriter, r *http.Request) (*model.Player, bool) {
	player, err := s.currentPlayer(r)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if player == nil {
		writeErr(w, http.StatusBadRequest, "not logged in")
		return nil, false
	}
	return player, true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	player, err := s.currentPlayer(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view, err := s.svc.State(r.Context(), player)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}

	// Logging in over an existing session retires the old token.
	if old := s.sessionToken(r); old != "" {
		if _, err := s.svc.Logout(r.Context(), old); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	token, view, err := s.svc.Login(r.Context(), in.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, view)
}

// POST /api/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Logout(r.Context(), s.sessionToken(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, view)
}

// POST /api/game/join
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	var in struct {
		Game *int64 `json:"game"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Game == nil {
		writeErr(w, http.StatusBadRequest, "game id is required")
		return
	}

	view, err := s.svc.JoinGame(r.Context(), player.ID, *in.Game)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/game/leave
func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	view, err := s.svc.LeaveGame(r.Context(), player.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/game/new
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	var in struct {
		World *int64 `json:"world"`
	}
	if err := decodeJSON(r, &in); err != nil || in.World == nil {
		writeErr(w, http.StatusBadRequest, "world id is required")
		return
	}

	view, err := s.svc.CreateGame(r.Context(), player.ID, *in.World)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/gain
func (s *Server) handleGain(w http.ResponseWriter, r *http.Request) {
	s.handleMoney(w, r, s.svc.GainMoney)
}

// POST /api/spend
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	s.handleMoney(w, r, s.svc.SpendMoney)
}

func (s *Server) handleMoney(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, playerID, amount int64) (*model.StateView, error)) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	var in struct {
		Amount *int64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Amount == nil {
		writeErr(w, http.StatusBadRequest, "amount is required")
		return
	}

	view, err := op(r.Context(), player.ID, *in.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/draw
func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	view, err := s.svc.Draw(r.Context(), player.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/discard
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	var in struct {
		Card *int64 `json:"card"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Card == nil {
		writeErr(w, http.StatusBadRequest, "card id is required")
		return
	}

	view, err := s.svc.Discard(r.Context(), player.ID, *in.Card)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/complete
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requirePlayer(w, r)
	if !ok {
		return
	}

	var in struct {
		Contract *int64 `json:"contract"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Contract == nil {
		writeErr(w, http.StatusBadRequest, "contract id is required")
		return
	}

	view, err := s.svc.Complete(r.Context(), player.ID, *in.Contract)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
