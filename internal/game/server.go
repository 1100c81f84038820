package game

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"example.com/mastermind/internal/auth"
	"github.com/go-chi/chi/v5"
)

// TokenVerifier checks player access tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

var errBadToken = errors.New("invalid token")

// maxRequestBytes caps a REST body or a WebSocket message. A guess is a few
// dozen bytes.
const maxRequestBytes = 4 << 10

// Server exposes games over HTTP and WebSocket. Tokens are optional:
// anonymous players get unowned games.
type Server struct {
	games    *SessionService
	verifier TokenVerifier
	log      *slog.Logger
}

func NewServer(games *SessionService, verifier TokenVerifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		games:    games,
		verifier: verifier,
		log:      log,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/api/rules", s.handleRules)
	r.Post("/api/games", s.handleCreateGame)
	r.Get("/api/games/{gameID}", s.handleGetGame)
	r.Post("/api/games/{gameID}/guesses", s.handleSubmitGuess)
	r.Get("/ws/{gameID}", s.handleWS)
}

type CreateGameResponse struct {
	GameID string       `json:"gameId"`
	State  StatePayload `json:"state"`
}

type GuessResponse struct {
	Result
	Marks Marks        `json:"marks"`
	State StatePayload `json:"state"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RulesPayload{
		PegCount:    PegCount,
		MaxAttempts: MaxAttempts,
		Colors:      AllColors(),
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	sess, err := s.games.Start(r.Context(), playerID)
	if err != nil {
		s.log.Error("start game", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to start game")
		return
	}

	writeJSON(w, http.StatusCreated, CreateGameResponse{
		GameID: sess.ID(),
		State:  sess.State(),
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req SubmitGuessPayload
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	guess, err := ParseGuess(req.Guess)
	if err != nil {
		writeGameError(w, err)
		return
	}

	res, err := sess.SubmitGuess(guess)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GuessResponse{
		Result: res,
		Marks:  Summarize(res.Hints),
		State:  sess.State(),
	})
}

// lookup resolves the game in the URL and checks the caller may play it.
// It writes the error response itself.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	gameID := chi.URLParam(r, "gameID")
	if !validGameID(gameID) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid game id")
		return nil, false
	}

	playerID, err := s.identify(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return nil, false
	}

	sess, found, err := s.games.GetOrLoad(r.Context(), gameID)
	if err != nil {
		s.log.Error("load game", "game_id", gameID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "storage error")
		return nil, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "game not found")
		return nil, false
	}
	if !sess.CanAccess(playerID) {
		writeError(w, http.StatusForbidden, "forbidden", ErrNotOwner.Error())
		return nil, false
	}
	return sess, true
}

// identify returns the caller's player id, or "" when no token was sent.
func (s *Server) identify(r *http.Request) (string, error) {
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		return c.UserID, nil
	}

	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else {
		// browsers cannot set headers on a WebSocket handshake
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", nil
	}
	if s.verifier == nil {
		return "", errBadToken
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return "", errBadToken
	}
	return claims.UserID, nil
}

func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, ErrGameAlreadyOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, ErrInvalidColor), errors.Is(err, ErrLengthMismatch):
		return http.StatusBadRequest, "bad_guess"
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal"
}

func writeGameError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorPayload{Code: errCode, Message: msg})
}
