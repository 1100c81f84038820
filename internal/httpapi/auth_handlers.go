package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	recentGames    = 20
)

type Users interface {
	Create(ctx context.Context, u store.User) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, id string) (store.User, error)
}

type Stats interface {
	InitForUser(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (store.PlayerStats, error)
	Recent(ctx context.Context, userID string, limit int) ([]store.GameResult, error)
}

type Signer interface {
	SignWithName(userID, displayName string, ttl time.Duration) (string, error)
}

// AuthHandler serves account registration, login and the player profile.
type AuthHandler struct {
	Users    Users
	Stats    Stats
	Auth     Signer
	TokenTTL time.Duration
	Log      *slog.Logger
}

type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

func (c *Credentials) normalize(register bool) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	switch {
	case c.Email == "" || c.Password == "":
		return errors.New("email and password are required")
	case !register:
		return nil
	case c.DisplayName == "":
		return errors.New("displayName is required")
	case len(c.Password) < minPasswordLen:
		return errors.New("password must be at least 8 chars")
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

type StatsResponse struct {
	GamesPlayed  int `json:"gamesPlayed"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	BestAttempts int `json:"bestAttempts"`
}

type GameResultResponse struct {
	GameID     string    `json:"gameId"`
	Won        bool      `json:"won"`
	Attempts   int       `json:"attempts"`
	FinishedAt time.Time `json:"finishedAt"`
}

type MeResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	DisplayName string               `json:"displayName"`
	CreatedAt   time.Time            `json:"createdAt"`
	Stats       StatsResponse        `json:"stats"`
	RecentGames []GameResultResponse `json:"recentGames"`
}

// Register creates an account and returns a token so the client can start
// playing owned games straight away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r, true)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to hash password")
		return
	}

	u := store.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		DisplayName:  creds.DisplayName,
	}
	switch err := h.Users.Create(r.Context(), u); {
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", "email already exists")
		return
	case err != nil:
		h.log().Error("create user", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}

	// Stats.Get treats a missing row as zeroes, so this is best effort.
	if err := h.Stats.InitForUser(r.Context(), u.ID); err != nil {
		h.log().Warn("init player stats", "user_id", u.ID, "err", err)
	}

	h.issueToken(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r, false)
	if !ok {
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), creds.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.log().Error("load user", "err", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	h.issueToken(w, http.StatusOK, u)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context")
		return
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "user not found")
		return
	}

	st, err := h.Stats.Get(ctx, userID)
	if err != nil {
		h.log().Error("load stats", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	recent, err := h.Stats.Recent(ctx, userID, recentGames)
	if err != nil {
		h.log().Error("load recent games", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load games")
		return
	}

	resp := MeResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		Stats: StatsResponse{
			GamesPlayed:  st.GamesPlayed,
			Wins:         st.Wins,
			Losses:       st.Losses,
			BestAttempts: st.BestAttempts,
		},
		RecentGames: make([]GameResultResponse, 0, len(recent)),
	}
	for _, g := range recent {
		resp.RecentGames = append(resp.RecentGames, GameResultResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, status int, u store.User) {
	token, err := h.Auth.SignWithName(u.ID, u.DisplayName, h.TokenTTL)
	if err != nil {
		h.log().Error("sign token", "user_id", u.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	writeJSON(w, status, TokenResponse{AccessToken: token, UserID: u.ID})
}

func (h *AuthHandler) log() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

func decodeCredentials(w http.ResponseWriter, r *http.Request, register bool) (Credentials, bool) {
	var c Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return c, false
	}
	if err := c.normalize(register); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return c, false
	}
	return c, true
}
