package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	gameIDLen     = 12
	maxIDAttempts = 5
)

var errNoFreeID = errors.New("no free game id")

// ResultRecorder receives the outcome of every finished game owned by a
// registered player.
type ResultRecorder interface {
	RecordResult(ctx context.Context, playerID, gameID string, won bool, attempts int) error
}

type ServiceOptions struct {
	Generator SecretGenerator // defaults to NewRandomGenerator()
	Results   ResultRecorder  // optional
	Log       *slog.Logger
	// IOTimeout bounds persistence and result writes done from session hooks.
	IOTimeout time.Duration
}

// SessionService owns the live games of this process:
//   - in-memory cache of sessions
//   - restore from persistent storage (Redis) after a restart
//   - reporting finished games to player stats
type SessionService struct {
	mu sync.Mutex
	in map[string]*Session

	gen     SecretGenerator
	persist SessionPersistence
	results ResultRecorder
	log     *slog.Logger
	timeout time.Duration
	newID   func() string
}

func NewSessionService(persist SessionPersistence, opts ServiceOptions) *SessionService {
	if opts.Generator == nil {
		opts.Generator = NewRandomGenerator()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = 5 * time.Second
	}
	return &SessionService{
		in:      make(map[string]*Session),
		gen:     opts.Generator,
		persist: persist,
		results: opts.Results,
		log:     opts.Log,
		timeout: opts.IOTimeout,
		newID:   func() string { return randID(gameIDLen) },
	}
}

// Start begins a new game for playerID ("" for anonymous play).
func (s *SessionService) Start(ctx context.Context, playerID string) (*Session, error) {
	secret, err := s.gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	round, err := NewRound(secret)
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	id, err := s.freshID(ctx)
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	sess := NewSession(id, playerID, round)
	s.hook(sess)

	if err := s.persist.Save(ctx, sess.id, sess.Snapshot()); err != nil {
		return nil, fmt.Errorf("save new game: %w", err)
	}

	s.mu.Lock()
	s.in[sess.id] = sess
	s.mu.Unlock()

	s.log.Info("game started", "game_id", sess.id, "player_id", playerID)
	return sess, nil
}

func (s *SessionService) GetOrLoad(ctx context.Context, gameID string) (*Session, bool, error) {
	s.mu.Lock()
	sess, ok := s.in[gameID]
	s.mu.Unlock()
	if ok {
		if sess.Outcome().Terminal() {
			s.flushFinished(ctx, sess)
		}
		return sess, true, nil
	}

	snap, found, err := s.persist.Load(ctx, gameID)
	if err != nil || !found {
		return nil, false, err
	}

	sess, err = restoreSession(snap)
	if err != nil {
		return nil, false, err
	}
	s.hook(sess)

	// finished games are served from storage and not cached
	if sess.round.Outcome().Terminal() {
		return sess, true, nil
	}

	s.mu.Lock()
	if cur, ok := s.in[gameID]; ok {
		sess = cur // lost a race with another loader
	} else {
		s.in[gameID] = sess
	}
	s.mu.Unlock()

	return sess, true, nil
}

// freshID picks a game id that is neither live nor in storage.
func (s *SessionService) freshID(ctx context.Context) (string, error) {
	for range maxIDAttempts {
		id := s.newID()

		s.mu.Lock()
		_, live := s.in[id]
		s.mu.Unlock()
		if live {
			continue
		}

		_, stored, err := s.persist.Load(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check game id: %w", err)
		}
		if !stored {
			return id, nil
		}
	}
	return "", errNoFreeID
}

func (s *SessionService) hook(sess *Session) {
	sess.onPersist = func(snap SessionSnapshot) error {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.save(ctx, snap)
	}
	sess.onFinish = s.finished
}

func (s *SessionService) save(ctx context.Context, snap SessionSnapshot) error {
	err := s.persist.Save(ctx, snap.GameID, snap)
	if err != nil {
		s.log.Error("save game snapshot", "game_id", snap.GameID, "outcome", snap.Outcome, "err", err)
	}
	return err
}

// flushFinished retries saving a finished game that is still only in memory.
// Once storage holds the final snapshot the game leaves the cache.
func (s *SessionService) flushFinished(ctx context.Context, sess *Session) {
	if s.save(ctx, sess.Snapshot()) != nil {
		return
	}
	s.mu.Lock()
	if s.in[sess.id] == sess {
		delete(s.in, sess.id)
	}
	s.mu.Unlock()
}

// finished runs once per game, when the final guess lands. A game whose final
// snapshot is not in storage stays cached, so a reload cannot reopen it.
func (s *SessionService) finished(snap SessionSnapshot, saved bool) {
	if !saved {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		saved = s.save(ctx, snap) == nil
		cancel()
	}

	if saved {
		s.mu.Lock()
		delete(s.in, snap.GameID)
		s.mu.Unlock()
	} else {
		s.log.Warn("finished game kept in memory until its snapshot is saved", "game_id", snap.GameID)
	}

	s.log.Info("game finished",
		"game_id", snap.GameID,
		"player_id", snap.PlayerID,
		"outcome", snap.Outcome,
		"attempts", snap.Attempt,
	)

	if s.results == nil || snap.PlayerID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.results.RecordResult(ctx, snap.PlayerID, snap.GameID, snap.Outcome == Won, snap.Attempt); err != nil {
		s.log.Error("record game result", "game_id", snap.GameID, "player_id", snap.PlayerID, "err", err)
	}
}

func randID(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}

func validGameID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
