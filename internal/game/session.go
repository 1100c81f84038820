package game

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrNotOwner = errors.New("game belongs to another player")

// Session is a single game handed to a host: one secret, one round, the
// board so far, and at most one attached WebSocket client.
type Session struct {
	id       string
	playerID string // "" for anonymous games
	created  time.Time

	mu      sync.Mutex
	round   *Round
	history []Attempt
	conn    *ClientConn

	onPersist func(SessionSnapshot) error
	// saved is false when the final snapshot did not reach storage.
	onFinish func(snap SessionSnapshot, saved bool)
}

func NewSession(id, playerID string, round *Round) *Session {
	return &Session{
		id:       id,
		playerID: playerID,
		created:  time.Now(),
		round:    round,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) PlayerID() string { return s.playerID }

// CanAccess reports whether playerID may play this game.
// Anonymous games are open to whoever holds the id.
func (s *Session) CanAccess(playerID string) bool {
	return s.playerID == "" || s.playerID == playerID
}

// SubmitGuess runs one turn. Hints, the new outcome and the attempt count are
// returned to the caller and pushed to the attached client.
func (s *Session) SubmitGuess(guess Guess) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.round.SubmitGuess(guess)
	if err != nil {
		return Result{}, err
	}

	s.history = append(s.history, Attempt{
		Number: res.AttemptsUsed,
		Guess:  slices.Clone(guess),
		Hints:  res.Hints,
		Marks:  Summarize(res.Hints),
	})

	s.sendLocked(Envelope{
		Type:    msgGuessResult,
		Payload: mustJSON(GuessResultPayload{Result: res, Marks: Summarize(res.Hints)}),
	})
	s.sendStateLocked()
	saveErr := s.persistLocked()

	if res.Outcome.Terminal() {
		secret, _ := s.round.Secret()
		s.sendLocked(Envelope{
			Type: msgGameFinished,
			Payload: mustJSON(GameFinishedPayload{
				Outcome:      res.Outcome,
				AttemptsUsed: res.AttemptsUsed,
				Secret:       secret,
			}),
		})
		if s.onFinish != nil {
			s.onFinish(s.snapshotLocked(), saveErr == nil)
		}
	}
	return res, nil
}

func (s *Session) State() StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Outcome()
}

// Attach makes cc the client receiving this game's events. A previously
// attached client is disconnected.
func (s *Session) Attach(playerID string, cc *ClientConn) error {
	if !s.CanAccess(playerID) {
		return ErrNotOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && s.conn != cc {
		s.conn.closeSocket()
	}
	s.conn = cc
	return nil
}

// Detach drops cc if it is still the attached client.
func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == cc {
		s.conn = nil
	}
}

func (s *Session) SendState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendStateLocked()
}

func (s *Session) SendError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(Envelope{
		Type:    msgError,
		Payload: mustJSON(ErrorPayload{Code: code, Message: message}),
	})
}

func (s *Session) send(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(env)
}

func (s *Session) stateLocked() StatePayload {
	st := StatePayload{
		GameID:       s.id,
		PegCount:     PegCount,
		MaxAttempts:  MaxAttempts,
		Attempt:      s.round.Attempt(),
		AttemptsUsed: s.round.AttemptsUsed(),
		Outcome:      s.round.Outcome(),
		History:      slices.Clone(s.history),
	}
	if st.History == nil {
		st.History = []Attempt{}
	}
	if secret, ok := s.round.Secret(); ok {
		st.Secret = secret
	}
	return st
}

func (s *Session) sendStateLocked() {
	s.sendLocked(Envelope{Type: msgState, Payload: mustJSON(s.stateLocked())})
}

func (s *Session) sendLocked(env Envelope) {
	if s.conn == nil {
		return
	}
	b, _ := json.Marshal(env)
	select {
	case s.conn.send <- b:
	default:
		// slow reader; the next state message supersedes this one
	}
}

func (s *Session) persistLocked() error {
	if s.onPersist == nil {
		return nil
	}
	return s.onPersist(s.snapshotLocked())
}

// Snapshot returns the persisted form of the game.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
