package game

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrStaleSnapshot is returned by a store asked to replace a snapshot with an
// older state of the same game.
var ErrStaleSnapshot = errors.New("snapshot is older than the stored one")

// SessionSnapshot is the serializable state of a game.
type SessionSnapshot struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId,omitempty"`

	Secret  Secret  `json:"secret"`
	Attempt int     `json:"attempt"`
	Outcome Outcome `json:"outcome"`

	History []Attempt `json:"history"`

	CreatedMs int64 `json:"createdMs"`
}

// olderThan reports whether snap would move prev back in time: fewer attempts
// played, or a finished game reopened.
func (snap SessionSnapshot) olderThan(prev SessionSnapshot) bool {
	if len(snap.History) < len(prev.History) {
		return true
	}
	return prev.Outcome.Terminal() && !snap.Outcome.Terminal()
}

func (s *Session) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		GameID:    s.id,
		PlayerID:  s.playerID,
		Secret:    slices.Clone(s.round.secret),
		Attempt:   s.round.attempt,
		Outcome:   s.round.outcome,
		History:   slices.Clone(s.history),
		CreatedMs: s.created.UnixMilli(),
	}
}

func restoreSession(snap SessionSnapshot) (*Session, error) {
	round, err := restoreRound(snap.Secret, snap.Attempt, snap.Outcome)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snap.GameID, err)
	}
	if len(snap.History) != round.AttemptsUsed() {
		return nil, fmt.Errorf("restore %s: history has %d rows, round used %d attempts",
			snap.GameID, len(snap.History), round.AttemptsUsed())
	}

	s := NewSession(snap.GameID, snap.PlayerID, round)
	s.history = slices.Clone(snap.History)
	if snap.CreatedMs > 0 {
		s.created = time.UnixMilli(snap.CreatedMs)
	}
	return s, nil
}
