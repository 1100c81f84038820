package game

import (
	"fmt"
	"slices"
)

// MaxAttempts is the number of guesses a player gets before losing.
const MaxAttempts = 12

// Outcome of a round.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
)

func (o Outcome) Terminal() bool { return o == Won || o == Lost }

// Result is what a submission returns to the host.
type Result struct {
	Hints        []Hint  `json:"hints"`
	Outcome      Outcome `json:"outcome"`
	AttemptsUsed int     `json:"attemptsUsed"`
}

// Round tracks attempt accounting and the outcome of a single game.
//
// While in progress the round is awaiting guess number Attempt(). Won and Lost
// are terminal. A Round is not safe for concurrent use.
type Round struct {
	secret  Secret
	attempt int
	outcome Outcome
}

// NewRound starts a round awaiting the first guess.
func NewRound(secret Secret) (*Round, error) {
	if len(secret) != PegCount {
		return nil, fmt.Errorf("%w: secret has %d pins, want %d", ErrLengthMismatch, len(secret), PegCount)
	}
	if err := validatePins(secret); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	return &Round{
		secret:  slices.Clone(secret),
		attempt: 1,
		outcome: InProgress,
	}, nil
}

// SubmitGuess evaluates guess and advances the round.
// A rejected guess leaves the round untouched.
func (r *Round) SubmitGuess(guess Guess) (Result, error) {
	if r.outcome.Terminal() {
		return Result{}, ErrGameAlreadyOver
	}

	hints, err := Evaluate(guess, r.secret)
	if err != nil {
		return Result{}, err
	}

	used := r.attempt
	switch {
	case allExact(hints):
		r.outcome = Won
	case r.attempt >= MaxAttempts:
		r.outcome = Lost
	default:
		r.attempt++
	}

	return Result{Hints: hints, Outcome: r.outcome, AttemptsUsed: used}, nil
}

// Attempt is the number of the guess being awaited, or of the final guess
// once the round is over.
func (r *Round) Attempt() int { return r.attempt }

func (r *Round) Outcome() Outcome { return r.outcome }

// AttemptsUsed counts evaluated guesses.
func (r *Round) AttemptsUsed() int {
	if r.outcome.Terminal() {
		return r.attempt
	}
	return r.attempt - 1
}

// Secret reveals the hidden sequence once the round is over.
func (r *Round) Secret() (Secret, bool) {
	if !r.outcome.Terminal() {
		return nil, false
	}
	return slices.Clone(r.secret), true
}

func restoreRound(secret Secret, attempt int, outcome Outcome) (*Round, error) {
	r, err := NewRound(secret)
	if err != nil {
		return nil, err
	}
	if attempt < 1 || attempt > MaxAttempts {
		return nil, fmt.Errorf("restore round: attempt %d out of range", attempt)
	}
	switch outcome {
	case InProgress, Won, Lost:
	default:
		return nil, fmt.Errorf("restore round: unknown outcome %q", outcome)
	}
	r.attempt = attempt
	r.outcome = outcome
	return r, nil
}
