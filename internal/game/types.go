package game

import "encoding/json"

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// inbound
const (
	msgSubmitGuess = "submit_guess"
	msgNewGame     = "new_game"
)

// outbound
const (
	msgState        = "state"
	msgGuessResult  = "guess_result"
	msgGameStarted  = "game_started"
	msgGameFinished = "game_finished"
	msgError        = "error"
)

type SubmitGuessPayload struct {
	Guess []string `json:"guess"`
}

// Attempt is one row of the board.
type Attempt struct {
	Number int    `json:"number"`
	Guess  Guess  `json:"guess"`
	Hints  []Hint `json:"hints"`
	Marks  Marks  `json:"marks"`
}

type GuessResultPayload struct {
	Result
	Marks Marks `json:"marks"`
}

type GameStartedPayload struct {
	GameID string `json:"gameId"`
}

type GameFinishedPayload struct {
	Outcome      Outcome `json:"outcome"`
	AttemptsUsed int     `json:"attemptsUsed"`
	Secret       Secret  `json:"secret"`
}

type StatePayload struct {
	GameID       string    `json:"gameId"`
	PegCount     int       `json:"pegCount"`
	MaxAttempts  int       `json:"maxAttempts"`
	Attempt      int       `json:"attempt"`
	AttemptsUsed int       `json:"attemptsUsed"`
	Outcome      Outcome   `json:"outcome"`
	History      []Attempt `json:"history"`
	Secret       Secret    `json:"secret,omitempty"` // only once the game is over
}

type RulesPayload struct {
	PegCount    int     `json:"pegCount"`
	MaxAttempts int     `json:"maxAttempts"`
	Colors      []Color `json:"colors"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
