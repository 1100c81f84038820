package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = Secret{Red, Red, Blue, White, Green}
	winning    = Guess{Red, Red, Blue, White, Green}
	missing    = Guess{Red, Blue, Red, White, Black}
)

func newTestRound(t *testing.T) *Round {
	t.Helper()
	r, err := NewRound(testSecret)
	require.NoError(t, err)
	return r
}

func TestRound_Scenarios(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "starts awaiting guess 1",
			run: func(t *testing.T) {
				r := newTestRound(t)
				assert.Equal(t, 1, r.Attempt())
				assert.Equal(t, InProgress, r.Outcome())
				assert.Equal(t, 0, r.AttemptsUsed())
				_, ok := r.Secret()
				assert.False(t, ok, "secret must stay hidden while in progress")
			},
		},
		{
			name: "miss advances the attempt",
			run: func(t *testing.T) {
				r := newTestRound(t)
				res, err := r.SubmitGuess(missing)
				require.NoError(t, err)
				assert.Equal(t, []Hint{P, C, C, P, A}, res.Hints)
				assert.Equal(t, InProgress, res.Outcome)
				assert.Equal(t, 1, res.AttemptsUsed)
				assert.Equal(t, 2, r.Attempt())
			},
		},
		{
			name: "eleven misses leave the last attempt",
			run: func(t *testing.T) {
				r := newTestRound(t)
				for i := 1; i < MaxAttempts; i++ {
					res, err := r.SubmitGuess(missing)
					require.NoError(t, err)
					require.Equal(t, InProgress, res.Outcome)
					require.Equal(t, i, res.AttemptsUsed)
				}
				assert.Equal(t, MaxAttempts, r.Attempt())
				assert.Equal(t, InProgress, r.Outcome())
			},
		},
		{
			name: "twelfth miss loses",
			run: func(t *testing.T) {
				r := newTestRound(t)
				var res Result
				var err error
				for i := 0; i < MaxAttempts; i++ {
					res, err = r.SubmitGuess(missing)
					require.NoError(t, err)
				}
				assert.Equal(t, Lost, res.Outcome)
				assert.Equal(t, MaxAttempts, res.AttemptsUsed)
				assert.Equal(t, MaxAttempts, r.AttemptsUsed())

				secret, ok := r.Secret()
				require.True(t, ok)
				assert.Equal(t, testSecret, secret)
			},
		},
		{
			name: "win on first guess",
			run: func(t *testing.T) {
				r := newTestRound(t)
				res, err := r.SubmitGuess(winning)
				require.NoError(t, err)
				assert.Equal(t, Won, res.Outcome)
				assert.Equal(t, 1, res.AttemptsUsed)
				assert.Equal(t, []Hint{P, P, P, P, P}, res.Hints)
			},
		},
		{
			name: "win on the last attempt beats the loss",
			run: func(t *testing.T) {
				r := newTestRound(t)
				for i := 1; i < MaxAttempts; i++ {
					_, err := r.SubmitGuess(missing)
					require.NoError(t, err)
				}
				res, err := r.SubmitGuess(winning)
				require.NoError(t, err)
				assert.Equal(t, Won, res.Outcome)
				assert.Equal(t, MaxAttempts, res.AttemptsUsed)
			},
		},
		{
			name: "submissions after a loss are rejected",
			run: func(t *testing.T) {
				r := newTestRound(t)
				for i := 0; i < MaxAttempts; i++ {
					_, err := r.SubmitGuess(missing)
					require.NoError(t, err)
				}
				_, err := r.SubmitGuess(winning)
				assert.ErrorIs(t, err, ErrGameAlreadyOver)
				assert.Equal(t, Lost, r.Outcome())
				assert.Equal(t, MaxAttempts, r.Attempt())
			},
		},
		{
			name: "submissions after a win are rejected",
			run: func(t *testing.T) {
				r := newTestRound(t)
				_, err := r.SubmitGuess(winning)
				require.NoError(t, err)
				_, err = r.SubmitGuess(missing)
				assert.ErrorIs(t, err, ErrGameAlreadyOver)
				assert.Equal(t, Won, r.Outcome())
				assert.Equal(t, 1, r.AttemptsUsed())
			},
		},
		{
			name: "invalid guesses do not consume an attempt",
			run: func(t *testing.T) {
				r := newTestRound(t)
				_, err := r.SubmitGuess(Guess{Red, Red})
				assert.ErrorIs(t, err, ErrLengthMismatch)
				_, err = r.SubmitGuess(Guess{Red, Red, Blue, White, Color(42)})
				assert.ErrorIs(t, err, ErrInvalidColor)
				assert.Equal(t, 1, r.Attempt())
				assert.Equal(t, InProgress, r.Outcome())
			},
		},
		{
			name: "secret is copied on the way in and out",
			run: func(t *testing.T) {
				s := Secret{Pink, Pink, Pink, Pink, Pink}
				r, err := NewRound(s)
				require.NoError(t, err)
				s[0] = Black

				res, err := r.SubmitGuess(Guess{Pink, Pink, Pink, Pink, Pink})
				require.NoError(t, err)
				require.Equal(t, Won, res.Outcome)

				out, _ := r.Secret()
				out[1] = Black
				again, _ := r.Secret()
				assert.Equal(t, Pink, again[1])
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, tc.run)
	}
}

func TestNewRound_RejectsBadSecrets(t *testing.T) {
	_, err := NewRound(Secret{Red, Red, Red, Red})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewRound(Secret{Red, Red, Red, Red, Color(8)})
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestRestoreRound(t *testing.T) {
	r, err := restoreRound(testSecret, 7, InProgress)
	require.NoError(t, err)
	assert.Equal(t, 7, r.Attempt())
	assert.Equal(t, 6, r.AttemptsUsed())

	_, err = restoreRound(testSecret, 0, InProgress)
	assert.Error(t, err)
	_, err = restoreRound(testSecret, MaxAttempts+1, Lost)
	assert.Error(t, err)
	_, err = restoreRound(testSecret, 3, Outcome("paused"))
	assert.Error(t, err)
}
