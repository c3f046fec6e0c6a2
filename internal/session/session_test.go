package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConn() *ClientConn {
	return &ClientConn{
		ws:   nil,
		send: make(chan []byte, 256),
	}
}

func newTestSession(t *testing.T, maxRounds int) *Session {
	t.Helper()
	s, err := NewSession("s1", solver.New(rand.New(rand.NewPCG(1, 1))), maxRounds, quietLogger())
	require.NoError(t, err)
	return s
}

func readEnvelopesNonBlocking(c *ClientConn) []Envelope {
	var envs []Envelope
	for {
		select {
		case msg := <-c.send:
			var env Envelope
			if json.Unmarshal(msg, &env) == nil {
				envs = append(envs, env)
			}
		default:
			return envs
		}
	}
}

func findLast[T any](envs []Envelope, typ string) (T, bool) {
	var v T
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type != typ {
			continue
		}
		if json.Unmarshal(envs[i].Payload, &v) == nil {
			return v, true
		}
	}
	return v, false
}

// solve answers every guess truthfully for secret until the session ends.
func solve(t *testing.T, s *Session, secret game.Code) {
	t.Helper()
	for i := 0; i < 20 && s.Phase() == PhaseGuessing; i++ {
		guess := game.MustParseCode(s.State().Guess)
		fb := game.Evaluate(secret, guess)
		require.NoError(t, s.SubmitFeedback(fb.Bulls(), fb.Cows()))
	}
}

func TestSession_Scenarios(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "starts guessing with the opener",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				st := s.State()
				assert.Equal(t, PhaseGuessing, st.Phase)
				assert.Equal(t, 1, st.Round)
				assert.Equal(t, "0123", st.Guess)
				assert.Equal(t, game.UniverseSize, st.Candidates)
				assert.Empty(t, st.History)
			},
		},
		{
			name: "four bulls on the opener solves in one round",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				c := newTestConn()
				require.NoError(t, s.Attach(c))

				require.NoError(t, s.SubmitFeedback(4, 0))

				envs := readEnvelopesNonBlocking(c)
				solved, ok := findLast[SolvedPayload](envs, TypeSolved)
				require.True(t, ok)
				assert.Equal(t, SolvedPayload{Secret: "0123", Rounds: 1}, solved)

				st, ok := findLast[StatePayload](envs, TypeState)
				require.True(t, ok)
				assert.Equal(t, PhaseSolved, st.Phase)
				require.Len(t, st.History, 1)
				assert.Equal(t, RoundHistoryItem{Round: 1, Guess: "0123", Bulls: 4, Cows: 0}, st.History[0])
			},
		},
		{
			name: "truthful answers find the secret",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				solve(t, s, game.MustParseCode("8352"))

				st := s.State()
				assert.Equal(t, PhaseSolved, st.Phase)
				assert.Equal(t, "8352", st.Guess)
				assert.Len(t, st.History, st.Round)
			},
		},
		{
			name: "next guess is announced with the candidate count",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				c := newTestConn()
				require.NoError(t, s.Attach(c))

				require.NoError(t, s.SubmitFeedback(0, 0))

				g, ok := findLast[GuessPayload](readEnvelopesNonBlocking(c), TypeGuess)
				require.True(t, ok)
				assert.Equal(t, 2, g.Round)
				assert.Equal(t, 360, g.Candidates)
				guess := game.MustParseCode(g.Guess)
				for _, d := range []int{0, 1, 2, 3} {
					assert.False(t, guess.Contains(d))
				}
			},
		},
		{
			name: "out of range feedback is rejected",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				require.ErrorIs(t, s.SubmitFeedback(2, 3), game.ErrInvalidFeedback)
				require.ErrorIs(t, s.SubmitFeedback(-1, 0), game.ErrInvalidFeedback)
				assert.Equal(t, 1, s.State().Round)
			},
		},
		{
			name: "contradictory feedback keeps the guess open",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				require.ErrorIs(t, s.SubmitFeedback(3, 1), solver.ErrNoConsistentSecret)

				st := s.State()
				assert.Equal(t, PhaseGuessing, st.Phase)
				assert.Equal(t, 1, st.Round)
				assert.Equal(t, "0123", st.Guess)
				assert.Empty(t, st.History)

				require.NoError(t, s.SubmitFeedback(1, 1))
				assert.Equal(t, 2, s.State().Round)
			},
		},
		{
			name: "feedback after solved is refused",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				require.NoError(t, s.SubmitFeedback(4, 0))
				require.ErrorIs(t, s.SubmitFeedback(0, 0), ErrNotGuessing)
			},
		},
		{
			name: "round limit fails the session",
			run: func(t *testing.T) {
				s := newTestSession(t, 2)
				require.NoError(t, s.SubmitFeedback(0, 0))
				require.ErrorIs(t, s.SubmitFeedback(0, 2), solver.ErrRoundLimit)
				assert.Equal(t, PhaseFailed, s.Phase())
			},
		},
		{
			name: "restart begins a new game",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				require.NoError(t, s.SubmitFeedback(4, 0))
				require.NoError(t, s.Restart())

				st := s.State()
				assert.Equal(t, PhaseGuessing, st.Phase)
				assert.Equal(t, 1, st.Round)
				assert.Empty(t, st.History)
			},
		},
		{
			name: "second connection is refused",
			run: func(t *testing.T) {
				s := newTestSession(t, 0)
				c1 := newTestConn()
				require.NoError(t, s.Attach(c1))
				require.ErrorIs(t, s.Attach(newTestConn()), ErrBusy)

				s.Detach(c1)
				require.NoError(t, s.Attach(newTestConn()))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, tc.run)
	}
}

func TestSession_Idle(t *testing.T) {
	s := newTestSession(t, 0)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Detach(nil)

	assert.False(t, s.Idle(time.Minute))
	now = now.Add(2 * time.Minute)
	assert.True(t, s.Idle(time.Minute))

	require.NoError(t, s.Attach(newTestConn()))
	now = now.Add(2 * time.Minute)
	assert.False(t, s.Idle(time.Minute), "connected sessions are never idle")
}
