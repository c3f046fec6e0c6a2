package solver

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"example.com/bnc-solver/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstRand always picks index 0.
type firstRand struct{ calls int }

func (r *firstRand) IntN(n int) int {
	r.calls++
	return 0
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestNextGuess_EmptyHistoryUsesOpener(t *testing.T) {
	s := New(seeded(1))
	g, err := s.NextGuess(game.History{})
	require.NoError(t, err)
	assert.Equal(t, "0123", g.String())

	s = New(seeded(1), WithOpener(game.MustParseCode("9876")))
	g, err = s.NextGuess(game.History{})
	require.NoError(t, err)
	assert.Equal(t, "9876", g.String())
}

func TestNextGuess_RandomOpener(t *testing.T) {
	s := New(seeded(7), WithRandomOpener())
	seen := map[game.Code]bool{}
	for i := 0; i < 20; i++ {
		g, err := s.NextGuess(game.History{})
		require.NoError(t, err)
		seen[g] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNextGuess_InconsistentHistory(t *testing.T) {
	s := New(seeded(1))
	h := game.NewHistory(
		game.Entry{Guess: game.MustParseCode("0123"), Feedback: game.Win()},
		game.Entry{Guess: game.MustParseCode("4567"), Feedback: game.Win()},
	)
	_, err := s.NextGuess(h)
	require.ErrorIs(t, err, ErrNoConsistentSecret)
}

func TestNextGuess_UnachievableFeedback(t *testing.T) {
	s := New(seeded(1))
	h := game.NewHistory(game.Entry{Guess: game.MustParseCode("0123"), Feedback: game.MustFeedback(3, 1)})
	assert.Empty(t, s.Candidates(h))
	_, err := s.NextGuess(h)
	require.ErrorIs(t, err, ErrNoConsistentSecret)
}

func TestNextGuess_PicksAConsistentCandidate(t *testing.T) {
	secret := game.MustParseCode("5930")
	s := New(seeded(3))
	var h game.History
	for _, g := range []string{"0123", "4567"} {
		guess := game.MustParseCode(g)
		h.Append(guess, game.Evaluate(secret, guess))
	}
	for i := 0; i < 50; i++ {
		g, err := s.NextGuess(h)
		require.NoError(t, err)
		require.True(t, h.Consistent(g), "%s is not consistent", g)
	}
}

func TestNextGuess_DeterministicWithStub(t *testing.T) {
	rng := &firstRand{}
	s := New(rng)
	h := game.NewHistory(game.Entry{Guess: game.MustParseCode("0123"), Feedback: game.MustFeedback(0, 0)})

	g, err := s.NextGuess(h)
	require.NoError(t, err)
	// first code of the universe without 0,1,2,3
	assert.Equal(t, "4567", g.String())
	assert.Equal(t, 1, rng.calls)
}

func TestNextGuess_SameSeedSameSequence(t *testing.T) {
	play := func(seed uint64) []string {
		tr := New(seeded(seed)).NewTracker()
		secret := game.MustParseCode("8142")
		var out []string
		for {
			g, err := tr.Next()
			require.NoError(t, err)
			out = append(out, g.String())
			fb := game.Evaluate(secret, g)
			if fb.Solved() {
				return out
			}
			require.NoError(t, tr.Record(g, fb))
		}
	}
	assert.Equal(t, play(42), play(42))
}

func TestCandidates_SecretRetention(t *testing.T) {
	rng := seeded(11)
	s := New(rng)
	u := game.Universe()

	for i := 0; i < 100; i++ {
		secret := u[rng.IntN(len(u))]
		var h game.History
		for r := 0; r < 6; r++ {
			guess := u[rng.IntN(len(u))]
			h.Append(guess, game.Evaluate(secret, guess))
			require.True(t, slices.Contains(s.Candidates(h), secret), "secret %s lost after %d rounds", secret, r+1)
		}
	}
}

func TestCandidates_MonotonicShrinkage(t *testing.T) {
	rng := seeded(13)
	s := New(rng)
	u := game.Universe()

	for i := 0; i < 30; i++ {
		secret := u[rng.IntN(len(u))]
		var h game.History
		prev := s.Candidates(h)
		require.Len(t, prev, game.UniverseSize)
		for r := 0; r < 5; r++ {
			guess := u[rng.IntN(len(u))]
			h.Append(guess, game.Evaluate(secret, guess))
			cur := s.Candidates(h)
			require.LessOrEqual(t, len(cur), len(prev))
			inPrev := make(map[game.Code]bool, len(prev))
			for _, c := range prev {
				inPrev[c] = true
			}
			for _, c := range cur {
				require.True(t, inPrev[c], "%s appeared after round %d", c, r+1)
			}
			prev = cur
		}
	}
}

func TestPlay_TerminationOnOpener(t *testing.T) {
	tr := New(seeded(1)).NewTracker()
	rounds, err := Play(context.Background(), tr, Oracle{Secret: game.MustParseCode("0123")}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rounds)
}

func TestPlay_SolvesWithinBound(t *testing.T) {
	rng := seeded(17)
	s := New(rng)
	u := game.Universe()
	for i := 0; i < 200; i++ {
		secret := u[rng.IntN(len(u))]
		rounds, err := Play(context.Background(), s.NewTracker(), Oracle{Secret: secret}, 0)
		require.NoError(t, err, secret.String())
		require.GreaterOrEqual(t, rounds, 1)
		require.LessOrEqual(t, rounds, 10, "secret %s took %d rounds", secret, rounds)
	}
}

type liar struct{ fb game.Feedback }

func (l liar) Feedback(context.Context, game.Code) (game.Feedback, error) { return l.fb, nil }

func TestPlay_ContradictorySource(t *testing.T) {
	tr := New(seeded(1)).NewTracker()
	// 3 bulls 1 cow never happens with distinct digits.
	_, err := Play(context.Background(), tr, liar{fb: game.MustFeedback(3, 1)}, 0)
	require.ErrorIs(t, err, ErrNoConsistentSecret)
}

func TestPlay_RoundLimit(t *testing.T) {
	tr := New(&firstRand{}).NewTracker()
	rounds, err := Play(context.Background(), tr, Oracle{Secret: game.MustParseCode("9876")}, 1)
	require.ErrorIs(t, err, ErrRoundLimit)
	assert.Equal(t, 1, rounds)
}

func TestPlay_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Play(ctx, New(seeded(1)).NewTracker(), Oracle{Secret: game.MustParseCode("9876")}, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseOpener(t *testing.T) {
	t.Parallel()

	opt, err := ParseOpener("4567")
	require.NoError(t, err)
	g, err := New(&firstRand{}, opt).Opener()
	require.NoError(t, err)
	assert.Equal(t, "4567", g.String())

	opt, err = ParseOpener("random")
	require.NoError(t, err)
	assert.True(t, New(seeded(1), opt).randomOpener)

	_, err = ParseOpener("1123")
	require.ErrorIs(t, err, game.ErrInvalidCode)
}

func TestDefaultOpener(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0123", DefaultOpener().String())
	g, err := New(&firstRand{}).Opener()
	require.NoError(t, err)
	assert.Equal(t, DefaultOpener(), g)
}

func TestOracle_RefusesZeroCodes(t *testing.T) {
	t.Parallel()

	_, err := Oracle{}.Feedback(context.Background(), game.MustParseCode("0123"))
	require.ErrorIs(t, err, game.ErrInvalidCode)

	_, err = Oracle{Secret: game.MustParseCode("0123")}.Feedback(context.Background(), game.Code{})
	require.ErrorIs(t, err, game.ErrInvalidCode)
}

func TestPlay_ZeroSecretOrGuess(t *testing.T) {
	t.Parallel()

	rounds, err := Play(context.Background(), New(seeded(1)).NewTracker(), Oracle{}, 0)
	require.ErrorIs(t, err, game.ErrInvalidCode)
	assert.Zero(t, rounds)

	tr := New(seeded(1), WithOpener(game.Code{})).NewTracker()
	_, err = Play(context.Background(), tr, Oracle{Secret: game.MustParseCode("0123")}, 0)
	require.ErrorIs(t, err, game.ErrInvalidCode)
	require.NotErrorIs(t, err, ErrNoConsistentSecret)
}
