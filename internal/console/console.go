// Package console is the terminal driver: the program guesses, a human
// holding the secret answers with bulls and cows.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/metrics"
	"example.com/bnc-solver/internal/solver"
	"github.com/TwiN/go-color"
)

var ErrQuit = errors.New("quit")

type Options struct {
	ShowCandidates bool // print the remaining candidates before each guess
	Color          bool
	MaxRounds      int // <= 0 => no limit
}

type Console struct {
	in   *bufio.Scanner
	out  io.Writer
	opts Options
}

func New(in io.Reader, out io.Writer, opts Options) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, opts: opts}
}

// Run plays one game against the human. Feedback that contradicts earlier
// answers is refused and asked for again; "q" at any prompt ends the game
// with ErrQuit.
func (c *Console) Run(ctx context.Context, t *solver.Tracker) (int, error) {
	for round := 1; ; round++ {
		if c.opts.MaxRounds > 0 && round > c.opts.MaxRounds {
			return round - 1, fmt.Errorf("%w: %d", solver.ErrRoundLimit, c.opts.MaxRounds)
		}
		if c.opts.ShowCandidates && t.Rounds() > 0 {
			c.printCandidates(t.Candidates())
		}

		guess, err := t.Next()
		if err != nil {
			return round - 1, err
		}
		fmt.Fprintf(c.out, "My guess: %s\n", c.paint(color.Cyan, guess.String()))

		for {
			fb, err := c.Feedback(ctx, guess)
			if err != nil {
				return round - 1, err
			}
			if fb.Solved() {
				fmt.Fprintf(c.out, "Answer is %s, guessed in %d.\n", c.paint(color.Green, guess.String()), round)
				metrics.RoundsToSolve.WithLabelValues(metrics.DriverConsole).Observe(float64(round))
				return round, nil
			}
			err = t.Record(guess, fb)
			if errors.Is(err, solver.ErrNoConsistentSecret) {
				metrics.FeedbackRejected.WithLabelValues("inconsistent").Inc()
				fmt.Fprintln(c.out, c.paint(color.Red, "That contradicts an earlier answer. Check your secret and answer again."))
				continue
			}
			if err != nil {
				return round, err
			}
			break
		}
	}
}

// Feedback prompts for bulls and cows until both are numbers forming a
// valid feedback.
func (c *Console) Feedback(ctx context.Context, _ game.Code) (game.Feedback, error) {
	for {
		if err := ctx.Err(); err != nil {
			return game.Feedback{}, err
		}
		bulls, err := c.promptInt("Bulls: ")
		if err != nil {
			return game.Feedback{}, err
		}
		cows, err := c.promptInt("Cows : ")
		if err != nil {
			return game.Feedback{}, err
		}
		fb, err := game.NewFeedback(bulls, cows)
		if err != nil {
			metrics.FeedbackRejected.WithLabelValues("range").Inc()
			fmt.Fprintf(c.out, "%s\n", c.paint(color.Red, "Bulls and cows must be 0-4 and add up to at most 4."))
			continue
		}
		return fb, nil
	}
}

func (c *Console) promptInt(prompt string) (int, error) {
	for {
		fmt.Fprint(c.out, prompt)
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return 0, fmt.Errorf("read input: %w", err)
			}
			return 0, fmt.Errorf("read input: %w", io.ErrUnexpectedEOF)
		}
		line := strings.TrimSpace(c.in.Text())
		if strings.EqualFold(line, "q") {
			return 0, ErrQuit
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(c.out, "Enter a number, or q to quit.")
			continue
		}
		return n, nil
	}
}

func (c *Console) printCandidates(codes []game.Code) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d candidate(s):", len(codes))
	for _, code := range codes {
		b.WriteByte(' ')
		b.WriteString(code.String())
	}
	fmt.Fprintln(c.out, b.String())
}

func (c *Console) paint(col, s string) string {
	if !c.opts.Color {
		return s
	}
	return color.Ize(col, s)
}

// Narrate wraps a feedback source and prints every exchange, for games
// played against a known secret.
func (c *Console) Narrate(src solver.FeedbackSource) solver.FeedbackSource {
	return narrator{c: c, src: src}
}

type narrator struct {
	c   *Console
	src solver.FeedbackSource
}

func (n narrator) Feedback(ctx context.Context, guess game.Code) (game.Feedback, error) {
	fb, err := n.src.Feedback(ctx, guess)
	if err != nil {
		return fb, err
	}
	score := strings.Repeat("x", fb.Bulls()) + strings.Repeat(".", fb.Cows())
	col := color.Yellow
	if fb.Solved() {
		col = color.Green
	}
	fmt.Fprintf(n.c.out, "%s %s %s\n", guess, n.c.paint(col, fmt.Sprintf("%-4s", score)), fb)
	return fb, nil
}
