package game

// Entry is one round: the proposed code and the feedback it received.
type Entry struct {
	Guess    Code
	Feedback Feedback
}

// History is the append-only record of one game. The zero value is an empty
// history ready to use. History is owned by a single game and is not safe
// for concurrent use.
type History struct {
	entries []Entry
}

func NewHistory(entries ...Entry) History {
	return History{entries: append([]Entry(nil), entries...)}
}

func (h *History) Append(guess Code, fb Feedback) {
	h.entries = append(h.entries, Entry{Guess: guess, Feedback: fb})
}

func (h History) Len() int { return len(h.entries) }

func (h History) At(i int) Entry { return h.entries[i] }

// Last returns the newest entry; ok is false for an empty history.
func (h History) Last() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of all rounds in order.
func (h History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Consistent reports whether c, taken as the secret, would have produced
// every recorded feedback.
func (h History) Consistent(c Code) bool {
	for _, e := range h.entries {
		if !e.Consistent(c) {
			return false
		}
	}
	return true
}

func (e Entry) Consistent(c Code) bool {
	return Evaluate(c, e.Guess) == e.Feedback
}
