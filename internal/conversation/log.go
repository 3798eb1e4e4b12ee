package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/pg-png/restaurant-content-creator/internal/generate"
)

// Log is the append-only sequence of conversation entries.
type Log struct {
	entries []Entry
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{
		entries: make([]Entry, 0),
	}
}

// AppendUser appends a user turn recording the submitted prompt and the
// normalized image thumbnail. Returns the stored entry.
func (l *Log) AppendUser(prompt string, thumbnail []byte) Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		Kind:      KindUser,
		CreatedAt: time.Now(),
		Prompt:    prompt,
		Thumbnail: thumbnail,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// AppendPending appends a pending assistant turn and returns it. The caller
// resolves it later via Resolve with the returned entry's ID.
func (l *Log) AppendPending() Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		Kind:      KindAssistant,
		CreatedAt: time.Now(),
		State:     StatePending,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Resolve transitions the pending assistant turn with the given id to
// resolved, recording the outcome. It reports whether a transition
// happened: an absent id, a user turn, or an already-resolved turn leaves
// the log unchanged and returns false. Calling Resolve twice for the same
// id applies only the first outcome.
func (l *Log) Resolve(id string, outcome generate.Outcome) bool {
	for i := range l.entries {
		e := &l.entries[i]
		if e.ID != id || e.Kind != KindAssistant {
			continue
		}
		if e.State == StateResolved {
			return false
		}
		e.State = StateResolved
		out := outcome
		e.Outcome = &out
		return true
	}
	return false
}

// Entries returns a copy of all entries in append order.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries in the log.
func (l *Log) Len() int {
	return len(l.entries)
}
