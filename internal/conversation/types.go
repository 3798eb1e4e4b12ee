// Package conversation keeps the ordered record of exchanges between the
// user and the generation service.
//
// The log is append-only: user turns record what was submitted, assistant
// turns start as pending placeholders and resolve exactly once with a
// classified outcome. Nothing is ever removed; trimming what is shown is a
// presentation concern that lives elsewhere.
//
// # Thread Safety
//
// Log is NOT thread-safe. The client drives it from a single goroutine and
// permits one submission in flight at a time, so no two resolutions can
// race. Resolve stays idempotent per id regardless, so a future concurrent
// caller would degrade to no-ops rather than corruption.
package conversation

import (
	"time"

	"github.com/pg-png/restaurant-content-creator/internal/generate"
)

// Kind identifies which side of the exchange an entry records.
type Kind int

const (
	// KindUser is a user submission (prompt plus image thumbnail).
	KindUser Kind = iota
	// KindAssistant is a response slot, pending until resolved.
	KindAssistant
)

// State is the lifecycle state of an assistant entry.
type State int

const (
	// StatePending means the submission is still outstanding.
	StatePending State = iota
	// StateResolved means an outcome has been recorded. Terminal: an entry
	// never reverts to pending and never resolves twice.
	StateResolved
)

// Entry is one turn in the conversation.
//
// User entries populate Prompt and Thumbnail; assistant entries populate
// State and, once resolved, Outcome. CreatedAt is informational only —
// ordering is strictly by append time, since two entries may share a
// timestamp.
type Entry struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	// User turn fields
	Prompt    string
	Thumbnail []byte

	// Assistant turn fields
	State   State
	Outcome *generate.Outcome
}
