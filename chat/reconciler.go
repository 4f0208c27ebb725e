package chat

import (
	"time"

	"tickerchat/model"
)

// ErrorText is the generic message shown when reconciling an event fails in
// an unexpected way. Matches the text users of the original client saw.
const ErrorText = "An error occurred while processing the response."

// TransportErrorText is the generic message applied when the connection
// itself fails. User cancellation never applies it.
const TransportErrorText = "An error occurred with your agent, please contact support."

// Reconciler owns the canonical, append-only list of conversation turns and
// holds an explicit handle to the single agent turn that is currently open
// for mutation. Turn order is submission order; committed turns are never
// reordered, deleted, or touched again.
//
// The handle replaces the original client's backward scan for "the last
// agent message": with at most one open turn at a time the two are
// equivalent, and the handle removes the ambiguity.
type Reconciler struct {
	turns   []model.Turn
	current int // index of the open agent turn, or -1
}

func NewReconciler() *Reconciler {
	return &Reconciler{current: -1}
}

// StartHumanTurn appends an immutable human turn.
func (r *Reconciler) StartHumanTurn(text string) {
	r.Finalize()
	r.turns = append(r.turns, model.Turn{
		Role:      model.RoleHuman,
		Text:      text,
		Succeeded: true,
		Timestamp: time.Now(),
	})
}

// StartAgentTurn appends a new empty agent turn and makes it current.
// Any previously open turn is finalized first, preserving the invariant
// that at most one turn is mutable.
func (r *Reconciler) StartAgentTurn() {
	r.Finalize()
	r.turns = append(r.turns, model.Turn{
		Role:      model.RoleAgent,
		Succeeded: true,
		Timestamp: time.Now(),
	})
	r.current = len(r.turns) - 1
}

// ApplySteps replaces the open turn's steps with the accumulator's latest
// snapshot. Auxiliary links already projected onto existing keys survive the
// replacement. Reapplying the same snapshot is idempotent. Calls with no open
// turn, or after the turn failed, are ignored — late events must never crash.
func (r *Reconciler) ApplySteps(steps []model.Step) {
	turn := r.open()
	if turn == nil || !turn.Succeeded {
		return
	}

	links := make(map[string]string, 1)
	for _, s := range turn.Steps {
		if s.Link != "" {
			links[s.Key] = s.Link
		}
	}
	for i := range steps {
		steps[i].Link = links[steps[i].Key]
	}
	turn.Steps = steps
}

// ApplyLink projects an auxiliary link onto the open turn: the first-created
// step receives it and every other step's link is cleared, so exactly one
// step per turn carries visual context. A turn with no steps yet is left
// untouched — a directive racing ahead of its content is legitimate.
func (r *Reconciler) ApplyLink(link string) {
	turn := r.open()
	if turn == nil || !turn.Succeeded || len(turn.Steps) == 0 {
		return
	}
	project(turn, turn.Steps[0].Key, link)
}

// ApplyError marks the open turn failed with the given text and discards any
// partially accumulated steps — the terminal error replaces partial content
// rather than merging with it. The first error wins; further mutation of the
// turn is ignored. No-op when no turn is open.
func (r *Reconciler) ApplyError(text string) {
	turn := r.open()
	if turn == nil || !turn.Succeeded {
		return
	}
	turn.Text = text
	turn.Steps = nil
	turn.Succeeded = false
}

// Finalize commits the open turn, if any. The turn keeps whatever success
// state it accumulated and becomes immutable.
func (r *Reconciler) Finalize() {
	r.current = -1
}

// HasOpenTurn reports whether an agent turn is currently mutable.
func (r *Reconciler) HasOpenTurn() bool {
	return r.current >= 0
}

// Turns returns a deep-copied snapshot of the whole conversation.
func (r *Reconciler) Turns() []model.Turn {
	out := make([]model.Turn, len(r.turns))
	for i, t := range r.turns {
		out[i] = t.Clone()
	}
	return out
}

func (r *Reconciler) open() *model.Turn {
	if r.current < 0 {
		return nil
	}
	return &r.turns[r.current]
}
