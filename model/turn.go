package model

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAgent Role = "agent"
)

// Step is one named, incrementally built content block inside an agent turn.
// Content only ever grows while the turn is open; Link is the single field
// that may be cleared or overwritten after creation.
type Step struct {
	Key     string
	Content string
	Link    string // auxiliary ticker link, e.g. "AAPL"; empty when none
}

// Turn is one human or agent contribution to the conversation.
//
// Agent turns are created empty and mutated in place while their stream is
// open; once the stream closes or fails the turn is never touched again.
// Step order is the order in which each step's event id was first observed.
type Turn struct {
	Role      Role
	Text      string
	Steps     []Step
	Succeeded bool
	Timestamp time.Time
}

// Clone returns a deep copy of the turn so callers can hold snapshots
// without observing later in-place mutation.
func (t Turn) Clone() Turn {
	out := t
	if t.Steps != nil {
		out.Steps = make([]Step, len(t.Steps))
		copy(out.Steps, t.Steps)
	}
	return out
}

// StepIndex returns the position of the step with the given key, or -1.
func (t Turn) StepIndex(key string) int {
	for i := range t.Steps {
		if t.Steps[i].Key == key {
			return i
		}
	}
	return -1
}
