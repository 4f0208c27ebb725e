package chat

import (
	"fmt"

	"tickerchat/model"
)

// Accumulator collects partial text fragments into stable steps for one agent
// turn. Steps are keyed by the event id that introduced them; the order in
// which keys were first seen is the display order and never changes. Content
// is append-only — fragments for a known key always extend the same step.
//
// A fresh accumulator is created for every turn; it is not reused.
type Accumulator struct {
	order   []string
	content map[string]string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{content: make(map[string]string)}
}

// Append adds a fragment to the step identified by key, creating the step on
// first sight. The end sentinel is a no-op marker and never becomes content.
// An empty fragment appends a paragraph break instead of nothing, so a blank
// record still separates the surrounding text.
func (a *Accumulator) Append(key, fragment string) {
	if fragment == model.EndSentinel {
		return
	}
	if _, seen := a.content[key]; !seen {
		a.order = append(a.order, key)
		a.content[key] = ""
	}
	if fragment == "" {
		fragment = " \n"
	}
	a.content[key] += fragment
}

// OrdinalKey returns the key to assign when a fragment arrives before any
// event id has been observed: "step-1", "step-2", … in creation order.
func (a *Accumulator) OrdinalKey() string {
	return fmt.Sprintf("step-%d", len(a.order)+1)
}

// Len returns the number of steps created so far.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Snapshot returns the accumulated steps in first-seen order. The returned
// slice is a copy; reapplying the full snapshot is always safe.
func (a *Accumulator) Snapshot() []model.Step {
	steps := make([]model.Step, 0, len(a.order))
	for _, key := range a.order {
		steps = append(steps, model.Step{Key: key, Content: a.content[key]})
	}
	return steps
}
