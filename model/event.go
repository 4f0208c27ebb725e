package model

// EventKind classifies a streamed record from the workflow endpoint.
type EventKind string

const (
	// KindMessage carries a text fragment for the step identified by the
	// event id (or the last observed id when the record has none).
	KindMessage EventKind = "message"
	// KindFunctionCall carries a loosely quoted function-call directive.
	KindFunctionCall EventKind = "function_call"
	// KindError carries a server-supplied failure message for the turn.
	KindError EventKind = "error"
)

// EndSentinel is the literal payload marking the logical completion of a
// step segment. It never contributes content to any step.
const EndSentinel = "[END]"

// StreamEvent is the unit of protocol exchange: one decoded record from the
// invocation stream.
type StreamEvent struct {
	Kind EventKind
	ID   string
	Data string
}

// NewStreamEvent builds a StreamEvent from raw wire fields. Unknown or blank
// kinds default to a plain message event; construction never fails.
func NewStreamEvent(kind, id, data string) StreamEvent {
	k := EventKind(kind)
	switch k {
	case KindFunctionCall, KindError:
	default:
		k = KindMessage
	}
	return StreamEvent{Kind: k, ID: id, Data: data}
}

// IsEnd reports whether the event payload is the end sentinel.
func (e StreamEvent) IsEnd() bool {
	return e.Data == EndSentinel
}

// FunctionDirective is a decoded function-call payload. Args holds the nested
// JSON-encoded argument string exactly as transmitted; it is decoded further
// only for recognized directives. Directives are transient and never persisted.
type FunctionDirective struct {
	Name string
	Args string
}
