package model

import (
	"context"
	"encoding/json"
)

// Invoker abstracts the workflow-invocation endpoint.
//
// This interface is defined in the model package (not workflow) to avoid
// import cycles: the workflow client can import model, and the chat engine
// can depend on the Invoker interface without importing the workflow package.
type Invoker interface {
	// Invoke opens a streaming invocation and feeds each decoded record to
	// the callbacks until the stream closes, the handler returns an error,
	// or ctx is canceled. The returned error is nil on normal close.
	Invoke(ctx context.Context, req InvokeRequest, cb StreamCallbacks) error

	// InvokeSync performs the same invocation with streaming disabled and
	// returns the full result object as raw JSON. Used by the batch runner.
	InvokeSync(ctx context.Context, req InvokeRequest) (json.RawMessage, error)
}

// InvokeRequest carries the two parameters of an invocation.
type InvokeRequest struct {
	Input     string
	SessionID string
}

// StreamCallbacks receives the lifecycle of one streaming invocation.
// Any of the fields may be nil.
type StreamCallbacks struct {
	// OnOpen fires once, after the endpoint accepted the request and
	// before the first event is delivered.
	OnOpen func()
	// OnEvent fires for every decoded record, in arrival order. Returning
	// an error stops consumption; Invoke returns that error.
	OnEvent func(StreamEvent) error
	// OnClose fires when the stream terminates normally.
	OnClose func()
}
