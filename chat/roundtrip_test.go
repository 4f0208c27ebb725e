package chat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tickerchat/chat"
	"tickerchat/workflow"
)

// The round-trip tests here use the real workflow client against a canned
// httptest stream, so every layer between the wire and the conversation
// snapshot is exercised together.

// Drives a full exchange through the real wire path: SSE records from an
// httptest server, through the stream parser, directive decoder, accumulator,
// and reconciler.
func TestStreamRoundTrip(t *testing.T) {
	const body = ":keepalive\n\n" +
		"id: evt-1\ndata: Apple had a strong session.\n\n" +
		"data:  Volume ran above average.\n\n" +
		"event: function_call\ndata: {'function': 'dotoggle', 'args': '{\"toggle\": \"aapl\"}'}\n\n" +
		"event: function_call\ndata: this is not a directive\n\n" +
		"id: evt-2\ndata: Broader tech was mixed.\n\n" +
		"data: [END]\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client, err := workflow.NewClient(workflow.Config{
		BaseURL:    srv.URL,
		WorkflowID: "wf-live",
		APIKey:     "sk-test",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctrl := chat.NewController(client)
	if err := ctrl.Submit(context.Background(), "how did apple do?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	turns := ctrl.Turns()
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}

	agent := turns[1]
	if !agent.Succeeded {
		t.Fatal("agent turn not marked succeeded")
	}
	if len(agent.Steps) != 2 {
		t.Fatalf("got %d steps, want 2: %+v", len(agent.Steps), agent.Steps)
	}
	if got := agent.Steps[0].Content; got != "Apple had a strong session. Volume ran above average." {
		t.Errorf("step 0 content = %q", got)
	}
	if agent.Steps[0].Link != "AAPL" {
		t.Errorf("step 0 link = %q, want AAPL", agent.Steps[0].Link)
	}
	if agent.Steps[1].Key != "evt-2" || agent.Steps[1].Content != "Broader tech was mixed." {
		t.Errorf("step 1 = %+v", agent.Steps[1])
	}

	markers := ctrl.Markers()
	if len(markers) != 3 {
		t.Fatalf("got %d markers: %+v", len(markers), markers)
	}
	if markers[0].Type != "start" || markers[1].Type != "function_call" || markers[2].Type != "end" {
		t.Errorf("marker sequence = %+v", markers)
	}
}

func TestStreamRoundTripServerError(t *testing.T) {
	const body = "id: evt-1\ndata: partial output\n\n" +
		"event: error\ndata: workflow step timed out\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client, err := workflow.NewClient(workflow.Config{
		BaseURL:    srv.URL,
		WorkflowID: "wf-live",
		APIKey:     "sk-test",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctrl := chat.NewController(client)
	if err := ctrl.Submit(context.Background(), "q"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	agent := ctrl.Turns()[1]
	if agent.Succeeded {
		t.Error("turn still marked succeeded after server error event")
	}
	if agent.Text != "workflow step timed out" {
		t.Errorf("turn text = %q", agent.Text)
	}
	if len(agent.Steps) != 0 {
		t.Errorf("partial steps survived: %+v", agent.Steps)
	}
}

func TestStreamRoundTripUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := workflow.NewClient(workflow.Config{
		BaseURL:    srv.URL,
		WorkflowID: "wf-live",
		APIKey:     "sk-bad",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctrl := chat.NewController(client)
	if err := ctrl.Submit(context.Background(), "q"); err == nil {
		t.Fatal("Submit returned nil for a rejected stream")
	}

	agent := ctrl.Turns()[1]
	if agent.Succeeded {
		t.Error("turn still marked succeeded")
	}
	if agent.Text != chat.TransportErrorText {
		t.Errorf("turn text = %q, want transport error text", agent.Text)
	}
}
