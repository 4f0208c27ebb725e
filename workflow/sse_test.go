package workflow

import (
	"errors"
	"io"
	"strings"
	"testing"

	"tickerchat/model"
)

func TestEventScanner(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []model.StreamEvent
	}{
		{
			name:  "plain data record defaults to message",
			input: "data: hello\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, Data: "hello"},
			},
		},
		{
			name:  "event and id fields",
			input: "event: function_call\nid: step-1\ndata: {'function': 'dotoggle'}\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindFunctionCall, ID: "step-1", Data: "{'function': 'dotoggle'}"},
			},
		},
		{
			name:  "unknown event kind defaults to message",
			input: "event: telemetry\ndata: x\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, Data: "x"},
			},
		},
		{
			name:  "multiple records",
			input: "id: a\ndata: one\n\nid: b\ndata: two\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, ID: "a", Data: "one"},
				{Kind: model.KindMessage, ID: "b", Data: "two"},
			},
		},
		{
			name:  "multi-line data joined with newline",
			input: "data: first\ndata: second\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, Data: "first\nsecond"},
			},
		},
		{
			name:  "comments and keep-alives ignored",
			input: ": ping\ndata: hello\n: ping\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, Data: "hello"},
			},
		},
		{
			name:  "empty data field preserved",
			input: "id: a\ndata:\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, ID: "a", Data: ""},
			},
		},
		{
			name:  "end sentinel passes through",
			input: "id: a\ndata: [END]\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, ID: "a", Data: "[END]"},
			},
		},
		{
			name:  "crlf line endings",
			input: "event: error\r\ndata: boom\r\n\r\n",
			expected: []model.StreamEvent{
				{Kind: model.KindError, Data: "boom"},
			},
		},
		{
			name:  "final record without trailing separator",
			input: "id: a\ndata: tail",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, ID: "a", Data: "tail"},
			},
		},
		{
			name:  "leading blank lines skipped",
			input: "\n\ndata: hello\n\n",
			expected: []model.StreamEvent{
				{Kind: model.KindMessage, Data: "hello"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newEventScanner(strings.NewReader(tt.input))

			var got []model.StreamEvent
			for {
				ev, err := sc.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("unexpected scan error: %v", err)
				}
				got = append(got, ev)
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("event count: got %d, want %d (%+v)", len(got), len(tt.expected), got)
			}
			for i, ev := range got {
				if ev != tt.expected[i] {
					t.Errorf("event %d: got %+v, want %+v", i, ev, tt.expected[i])
				}
			}
		})
	}
}

func TestEventScannerEmptyBody(t *testing.T) {
	sc := newEventScanner(strings.NewReader(""))
	if _, err := sc.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
