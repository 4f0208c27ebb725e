package chat

import (
	"testing"

	"tickerchat/model"
)

func TestAccumulatorAppend(t *testing.T) {
	type frag struct{ key, text string }

	tests := []struct {
		name  string
		frags []frag
		want  []model.Step
	}{
		{
			name:  "fragments for one key concatenate",
			frags: []frag{{"a", "Hel"}, {"a", "lo"}, {"a", " world"}},
			want:  []model.Step{{Key: "a", Content: "Hello world"}},
		},
		{
			name:  "keys keep first seen order",
			frags: []frag{{"a", "one"}, {"b", "two"}, {"c", "three"}},
			want: []model.Step{
				{Key: "a", Content: "one"},
				{Key: "b", Content: "two"},
				{Key: "c", Content: "three"},
			},
		},
		{
			name:  "interleaved keys extend their own step",
			frags: []frag{{"a", "1"}, {"b", "x"}, {"a", "2"}, {"b", "y"}},
			want: []model.Step{
				{Key: "a", Content: "12"},
				{Key: "b", Content: "xy"},
			},
		},
		{
			name:  "end sentinel is dropped entirely",
			frags: []frag{{"a", "text"}, {"a", model.EndSentinel}},
			want:  []model.Step{{Key: "a", Content: "text"}},
		},
		{
			name:  "sentinel alone creates nothing",
			frags: []frag{{"a", model.EndSentinel}},
			want:  []model.Step{},
		},
		{
			name:  "empty fragment becomes a paragraph break",
			frags: []frag{{"a", "before"}, {"a", ""}, {"a", "after"}},
			want:  []model.Step{{Key: "a", Content: "before \nafter"}},
		},
		{
			name:  "empty first fragment still creates the step",
			frags: []frag{{"a", ""}},
			want:  []model.Step{{Key: "a", Content: " \n"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			for _, f := range tt.frags {
				acc.Append(f.key, f.text)
			}
			got := acc.Snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("Snapshot() has %d steps, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Key != tt.want[i].Key {
					t.Errorf("step %d key = %q, want %q", i, got[i].Key, tt.want[i].Key)
				}
				if got[i].Content != tt.want[i].Content {
					t.Errorf("step %d content = %q, want %q", i, got[i].Content, tt.want[i].Content)
				}
			}
		})
	}
}

func TestAccumulatorOrdinalKey(t *testing.T) {
	acc := NewAccumulator()
	if got := acc.OrdinalKey(); got != "step-1" {
		t.Errorf("OrdinalKey() on empty accumulator = %q, want %q", got, "step-1")
	}
	acc.Append(acc.OrdinalKey(), "first")
	if got := acc.OrdinalKey(); got != "step-2" {
		t.Errorf("OrdinalKey() after one step = %q, want %q", got, "step-2")
	}
	acc.Append("evt-99", "second")
	if got := acc.OrdinalKey(); got != "step-3" {
		t.Errorf("OrdinalKey() after two steps = %q, want %q", got, "step-3")
	}
}

func TestAccumulatorSnapshotIsACopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Append("a", "text")

	snap := acc.Snapshot()
	snap[0].Content = "mutated"
	snap[0].Link = "AAPL"

	fresh := acc.Snapshot()
	if fresh[0].Content != "text" {
		t.Errorf("mutating a snapshot leaked into the accumulator: %q", fresh[0].Content)
	}
	if fresh[0].Link != "" {
		t.Errorf("snapshot carries a link it never accumulated: %q", fresh[0].Link)
	}
}
