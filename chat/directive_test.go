package chat

import (
	"testing"
)

func TestDecodeDirective(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantArgs string
		wantErr  bool
	}{
		{
			name:     "single quoted payload with unescaped args quotes",
			raw:      `{'function': 'dotoggle', 'args': '{"toggle": "aapl"}'}`,
			wantName: "dotoggle",
			wantArgs: `{"toggle": "aapl"}`,
		},
		{
			name:     "already valid json",
			raw:      `{"function": "dotoggle", "args": "{\"toggle\": \"msft\"}"}`,
			wantName: "dotoggle",
			wantArgs: `{"toggle": "msft"}`,
		},
		{
			name:     "unrecognized function still decodes",
			raw:      `{'function': 'dorefresh', 'args': '{"scope": "all"}'}`,
			wantName: "dorefresh",
			wantArgs: `{"scope": "all"}`,
		},
		{
			name:    "not json at all",
			raw:     "tool: dotoggle(aapl)",
			wantErr: true,
		},
		{
			name:    "truncated payload",
			raw:     `{'function': 'dotoggle', 'args': '{"tog`,
			wantErr: true,
		},
		{
			name:    "missing function name",
			raw:     `{'args': '{"toggle": "aapl"}'}`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeDirective(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeDirective(%q) = %+v, want error", tt.raw, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDirective(%q) error: %v", tt.raw, err)
			}
			if d.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", d.Name, tt.wantName)
			}
			if d.Args != tt.wantArgs {
				t.Errorf("Args = %q, want %q", d.Args, tt.wantArgs)
			}
		})
	}
}

func TestToggleTarget(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "lowercase symbol is upper cased",
			raw:    `{'function': 'dotoggle', 'args': '{"toggle": "aapl"}'}`,
			want:   "AAPL",
			wantOK: true,
		},
		{
			name:   "symbol already upper case",
			raw:    `{'function': 'dotoggle', 'args': '{"toggle": "TSLA"}'}`,
			want:   "TSLA",
			wantOK: true,
		},
		{
			name: "other directive is not a toggle",
			raw:  `{'function': 'dorefresh', 'args': '{"toggle": "aapl"}'}`,
		},
		{
			name: "args without a toggle key",
			raw:  `{'function': 'dotoggle', 'args': '{"symbol": "aapl"}'}`,
		},
		{
			name: "empty toggle value",
			raw:  `{'function': 'dotoggle', 'args': '{"toggle": ""}'}`,
		},
		{
			name: "args not an object",
			raw:  `{'function': 'dotoggle', 'args': 'aapl'}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeDirective(tt.raw)
			if err != nil {
				t.Fatalf("DecodeDirective(%q) error: %v", tt.raw, err)
			}
			got, ok := ToggleTarget(d)
			if ok != tt.wantOK {
				t.Fatalf("ToggleTarget() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ToggleTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleTargetNilDirective(t *testing.T) {
	if _, ok := ToggleTarget(nil); ok {
		t.Error("ToggleTarget(nil) reported ok")
	}
}
