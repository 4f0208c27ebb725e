// Package chat implements the streamed-event aggregation engine: it decodes
// function-call directives, accumulates partial text fragments into ordered
// steps, reconciles them into conversation turns, and drives the stream
// session lifecycle.
package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tickerchat/model"
)

// DirectiveToggle is the only directive name with a UI effect: its args carry
// a ticker symbol to link to the current step. Other names decode but are
// ignored, leaving room for future directives.
const DirectiveToggle = "dotoggle"

// argsPattern matches the nested args string value so its inner double quotes
// can be re-escaped after the outer quote normalization.
var argsPattern = regexp.MustCompile(`"args": "(\{.*?\})"`)

// DecodeDirective extracts a function-call directive from a raw payload.
//
// The upstream emits payloads that only loosely resemble JSON: the outer
// object typically uses single quotes, and the args value is a JSON-encoded
// string whose inner quotes arrive unescaped. Decoding is a strict two-stage
// parse over a normalized copy:
//
//  1. normalize single quotes to double quotes,
//  2. re-escape double quotes inside the nested args string value,
//  3. decode the outer object, keeping args as an opaque string.
//
// Any failure yields an error and no directive; callers log and keep
// consuming the stream.
func DecodeDirective(raw string) (*model.FunctionDirective, error) {
	normalized := strings.ReplaceAll(raw, "'", `"`)
	normalized = argsPattern.ReplaceAllStringFunc(normalized, func(match string) string {
		inner := argsPattern.FindStringSubmatch(match)[1]
		return fmt.Sprintf(`"args": "%s"`, strings.ReplaceAll(inner, `"`, `\"`))
	})

	var decoded struct {
		Function string `json:"function"`
		Args     string `json:"args"`
	}
	if err := json.Unmarshal([]byte(normalized), &decoded); err != nil {
		return nil, fmt.Errorf("malformed directive payload: %w", err)
	}
	if decoded.Function == "" {
		return nil, fmt.Errorf("directive payload has no function name")
	}

	return &model.FunctionDirective{Name: decoded.Function, Args: decoded.Args}, nil
}

// ToggleTarget returns the upper-cased link target of a toggle directive.
// It reports false for other directive names, for args that fail to decode
// as the nested {"toggle": ...} object, and for an empty toggle value.
func ToggleTarget(d *model.FunctionDirective) (string, bool) {
	if d == nil || d.Name != DirectiveToggle {
		return "", false
	}

	var args struct {
		Toggle string `json:"toggle"`
	}
	if err := json.Unmarshal([]byte(d.Args), &args); err != nil {
		return "", false
	}
	if args.Toggle == "" {
		return "", false
	}
	return strings.ToUpper(args.Toggle), true
}
