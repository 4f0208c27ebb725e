package workflow

import (
	"bufio"
	"io"
	"strings"

	"tickerchat/model"
)

// eventScanner splits a server-sent-event body into decoded StreamEvents.
//
// It understands the subset of the SSE wire format the workflow endpoint
// emits: "event:", "id:" and "data:" fields, records separated by a blank
// line, comment lines starting with ':'. Multiple data lines within one
// record are joined with a newline. Unknown field names are ignored, so
// envelope parsing is total — a malformed line can never fail the scan.
type eventScanner struct {
	scanner *bufio.Scanner
}

func newEventScanner(r io.Reader) *eventScanner {
	sc := bufio.NewScanner(r)
	// Step fragments are small, but sync-mode payloads routed through the
	// same endpoint have been seen well over the default 64 KiB line limit.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &eventScanner{scanner: sc}
}

// Next returns the next event in the stream, or io.EOF when the body ends.
// A record that carried no fields at all is skipped rather than surfaced.
func (s *eventScanner) Next() (model.StreamEvent, error) {
	var (
		kind    string
		id      string
		data    []string
		sawData bool
	)

	flush := func() model.StreamEvent {
		return model.NewStreamEvent(kind, id, strings.Join(data, "\n"))
	}

	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")

		if line == "" {
			if kind == "" && id == "" && !sawData {
				continue // stray separator before any field
			}
			return flush(), nil
		}
		if strings.HasPrefix(line, ":") {
			continue // comment / keep-alive
		}

		field, value := splitField(line)
		switch field {
		case "event":
			kind = value
		case "id":
			id = value
		case "data":
			data = append(data, value)
			sawData = true
		}
	}

	if err := s.scanner.Err(); err != nil {
		return model.StreamEvent{}, err
	}
	if kind != "" || id != "" || sawData {
		// Final record without a trailing separator.
		return flush(), nil
	}
	return model.StreamEvent{}, io.EOF
}

// splitField splits "name: value" per the SSE field rules: the first colon
// separates the field name, and one leading space of the value is stripped.
func splitField(line string) (string, string) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return name, strings.TrimPrefix(value, " ")
}
