package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// dataPrefix marks lines that carry a JSON event payload. All other lines
// (SSE comments, blank keep-alives) are ignored.
const dataPrefix = "data: "

// lineScanner reassembles complete lines from arbitrarily-chunked stream
// reads. A trailing partial line stays buffered until a later chunk completes
// it; it is never handed out as if complete.
type lineScanner struct {
	buf []byte
}

// feed appends a chunk and returns all newly completed lines, in order.
func (s *lineScanner) feed(p []byte) []string {
	s.buf = append(s.buf, p...)

	var lines []string
	for {
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(s.buf[:i]))
		s.buf = s.buf[i+1:]
	}
	return lines
}

// parseEvent decodes a single stream line. ok is false for lines without the
// data prefix; a non-nil error means the line had the prefix but malformed
// JSON and should be dropped without aborting the stream.
func parseEvent(line string) (ev Event, ok bool, err error) {
	line = strings.TrimSuffix(line, "\r")
	payload, found := strings.CutPrefix(line, dataPrefix)
	if !found {
		return Event{}, false, nil
	}
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, false, fmt.Errorf("malformed event payload: %w", err)
	}
	return ev, true, nil
}
