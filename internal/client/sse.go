package client

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxEventLine bounds a single line of the event stream.
const maxEventLine = 1024 * 1024

// sseEvent is one dispatched server-sent event.
type sseEvent struct {
	Event string
	ID    string
	Data  string
}

// sseReader splits a text/event-stream body into events. It understands
// data, event, id and retry fields and skips comment lines.
type sseReader struct {
	scanner *bufio.Scanner
	retry   time.Duration // last retry hint sent by the server, 0 if none
}

func newSSEReader(r io.Reader) *sseReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	sc.Split((&lineSplitter{}).split)
	return &sseReader{scanner: sc}
}

// lineSplitter is a bufio.SplitFunc that ends lines on "\r\n", "\n" or a
// bare "\r". A "\r" at the end of the buffered data is returned at once; the
// "\n" that may follow it in the next read is then skipped.
type lineSplitter struct {
	skipLF bool
}

func (s *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if s.skipLF && len(data) > 0 {
		s.skipLF = false
		if data[0] == '\n' {
			return 1, nil, nil
		}
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 == len(data) {
				s.skipLF = true
			} else if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
		}
		return i + 1, data[:i], nil
	}

	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Next blocks until a complete event has been read. It returns io.EOF when
// the stream ends; a trailing event without its blank line is discarded.
func (r *sseReader) Next() (sseEvent, error) {
	var (
		ev      sseEvent
		data    []string
		hasData bool
	)
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if hasData {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
			ev = sseEvent{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			ev.Event = value
		case "id":
			ev.ID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				r.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	return sseEvent{}, io.EOF
}
