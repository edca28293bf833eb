package plangen

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Parser incrementally decodes an SSE byte stream into frames. Chunks may
// split anywhere, including mid-line; a trailing partial line is carried
// over and never parsed prematurely. A frame is emitted at a blank line
// when both the event name and at least one data line are present and the
// joined data decodes as JSON; anything else is discarded silently.
type Parser struct {
	buf     []byte
	event   string
	data    []string
	skipped int
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes the next chunk and returns the frames it completed, in
// stream order.
func (p *Parser) Feed(chunk []byte) []Frame {
	p.buf = append(p.buf, chunk...)
	idx := bytes.LastIndexByte(p.buf, '\n')
	if idx < 0 {
		return nil
	}
	complete := string(p.buf[:idx])
	rest := make([]byte, len(p.buf)-idx-1)
	copy(rest, p.buf[idx+1:])
	p.buf = rest

	var frames []Frame
	for _, line := range strings.Split(complete, "\n") {
		if f, ok := p.consumeLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Close flushes the pending frame at stream end; no trailing blank line is
// required for the final frame.
func (p *Parser) Close() (Frame, bool) {
	if len(p.buf) > 0 {
		line := string(p.buf)
		p.buf = nil
		if f, ok := p.consumeLine(line); ok {
			// The leftover was itself a terminator.
			return f, true
		}
	}
	return p.flush()
}

// Skipped reports how many terminated frames were dropped because their
// data did not decode as JSON.
func (p *Parser) Skipped() int {
	return p.skipped
}

func (p *Parser) consumeLine(line string) (Frame, bool) {
	line = strings.TrimSuffix(line, "\r")
	switch {
	case line == "":
		return p.flush()
	case strings.HasPrefix(line, "event:"):
		// A second event: line before the flush overwrites the open
		// frame's name; only one name applies per terminated frame.
		p.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
	case strings.HasPrefix(line, "data:"):
		p.data = append(p.data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
	}
	return Frame{}, false
}

func (p *Parser) flush() (Frame, bool) {
	event, data := p.event, p.data
	p.event, p.data = "", nil
	if event == "" || len(data) == 0 {
		return Frame{}, false
	}
	// Multiple data: lines join with a newline, which is what lets a JSON
	// payload span lines.
	raw := strings.Join(data, "\n")
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		p.skipped++
		return Frame{}, false
	}
	return Frame{Event: event, Data: raw, Payload: payload}, true
}

// ParseFrames decodes a complete SSE document in one shot. Used for
// streams that arrive wrapped inside a JSON "content" field.
func ParseFrames(text string) []Frame {
	p := NewParser()
	frames := p.Feed([]byte(text))
	if f, ok := p.Close(); ok {
		frames = append(frames, f)
	}
	return frames
}
