package plangen

import (
	"testing"
)

const twoFrameStream = "event: progress\n" +
	"data: {\"step\":\"outline\",\"status\":\"running\",\"message\":\"Drafting itinerary\"}\n" +
	"\n" +
	"event: complete\n" +
	"data: {\"trip\":{\"destination\":\"Paris\",\"duration\":3}}\n" +
	"\n"

func collectFrames(t *testing.T, chunks ...[]byte) []Frame {
	t.Helper()
	p := NewParser()
	var frames []Frame
	for _, c := range chunks {
		frames = append(frames, p.Feed(c)...)
	}
	if f, ok := p.Close(); ok {
		frames = append(frames, f)
	}
	return frames
}

func TestParserSplitAtEveryByte(t *testing.T) {
	raw := []byte(twoFrameStream)
	for cut := 0; cut <= len(raw); cut++ {
		frames := collectFrames(t, raw[:cut], raw[cut:])
		if len(frames) != 2 {
			t.Fatalf("cut at %d: got %d frames, want 2", cut, len(frames))
		}
		if frames[0].Event != "progress" || frames[1].Event != "complete" {
			t.Fatalf("cut at %d: got events %q, %q", cut, frames[0].Event, frames[1].Event)
		}
	}
}

func TestParserMultiLineData(t *testing.T) {
	stream := "event: complete\n" +
		"data: {\"a\": 1,\n" +
		"data: \"b\": 2}\n" +
		"\n"
	frames := collectFrames(t, []byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	m, ok := frames[0].Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload is %T, want map", frames[0].Payload)
	}
	if m["a"] != float64(1) || m["b"] != float64(2) {
		t.Fatalf("payload = %v", m)
	}
}

func TestParserSkipsMalformedFrame(t *testing.T) {
	stream := "event: progress\n" +
		"data: this is not json\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"done\": true}\n" +
		"\n"
	p := NewParser()
	frames := p.Feed([]byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Event != "complete" {
		t.Fatalf("event = %q, want complete", frames[0].Event)
	}
	if p.Skipped() != 1 {
		t.Fatalf("skipped = %d, want 1", p.Skipped())
	}
}

func TestParserFlushesFinalFrameAtEOF(t *testing.T) {
	// No trailing blank line after the last frame.
	stream := "event: complete\ndata: {\"done\": true}"
	frames := collectFrames(t, []byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Event != "complete" {
		t.Fatalf("event = %q, want complete", frames[0].Event)
	}
}

func TestParserEventNameOverwrite(t *testing.T) {
	stream := "event: partial\n" +
		"event: complete\n" +
		"data: {\"done\": true}\n" +
		"\n"
	frames := collectFrames(t, []byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Event != "complete" {
		t.Fatalf("event = %q, want the later name to win", frames[0].Event)
	}
}

func TestParserEmptyDataLineContributesBlank(t *testing.T) {
	stream := "event: complete\n" +
		"data: [1,\n" +
		"data:\n" +
		"data: 2]\n" +
		"\n"
	frames := collectFrames(t, []byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	arr, ok := frames[0].Payload.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("payload = %v", frames[0].Payload)
	}
}

func TestParserDropsIncompleteFrames(t *testing.T) {
	cases := []struct {
		name   string
		stream string
	}{
		{"data without event", "data: {\"x\": 1}\n\n"},
		{"event without data", "event: progress\n\n"},
		{"blank lines only", "\n\n\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frames := collectFrames(t, []byte(tc.stream))
			if len(frames) != 0 {
				t.Fatalf("got %d frames, want 0", len(frames))
			}
		})
	}
}

func TestParserToleratesCRLF(t *testing.T) {
	stream := "event: complete\r\ndata: {\"done\": true}\r\n\r\n"
	frames := collectFrames(t, []byte(stream))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
}

func TestParseFrames(t *testing.T) {
	frames := ParseFrames(twoFrameStream)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[1].Event != "complete" {
		t.Fatalf("event = %q, want complete", frames[1].Event)
	}
}
