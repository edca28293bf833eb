package plangen

import (
	"encoding/json"
	"errors"
	"fmt"
)

// The backend answers in a handful of wrapper shapes that all carry the
// same plan underneath. docShape tags the top-level document once at the
// protocol boundary; adding a new backend shape is a new tag, not a new
// conditional chain.
type docShape int

const (
	docPlain docShape = iota // bare payload, possibly data/trip wrapped
	docContentSSE            // {"content": "<SSE text>"} wrapping a stream
	docErrorEnvelope         // {"status": "error", "message": ...}
)

var errNoFrames = errors.New("stream produced no frames")

func detectDocShape(doc any) docShape {
	m, ok := doc.(map[string]any)
	if !ok {
		return docPlain
	}
	if s, ok := m["content"].(string); ok && s != "" {
		return docContentSSE
	}
	if s, ok := m["status"].(string); ok && s == "error" {
		return docErrorEnvelope
	}
	return docPlain
}

// unwrapPayload applies the wrapper rules: a "data" field replaces the
// payload, then a "trip" field replaces it again. Each rule applies at
// most once, in that order, never recursively.
func unwrapPayload(payload any) any {
	if m, ok := payload.(map[string]any); ok {
		if inner, ok := m["data"]; ok {
			payload = inner
		}
	}
	if m, ok := payload.(map[string]any); ok {
		if inner, ok := m["trip"]; ok {
			payload = inner
		}
	}
	return payload
}

func resultFromPayload(payload any) *Result {
	res := &Result{}
	if m, ok := payload.(map[string]any); ok {
		res.Plan = m
	} else {
		// Non-object payloads (a bare itinerary array, say) keep a
		// stable place in the result.
		res.Plan = map[string]any{"itinerary": payload}
	}
	if s, ok := res.Plan["itinerary_summary"].(string); ok {
		res.ItinerarySummary = s
	}
	if s, ok := res.Plan["budget_summary"].(string); ok {
		res.BudgetSummary = s
	}
	return res
}

// normalizeFrames reduces a frame sequence to one Result. A frame named
// "complete" is authoritative (the last one, if several); otherwise the
// last frame received wins, whatever its name.
func normalizeFrames(frames []Frame) (*Result, error) {
	if len(frames) == 0 {
		return nil, errNoFrames
	}
	chosen := frames[len(frames)-1]
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event == "complete" {
			chosen = frames[i]
			break
		}
	}
	return resultFromPayload(unwrapPayload(chosen.Payload)), nil
}

// normalizeDocument handles a non-streamed response body: either a plain
// JSON plan (possibly wrapped), an error envelope, or a whole SSE stream
// smuggled inside a "content" field.
func normalizeDocument(body []byte, hooks Hooks) (*Result, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	switch detectDocShape(doc) {
	case docContentSSE:
		content := doc.(map[string]any)["content"].(string)
		frames := ParseFrames(content)
		for _, f := range frames {
			dispatchFrame(hooks, f)
		}
		return normalizeFrames(frames)
	case docErrorEnvelope:
		msg := "generation failed"
		if s, ok := doc.(map[string]any)["message"].(string); ok && s != "" {
			msg = s
		}
		return nil, &backendError{message: msg}
	default:
		return resultFromPayload(unwrapPayload(doc)), nil
	}
}

// dispatchFrame notifies hooks for one frame, in arrival order. A
// "progress" frame reaches OnProgress only when step, status, and message
// are all present.
func dispatchFrame(hooks Hooks, f Frame) {
	if hooks.OnEvent != nil {
		safeInvoke(func() { hooks.OnEvent(f) })
	}
	if f.Event != "progress" || hooks.OnProgress == nil {
		return
	}
	m, ok := f.Payload.(map[string]any)
	if !ok {
		return
	}
	step, okStep := m["step"].(string)
	status, okStatus := m["status"].(string)
	message, okMessage := m["message"].(string)
	if !okStep || !okStatus || !okMessage {
		return
	}
	safeInvoke(func() { hooks.OnProgress(Progress{Step: step, Status: status, Message: message}) })
}

// safeInvoke keeps caller callbacks from throwing into the client.
func safeInvoke(f func()) {
	defer func() { _ = recover() }()
	f()
}
