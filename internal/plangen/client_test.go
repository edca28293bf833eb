package plangen

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memCache struct {
	mu    sync.Mutex
	items map[string]*Result
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]*Result)}
}

func (c *memCache) key(scope string, prefs Preferences) string {
	return scope + "/" + prefs.Destination
}

func (c *memCache) Lookup(_ context.Context, scope string, prefs Preferences) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.items[c.key(scope, prefs)]
	return res, ok
}

func (c *memCache) Save(_ context.Context, scope string, prefs Preferences, res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[c.key(scope, prefs)] = res
}

func sseServer(t *testing.T, hits *int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, body)
		flusher.Flush()
	}))
}

func TestGenerateStreamSuccess(t *testing.T) {
	stream := "event: progress\n" +
		"data: {\"step\":\"outline\",\"status\":\"running\",\"message\":\"Drafting\"}\n" +
		"\n" +
		"event: complete\n" +
		"data: {\"data\":{\"trip\":{\"destination\":\"Paris\",\"itinerary_summary\":\"Three days\"}}}\n" +
		"\n"
	hits := 0
	srv := sseServer(t, &hits, stream)
	defer srv.Close()

	cache := newMemCache()
	client := NewClient(Options{BaseURL: srv.URL, Cache: cache})

	var steps []string
	var events []string
	out := client.Generate(context.Background(), GenerateRequest{
		Scope:       "user-1",
		Preferences: Preferences{Destination: "Paris", Duration: 3, Travelers: 2},
		Hooks: Hooks{
			OnProgress: func(p Progress) { steps = append(steps, p.Step) },
			OnEvent:    func(f Frame) { events = append(events, f.Event) },
		},
	})
	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.Data.Plan["destination"] != "Paris" {
		t.Fatalf("plan = %v", out.Data.Plan)
	}
	if out.Data.ItinerarySummary != "Three days" {
		t.Fatalf("itinerary summary = %q", out.Data.ItinerarySummary)
	}
	if len(steps) != 1 || steps[0] != "outline" {
		t.Fatalf("progress steps = %v", steps)
	}
	if len(events) != 2 || events[0] != "progress" || events[1] != "complete" {
		t.Fatalf("events = %v", events)
	}

	// Second call must be served from the cache without touching the server.
	out = client.Generate(context.Background(), GenerateRequest{
		Scope:       "user-1",
		Preferences: Preferences{Destination: "Paris", Duration: 3, Travelers: 2},
	})
	if !out.Success {
		t.Fatalf("cached outcome = %+v, want success", out)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1", hits)
	}
}

func TestGenerateSingleShotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"trip":{"destination":"Kyoto"}}}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "Kyoto", Duration: 5, Travelers: 1},
	})
	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.Data.Plan["destination"] != "Kyoto" {
		t.Fatalf("plan = %v", out.Data.Plan)
	}
}

func TestGenerateStreamTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Options{BaseURL: srv.URL, StreamTimeout: 50 * time.Millisecond})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "Nowhere", Duration: 1, Travelers: 1},
	})
	if out.Success {
		t.Fatal("outcome succeeded, want timeout failure")
	}
	if out.Code != CodeTimeout {
		t.Fatalf("code = %q, want %q", out.Code, CodeTimeout)
	}
}

func TestGenerateCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(ctx, GenerateRequest{
		Preferences: Preferences{Destination: "Nowhere", Duration: 1, Travelers: 1},
	})
	if out.Success || out.Code != CodeTimeout {
		t.Fatalf("outcome = %+v, want TIMEOUT on cancellation", out)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream exploded"}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "X", Duration: 1, Travelers: 1},
	})
	if out.Success {
		t.Fatal("outcome succeeded, want failure")
	}
	if out.Code != "HTTP_502" {
		t.Fatalf("code = %q, want HTTP_502", out.Code)
	}
	if out.Message != "upstream exploded" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestGenerateHTTPErrorBodyCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"code":"MODEL_OVERLOADED","error":"try again later"}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "X", Duration: 1, Travelers: 1},
	})
	if out.Code != "MODEL_OVERLOADED" || out.Message != "try again later" {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "X", Duration: 1, Travelers: 1},
	})
	if out.Success || out.Code != CodeNetwork {
		t.Fatalf("outcome = %+v, want NETWORK_ERROR", out)
	}
}

func TestGenerateBackendErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"error","message":"generation failed upstream"}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "X", Duration: 1, Travelers: 1},
	})
	if out.Success || out.Code != CodeBackend {
		t.Fatalf("outcome = %+v, want BACKEND_ERROR", out)
	}
	if out.Message != "generation failed upstream" {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestGenerateEmptyStream(t *testing.T) {
	srv := sseServer(t, nil, "")
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "X", Duration: 1, Travelers: 1},
	})
	if out.Success || out.Code != CodeBackend {
		t.Fatalf("outcome = %+v, want BACKEND_ERROR for empty stream", out)
	}
}

func TestGenerateForwardsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"destination":"Y"}`)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Token:       "tok-123",
		Preferences: Preferences{Destination: "Y", Duration: 1, Travelers: 1},
	})
	if !out.Success {
		t.Fatalf("outcome = %+v", out)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestGenerateHookPanicDoesNotFail(t *testing.T) {
	stream := "event: complete\ndata: {\"destination\":\"Z\"}\n\n"
	srv := sseServer(t, nil, stream)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	out := client.Generate(context.Background(), GenerateRequest{
		Preferences: Preferences{Destination: "Z", Duration: 1, Travelers: 1},
		Hooks:       Hooks{OnEvent: func(Frame) { panic("hook blew up") }},
	})
	if !out.Success {
		t.Fatalf("outcome = %+v, want success despite panicking hook", out)
	}
}

func TestGenerateCacheHitDelayHonorsContext(t *testing.T) {
	cache := newMemCache()
	prefs := Preferences{Destination: "Paris", Duration: 2, Travelers: 1}
	cache.Save(context.Background(), "u", prefs, &Result{Plan: map[string]any{"destination": "Paris"}})

	client := NewClient(Options{BaseURL: "http://127.0.0.1:0", Cache: cache, CacheHitDelay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out := client.Generate(ctx, GenerateRequest{Scope: "u", Preferences: prefs})
	if out.Success || out.Code != CodeTimeout {
		t.Fatalf("outcome = %+v, want TIMEOUT when the hit delay outlives the context", out)
	}
}
