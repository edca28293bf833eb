package plangen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultStreamTimeout  = 5 * time.Minute
	generatePath          = "/generate"
)

// Cache is the slice of the plan cache the client depends on. Lookup
// misses are a normal control path, not errors; Save failures must be
// absorbed by the implementation (a broken cache never fails a
// generation).
type Cache interface {
	Lookup(ctx context.Context, scope string, prefs Preferences) (*Result, bool)
	Save(ctx context.Context, scope string, prefs Preferences, res *Result)
}

// Client issues generation requests against the backend and consumes the
// streamed response incrementally. One request moves through
// idle → connecting → (streaming | single-shot) → complete/errored/aborted.
type Client struct {
	http          *http.Client
	baseURL       string
	cache         Cache
	streamTimeout time.Duration
	hitDelay      time.Duration
	logger        *zap.Logger
}

type Options struct {
	BaseURL string
	// RequestTimeout bounds the wait for response headers (the
	// non-streaming budget); StreamTimeout bounds the whole exchange.
	RequestTimeout time.Duration
	StreamTimeout  time.Duration
	// CacheHitDelay is the short simulated wait served on a cache hit.
	CacheHitDelay time.Duration
	Cache         Cache
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

func NewClient(opts Options) *Client {
	reqTimeout := opts.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRequestTimeout
	}
	streamTimeout := opts.StreamTimeout
	if streamTimeout <= 0 {
		streamTimeout = defaultStreamTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: reqTimeout},
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:          httpClient,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		cache:         opts.Cache,
		streamTimeout: streamTimeout,
		hitDelay:      opts.CacheHitDelay,
		logger:        logger,
	}
}

// GenerateRequest carries one generation call: the cache scope (normally
// the user ID), the bearer credential forwarded to the backend, the
// preferences, and the caller's hooks.
type GenerateRequest struct {
	Scope       string
	Token       string
	Preferences Preferences
	Hooks       Hooks
}

// Generate returns the normalized plan for the given preferences. A cache
// hit short-circuits the entire streaming path; on a miss the exchange
// runs under the streaming budget and the result is written back to the
// cache before returning.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) Outcome[*Result] {
	if c.cache != nil {
		if res, ok := c.cache.Lookup(ctx, req.Scope, req.Preferences); ok {
			if err := c.waitHitDelay(ctx); err != nil {
				return classifyTransport[*Result](ctx, err)
			}
			c.logger.Debug("plan served from cache", zap.String("scope", req.Scope))
			return Ok(res, "served from cache")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
	defer cancel()

	body, err := json.Marshal(req.Preferences)
	if err != nil {
		return Fail[*Result](CodeBackend, "could not encode preferences", err.Error())
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return Fail[*Result](CodeNetwork, "could not build request", err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream, application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	c.logger.Debug("generation request", zap.String("destination", req.Preferences.Destination), zap.Int("duration", req.Preferences.Duration))
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return classifyTransport[*Result](ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return classifyHTTP[*Result](resp.StatusCode, b)
	}

	var out Outcome[*Result]
	if isEventStream(resp.Header.Get("Content-Type")) {
		out = c.consumeStream(ctx, resp.Body, req.Hooks)
	} else {
		out = c.consumeDocument(ctx, resp.Body, req.Hooks)
	}
	if out.Success && c.cache != nil {
		c.cache.Save(ctx, req.Scope, req.Preferences, out.Data)
	}
	return out
}

func isEventStream(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/event-stream") || strings.Contains(ct, "application/x-ndjson")
}

// consumeStream feeds body chunks to the parser as I/O makes them
// available, so hooks fire during generation rather than only at the end.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, hooks Hooks) Outcome[*Result] {
	parser := NewParser()
	var frames []Frame
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, f := range parser.Feed(buf[:n]) {
				dispatchFrame(hooks, f)
				frames = append(frames, f)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Frames parsed before the abort have already had their
			// callbacks invoked; cancellation is not retroactive.
			return classifyTransport[*Result](ctx, err)
		}
	}
	if f, ok := parser.Close(); ok {
		dispatchFrame(hooks, f)
		frames = append(frames, f)
	}
	if skipped := parser.Skipped(); skipped > 0 {
		c.logger.Debug("skipped malformed frames", zap.Int("count", skipped))
	}
	res, err := normalizeFrames(frames)
	if err != nil {
		return Fail[*Result](CodeBackend, "stream ended without a result", nil)
	}
	return Ok(res, "trip plan generated")
}

// consumeDocument handles the single-shot fallback: any non-stream
// content type is decoded as one JSON document.
func (c *Client) consumeDocument(ctx context.Context, body io.Reader, hooks Hooks) Outcome[*Result] {
	b, err := io.ReadAll(body)
	if err != nil {
		return classifyTransport[*Result](ctx, err)
	}
	res, err := normalizeDocument(b, hooks)
	if err != nil {
		var be *backendError
		if errors.As(err, &be) {
			return Fail[*Result](CodeBackend, be.message, nil)
		}
		return Fail[*Result](CodeBackend, "unexpected response body", err.Error())
	}
	return Ok(res, "trip plan generated")
}

func (c *Client) waitHitDelay(ctx context.Context) error {
	if c.hitDelay <= 0 {
		return nil
	}
	t := time.NewTimer(c.hitDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
