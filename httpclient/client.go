package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/resilkit/resilience"
)

// Client is an HTTP client that routes every request through the resilience
// chain: RateLimiter → Fallback(CircuitBreaker(Retry(request))).
type Client struct {
	httpClient *http.Client
	config     Config
	exec       *resilience.Executor[*Response]
	rl         *resilience.RateLimiter
}

// New creates a new HTTP client, failing fast on invalid configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = dependencyName(cfg.BaseURL)
	}

	breaker := cfg.Breaker
	if breaker == nil && cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		if bc.Name == "" {
			bc.Name = name
		}
		cb, err := resilience.NewCircuitBreaker(bc)
		if err != nil {
			return nil, err
		}
		breaker = cb
	}

	exec, err := resilience.NewExecutor(resilience.ExecutorConfig[*Response]{
		Name:     name,
		Retry:    cfg.Retry,
		Breaker:  breaker,
		Fallback: cfg.Fallback,
		Observer: cfg.Observer,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		exec:       exec,
	}

	if cfg.RateLimiter != nil {
		rc := *cfg.RateLimiter
		if rc.Name == "" {
			rc.Name = name
		}
		c.rl, err = resilience.NewRateLimiter(rc)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Do executes an HTTP request through the resilience chain.
// Non-2xx responses come back as both a *Response and a classified *Error;
// the error is what drives retry and breaker decisions.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.exec.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return c.executeRequest(ctx, req)
	})
}

// Get is shorthand for Do with a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post is shorthand for Do with a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Breaker exposes the client's circuit breaker, nil if none is configured.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.exec.Breaker()
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// executeRequest builds and sends one HTTP request.
func (c *Client) executeRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// Surface the caller's cancellation, not a wrapped transport error.
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}

	return result, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		target = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

// dependencyName derives a breaker name from a base URL.
func dependencyName(baseURL string) string {
	if baseURL == "" {
		return "http"
	}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "http"
}
