// Package apiclient is the HTTP client for the HR interview API. Every
// endpoint lives behind one base URL; failures come back as *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the API location used when none is configured.
const DefaultBaseURL = "http://localhost:3000"

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	Metrics    *Metrics
	Logger     *zerolog.Logger
	HTTPClient *http.Client
}

// Client talks to the HR interview API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	metrics *Metrics
	log     zerolog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &Error{URL: raw, Message: "invalid base URL", Cause: err}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		tokens:  opts.Tokens,
		metrics: opts.Metrics,
		log:     logger,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call describes one request. endpoint is the route template used as the
// metrics label, path the concrete path.
type call struct {
	method      string
	endpoint    string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) urlFor(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs the request and reads the whole body. Only transport
// failures are errors; status handling is left to the caller.
func (c *Client) send(ctx context.Context, in call) (*response, error) {
	target := c.urlFor(in.path, in.query)

	req, err := http.NewRequestWithContext(ctx, in.method, target, in.body)
	if err != nil {
		return nil, &Error{Method: in.method, URL: target, Message: "failed to create request", Cause: err}
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, &Error{Method: in.method, URL: target, Message: "failed to obtain auth token", Cause: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(in.method, in.endpoint, 0, elapsed)
		c.log.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", in.method).
			Str("path", in.path).
			Dur("latency", elapsed).
			Msg("API request failed")
		return nil, &Error{Method: in.method, URL: target, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(in.method, in.endpoint, resp.StatusCode, elapsed)
	c.log.Debug().
		Str("request_id", requestID).
		Str("method", in.method).
		Str("path", in.path).
		Int("status", resp.StatusCode).
		Dur("latency", elapsed).
		Msg("API request")
	if err != nil {
		return nil, &Error{Method: in.method, URL: target, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// statusError converts a non-2xx response into an *Error.
func statusError(in call, target string, resp *response) error {
	msg := serverMessage(resp.body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP status %d", resp.status)
	}
	return &Error{Method: in.method, URL: target, StatusCode: resp.status, Message: msg}
}

// do sends an optional JSON body and returns the response when its status
// is 2xx.
func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, payload any) (*response, error) {
	in := call{method: method, endpoint: endpoint, path: path, query: query}
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Method: method, URL: c.urlFor(path, query), Message: "failed to encode request body", Cause: err}
		}
		in.body = bytes.NewReader(buf)
		in.contentType = "application/json"
	}

	resp, err := c.send(ctx, in)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(in, c.urlFor(path, query), resp)
	}
	return resp, nil
}

// doJSON is do followed by decoding the body into out, unwrapping a data
// envelope. out may be nil when the body is not needed.
func (c *Client) doJSON(ctx context.Context, method, endpoint, path string, query url.Values, payload, out any) error {
	resp, err := c.do(ctx, method, endpoint, path, query, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeData(resp.body, out); err != nil {
		return malformed(method, c.urlFor(path, query), resp.status, err)
	}
	return nil
}

func malformed(method, target string, status int, cause error) error {
	return &Error{Method: method, URL: target, StatusCode: status, Message: "malformed response body", Cause: cause}
}

// decodeData unmarshals body into out, unwrapping a {"data": ...} envelope
// when one is present.
func decodeData(body []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(body, out)
}
