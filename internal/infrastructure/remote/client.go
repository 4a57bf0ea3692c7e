// Package remote is the typed HTTP/JSON client of the storefront backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// TokenFunc returns the bearer token of the active session, or "".
type TokenFunc func() string

// ObserveFunc records the outcome of one backend call. status is 0 on
// transport failure.
type ObserveFunc func(op string, status int, elapsed time.Duration)

// Client implements every backend port of the core.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	observe    ObserveFunc
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver installs a per-call metrics hook.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) { c.observe = fn }
}

func NewClient(baseURL string, timeout time.Duration, token TokenFunc, log zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if token == nil {
		token = func() string { return "" }
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
		observe:    func(string, int, time.Duration) {},
		log:        log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	headers     map[string]string
	// failMessage is shown to the user on a non-2xx answer.
	failMessage string
	// login disables the stale-session mapping of 401.
	login bool
	// lenient accepts a 2xx body that does not decode into out.
	lenient bool
}

func jsonBody(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

// do performs r and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return &domain.RemoteError{Op: r.op, Message: r.failMessage, Err: err}
	}
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" && !r.login {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(r.op, 0, time.Since(start))
		c.log.Warn().Err(err).Str("op", r.op).Str("path", r.path).Msg("backend unreachable")
		return &domain.RemoteError{Op: r.op, Message: networkMessage(r), Err: err}
	}
	defer resp.Body.Close()
	c.observe(r.op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(r, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if r.lenient {
		raw, _ := io.ReadAll(resp.Body)
		// A syntax error leaves out untouched.
		if err := json.Unmarshal(raw, out); err != nil {
			c.log.Debug().Err(err).Str("op", r.op).Msg("ignoring undecodable response body")
		}
		return nil
	}
	// An empty body leaves out untouched.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domain.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Unexpected response from server", Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (c *Client) statusError(r request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorResponse
	_ = json.Unmarshal(raw, &body)
	detail := body.Error
	if detail == "" {
		detail = body.Message
	}

	c.log.Warn().Str("op", r.op).Str("path", r.path).Int("status", resp.StatusCode).Str("detail", detail).Msg("backend rejected request")

	if resp.StatusCode == http.StatusUnauthorized {
		if r.login {
			return &domain.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Invalid username or password", Err: errors.New(detail)}
		}
		return &domain.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Your session has expired. Please login again.", Err: domain.ErrStaleSession}
	}
	if r.login && detail == "Invalid Credentials" {
		return &domain.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Invalid username or password", Err: errors.New(detail)}
	}

	var cause error
	if detail != "" {
		cause = errors.New(detail)
	}
	return &domain.RemoteError{Op: r.op, Status: resp.StatusCode, Message: r.failMessage, Err: cause}
}

func networkMessage(r request) string {
	if r.failMessage != "" {
		return r.failMessage
	}
	return "Could not reach the server. Check your connection."
}
