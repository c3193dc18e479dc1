// Package api is the HTTP boundary of the terminal: request builders for
// the auth, catalog and sales endpoints, and the bearer-token layer that
// survives access-token expiry by refreshing it at most once per call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"apexpos/credentials"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote POS service. All authenticated calls go
// through Do, which owns the refresh-and-retry protocol.
type Client struct {
	base  string
	http  *http.Client
	creds credentials.Store

	// refreshMu serializes the refresh protocol; gen counts completed
	// refresh attempts (successful or terminal) so callers that lost
	// the race reuse the winner's outcome instead of refreshing again.
	refreshMu sync.Mutex
	gen       atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request issued by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a Client for the service at baseURL, reading and writing
// tokens through creds.
func New(baseURL string, creds credentials.Store, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		http:  &http.Client{Timeout: defaultTimeout},
		creds: creds,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do issues an authenticated request and returns the raw response body
// of a 2xx reply.
//
// On a 401 it runs the refresh protocol exactly once and retries the
// original request once with the new access token. A 401 on the retry is
// terminal: refresh already happened for this call. Every other status
// passes through unchanged as a RemoteError; transport failures surface
// as NetworkError and are never retried here.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	// Load the generation before the pair: a pair read after a refresh
	// always comes with that refresh's generation, so a 401 on a stale
	// pair can never be mistaken for a post-refresh failure.
	seen := c.gen.Load()
	pair, ok, err := c.creds.Read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoCredentials
	}

	data, status, err := c.roundTrip(ctx, method, path, body, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if status != http.StatusUnauthorized {
		return checkStatus(data, status)
	}

	pair, err = c.refreshOnce(ctx, seen)
	if err != nil {
		return nil, err
	}
	data, status, err = c.roundTrip(ctx, method, path, body, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	return checkStatus(data, status)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshOnce trades the refresh token for a new access token. seen is
// the generation the caller observed before its 401: if it is stale by
// the time the lock is held, another caller already completed a refresh
// and its result (new pair, or a cleared store) is reused.
func (c *Client) refreshOnce(ctx context.Context, seen uint64) (credentials.Pair, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.gen.Load() != seen {
		pair, ok, err := c.creds.Read()
		if err != nil {
			return credentials.Pair{}, err
		}
		if !ok {
			return credentials.Pair{}, ErrSessionExpired
		}
		return pair, nil
	}

	pair, ok, err := c.creds.Read()
	if err != nil {
		return credentials.Pair{}, err
	}
	if !ok {
		return credentials.Pair{}, ErrSessionExpired
	}

	data, status, err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh",
		refreshRequest{RefreshToken: pair.RefreshToken}, "")
	if err != nil || status < 200 || status > 299 {
		return credentials.Pair{}, c.terminate(err)
	}
	var env struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if uerr := json.Unmarshal(data, &env); uerr != nil || env.Data.AccessToken == "" {
		return credentials.Pair{}, c.terminate(uerr)
	}

	next := credentials.Pair{
		AccessToken:  env.Data.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if env.Data.RefreshToken != "" {
		next.RefreshToken = env.Data.RefreshToken
	}
	if err := c.creds.Save(next); err != nil {
		return credentials.Pair{}, err
	}
	c.gen.Add(1)
	return next, nil
}

// terminate ends the session after a failed refresh: clear the store and
// advance the generation so waiting callers see the terminal outcome.
func (c *Client) terminate(cause error) error {
	_ = c.creds.Clear()
	c.gen.Add(1)
	if cause != nil {
		return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
	}
	return ErrSessionExpired
}

// roundTrip performs one HTTP exchange. It reports transport problems as
// NetworkError and leaves status interpretation to the caller.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any, token string) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &NetworkError{Op: "read " + method + " " + path, Err: err}
	}
	return data, resp.StatusCode, nil
}

// checkStatus converts a non-2xx reply into a RemoteError carrying the
// server's message.
func checkStatus(data []byte, status int) ([]byte, error) {
	if status >= 200 && status <= 299 {
		return data, nil
	}
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)
	return nil, &RemoteError{Status: status, Message: body.Message}
}
