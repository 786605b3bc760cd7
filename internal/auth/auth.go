// Package auth exchanges API client credentials for controller OAuth tokens
// and owns the single cached token slot.
package auth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dm/appdx/internal/config"
)

// tokenEndpoint is the controller OAuth path; grant parameters travel in the
// query string, matching what the controller documents for API clients.
const tokenEndpoint = "/controller/api/oauth/access_token"

// expiryBuffer is subtracted from the literal token lifetime so a token is
// never used in the final seconds before the controller rejects it.
const expiryBuffer = 30 * time.Second

// Token is the cached OAuth access token plus enough state to decide expiry.
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
	FetchedAt   time.Time
}

// Valid reports whether the token can still be used at now, applying the
// safety buffer.
func (t Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return now.Before(t.FetchedAt.Add(t.ExpiresIn - expiryBuffer))
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Authenticator performs the client-credentials grant and caches the result.
// The token slot is written only under mu; overlapping refreshes collapse
// into one request through the singleflight group.
type Authenticator struct {
	creds config.Credentials
	http  *http.Client
	now   func() time.Time

	mu    sync.Mutex
	token Token

	group singleflight.Group
}

// Option tweaks Authenticator construction.
type Option func(*Authenticator)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) { a.http = c }
}

// WithClock replaces the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// New constructs an Authenticator for the given credentials. verifySSL=false
// disables TLS certificate verification for controllers behind self-signed
// certificates.
func New(creds config.Credentials, verifySSL bool, timeout time.Duration, opts ...Option) *Authenticator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !verifySSL, //nolint:gosec
	}

	a := &Authenticator{
		creds: creds,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the controller base URL the authenticator talks to.
func (a *Authenticator) BaseURL() string { return a.creds.BaseURL }

// Credentials returns the credentials the authenticator was built with.
func (a *Authenticator) Credentials() config.Credentials { return a.creds }

// EnsureValidToken returns the cached token when it is still valid, otherwise
// authenticates and caches the replacement. This is the only way callers
// obtain a token; the slot itself is never exposed.
func (a *Authenticator) EnsureValidToken(ctx context.Context) (Token, error) {
	a.mu.Lock()
	tok := a.token
	a.mu.Unlock()
	if tok.Valid(a.now()) {
		return tok, nil
	}
	return a.Authenticate(ctx)
}

// Invalidate drops the cached token so the next EnsureValidToken call is
// forced through Authenticate. Used after a 401 mid-run.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = Token{}
	a.mu.Unlock()
}

// Authenticate performs the client-credentials grant unconditionally and
// replaces the cached token on success. Overlapping calls share one request.
func (a *Authenticator) Authenticate(ctx context.Context) (Token, error) {
	v, err, _ := a.group.Do("token", func() (any, error) {
		return a.fetchToken(ctx)
	})
	if err != nil {
		return Token{}, err
	}

	tok := v.(Token)
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
	return tok, nil
}

func (a *Authenticator) fetchToken(ctx context.Context) (Token, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", fmt.Sprintf("%s@%s", a.creds.APIClient, a.creds.Account))
	q.Set("client_secret", a.creds.APISecret)
	tokenURL := a.creds.BaseURL + tokenEndpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(""))
	if err != nil {
		return Token{}, &Error{Kind: NetworkFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return Token{}, &Error{Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Token{}, &Error{Kind: NetworkFailure, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Token{}, &Error{
			Kind: InvalidCredentials,
			Err:  fmt.Errorf("token endpoint returned %d", resp.StatusCode),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Token{}, &Error{
			Kind: MalformedResponse,
			Err:  fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, &Error{Kind: MalformedResponse, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return Token{}, &Error{Kind: MalformedResponse, Err: fmt.Errorf("token response missing access_token")}
	}
	if tr.ExpiresIn <= 0 {
		return Token{}, &Error{Kind: MalformedResponse, Err: fmt.Errorf("token response missing expires_in")}
	}

	return Token{
		AccessToken: tr.AccessToken,
		ExpiresIn:   time.Duration(tr.ExpiresIn) * time.Second,
		FetchedAt:   a.now(),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
