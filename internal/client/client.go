// Package client issues authenticated REST calls against an AppDynamics
// controller and normalizes failures into a fixed error taxonomy.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dm/appdx/internal/auth"
	"github.com/dm/appdx/internal/trace"
)

// Retry bounds for one logical call. Retries apply to 429/5xx/transport
// failures only; waits double per attempt and totalWaitCap bounds the
// cumulative sleep so one bad endpoint cannot stall a run.
const (
	maxAttempts  = 4
	baseBackoff  = 500 * time.Millisecond
	maxBackoff   = 8 * time.Second
	totalWaitCap = 20 * time.Second

	maxResponseBytes = 128 * 1024 * 1024 // request-snapshots payloads can be large
)

// Controller is the controller API surface consumed by the extractor.
// Endpoint methods return the raw response body; nothing is decoded until it
// has passed validation.
type Controller interface {
	GetApplications(ctx context.Context) ([]byte, error)
	GetApplication(ctx context.Context, appID string) ([]byte, error)
	GetBusinessTransactions(ctx context.Context, appID string) ([]byte, error)
	GetTiers(ctx context.Context, appID string) ([]byte, error)
	GetNodes(ctx context.Context, appID string) ([]byte, error)
	GetBackends(ctx context.Context, appID string) ([]byte, error)
	GetHealthRules(ctx context.Context, appID string) ([]byte, error)
	GetSnapshots(ctx context.Context, appID string, opts SnapshotOptions) ([]byte, error)
	GetServers(ctx context.Context) ([]byte, error)
	GetMetricData(ctx context.Context, appSegment, metricPath string, durationMins int) ([]byte, error)
	GetEvents(ctx context.Context, appID string, opts EventOptions) ([]byte, error)
	GetHealthRuleViolations(ctx context.Context, appID string, durationMins int) ([]byte, error)
	GetLicenseModules(ctx context.Context, accountID string) ([]byte, error)
	GetAccount(ctx context.Context) ([]byte, error)
	BaseURL() string
}

// DefaultClient implements Controller over net/http with a bounded retry
// state machine per call.
type DefaultClient struct {
	auth  *auth.Authenticator
	http  *http.Client
	log   *trace.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Controller = (*DefaultClient)(nil)

// New constructs a DefaultClient. httpClient should share the authenticator's
// transport settings (TLS verification, timeout); pass nil for a default.
func New(a *auth.Authenticator, httpClient *http.Client, log *trace.Logger) *DefaultClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = trace.Nop()
	}
	return &DefaultClient{
		auth:  a,
		http:  httpClient,
		log:   log,
		sleep: sleepCtx,
	}
}

// BaseURL returns the controller base URL.
func (c *DefaultClient) BaseURL() string { return c.auth.BaseURL() }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration returns min(baseBackoff << attempt, maxBackoff).
func backoffDuration(attempt int) time.Duration {
	d := baseBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// get performs one logical GET with token handling and bounded retries:
//
//   - the token is re-validated immediately before every attempt
//   - a 401 forces exactly one re-authentication and one transparent retry;
//     a second consecutive 401 surfaces as a fatal auth error
//   - 429 and 5xx retry with exponential backoff until the attempt limit or
//     the cumulative wait cap runs out
//   - other 4xx never retry
func (c *DefaultClient) get(ctx context.Context, path string) ([]byte, error) {
	reqURL := strings.TrimRight(c.auth.BaseURL(), "/") + path

	var (
		totalWait  time.Duration
		reauthDone bool
		lastErr    error
		lastStatus int
		lastKind   ErrorKind
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		tok, err := c.auth.EnsureValidToken(ctx)
		if err != nil {
			return nil, err
		}

		body, status, err := c.doOnce(ctx, reqURL, tok)
		if err != nil {
			lastErr = err
			lastStatus = 0
			lastKind = Timeout
		} else {
			switch {
			case status >= 200 && status < 300:
				return body, nil

			case status == http.StatusUnauthorized:
				if reauthDone {
					return nil, &auth.Error{
						Kind: auth.InvalidCredentials,
						Err:  fmt.Errorf("%s: still unauthorized after forced re-authentication", path),
					}
				}
				reauthDone = true
				c.auth.Invalidate()
				if _, err := c.auth.Authenticate(ctx); err != nil {
					return nil, err
				}
				// The forced retry does not consume a backoff attempt.
				attempt--
				continue

			case status == http.StatusForbidden:
				return nil, &APIError{Kind: Unauthorized, Endpoint: path, Status: status}

			case status == http.StatusNotFound:
				return nil, &APIError{Kind: NotFound, Endpoint: path, Status: status}

			case status == http.StatusTooManyRequests:
				lastErr = errors.New("throttled by controller")
				lastStatus = status
				lastKind = RateLimited

			case status >= 500:
				lastErr = fmt.Errorf("controller error: %s", truncate(body, 200))
				lastStatus = status
				lastKind = ServerError

			default:
				return nil, &APIError{
					Kind:     Malformed,
					Endpoint: path,
					Status:   status,
					Err:      errors.New(truncate(body, 200)),
				}
			}
		}

		if attempt == maxAttempts-1 {
			break
		}
		wait := backoffDuration(attempt)
		if totalWait+wait > totalWaitCap {
			break
		}
		totalWait += wait
		c.log.Debug("retrying", "url", reqURL, "attempt", attempt+1, "wait", wait.String())
		if err := c.sleep(ctx, wait); err != nil {
			return nil, &APIError{Kind: Timeout, Endpoint: path, Err: err}
		}
	}

	return nil, &APIError{Kind: lastKind, Endpoint: path, Status: lastStatus, Err: lastErr}
}

// doOnce performs a single HTTP round trip. Transport errors come back as
// err; HTTP-level failures come back as (body, status, nil).
func (c *DefaultClient) doOnce(ctx context.Context, reqURL string, tok auth.Token) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json, application/xml;q=0.9, */*;q=0.8")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("X-CSRF-TOKEN", tok.AccessToken)

	c.log.Request(http.MethodGet, reqURL)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "url", reqURL, "error", err.Error())
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, err
	}

	c.log.Response(http.MethodGet, reqURL, resp.StatusCode, time.Since(start), len(body))
	return body, resp.StatusCode, nil
}

// IsTimeout reports whether err is a deadline or transport timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
