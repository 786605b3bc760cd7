package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dm/appdx/internal/auth"
	"github.com/dm/appdx/internal/config"
	"github.com/dm/appdx/internal/trace"
)

// testController wires a DefaultClient against an httptest server that serves
// both the token endpoint and the API handler, with sleeping stubbed out.
func testController(t *testing.T, api http.HandlerFunc) (*DefaultClient, *[]time.Duration) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/controller/api/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","expires_in":300}`))
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	creds, err := config.NewCredentials("acct", "client", "secret", srv.URL)
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}

	c := New(auth.New(creds, true, 0), srv.Client(), trace.Nop())
	waits := &[]time.Duration{}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c, waits
}

func TestGetApplicationsSendsToken(t *testing.T) {
	var gotAuth, gotCSRF string
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCSRF = r.Header.Get("X-CSRF-TOKEN")
		w.Write([]byte(`[{"id":1,"name":"app"}]`))
	})

	body, err := c.GetApplications(context.Background())
	if err != nil {
		t.Fatalf("GetApplications: %v", err)
	}
	if string(body) != `[{"id":1,"name":"app"}]` {
		t.Errorf("body = %q, want raw response", body)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotCSRF != "tok" {
		t.Errorf("X-CSRF-TOKEN = %q, want %q", gotCSRF, "tok")
	}
}

func TestRetriesServerErrorThenSucceeds(t *testing.T) {
	calls := 0
	c, waits := testController(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	})

	if _, err := c.GetTiers(context.Background(), "1"); err != nil {
		t.Fatalf("GetTiers: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(*waits) != len(want) {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Errorf("waits[%d] = %v, want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestServerErrorExhaustsAttempts(t *testing.T) {
	calls := 0
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetNodes(context.Background(), "1")
	if !IsKind(err, ServerError) {
		t.Fatalf("err = %v, want ServerError", err)
	}
	if calls != maxAttempts {
		t.Errorf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestRateLimitedRetries(t *testing.T) {
	calls := 0
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := c.GetBackends(context.Background(), "1")
	if !IsKind(err, RateLimited) {
		t.Fatalf("err = %v, want RateLimited", err)
	}
	if calls != maxAttempts {
		t.Errorf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestUnauthorizedForcesSingleReauth(t *testing.T) {
	calls := 0
	c, waits := testController(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	})

	if _, err := c.GetApplications(context.Background()); err != nil {
		t.Fatalf("GetApplications: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(*waits) != 0 {
		t.Errorf("forced re-auth retry must not back off, got %v", *waits)
	}
}

func TestSecondUnauthorizedIsFatal(t *testing.T) {
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := c.GetApplications(context.Background())
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *auth.Error", err)
	}
	if authErr.Kind != auth.InvalidCredentials {
		t.Errorf("kind = %v, want InvalidCredentials", authErr.Kind)
	}
}

func TestClientErrorsDoNotRetry(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"forbidden", http.StatusForbidden, Unauthorized},
		{"not_found", http.StatusNotFound, NotFound},
		{"bad_request", http.StatusBadRequest, Malformed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				http.Error(w, "denied", tc.status)
			})

			_, err := c.GetHealthRules(context.Background(), "1")
			if !IsKind(err, tc.kind) {
				t.Fatalf("err = %v, want kind %v", err, tc.kind)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls)
			}
		})
	}
}

func TestTransportErrorRetriesAsTimeout(t *testing.T) {
	calls := 0
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Kill the connection so the client sees a transport error.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("server does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	})

	_, err := c.GetServers(context.Background())
	if !IsKind(err, Timeout) {
		t.Fatalf("err = %v, want Timeout", err)
	}
	if calls != maxAttempts {
		t.Errorf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestBackoffDuration(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{10, 8 * time.Second},
	}
	for _, tc := range tests {
		if got := backoffDuration(tc.attempt); got != tc.want {
			t.Errorf("backoffDuration(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestEndpointPaths(t *testing.T) {
	var gotURI string
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{
			"applications",
			func() error { _, err := c.GetApplications(ctx); return err },
			"/controller/rest/applications?output=json",
		},
		{
			"business_transactions",
			func() error { _, err := c.GetBusinessTransactions(ctx, "42"); return err },
			"/controller/rest/applications/42/business-transactions",
		},
		{
			"health_rules",
			func() error { _, err := c.GetHealthRules(ctx, "42"); return err },
			"/controller/alerting/rest/v1/applications/42/health-rules",
		},
		{
			"snapshots",
			func() error {
				_, err := c.GetSnapshots(ctx, "42", SnapshotOptions{
					DurationMins: 60, FirstInChain: true,
				})
				return err
			},
			"/controller/rest/applications/42/request-snapshots" +
				"?time-range-type=BEFORE_NOW&duration-in-mins=60" +
				"&first-in-chain=true&need-exit-calls=false&need-props=false" +
				"&maximum-results=1000000",
		},
		{
			"servers",
			func() error { _, err := c.GetServers(ctx); return err },
			"/controller/sim/v2/user/machines",
		},
		{
			"violations",
			func() error { _, err := c.GetHealthRuleViolations(ctx, "42", 120); return err },
			"/controller/rest/applications/42/problems/healthrule-violations" +
				"?time-range-type=BEFORE_NOW&duration-in-mins=120&output=json",
		},
		{
			"account",
			func() error { _, err := c.GetAccount(ctx); return err },
			"/controller/api/accounts/myaccount?output=json",
		},
		{
			"license_modules",
			func() error { _, err := c.GetLicenseModules(ctx, "7"); return err },
			"/controller/api/accounts/7/licensemodules",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if gotURI != tc.want {
				t.Errorf("uri = %q\nwant  %q", gotURI, tc.want)
			}
		})
	}
}

func TestGetMetricDataKeepsPreEncodedPath(t *testing.T) {
	var gotURI string
	c, _ := testController(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`[]`))
	})

	path := APMAvailabilityPath("tier", "Web Tier", "", "APP_AGENT")
	if _, err := c.GetMetricData(context.Background(), EncodeSegment("My App"), path, 60); err != nil {
		t.Fatalf("GetMetricData: %v", err)
	}

	want := "/controller/rest/applications/My%20App/metric-data" +
		"?metric-path=Application%20Infrastructure%20Performance%7CWeb%20Tier%7CAgent%7CApp%7CAvailability" +
		"&time-range-type=BEFORE_NOW&duration-in-mins=60&rollup=false&output=json"
	if gotURI != want {
		t.Errorf("uri = %q\nwant  %q", gotURI, want)
	}
}

func TestEncodeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"My App", "My%20App"},
		{"a|b", "a%7Cb"},
		{"a/b", "a%2Fb"},
	}
	for _, tc := range tests {
		if got := EncodeSegment(tc.in); got != tc.want {
			t.Errorf("EncodeSegment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAvailabilityPaths(t *testing.T) {
	node := APMAvailabilityPath("node", "Web Tier", "node-1", "MACHINE_AGENT")
	wantNode := "Application%20Infrastructure%20Performance%7CWeb%20Tier%7CIndividual%20Nodes%7Cnode-1%7CAgent%7CMachine%7CAvailability"
	if node != wantNode {
		t.Errorf("node path = %q\nwant      %q", node, wantNode)
	}

	physical := SIMAvailabilityPath([]string{"Root", "DC1"}, "host-1", "PHYSICAL")
	wantPhysical := "Application%20Infrastructure%20Performance%7CRoot%5C%7CRoot%5C%7CDC1%7CIndividual%20Nodes%7Chost-1%7CHardware%20Resources%7CMachine%7CAvailability"
	if physical != wantPhysical {
		t.Errorf("physical path = %q\nwant          %q", physical, wantPhysical)
	}

	container := SIMAvailabilityPath([]string{"Root"}, "host-2", "CONTAINER")
	wantContainer := "Application%20Infrastructure%20Performance%7CRoot%5C%7CRoot%7CIndividual%20Nodes%7Chost-2%7CHardware%20Resources%7CCPU%7C%25Busy"
	if container != wantContainer {
		t.Errorf("container path = %q\nwant           %q", container, wantContainer)
	}
}
