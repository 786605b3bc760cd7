// Package config holds run settings and the local credential store.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Settings holds tunable options for a single extraction run. Defaults mirror
// the controller-side defaults: one hour of data, rollup disabled.
type Settings struct {
	Debug     bool
	VerifySSL bool

	// Durations in minutes for time-range-type=BEFORE_NOW queries.
	APMMetricDurationMins     int
	MachineMetricDurationMins int
	SnapshotDurationMins      int
	EventDurationMins         int

	// request-snapshots query toggles.
	FirstInChain  bool
	NeedExitCalls bool
	NeedProps     bool

	MetricRollup string
}

// DefaultSettings returns the baseline Settings, with APPDX_DEBUG and
// APPDX_VERIFY_SSL environment overrides applied.
func DefaultSettings() Settings {
	return Settings{
		Debug:                     envBool("APPDX_DEBUG", false),
		VerifySSL:                 envBool("APPDX_VERIFY_SSL", true),
		APMMetricDurationMins:     60,
		MachineMetricDurationMins: 60,
		SnapshotDurationMins:      60,
		EventDurationMins:         60,
		FirstInChain:              true,
		NeedExitCalls:             false,
		NeedProps:                 false,
		MetricRollup:              "false",
	}
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

// Credentials identifies one API client on one controller account.
// BaseURL is derived from the account name when left empty.
type Credentials struct {
	Account   string
	APIClient string
	APISecret string
	BaseURL   string
}

// NewCredentials fills in the SaaS controller URL when baseURL is empty.
func NewCredentials(account, apiClient, apiSecret, baseURL string) (Credentials, error) {
	if account == "" || apiClient == "" || apiSecret == "" {
		return Credentials{}, &Error{Reason: "account, api client and api secret are all required"}
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.saas.appdynamics.com", account)
	}
	return Credentials{
		Account:   account,
		APIClient: apiClient,
		APISecret: apiSecret,
		BaseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

// Error is a user-facing configuration problem (missing or malformed
// credential data). It is surfaced to the operator, never a crash.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Err)
	}
	return "config: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }
