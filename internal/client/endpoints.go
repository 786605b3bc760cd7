package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SnapshotOptions mirror the request-snapshots query toggles.
type SnapshotOptions struct {
	DurationMins  int
	FirstInChain  bool
	NeedExitCalls bool
	NeedProps     bool
}

// EventOptions select which events to retrieve.
type EventOptions struct {
	DurationMins int
	EventTypes   []string
	Severities   []string
}

// GetApplications lists every application on the controller.
func (c *DefaultClient) GetApplications(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/controller/rest/applications?output=json")
}

// GetApplication fetches a single application by id.
func (c *DefaultClient) GetApplication(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/rest/applications/%s?output=json", url.PathEscape(appID)))
}

// GetBusinessTransactions fetches business transactions for an application.
// The controller answers this endpoint in XML only.
func (c *DefaultClient) GetBusinessTransactions(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/rest/applications/%s/business-transactions", url.PathEscape(appID)))
}

// GetTiers fetches tiers for an application.
func (c *DefaultClient) GetTiers(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/rest/applications/%s/tiers?output=json", url.PathEscape(appID)))
}

// GetNodes fetches all nodes in an application.
func (c *DefaultClient) GetNodes(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/rest/applications/%s/nodes?output=json", url.PathEscape(appID)))
}

// GetBackends fetches backends for an application.
func (c *DefaultClient) GetBackends(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/rest/applications/%s/backends?output=json", url.PathEscape(appID)))
}

// GetHealthRules fetches health rules through the alerting API.
func (c *DefaultClient) GetHealthRules(ctx context.Context, appID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/alerting/rest/v1/applications/%s/health-rules", url.PathEscape(appID)))
}

// GetSnapshots fetches transaction snapshots (XML) for the trailing window.
func (c *DefaultClient) GetSnapshots(ctx context.Context, appID string, opts SnapshotOptions) ([]byte, error) {
	path := fmt.Sprintf(
		"/controller/rest/applications/%s/request-snapshots"+
			"?time-range-type=BEFORE_NOW&duration-in-mins=%d"+
			"&first-in-chain=%t&need-exit-calls=%t&need-props=%t"+
			"&maximum-results=1000000",
		url.PathEscape(appID), opts.DurationMins,
		opts.FirstInChain, opts.NeedExitCalls, opts.NeedProps,
	)
	return c.get(ctx, path)
}

// GetServers fetches every machine visible to the API client.
func (c *DefaultClient) GetServers(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/controller/sim/v2/user/machines")
}

// GetMetricData fetches metric values for a pre-encoded metric path.
// appSegment must already be URL-encoded: either an application name or the
// fixed Server & Infrastructure Monitoring pseudo-application. The metric
// path is built by APMAvailabilityPath/SIMAvailabilityPath and embeds its own
// %7C separators, so the query string is assembled verbatim rather than
// through url.Values.
func (c *DefaultClient) GetMetricData(ctx context.Context, appSegment, metricPath string, durationMins int) ([]byte, error) {
	path := fmt.Sprintf(
		"/controller/rest/applications/%s/metric-data"+
			"?metric-path=%s&time-range-type=BEFORE_NOW&duration-in-mins=%d"+
			"&rollup=false&output=json",
		appSegment, metricPath, durationMins,
	)
	return c.get(ctx, path)
}

// GetEvents fetches application events filtered by type and severity.
func (c *DefaultClient) GetEvents(ctx context.Context, appID string, opts EventOptions) ([]byte, error) {
	path := fmt.Sprintf(
		"/controller/rest/applications/%s/events"+
			"?time-range-type=BEFORE_NOW&duration-in-mins=%d"+
			"&event-types=%s&severities=%s&output=json",
		url.PathEscape(appID), opts.DurationMins,
		url.QueryEscape(strings.Join(opts.EventTypes, ",")),
		url.QueryEscape(strings.Join(opts.Severities, ",")),
	)
	return c.get(ctx, path)
}

// GetHealthRuleViolations fetches health rule violations for the trailing
// window.
func (c *DefaultClient) GetHealthRuleViolations(ctx context.Context, appID string, durationMins int) ([]byte, error) {
	path := fmt.Sprintf(
		"/controller/rest/applications/%s/problems/healthrule-violations"+
			"?time-range-type=BEFORE_NOW&duration-in-mins=%d&output=json",
		url.PathEscape(appID), durationMins,
	)
	return c.get(ctx, path)
}

// GetAccount fetches the caller's account record (id resolution for the
// licensing endpoints).
func (c *DefaultClient) GetAccount(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/controller/api/accounts/myaccount?output=json")
}

// GetLicenseModules fetches license module usage for an account.
func (c *DefaultClient) GetLicenseModules(ctx context.Context, accountID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/controller/api/accounts/%s/licensemodules", url.PathEscape(accountID)))
}

// simAppSegment is the pseudo-application that owns machine metrics.
const simAppSegment = "Server%20%26%20Infrastructure%20Monitoring"

// SIMAppSegment returns the encoded app segment for machine metric queries.
func SIMAppSegment() string { return simAppSegment }

// EncodeSegment makes an application, tier or node name safe for use inside
// a metric path or URL path, keeping the vendor's encoding (space → %20,
// | → %7C).
func EncodeSegment(name string) string {
	// url.PathEscape keeps '|' literal; the controller requires it encoded.
	return strings.ReplaceAll(url.PathEscape(name), "|", "%7C")
}

// APMAvailabilityPath builds the pre-encoded metric path for tier or node
// agent availability. objectType is "tier" or "node"; machine agents report
// under Agent|Machine|Availability, app agents under Agent|App|Availability.
func APMAvailabilityPath(objectType, tierName, nodeName, agentType string) string {
	tier := EncodeSegment(tierName)
	agent := "App"
	if agentType == "MACHINE_AGENT" {
		agent = "Machine"
	}

	if objectType == "node" {
		node := EncodeSegment(nodeName)
		return fmt.Sprintf(
			"Application%%20Infrastructure%%20Performance%%7C%s%%7CIndividual%%20Nodes%%7C%s%%7CAgent%%7C%s%%7CAvailability",
			tier, node, agent,
		)
	}
	return fmt.Sprintf(
		"Application%%20Infrastructure%%20Performance%%7C%s%%7CAgent%%7C%s%%7CAvailability",
		tier, agent,
	)
}

// SIMAvailabilityPath builds the pre-encoded metric path for machine
// availability. Containers have no hardware availability metric, so CPU busy
// is used as the liveness signal instead.
func SIMAvailabilityPath(hierarchy []string, hostID, serverType string) string {
	parts := make([]string, len(hierarchy))
	for i, h := range hierarchy {
		parts[i] = EncodeSegment(h)
	}
	// Hierarchy levels are joined with an escaped backslash-pipe.
	joined := strings.Join(parts, "%5C%7C")

	if serverType == "PHYSICAL" {
		return fmt.Sprintf(
			"Application%%20Infrastructure%%20Performance%%7CRoot%%5C%%7C%s%%7CIndividual%%20Nodes%%7C%s%%7CHardware%%20Resources%%7CMachine%%7CAvailability",
			joined, EncodeSegment(hostID),
		)
	}
	return fmt.Sprintf(
		"Application%%20Infrastructure%%20Performance%%7CRoot%%5C%%7C%s%%7CIndividual%%20Nodes%%7C%s%%7CHardware%%20Resources%%7CCPU%%7C%%25Busy",
		joined, EncodeSegment(hostID),
	)
}

// FormatAppID renders an application id for use in endpoint paths.
func FormatAppID(id int64) string { return strconv.FormatInt(id, 10) }
