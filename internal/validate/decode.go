package validate

import (
	"encoding/json"

	"github.com/dm/appdx/internal/client"
)

// Per-endpoint required shapes. Only the fields downstream arithmetic and
// joins depend on are enforced; everything else may vary by controller
// version.
var (
	applicationShape = []Field{
		{Path: "id", Type: Number},
		{Path: "name", Type: String},
	}
	tierShape = []Field{
		{Path: "id", Type: Number},
		{Path: "name", Type: String},
		{Path: "agentType", Type: String},
		{Path: "numberOfNodes", Type: Number},
	}
	nodeShape = []Field{
		{Path: "id", Type: Number},
		{Path: "name", Type: String},
		{Path: "tierName", Type: String},
		{Path: "agentType", Type: String},
		{Path: "machineName", Type: String},
	}
	backendShape = []Field{
		{Path: "id", Type: Number},
		{Path: "name", Type: String},
	}
	healthRuleShape = []Field{
		{Path: "id", Type: Number},
		{Path: "name", Type: String},
		{Path: "enabled", Type: Bool},
	}
	serverShape = []Field{
		{Path: "hostId", Type: String},
		{Path: "type", Type: String},
	}
	metricShape = []Field{
		{Path: "metricName", Type: String},
		{Path: "metricValues", Type: Array},
	}
	eventShape = []Field{
		{Path: "id", Type: Number},
		{Path: "type", Type: String},
		{Path: "eventTime", Type: Number},
	}
	violationShape = []Field{
		{Path: "id", Type: Number},
		{Path: "severity", Type: String},
		{Path: "startTimeInMillis", Type: Number},
	}
	accountShape = []Field{
		{Path: "id", Type: String},
		{Path: "name", Type: String},
	}
)

func decodeArray[T any](body []byte, shape []Field) ([]T, error) {
	if Empty(body) {
		return nil, nil
	}
	if err := ObjectArray(body, shape...); err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: TypeMismatch, Field: "document", Err: err}
	}
	return out, nil
}

// Applications validates and decodes the applications payload.
func Applications(body []byte) ([]client.Application, error) {
	return decodeArray[client.Application](body, applicationShape)
}

// Tiers validates and decodes the tiers payload.
func Tiers(body []byte) ([]client.Tier, error) {
	return decodeArray[client.Tier](body, tierShape)
}

// Nodes validates and decodes the nodes payload.
func Nodes(body []byte) ([]client.Node, error) {
	return decodeArray[client.Node](body, nodeShape)
}

// Backends validates and decodes the backends payload.
func Backends(body []byte) ([]client.Backend, error) {
	return decodeArray[client.Backend](body, backendShape)
}

// HealthRules validates and decodes the health-rules payload.
func HealthRules(body []byte) ([]client.HealthRule, error) {
	return decodeArray[client.HealthRule](body, healthRuleShape)
}

// Servers validates and decodes the machines payload.
func Servers(body []byte) ([]client.Server, error) {
	return decodeArray[client.Server](body, serverShape)
}

// MetricData validates and decodes a metric-data payload.
func MetricData(body []byte) ([]client.MetricData, error) {
	return decodeArray[client.MetricData](body, metricShape)
}

// Events validates and decodes the events payload.
func Events(body []byte) ([]client.Event, error) {
	return decodeArray[client.Event](body, eventShape)
}

// HealthRuleViolations validates and decodes the violations payload.
func HealthRuleViolations(body []byte) ([]client.HealthRuleViolation, error) {
	return decodeArray[client.HealthRuleViolation](body, violationShape)
}

// Account validates and decodes the myaccount payload.
func Account(body []byte) (*client.Account, error) {
	if Empty(body) {
		return nil, &Error{Kind: MissingField, Field: "id"}
	}
	if err := Object(body, accountShape...); err != nil {
		return nil, err
	}
	var acct client.Account
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, &Error{Kind: TypeMismatch, Field: "document", Err: err}
	}
	return &acct, nil
}

// LicenseModules validates and decodes the licensemodules payload.
func LicenseModules(body []byte) (*client.LicenseModules, error) {
	if Empty(body) {
		return nil, nil
	}
	if err := Object(body, Field{Path: "modules", Type: Array}); err != nil {
		return nil, err
	}
	var mods client.LicenseModules
	if err := json.Unmarshal(body, &mods); err != nil {
		return nil, &Error{Kind: TypeMismatch, Field: "modules", Err: err}
	}
	return &mods, nil
}
