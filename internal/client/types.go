package client

import "encoding/xml"

// Application is one entry from /controller/rest/applications.
type Application struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AccountGUID string `json:"accountGuid"`
}

// Tier is one entry from the tiers endpoint.
type Tier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	AgentType     string `json:"agentType"`
	NumberOfNodes int    `json:"numberOfNodes"`
}

// Node is one entry from the nodes endpoint.
type Node struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	TierID              int64  `json:"tierId"`
	TierName            string `json:"tierName"`
	MachineID           int64  `json:"machineId"`
	MachineName         string `json:"machineName"`
	MachineOSType       string `json:"machineOSType"`
	Type                string `json:"type"`
	AgentType           string `json:"agentType"`
	AppAgentVersion     string `json:"appAgentVersion"`
	MachineAgentVersion string `json:"machineAgentVersion"`
	AppAgentPresent     bool   `json:"appAgentPresent"`
	MachineAgentPresent bool   `json:"machineAgentPresent"`
}

// Backend is one entry from the backends endpoint.
type Backend struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ExitPointType string `json:"exitPointType"`
}

// HealthRule is one entry from the alerting v1 health-rules endpoint.
type HealthRule struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	AffectedEntityType string `json:"affectedEntityType"`
}

// BusinessTransactions is the XML document from the business-transactions
// endpoint.
type BusinessTransactions struct {
	XMLName      xml.Name              `xml:"business-transactions"`
	Transactions []BusinessTransaction `xml:"business-transaction"`
}

// BusinessTransaction is one monitored code path.
type BusinessTransaction struct {
	ID             int64  `xml:"id"`
	Name           string `xml:"name"`
	EntryPointType string `xml:"entryPointType"`
	InternalName   string `xml:"internalName"`
	TierID         int64  `xml:"tierId"`
	TierName       string `xml:"tierName"`
	Background     bool   `xml:"background"`
}

// SnapshotList is the XML document from the request-snapshots endpoint.
type SnapshotList struct {
	XMLName   xml.Name   `xml:"request-segment-datas"`
	Snapshots []Snapshot `xml:"request-segment-data"`
}

// Snapshot is one transaction snapshot segment.
type Snapshot struct {
	ID                         int64  `xml:"id"`
	RequestGUID                string `xml:"requestGUID"`
	ApplicationID              int64  `xml:"applicationId"`
	BusinessTransactionID      int64  `xml:"businessTransactionId"`
	ApplicationComponentID     int64  `xml:"applicationComponentId"`
	ApplicationComponentNodeID int64  `xml:"applicationComponentNodeId"`
	ServerStartTime            int64  `xml:"serverStartTime"`
	LocalStartTime             int64  `xml:"localStartTime"`
	TimeTakenMillis            int64  `xml:"timeTakenInMilliSecs"`
	UserExperience             string `xml:"userExperience"`
	ErrorOccurred              bool   `xml:"errorOccurred"`
	Summary                    string `xml:"summary"`
	CallChain                  string `xml:"callChain"`
}

// Server is one machine from /controller/sim/v2/user/machines.
type Server struct {
	ID         int64                 `json:"id"`
	Name       string                `json:"name"`
	HostID     string                `json:"hostId"`
	Type       string                `json:"type"` // PHYSICAL or CONTAINER
	Hierarchy  []string              `json:"hierarchy"`
	SimEnabled bool                  `json:"simEnabled"`
	Properties map[string]string     `json:"properties"`
	Memory     map[string]MemoryInfo `json:"memory"`
}

// MemoryInfo is one entry of a machine's memory map (Physical, Swap).
type MemoryInfo struct {
	SizeMB int64 `json:"sizeMb"`
}

// MetricData is one series from the metric-data endpoint. A query that
// matches nothing yields a single series whose MetricName is the vendor's
// literal "METRIC DATA NOT FOUND".
type MetricData struct {
	MetricID     int64         `json:"metricId"`
	MetricName   string        `json:"metricName"`
	MetricPath   string        `json:"metricPath"`
	Frequency    string        `json:"frequency"`
	MetricValues []MetricValue `json:"metricValues"`
}

// MetricNotFound is the sentinel series name for empty metric queries.
const MetricNotFound = "METRIC DATA NOT FOUND"

// MetricValue is one sample in a metric series.
type MetricValue struct {
	StartTimeInMillis int64   `json:"startTimeInMillis"`
	Occurrences       int64   `json:"occurrences"`
	Current           float64 `json:"current"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Value             float64 `json:"value"`
	Count             int64   `json:"count"`
	Sum               float64 `json:"sum"`
}

// Event is one entry from the events endpoint.
type Event struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	SubType     string `json:"subType"`
	EventTime   int64  `json:"eventTime"`
	Severity    string `json:"severity"`
	Summary     string `json:"summary"`
	DeepLinkURL string `json:"deepLinkUrl"`
}

// HealthRuleViolation is one entry from the healthrule-violations endpoint.
type HealthRuleViolation struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Severity             string `json:"severity"`
	IncidentStatus       string `json:"incidentStatus"`
	StartTimeInMillis    int64  `json:"startTimeInMillis"`
	EndTimeInMillis      int64  `json:"endTimeInMillis"`
	DetectedTimeInMillis int64  `json:"detectedTimeInMillis"`
	DeepLinkURL          string `json:"deepLinkUrl"`
}

// Account is the caller's account record from /controller/api/accounts.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LicenseModules is the licensemodules response.
type LicenseModules struct {
	Modules []LicenseModule `json:"modules"`
}

// LicenseModule is one licensed agent family.
type LicenseModule struct {
	Name string `json:"name"`
}
