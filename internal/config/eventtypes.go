package config

import "sort"

// SeverityLevels are the severities accepted by the events retrieval endpoint.
var SeverityLevels = []string{"INFO", "WARN", "ERROR"}

// EventTypeGroups lists commonly observed event types by category. The
// controller may emit a subset or superset depending on features and version,
// so this catalog is intentionally broad; the operator can filter to any
// subset.
var EventTypeGroups = map[string][]string{
	"Application": {
		"APPLICATION_ERROR",
		"APPLICATION_DEPLOYMENT",
		"APPLICATION_CONFIG_CHANGE",
		"CUSTOM",
	},
	"Diagnostics": {
		"DIAGNOSTIC_SESSION",
		"ERROR_DIAGNOSTIC_SESSION",
		"SLOW_DIAGNOSTIC_SESSION",
		"DEADLOCK",
		"MEMORY_LEAK_DIAGNOSTICS",
	},
	"Discovery": {
		"BACKEND_DISCOVERED",
		"SERVICE_ENDPOINT_DISCOVERED",
	},
	"Agent": {
		"AGENT_EVENT",
		"AGENT_STATUS",
		"AGENT_CONFIGURATION",
	},
	"Policy": {
		"POLICY_OPEN_WARNING",
		"POLICY_OPEN_CRITICAL",
		"POLICY_CLOSE_WARNING",
		"POLICY_CLOSE_CRITICAL",
	},
}

// AllEventTypes returns the flattened, de-duplicated, sorted event type list.
func AllEventTypes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range EventTypeGroups {
		for _, t := range group {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
