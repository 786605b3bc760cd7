package process

import (
	"strings"

	"github.com/dm/appdx/internal/model"
)

// License estimation is BETA. The unit tables below approximate the vendor's
// published licensing quanta and can disagree with the authoritative billing
// numbers; the output is labelled an estimate and the whole calculation is
// opt-in, disabled by default.

// LicenseInput is one monitored node joined with its machine record. Rows
// missing server data cannot be classified and should be filtered out by the
// caller before estimation.
type LicenseInput struct {
	AgentType       string
	AppAgentVersion string
	HostID          string
	NodeName        string
	ServerType      string // PHYSICAL or CONTAINER
}

// agentTypes fixes the estimation order; friendly names match the vendor's
// product names.
var agentTypes = []struct {
	key      string
	friendly string
}{
	{"APP_AGENT", "Java Agent"},
	{"DOT_NET_APP_AGENT", ".NET Agent"},
	{"NODEJS_APP_AGENT", "NodeJS Agent"},
	{"PYTHON_APP_AGENT", "Python Agent"},
	{"PHP_APP_AGENT", "PHP Agent"},
	{"GOLANG_SDK", "Go Agent"},
	{"WMB_AGENT", "IIB Agent"},
	{"MACHINE_AGENT", "Machine Agent"},
	{"DOT_NET_MACHINE_AGENT", ".NET Machine Agent"},
	{"NATIVE_WEB_SERVER", "Apache Agent"},
	{"NATIVE_SDK", ""},
}

// hostCounted agent types consume one unit per distinct host; the remainder
// count nodes, some in blocks (NodeJS per 10 per host, Go and C++ per 3).
var hostCounted = map[string]bool{
	"DOT_NET_APP_AGENT":     true,
	"PYTHON_APP_AGENT":      true,
	"WMB_AGENT":             true,
	"MACHINE_AGENT":         true,
	"DOT_NET_MACHINE_AGENT": true,
	"NATIVE_WEB_SERVER":     true,
}

func ceilDiv(n, block int) int {
	if n <= 0 {
		return 0
	}
	return (n + block - 1) / block
}

func distinct(rows []LicenseInput, pick func(LicenseInput) string) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[pick(r)] = struct{}{}
	}
	return len(seen)
}

func filter(rows []LicenseInput, keep func(LicenseInput) bool) []LicenseInput {
	var out []LicenseInput
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func hostID(r LicenseInput) string   { return r.HostID }
func nodeName(r LicenseInput) string { return r.NodeName }

// EstimateLicenses approximates license consumption from joined node and
// machine data, one output row per agent family. Container-hosted units are
// additionally folded into microservices licenses at 5 units each.
func EstimateLicenses(rows []LicenseInput) *model.Table {
	out := model.NewTable(string(model.CategoryLicenses))
	out.AddColumns(
		"Agent Type",
		"Container Nodes", "Physical Nodes",
		"Physical Licenses (Mixed)", "Microservices Licenses (Mixed)",
		"Standard Licenses", "Licenses Required",
	)

	for _, at := range agentTypes {
		typed := filter(rows, func(r LicenseInput) bool { return r.AgentType == at.key })

		if at.key == "NATIVE_SDK" {
			// The native SDK covers both SAP ABAP (HTTP SDK builds) and C++.
			sapRows := filter(typed, func(r LicenseInput) bool { return containsHTTPSDK(r.AppAgentVersion) })
			cppRows := filter(typed, func(r LicenseInput) bool { return !containsHTTPSDK(r.AppAgentVersion) })

			out.AddRow(model.Row{
				"Agent Type":        model.String("SAP ABAP Agent"),
				"Licenses Required": model.Int(int64(distinct(sapRows, hostID))),
			})
			out.AddRow(model.Row{
				"Agent Type":        model.String("C++ Agent"),
				"Licenses Required": model.Int(int64(ceilDiv(distinct(cppRows, hostID), 3))),
			})
			continue
		}

		container := filter(typed, func(r LicenseInput) bool { return r.ServerType == "CONTAINER" })
		physical := filter(typed, func(r LicenseInput) bool { return r.ServerType == "PHYSICAL" })

		var containerLic, physicalLic int
		switch {
		case hostCounted[at.key]:
			containerLic = distinct(container, hostID)
			physicalLic = distinct(physical, hostID)

		case at.key == "NODEJS_APP_AGENT":
			// Blocks of 10 node processes per host.
			for _, h := range distinctValues(typed, hostID) {
				onHost := filter(typed, func(r LicenseInput) bool { return r.HostID == h })
				containerLic += ceilDiv(distinct(filter(onHost, isContainer), nodeName), 10)
				physicalLic += ceilDiv(distinct(filter(onHost, isPhysical), nodeName), 10)
			}

		case at.key == "GOLANG_SDK":
			containerLic = ceilDiv(distinct(container, nodeName), 3)
			physicalLic = ceilDiv(distinct(physical, nodeName), 3)

		default: // APP_AGENT, PHP_APP_AGENT: one unit per node
			containerLic = distinct(container, nodeName)
			physicalLic = distinct(physical, nodeName)
		}

		out.AddRow(model.Row{
			"Agent Type":                     model.String(at.friendly),
			"Container Nodes":                model.Int(int64(len(container))),
			"Physical Nodes":                 model.Int(int64(len(physical))),
			"Physical Licenses (Mixed)":      model.Int(int64(physicalLic)),
			"Microservices Licenses (Mixed)": model.Int(int64(ceilDiv(containerLic, 5))),
			"Standard Licenses":              model.Int(int64(physicalLic)),
			"Licenses Required":              model.Int(int64(physicalLic + ceilDiv(containerLic, 5))),
		})
	}

	return out
}

func isContainer(r LicenseInput) bool { return r.ServerType == "CONTAINER" }
func isPhysical(r LicenseInput) bool  { return r.ServerType == "PHYSICAL" }

func containsHTTPSDK(version string) bool {
	return strings.Contains(version, "with HTTP SDK")
}

func distinctValues(rows []LicenseInput, pick func(LicenseInput) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := pick(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
