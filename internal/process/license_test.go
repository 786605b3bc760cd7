package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/appdx/internal/model"
)

func findAgentRow(t *testing.T, tbl *model.Table, agent string) model.Row {
	t.Helper()
	for _, row := range tbl.Rows {
		if row["Agent Type"].Display() == agent {
			return row
		}
	}
	t.Fatalf("no row for agent %q", agent)
	return nil
}

func TestEstimateLicensesJavaCountsNodes(t *testing.T) {
	rows := []LicenseInput{
		{AgentType: "APP_AGENT", HostID: "h1", NodeName: "n1", ServerType: "PHYSICAL"},
		{AgentType: "APP_AGENT", HostID: "h1", NodeName: "n2", ServerType: "PHYSICAL"},
		{AgentType: "APP_AGENT", HostID: "h2", NodeName: "n3", ServerType: "CONTAINER"},
	}

	java := findAgentRow(t, EstimateLicenses(rows), "Java Agent")
	assert.Equal(t, "2", java["Physical Nodes"].Display())
	assert.Equal(t, "1", java["Container Nodes"].Display())
	assert.Equal(t, "2", java["Physical Licenses (Mixed)"].Display())
	// 1 container unit folds into one 5-unit microservices license.
	assert.Equal(t, "1", java["Microservices Licenses (Mixed)"].Display())
	assert.Equal(t, "3", java["Licenses Required"].Display())
}

func TestEstimateLicensesMachineAgentCountsHosts(t *testing.T) {
	rows := []LicenseInput{
		{AgentType: "MACHINE_AGENT", HostID: "h1", NodeName: "n1", ServerType: "PHYSICAL"},
		{AgentType: "MACHINE_AGENT", HostID: "h1", NodeName: "n2", ServerType: "PHYSICAL"},
		{AgentType: "MACHINE_AGENT", HostID: "h2", NodeName: "n3", ServerType: "PHYSICAL"},
	}

	ma := findAgentRow(t, EstimateLicenses(rows), "Machine Agent")
	assert.Equal(t, "2", ma["Physical Licenses (Mixed)"].Display(), "two distinct hosts")
}

func TestEstimateLicensesNodeJSBlocksOfTenPerHost(t *testing.T) {
	var rows []LicenseInput
	for i := 0; i < 12; i++ {
		rows = append(rows, LicenseInput{
			AgentType: "NODEJS_APP_AGENT", HostID: "h1",
			NodeName: string(rune('a' + i)), ServerType: "CONTAINER",
		})
	}
	rows = append(rows, LicenseInput{
		AgentType: "NODEJS_APP_AGENT", HostID: "h2", NodeName: "z", ServerType: "PHYSICAL",
	})

	njs := findAgentRow(t, EstimateLicenses(rows), "NodeJS Agent")
	// 12 container processes on h1 are 2 blocks of 10; 2 units fold into 1
	// microservices license.
	assert.Equal(t, "1", njs["Microservices Licenses (Mixed)"].Display())
	assert.Equal(t, "1", njs["Physical Licenses (Mixed)"].Display())
}

func TestEstimateLicensesGoBlocksOfThree(t *testing.T) {
	rows := []LicenseInput{
		{AgentType: "GOLANG_SDK", HostID: "h1", NodeName: "n1", ServerType: "PHYSICAL"},
		{AgentType: "GOLANG_SDK", HostID: "h1", NodeName: "n2", ServerType: "PHYSICAL"},
		{AgentType: "GOLANG_SDK", HostID: "h2", NodeName: "n3", ServerType: "PHYSICAL"},
		{AgentType: "GOLANG_SDK", HostID: "h2", NodeName: "n4", ServerType: "PHYSICAL"},
	}

	goAgent := findAgentRow(t, EstimateLicenses(rows), "Go Agent")
	assert.Equal(t, "2", goAgent["Physical Licenses (Mixed)"].Display(), "ceil(4/3)")
}

func TestEstimateLicensesNativeSDKSplit(t *testing.T) {
	rows := []LicenseInput{
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24 with HTTP SDK", HostID: "sap1"},
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24 with HTTP SDK", HostID: "sap2"},
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24", HostID: "cpp1"},
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24", HostID: "cpp2"},
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24", HostID: "cpp3"},
		{AgentType: "NATIVE_SDK", AppAgentVersion: "Server Agent v24", HostID: "cpp4"},
	}
	tbl := EstimateLicenses(rows)

	sap := findAgentRow(t, tbl, "SAP ABAP Agent")
	assert.Equal(t, "2", sap["Licenses Required"].Display(), "one per host")

	cpp := findAgentRow(t, tbl, "C++ Agent")
	assert.Equal(t, "2", cpp["Licenses Required"].Display(), "ceil(4 hosts / 3)")
}

func TestEstimateLicensesEmptyInput(t *testing.T) {
	tbl := EstimateLicenses(nil)
	require.NotNil(t, tbl)

	java := findAgentRow(t, tbl, "Java Agent")
	assert.Equal(t, "0", java["Licenses Required"].Display())
}
