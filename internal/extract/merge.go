package extract

import (
	"context"
	"errors"

	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/format"
	"github.com/dm/appdx/internal/model"
	"github.com/dm/appdx/internal/process"
	"github.com/dm/appdx/internal/validate"
)

// mergeNodesWithServers enriches every node row with its machine record,
// matched on the cleaned machine name. Nodes without a machine record keep
// no-data cells in the server columns.
func (e *Extractor) mergeNodesWithServers(res *Result, servers []client.Server) {
	nodes, ok := res.Tables[model.CategoryNodes]
	if !ok || nodes.Empty() {
		return
	}

	byMachine := make(map[string]client.Server, len(servers))
	for _, srv := range servers {
		byMachine[srv.Name] = srv
	}

	nodes.AddColumns("host_id", "server_type", "RAM MB", "SWAP MB")
	for _, row := range nodes.Rows {
		srv, found := byMachine[row["machine_name_cleaned"].Value()]
		if !found {
			row["host_id"] = model.NoData()
			row["server_type"] = model.NoData()
			row["RAM MB"] = model.NoData()
			row["SWAP MB"] = model.NoData()
			continue
		}
		row["host_id"] = model.String(srv.HostID)
		row["server_type"] = model.String(srv.Type)
		if mem, ok := srv.Memory["Physical"]; ok {
			row["RAM MB"] = model.Int(mem.SizeMB)
		} else {
			row["RAM MB"] = model.NoData()
		}
		if swap, ok := srv.Memory["Swap"]; ok {
			row["SWAP MB"] = model.Int(swap.SizeMB)
		} else {
			row["SWAP MB"] = model.NoData()
		}
	}
}

// overviewCounts lists the categories summarised per application, in the
// order their count columns appear.
var overviewCounts = []struct {
	cat    model.Category
	column string
}{
	{model.CategoryBusinessTransactions, "bt_count"},
	{model.CategoryTiers, "tier_count"},
	{model.CategoryNodes, "node_count"},
	{model.CategoryBackends, "backend_count"},
	{model.CategoryHealthRules, "health_rule_count"},
	{model.CategorySnapshots, "snapshot_count"},
	{model.CategoryEvents, "event_count"},
	{model.CategoryViolations, "violation_count"},
}

// buildOverview joins per-application counts and availability into one row
// per application. Applications whose categories failed keep no-data cells,
// never zeros.
func (e *Extractor) buildOverview(res *Result, apps []client.Application, samplesByApp map[int64][]client.MetricValue) {
	base := model.NewTable("applications")
	base.AddColumns("app_id", "app_name")
	for _, a := range apps {
		base.AddRow(model.Row{
			"app_id":   model.Int(a.ID),
			"app_name": model.String(a.Name),
		})
	}

	inputs := []*model.Table{base}
	for _, oc := range overviewCounts {
		t, ok := res.Tables[oc.cat]
		if !ok || t.Empty() {
			continue
		}
		counts := make(map[string]int64, len(apps))
		for _, row := range t.Rows {
			id := row["app_id"]
			if !id.HasData() {
				continue
			}
			counts[id.Value()]++
		}
		ct := model.NewTable(string(oc.cat))
		ct.AddColumns("app_id", oc.column)
		for id, n := range counts {
			ct.AddRow(model.Row{
				"app_id":  model.String(id),
				oc.column: model.Int(n),
			})
		}
		inputs = append(inputs, ct)
	}

	if len(samplesByApp) > 0 {
		avail := model.NewTable("availability")
		avail.AddColumns("app_id", "availability_pct")
		for _, a := range apps {
			cell := model.NoData()
			if pct, ok := process.Availability(samplesByApp[a.ID]); ok {
				cell = model.String(format.FormatPercent(pct))
			}
			avail.AddRow(model.Row{
				"app_id":           model.Int(a.ID),
				"availability_pct": cell,
			})
		}
		inputs = append(inputs, avail)
	}

	overview, err := process.MergeOnKey(string(model.CategoryOverview), "app_id", inputs...)
	if err != nil {
		res.Report.Add(0, "", model.CategoryOverview, err)
		e.log.Warn("overview merge failed", "error", err.Error())
		return
	}
	res.Tables[model.CategoryOverview] = overview
}

// errLicenseSkipped marks a run where license estimation was requested but
// the node and machine data needed for the join was not both present.
var errLicenseSkipped = errors.New("license estimation skipped: requires both node and server data")

// estimateLicenses joins nodes with machines and runs the estimation. The
// controller's licensed module names are returned for the information table.
func (e *Extractor) estimateLicenses(ctx context.Context, res *Result, servers []client.Server, inputs []licenseJoinRow) []string {
	e.setState(StateMerging, "", model.CategoryLicenses, "estimating licenses")

	if len(servers) == 0 || len(inputs) == 0 {
		res.Report.Add(0, "", model.CategoryLicenses, errLicenseSkipped)
		e.log.Warn("license estimation skipped", "nodes", len(inputs), "servers", len(servers))
		return nil
	}

	byMachine := make(map[string]client.Server, len(servers))
	for _, srv := range servers {
		byMachine[srv.Name] = srv
	}

	var lins []process.LicenseInput
	for _, in := range inputs {
		srv, ok := byMachine[cleanMachineName(in.node.MachineName)]
		if !ok {
			// Without a machine record the node cannot be classified.
			continue
		}
		lins = append(lins, process.LicenseInput{
			AgentType:       in.node.AgentType,
			AppAgentVersion: in.node.AppAgentVersion,
			HostID:          srv.HostID,
			NodeName:        in.node.Name,
			ServerType:      srv.Type,
		})
	}

	res.Tables[model.CategoryLicenses] = process.EstimateLicenses(lins)
	return e.licensedModules(ctx, res)
}

// licensedModules fetches the account's purchased license modules. Failures
// are reported but never block the estimate itself.
func (e *Extractor) licensedModules(ctx context.Context, res *Result) []string {
	body, err := e.api.GetAccount(ctx)
	if err != nil {
		res.Report.Add(0, "", model.CategoryLicenses, err)
		return nil
	}
	account, err := validate.Account(body)
	if err != nil {
		res.Report.Add(0, "", model.CategoryLicenses, err)
		return nil
	}

	body, err = e.api.GetLicenseModules(ctx, account.ID)
	if err != nil {
		res.Report.Add(0, "", model.CategoryLicenses, err)
		return nil
	}
	modules, err := validate.LicenseModules(body)
	if err != nil {
		res.Report.Add(0, "", model.CategoryLicenses, err)
		return nil
	}

	names := make([]string, 0, len(modules.Modules))
	for _, m := range modules.Modules {
		names = append(names, m.Name)
	}
	return names
}
