package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/model"
	"github.com/dm/appdx/internal/process"
	"github.com/dm/appdx/internal/validate"
)

// licenseJoinRow keeps a node tied to its application until server data is
// available for the license join.
type licenseJoinRow struct {
	app  client.Application
	node client.Node
}

// cleanMachineName strips the machine-agent suffix some agents append, so
// node machine names line up with the SIM machine inventory.
func cleanMachineName(name string) string {
	return strings.TrimSuffix(name, "-java-MA")
}

// table returns the result table for cat, creating it on first use.
func (r *Result) table(cat model.Category) *model.Table {
	t, ok := r.Tables[cat]
	if !ok {
		t = model.NewTable(string(cat))
		r.Tables[cat] = t
	}
	return t
}

// fetchApplication pulls every selected category for one application.
// Each category failure is recorded and the remaining categories still run.
func (e *Extractor) fetchApplication(
	ctx context.Context,
	app client.Application,
	sel Selection,
	res *Result,
	samplesByApp map[int64][]client.MetricValue,
	licenseInputs *[]licenseJoinRow,
) {
	appID := client.FormatAppID(app.ID)

	e.setState(StateFetching, app.Name, model.CategoryBusinessTransactions, "business transactions")
	e.log.Info("fetching application", "app", app.Name, "id", appID)

	if body, err := e.api.GetBusinessTransactions(ctx, appID); err != nil {
		e.record(res, app, model.CategoryBusinessTransactions, err)
	} else if bts, err := validate.BusinessTransactions(body); err != nil {
		e.record(res, app, model.CategoryBusinessTransactions, err)
	} else {
		t := res.table(model.CategoryBusinessTransactions)
		for _, bt := range bts {
			t.AddRow(model.Row{
				"app_id":           model.Int(app.ID),
				"app_name":         model.String(app.Name),
				"bt_id":            model.Int(bt.ID),
				"bt_name":          model.String(bt.Name),
				"entry_point_type": model.String(bt.EntryPointType),
				"tier_name":        model.String(bt.TierName),
				"background":       model.Bool(bt.Background),
			})
		}
	}

	e.setState(StateFetching, app.Name, model.CategoryTiers, "tiers")
	if body, err := e.api.GetTiers(ctx, appID); err != nil {
		e.record(res, app, model.CategoryTiers, err)
	} else if tiers, err := validate.Tiers(body); err != nil {
		e.record(res, app, model.CategoryTiers, err)
	} else {
		t := res.table(model.CategoryTiers)
		for _, tier := range tiers {
			row := model.Row{
				"app_id":          model.Int(app.ID),
				"app_name":        model.String(app.Name),
				"tier_id":         model.Int(tier.ID),
				"tier_name":       model.String(tier.Name),
				"tier_type":       model.String(tier.Type),
				"agent_type":      model.String(tier.AgentType),
				"number_of_nodes": model.Int(int64(tier.NumberOfNodes)),
			}
			if sel.CalcAPMAvailability {
				row["Last Seen Tier"], row["Last Seen Tier - Node Count"] = e.tierLastSeen(ctx, app, tier, res)
			}
			t.AddRow(row)
		}
	}

	e.setState(StateFetching, app.Name, model.CategoryNodes, "nodes")
	if body, err := e.api.GetNodes(ctx, appID); err != nil {
		e.record(res, app, model.CategoryNodes, err)
	} else if nodes, err := validate.Nodes(body); err != nil {
		e.record(res, app, model.CategoryNodes, err)
	} else {
		t := res.table(model.CategoryNodes)
		for _, node := range nodes {
			row := model.Row{
				"app_id":               model.Int(app.ID),
				"app_name":             model.String(app.Name),
				"node_id":              model.Int(node.ID),
				"node_name":            model.String(node.Name),
				"tier_name":            model.String(node.TierName),
				"agent_type":           model.String(node.AgentType),
				"app_agent_version":    model.String(node.AppAgentVersion),
				"machine_name":         model.String(node.MachineName),
				"machine_name_cleaned": model.String(cleanMachineName(node.MachineName)),
				"machine_os_type":      model.String(node.MachineOSType),
			}
			if sel.CalcAPMAvailability {
				row["Last Seen Node"] = e.nodeLastSeen(ctx, app, node, res, samplesByApp)
			}
			t.AddRow(row)
			*licenseInputs = append(*licenseInputs, licenseJoinRow{app: app, node: node})
		}
	}

	e.setState(StateFetching, app.Name, model.CategoryBackends, "backends")
	if body, err := e.api.GetBackends(ctx, appID); err != nil {
		e.record(res, app, model.CategoryBackends, err)
	} else if backends, err := validate.Backends(body); err != nil {
		e.record(res, app, model.CategoryBackends, err)
	} else {
		t := res.table(model.CategoryBackends)
		for _, b := range backends {
			t.AddRow(model.Row{
				"app_id":          model.Int(app.ID),
				"app_name":        model.String(app.Name),
				"backend_id":      model.Int(b.ID),
				"backend_name":    model.String(b.Name),
				"exit_point_type": model.String(b.ExitPointType),
			})
		}
	}

	e.setState(StateFetching, app.Name, model.CategoryHealthRules, "health rules")
	if body, err := e.api.GetHealthRules(ctx, appID); err != nil {
		e.record(res, app, model.CategoryHealthRules, err)
	} else if rules, err := validate.HealthRules(body); err != nil {
		e.record(res, app, model.CategoryHealthRules, err)
	} else {
		t := res.table(model.CategoryHealthRules)
		for _, hr := range rules {
			t.AddRow(model.Row{
				"app_id":               model.Int(app.ID),
				"app_name":             model.String(app.Name),
				"rule_id":              model.Int(hr.ID),
				"rule_name":            model.String(hr.Name),
				"enabled":              model.Bool(hr.Enabled),
				"affected_entity_type": model.String(hr.AffectedEntityType),
			})
		}
	}

	if sel.PullSnapshots {
		e.fetchSnapshots(ctx, app, res)
	}
	if sel.RetrieveViolations {
		e.fetchViolations(ctx, app, res)
	}
	if sel.RetrieveEvents {
		e.fetchEvents(ctx, app, sel, res)
	}
}

func (e *Extractor) fetchSnapshots(ctx context.Context, app client.Application, res *Result) {
	e.setState(StateFetching, app.Name, model.CategorySnapshots, "snapshots")

	body, err := e.api.GetSnapshots(ctx, client.FormatAppID(app.ID), client.SnapshotOptions{
		DurationMins:  e.settings.SnapshotDurationMins,
		FirstInChain:  e.settings.FirstInChain,
		NeedExitCalls: e.settings.NeedExitCalls,
		NeedProps:     e.settings.NeedProps,
	})
	if err != nil {
		e.record(res, app, model.CategorySnapshots, err)
		return
	}
	snaps, err := validate.Snapshots(body)
	if err != nil {
		e.record(res, app, model.CategorySnapshots, err)
		return
	}

	t := res.table(model.CategorySnapshots)
	for _, s := range snaps {
		link := process.SnapshotLink(
			e.api.BaseURL(),
			s.RequestGUID,
			strconv.FormatInt(s.ApplicationID, 10),
			strconv.FormatInt(s.BusinessTransactionID, 10),
			s.ServerStartTime,
		)
		t.AddRow(model.Row{
			"app_id":           model.Int(app.ID),
			"app_name":         model.String(app.Name),
			"request_guid":     model.String(s.RequestGUID),
			"bt_id":            model.Int(s.BusinessTransactionID),
			"tier_id":          model.Int(s.ApplicationComponentID),
			"node_id":          model.Int(s.ApplicationComponentNodeID),
			"user_experience":  model.String(s.UserExperience),
			"time_taken_ms":    model.Int(s.TimeTakenMillis),
			"error_occurred":   model.Bool(s.ErrorOccurred),
			"start_time":       model.EpochMillis(s.ServerStartTime),
			"local_start_time": model.EpochMillis(s.LocalStartTime),
			"summary":          model.String(s.Summary),
			"snapshot_link":    model.String(link),
		})
	}
}

func (e *Extractor) fetchEvents(ctx context.Context, app client.Application, sel Selection, res *Result) {
	e.setState(StateFetching, app.Name, model.CategoryEvents, "events")

	body, err := e.api.GetEvents(ctx, client.FormatAppID(app.ID), client.EventOptions{
		DurationMins: e.settings.EventDurationMins,
		EventTypes:   sel.EventTypes,
		Severities:   sel.EventSeverities,
	})
	if err != nil {
		e.record(res, app, model.CategoryEvents, err)
		return
	}
	events, err := validate.Events(body)
	if err != nil {
		e.record(res, app, model.CategoryEvents, err)
		return
	}

	t := res.table(model.CategoryEvents)
	for _, ev := range events {
		t.AddRow(model.Row{
			"app_id":     model.Int(app.ID),
			"app_name":   model.String(app.Name),
			"event_id":   model.Int(ev.ID),
			"event_type": model.String(ev.Type),
			"severity":   model.String(ev.Severity),
			"event_time": model.EpochMillis(ev.EventTime),
			"summary":    model.String(ev.Summary),
			"deep_link":  model.String(ev.DeepLinkURL),
		})
	}
}

func (e *Extractor) fetchViolations(ctx context.Context, app client.Application, res *Result) {
	e.setState(StateFetching, app.Name, model.CategoryViolations, "health rule violations")

	body, err := e.api.GetHealthRuleViolations(ctx, client.FormatAppID(app.ID), e.settings.EventDurationMins)
	if err != nil {
		e.record(res, app, model.CategoryViolations, err)
		return
	}
	violations, err := validate.HealthRuleViolations(body)
	if err != nil {
		e.record(res, app, model.CategoryViolations, err)
		return
	}

	t := res.table(model.CategoryViolations)
	for _, v := range violations {
		row := model.Row{
			"app_id":          model.Int(app.ID),
			"app_name":        model.String(app.Name),
			"violation_id":    model.Int(v.ID),
			"violation_name":  model.String(v.Name),
			"severity":        model.String(v.Severity),
			"incident_status": model.String(v.IncidentStatus),
			"start_time":      model.EpochMillis(v.StartTimeInMillis),
			"deep_link":       model.String(v.DeepLinkURL),
		}
		if v.EndTimeInMillis > 0 {
			row["end_time"] = model.EpochMillis(v.EndTimeInMillis)
		} else {
			row["end_time"] = model.NoData()
		}
		t.AddRow(row)
	}
}

// tierLastSeen fetches the tier availability metric and renders the newest
// sample. Both cells read no-data when the metric is absent.
func (e *Extractor) tierLastSeen(ctx context.Context, app client.Application, tier client.Tier, res *Result) (model.Cell, model.Cell) {
	path := client.APMAvailabilityPath("tier", tier.Name, "", tier.AgentType)
	series, err := e.metricData(ctx, app, path, e.settings.APMMetricDurationMins, res)
	if err != nil {
		return model.NoData(), model.NoData()
	}
	epoch, value, ok := process.LastSeen(series)
	if !ok {
		return model.NoData(), model.NoData()
	}
	return model.EpochMillis(epoch), model.Float(value)
}

// nodeLastSeen fetches the node availability metric; the raw samples also
// feed the per-application availability percentage in the overview.
func (e *Extractor) nodeLastSeen(
	ctx context.Context,
	app client.Application,
	node client.Node,
	res *Result,
	samplesByApp map[int64][]client.MetricValue,
) model.Cell {
	path := client.APMAvailabilityPath("node", node.TierName, node.Name, node.AgentType)
	series, err := e.metricData(ctx, app, path, e.settings.APMMetricDurationMins, res)
	if err != nil {
		return model.NoData()
	}

	for _, s := range series {
		if s.MetricName == client.MetricNotFound {
			continue
		}
		samplesByApp[app.ID] = append(samplesByApp[app.ID], s.MetricValues...)
	}

	epoch, _, ok := process.LastSeen(series)
	if !ok {
		return model.NoData()
	}
	return model.EpochMillis(epoch)
}

// metricData fetches and validates one availability series, recording any
// failure against the application's metric category.
func (e *Extractor) metricData(ctx context.Context, app client.Application, path string, durationMins int, res *Result) ([]client.MetricData, error) {
	body, err := e.api.GetMetricData(ctx, client.EncodeSegment(app.Name), path, durationMins)
	if err != nil {
		e.record(res, app, model.CategoryTiers, err)
		return nil, err
	}
	series, err := validate.MetricData(body)
	if err != nil {
		e.record(res, app, model.CategoryTiers, err)
		return nil, err
	}
	return series, nil
}

// fetchServers pulls the machine inventory and, when selected, each
// machine's availability.
func (e *Extractor) fetchServers(ctx context.Context, sel Selection, res *Result) []client.Server {
	e.setState(StateFetching, "", model.CategoryServers, "servers")
	e.log.Info("fetching servers")

	body, err := e.api.GetServers(ctx)
	if err != nil {
		res.Report.Add(0, "", model.CategoryServers, err)
		e.log.Warn("servers failed", "error", err.Error())
		return nil
	}
	servers, err := validate.Servers(body)
	if err != nil {
		res.Report.Add(0, "", model.CategoryServers, err)
		e.log.Warn("servers failed", "error", err.Error())
		return nil
	}

	t := res.table(model.CategoryServers)
	for _, srv := range servers {
		row := model.Row{
			"host_id":     model.String(srv.HostID),
			"server_name": model.String(srv.Name),
			"server_type": model.String(srv.Type),
			"sim_enabled": model.Bool(srv.SimEnabled),
			"hierarchy":   model.String(strings.Join(srv.Hierarchy, "|")),
		}
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
		if sel.CalcMachineAvailability {
			row["Last Seen Server"] = e.serverLastSeen(ctx, srv, res)
		}
		t.AddRow(row)
	}
	return servers
}

func (e *Extractor) serverLastSeen(ctx context.Context, srv client.Server, res *Result) model.Cell {
	path := client.SIMAvailabilityPath(srv.Hierarchy, srv.HostID, srv.Type)
	body, err := e.api.GetMetricData(ctx, client.SIMAppSegment(), path, e.settings.MachineMetricDurationMins)
	if err != nil {
		res.Report.Add(0, srv.Name, model.CategoryServers, err)
		return model.NoData()
	}
	series, err := validate.MetricData(body)
	if err != nil {
		res.Report.Add(0, srv.Name, model.CategoryServers, err)
		return model.NoData()
	}
	epoch, _, ok := process.LastSeen(series)
	if !ok {
		return model.NoData()
	}
	return model.EpochMillis(epoch)
}
