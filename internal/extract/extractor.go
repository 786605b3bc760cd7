// Package extract sequences one extraction run: list applications, fetch the
// selected categories per application, validate and transform the payloads,
// and assemble the final tables plus the per-run error report.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dm/appdx/internal/auth"
	"github.com/dm/appdx/internal/client"
	"github.com/dm/appdx/internal/config"
	"github.com/dm/appdx/internal/model"
	"github.com/dm/appdx/internal/trace"
	"github.com/dm/appdx/internal/validate"
)

// State is the run state machine position.
type State int

const (
	StateIdle State = iota
	StateListingApplications
	StateFetching
	StateMerging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListingApplications:
		return "listing applications"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Selection is the operator's choice of what one run collects.
type Selection struct {
	// AppIDs filters the application list; empty means all.
	AppIDs []int64

	RetrieveAPM             bool
	RetrieveServers         bool
	CalcAPMAvailability     bool
	CalcMachineAvailability bool
	PullSnapshots           bool
	RetrieveEvents          bool
	RetrieveViolations      bool

	EventTypes      []string
	EventSeverities []string

	// EnableLicenses opts into the BETA license estimation. Requires both
	// APM and server data; off by default.
	EnableLicenses bool
}

// Progress is one state-change notification for the UI.
type Progress struct {
	State    State
	AppName  string
	Category model.Category
	Message  string
}

// ProgressFunc receives progress notifications on the extraction goroutine.
type ProgressFunc func(Progress)

// Result is everything one run produced: tables by category, the merged
// per-application overview, and the error report.
type Result struct {
	Tables   map[model.Category]*model.Table
	Report   model.RunReport
	Started  time.Time
	Finished time.Time
}

// Table returns the named table, which may be empty but never nil.
func (r *Result) Table(cat model.Category) *model.Table {
	if t, ok := r.Tables[cat]; ok && t != nil {
		return t
	}
	return model.NewTable(string(cat))
}

// Extractor drives one run at a time. API calls are issued strictly
// sequentially; a failure in one application's category is recorded and the
// run moves on. Only an authentication failure aborts.
type Extractor struct {
	api      client.Controller
	settings config.Settings
	log      *trace.Logger
	progress ProgressFunc

	state State
}

// New constructs an Extractor. progress may be nil.
func New(api client.Controller, settings config.Settings, log *trace.Logger, progress ProgressFunc) *Extractor {
	if log == nil {
		log = trace.Nop()
	}
	if progress == nil {
		progress = func(Progress) {}
	}
	return &Extractor{
		api:      api,
		settings: settings,
		log:      log,
		progress: progress,
		state:    StateIdle,
	}
}

// State returns the current run state.
func (e *Extractor) State() State { return e.state }

func (e *Extractor) setState(s State, appName string, cat model.Category, msg string) {
	e.state = s
	e.progress(Progress{State: s, AppName: appName, Category: cat, Message: msg})
}

// fatal reports whether err must abort the whole run.
func fatal(err error) bool {
	var authErr *auth.Error
	return errors.As(err, &authErr)
}

// Run executes one extraction. The returned error is non-nil only for fatal
// failures (authentication, cancelled context); everything else lands in the
// result's report.
func (e *Extractor) Run(ctx context.Context, sel Selection) (*Result, error) {
	res := &Result{
		Tables:  make(map[model.Category]*model.Table),
		Started: time.Now(),
	}

	e.setState(StateListingApplications, "", model.CategoryApplications, "listing applications")
	e.log.Info("listing applications")

	apps, err := e.listApplications(ctx, sel)
	if err != nil {
		e.setState(StateFailed, "", model.CategoryApplications, err.Error())
		return nil, err
	}

	res.Tables[model.CategoryApplications] = applicationsTable(apps)

	// Per-application availability samples feed the overview table.
	samplesByApp := make(map[int64][]client.MetricValue)
	var licenseInputs []licenseJoinRow

	if sel.RetrieveAPM {
		for _, app := range apps {
			if err := ctx.Err(); err != nil {
				e.setState(StateFailed, app.Name, "", err.Error())
				return nil, err
			}
			e.fetchApplication(ctx, app, sel, res, samplesByApp, &licenseInputs)
		}
	}

	var servers []client.Server
	if sel.RetrieveServers {
		servers = e.fetchServers(ctx, sel, res)
	}

	e.setState(StateMerging, "", model.CategoryOverview, "merging tables")
	e.log.Info("merging tables")

	e.mergeNodesWithServers(res, servers)
	e.buildOverview(res, apps, samplesByApp)

	var licensedModules []string
	if sel.EnableLicenses {
		licensedModules = e.estimateLicenses(ctx, res, servers, licenseInputs)
	}

	res.Tables[model.CategoryInformation] = e.informationTable(sel, licensedModules)
	res.Finished = time.Now()

	e.setState(StateDone, "", "", fmt.Sprintf("done, %d errors", res.Report.Len()))
	e.log.Info("run complete", "errors", res.Report.Len())
	return res, nil
}

// listApplications fetches, validates and filters the application list.
// Failures here are fatal: without the list there is nothing to extract.
func (e *Extractor) listApplications(ctx context.Context, sel Selection) ([]client.Application, error) {
	body, err := e.api.GetApplications(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := validate.Applications(body)
	if err != nil {
		return nil, err
	}

	if len(sel.AppIDs) == 0 {
		return apps, nil
	}
	want := make(map[int64]struct{}, len(sel.AppIDs))
	for _, id := range sel.AppIDs {
		want[id] = struct{}{}
	}
	var out []client.Application
	for _, a := range apps {
		if _, ok := want[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func applicationsTable(apps []client.Application) *model.Table {
	t := model.NewTable(string(model.CategoryApplications))
	t.AddColumns("app_id", "app_name", "description")
	for _, a := range apps {
		t.AddRow(model.Row{
			"app_id":      model.Int(a.ID),
			"app_name":    model.String(a.Name),
			"description": model.String(a.Description),
		})
	}
	return t
}

// record stores a non-fatal per-category failure and keeps the run going.
func (e *Extractor) record(res *Result, app client.Application, cat model.Category, err error) {
	res.Report.Add(app.ID, app.Name, cat, err)
	e.log.Warn("category failed", "app", app.Name, "category", string(cat), "error", err.Error())
}

func (e *Extractor) informationTable(sel Selection, licensedModules []string) *model.Table {
	t := model.NewTable(string(model.CategoryInformation))
	t.AddColumns("setting", "value")
	add := func(k, v string) {
		t.AddRow(model.Row{"setting": model.String(k), "value": model.String(v)})
	}
	add("RUN_DATE", time.Now().Format("2006-01-02 15:04:05"))
	add("BASE_URL", e.api.BaseURL())
	add("APM availability (mins)", strconv.Itoa(e.settings.APMMetricDurationMins))
	add("Machine availability (mins)", strconv.Itoa(e.settings.MachineMetricDurationMins))
	add("Snapshot range (mins)", strconv.Itoa(e.settings.SnapshotDurationMins))
	add("Event range (mins)", strconv.Itoa(e.settings.EventDurationMins))
	add("Metric rollup", e.settings.MetricRollup)
	add("Retrieve snapshots", strconv.FormatBool(sel.PullSnapshots))
	add("License estimation (BETA)", strconv.FormatBool(sel.EnableLicenses))
	if len(licensedModules) > 0 {
		add("Licensed modules", strings.Join(licensedModules, ", "))
	}
	return t
}
