package model

import "fmt"

// Category names one data category the extractor can fetch.
type Category string

const (
	CategoryApplications         Category = "applications"
	CategoryBusinessTransactions Category = "business_transactions"
	CategoryTiers                Category = "tiers"
	CategoryNodes                Category = "nodes"
	CategoryBackends             Category = "backends"
	CategoryHealthRules          Category = "health_rules"
	CategorySnapshots            Category = "snapshots"
	CategoryServers              Category = "servers"
	CategoryEvents               Category = "events"
	CategoryViolations           Category = "health_rule_violations"
	CategoryLicenses             Category = "license_usage"
	CategoryOverview             Category = "overview"
	CategoryInformation          Category = "information"
)

// RunError records one failed fetch or merge, scoped to an application and
// category. AppID 0 / AppName "" mean a controller-wide category.
type RunError struct {
	AppID    int64
	AppName  string
	Category Category
	Err      error
}

func (e RunError) String() string {
	if e.AppName == "" {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("%s/%s: %v", e.AppName, e.Category, e.Err)
}

// RunReport collects every error encountered during a run. The run itself
// continues past them; the report is shown next to the partial results so
// nothing fails silently.
type RunReport struct {
	Errors []RunError
}

// Add records one error.
func (r *RunReport) Add(appID int64, appName string, cat Category, err error) {
	r.Errors = append(r.Errors, RunError{AppID: appID, AppName: appName, Category: cat, Err: err})
}

// Empty reports whether the run completed without recorded errors.
func (r *RunReport) Empty() bool { return len(r.Errors) == 0 }

// Len returns the number of recorded errors.
func (r *RunReport) Len() int { return len(r.Errors) }
