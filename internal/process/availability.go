package process

import (
	"github.com/dm/appdx/internal/client"
)

// Availability returns the fraction of samples reporting up, as a
// percentage. ok is false for an empty sample set; the caller renders the
// no-data marker instead of a number, and no division happens.
func Availability(samples []client.MetricValue) (pct float64, ok bool) {
	if len(samples) == 0 {
		return 0, false
	}
	up := 0
	for _, s := range samples {
		if s.Current > 0 {
			up++
		}
	}
	return float64(up) / float64(len(samples)) * 100, true
}

// LastSeen extracts the newest sample from an availability metric response:
// the start time and value of the final sample of the final series. ok is
// false when the controller answered with the metric-not-found sentinel or
// an empty series.
func LastSeen(series []client.MetricData) (epochMillis int64, value float64, ok bool) {
	if len(series) == 0 {
		return 0, 0, false
	}
	last := series[len(series)-1]
	if last.MetricName == client.MetricNotFound || len(last.MetricValues) == 0 {
		return 0, 0, false
	}
	sample := last.MetricValues[len(last.MetricValues)-1]
	if sample.StartTimeInMillis == 0 {
		return 0, 0, false
	}
	return sample.StartTimeInMillis, sample.Current, true
}
