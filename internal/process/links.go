package process

import (
	"fmt"
	"net/url"
	"strings"
)

// snapshotWindowMillis pads the deep link's time range half an hour on each
// side of the snapshot, matching what the controller UI expects.
const snapshotWindowMillis = 1_800_000

// escape percent-encodes a link segment. QueryEscape with %20 for spaces so
// the value survives both fragment parsing and QueryUnescape round-trips.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SnapshotLink builds the controller deep link for one transaction snapshot.
// All identifier segments are percent-encoded; decoding the link recovers
// the original identifiers exactly.
func SnapshotLink(baseURL, requestGUID, applicationID, businessTransactionID string, serverStartMillis int64) string {
	begin := serverStartMillis - snapshotWindowMillis
	end := serverStartMillis + snapshotWindowMillis

	return fmt.Sprintf(
		"%s/controller/#/location=APP_SNAPSHOT_VIEWER"+
			"&requestGUID=%s&application=%s&businessTransaction=%s"+
			"&rsdTime=Custom_Time_Range.BETWEEN_TIMES.%d.%d.60"+
			"&tab=overview&dashboardMode=force",
		strings.TrimRight(baseURL, "/"),
		escape(requestGUID), escape(applicationID), escape(businessTransactionID),
		end, begin,
	)
}
