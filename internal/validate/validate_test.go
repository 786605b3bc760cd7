package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationsValid(t *testing.T) {
	body := []byte(`[{"id":1,"name":"shop"},{"id":2,"name":"billing","description":"backend"}]`)

	apps, err := Applications(body)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, int64(1), apps[0].ID)
	assert.Equal(t, "billing", apps[1].Name)
	assert.Equal(t, "backend", apps[1].Description)
}

func TestApplicationsEmptyPayloads(t *testing.T) {
	for _, body := range []string{"", "  ", "[]"} {
		apps, err := Applications([]byte(body))
		require.NoError(t, err, "body %q", body)
		assert.Empty(t, apps)
	}
}

func TestApplicationsMissingFieldNamesField(t *testing.T) {
	body := []byte(`[{"id":1,"name":"ok"},{"id":2}]`)

	_, err := Applications(body)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MissingField, verr.Kind)
	assert.Equal(t, "[1].name", verr.Field)
}

func TestApplicationsTypeMismatch(t *testing.T) {
	body := []byte(`[{"id":"1","name":"shop"}]`)

	_, err := Applications(body)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, TypeMismatch, verr.Kind)
	assert.Equal(t, "[0].id", verr.Field)
}

func TestTruncatedJSONRejected(t *testing.T) {
	body := []byte(`[{"id":1,"name":"sh`)

	_, err := Tiers(body)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Truncated, verr.Kind)
}

func TestNodesShape(t *testing.T) {
	body := []byte(`[{
		"id":10,"name":"node-1","tierName":"web","agentType":"APP_AGENT",
		"machineName":"host-1-java-MA","machineOSType":"Linux","appAgentVersion":"24.1"
	}]`)

	nodes, err := Nodes(body)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "host-1-java-MA", nodes[0].MachineName)

	_, err = Nodes([]byte(`[{"id":10,"name":"node-1","tierName":"web","agentType":"APP_AGENT"}]`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MissingField, verr.Kind)
	assert.Equal(t, "[0].machineName", verr.Field)
}

func TestServersShape(t *testing.T) {
	body := []byte(`[{
		"id":1,"name":"host-1","hostId":"h-1","type":"PHYSICAL",
		"hierarchy":["Root","DC1"],"simEnabled":true,
		"memory":{"Physical":{"sizeMb":32768},"Swap":{"sizeMb":4096}}
	}]`)

	servers, err := Servers(body)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "h-1", servers[0].HostID)
	assert.Equal(t, int64(32768), servers[0].Memory["Physical"].SizeMB)

	_, err = Servers([]byte(`[{"name":"host-1","type":"PHYSICAL"}]`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "[0].hostId", verr.Field)
}

func TestMetricDataShape(t *testing.T) {
	body := []byte(`[{
		"metricName":"Agent|App|Availability",
		"metricValues":[{"startTimeInMillis":1700000000000,"current":1}]
	}]`)

	series, err := MetricData(body)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, float64(1), series[0].MetricValues[0].Current)

	_, err = MetricData([]byte(`[{"metricName":"x","metricValues":"none"}]`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, TypeMismatch, verr.Kind)
}

func TestAccountObject(t *testing.T) {
	acct, err := Account([]byte(`{"id":"7","name":"customer1"}`))
	require.NoError(t, err)
	assert.Equal(t, "7", acct.ID)

	_, err = Account([]byte(`[{"id":"7"}]`))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, TypeMismatch, verr.Kind)
	assert.Equal(t, "document", verr.Field)
}

func TestBusinessTransactionsXML(t *testing.T) {
	body := []byte(`<business-transactions>
		<business-transaction>
			<id>101</id><name>/checkout</name>
			<entryPointType>SERVLET</entryPointType><tierName>web</tierName>
			<background>false</background>
		</business-transaction>
	</business-transactions>`)

	bts, err := BusinessTransactions(body)
	require.NoError(t, err)
	require.Len(t, bts, 1)
	assert.Equal(t, int64(101), bts[0].ID)
	assert.Equal(t, "/checkout", bts[0].Name)
	assert.Equal(t, "SERVLET", bts[0].EntryPointType)
}

func TestBusinessTransactionsXMLMissingName(t *testing.T) {
	body := []byte(`<business-transactions>
		<business-transaction><id>101</id></business-transaction>
	</business-transactions>`)

	_, err := BusinessTransactions(body)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MissingField, verr.Kind)
	assert.Equal(t, "business-transaction.name", verr.Field)
}

func TestSnapshotsXML(t *testing.T) {
	body := []byte(`<request-segment-datas>
		<request-segment-data>
			<requestGUID>guid-1</requestGUID>
			<serverStartTime>1700000000000</serverStartTime>
			<businessTransactionId>101</businessTransactionId>
			<userExperience>NORMAL</userExperience>
			<timeTakenInMilliSecs>42</timeTakenInMilliSecs>
		</request-segment-data>
	</request-segment-datas>`)

	snaps, err := Snapshots(body)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "guid-1", snaps[0].RequestGUID)
	assert.Equal(t, int64(42), snaps[0].TimeTakenMillis)
}

func TestSnapshotsXMLTruncated(t *testing.T) {
	body := []byte(`<request-segment-datas><request-segment-data><requestGUID>gui`)

	_, err := Snapshots(body)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Truncated, verr.Kind)
}

func TestXMLBlankBodyMeansNoData(t *testing.T) {
	bts, err := BusinessTransactions(nil)
	require.NoError(t, err)
	assert.Empty(t, bts)

	snaps, err := Snapshots([]byte("   "))
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
