package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

func TestParseFullPayload(t *testing.T) {
	payload := []byte(`{
		"refId": "A",
		"queryType": "single-value",
		"resourceType": "namespace",
		"aggregation": "avg",
		"groupBy": ["namespace"],
		"filters": {"namespace": "prod"},
		"timeRange": {"from": "2025-06-01T00:00:00Z", "to": "2025-06-01T01:00:00Z"}
	}`)

	q, err := Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, "A", q.RefID)
	assert.Equal(t, models.QueryTypeSingleValue, q.QueryType)
	assert.Equal(t, models.ResourceTypeNamespace, q.ResourceType)
	assert.Equal(t, models.AggregationAvg, q.Aggregation)
	assert.Equal(t, []string{"namespace"}, q.GroupBy)
	assert.Equal(t, "prod", q.NamespaceFilter())
	assert.Equal(t, "2025-06-01T00:00:00Z", q.TimeRange.From)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"refId": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse query")
}

func TestParseAppliesDefaults(t *testing.T) {
	q, err := Parse([]byte(`{"resourceType": "cluster"}`))
	require.NoError(t, err)

	assert.NotEmpty(t, q.RefID, "refId should be generated when absent")
	assert.Equal(t, models.QueryTypeTimeSeries, q.QueryType)
	assert.Equal(t, models.AggregationSum, q.Aggregation)
}

func TestParseUnknownResourceType(t *testing.T) {
	_, err := Parse([]byte(`{"resourceType": "volcano"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource type")
}

func TestParseUnknownQueryType(t *testing.T) {
	_, err := Parse([]byte(`{"resourceType": "cluster", "queryType": "heatmap"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown query type")
}

func TestParseInvalidTimeRange(t *testing.T) {
	_, err := Parse([]byte(`{"resourceType": "cluster", "timeRange": {"from": "yesterday"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeRange.from")
}

func TestUnknownAggregationIsAccepted(t *testing.T) {
	// The formatter treats unknown operators as sum; parsing must not reject
	// them.
	q, err := Parse([]byte(`{"resourceType": "pod", "aggregation": "median"}`))
	require.NoError(t, err)
	assert.Equal(t, "median", q.Aggregation)
}

func TestFilterStringIgnoresNonStrings(t *testing.T) {
	q, err := Parse([]byte(`{"resourceType": "pod", "filters": {"namespace": 42}}`))
	require.NoError(t, err)
	assert.Empty(t, q.NamespaceFilter())
}
