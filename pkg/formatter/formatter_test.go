package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

func sampleMetrics() []*models.CarbonMetric {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*models.CarbonMetric{
		{
			Timestamp:         base,
			ResourceType:      models.ResourceTypeNamespace,
			ResourceName:      "prod",
			Namespace:         "prod",
			CO2Emissions:      100.5,
			EnergyConsumption: 0.201,
			GridIntensity:     500,
			Source:            models.SourceCalculated,
		},
		{
			Timestamp:         base.Add(time.Hour),
			ResourceType:      models.ResourceTypeNamespace,
			ResourceName:      "staging",
			Namespace:         "staging",
			CO2Emissions:      105.2,
			EnergyConsumption: 0.2104,
			GridIntensity:     500,
			Source:            models.SourceCalculated,
		},
	}
}

func queryFor(shape, aggregation string) *models.Query {
	return &models.Query{
		RefID:       "A",
		QueryType:   shape,
		Aggregation: aggregation,
	}
}

func TestEmptyInputYieldsEmptyResult(t *testing.T) {
	for _, shape := range []string{
		models.QueryTypeTimeSeries,
		models.QueryTypeTable,
		models.QueryTypeSingleValue,
		"unheard-of-shape",
	} {
		frames, err := Convert(nil, queryFor(shape, models.AggregationSum))
		require.NoError(t, err)
		assert.Empty(t, frames, "shape %s should yield an empty result list", shape)
	}
}

func TestTimeSeriesFrame(t *testing.T) {
	metrics := sampleMetrics()
	frames, err := Convert(metrics, queryFor(models.QueryTypeTimeSeries, ""))
	require.NoError(t, err)

	require.Len(t, frames, 1)
	frame := frames[0]
	assert.Equal(t, models.FrameTypeTimeSeries, frame.Type)
	assert.Equal(t, "A", frame.RefID)
	require.Len(t, frame.Fields, 4)
	assert.Equal(t, 2, frame.Rows())

	// Input order preserved; the formatter does not sort
	timeField := frame.FieldByName("time")
	require.NotNil(t, timeField)
	assert.Equal(t, metrics[0].Timestamp, timeField.Values[0])
	assert.Equal(t, metrics[1].Timestamp, timeField.Values[1])

	co2Field := frame.FieldByName("co2_emissions")
	require.NotNil(t, co2Field)
	assert.Equal(t, "gCO2", co2Field.Unit)
	assert.Equal(t, 100.5, co2Field.Values[0])

	intensityField := frame.FieldByName("grid_intensity")
	require.NotNil(t, intensityField)
	assert.Equal(t, "gCO2/kWh", intensityField.Unit)
}

func TestTableFrame(t *testing.T) {
	frames, err := Convert(sampleMetrics(), queryFor(models.QueryTypeTable, ""))
	require.NoError(t, err)

	require.Len(t, frames, 1)
	frame := frames[0]
	assert.Equal(t, models.FrameTypeTable, frame.Type)
	assert.Equal(t, 2, frame.Rows())

	assert.Equal(t, "prod", frame.FieldByName("resource").Values[0])
	assert.Equal(t, "staging", frame.FieldByName("resource").Values[1])
	assert.Equal(t, "prod", frame.FieldByName("namespace").Values[0])
	assert.Equal(t, 0.2104, frame.FieldByName("energy_consumption").Values[1])
}

func TestSingleValueAggregations(t *testing.T) {
	cases := []struct {
		aggregation string
		expected    float64
	}{
		{models.AggregationSum, 205.7},
		{models.AggregationAvg, 102.85},
		{models.AggregationMax, 105.2},
		{models.AggregationMin, 100.5},
		{"median", 205.7}, // unrecognized operator defaults to sum
	}

	for _, tc := range cases {
		t.Run(tc.aggregation, func(t *testing.T) {
			frames, err := Convert(sampleMetrics(), queryFor(models.QueryTypeSingleValue, tc.aggregation))
			require.NoError(t, err)

			require.Len(t, frames, 1)
			frame := frames[0]
			assert.Equal(t, models.FrameTypeSingleValue, frame.Type)
			assert.Equal(t, 1, frame.Rows())

			value := frame.FieldByName("value")
			require.NotNil(t, value)
			assert.Equal(t, "gCO2", value.Unit)
			assert.InDelta(t, tc.expected, value.Values[0].(float64), 1e-9)
		})
	}
}

func TestSingleValueSingleMetric(t *testing.T) {
	metrics := sampleMetrics()[:1]

	frames, err := Convert(metrics, queryFor(models.QueryTypeSingleValue, models.AggregationAvg))
	require.NoError(t, err)

	assert.InDelta(t, 100.5, frames[0].FieldByName("value").Values[0].(float64), 1e-9)
}

func TestUnknownShapeFallsBackToTimeSeries(t *testing.T) {
	frames, err := Convert(sampleMetrics(), queryFor("heatmap", models.AggregationSum))
	require.NoError(t, err)

	require.Len(t, frames, 1)
	assert.Equal(t, models.FrameTypeTimeSeries, frames[0].Type)
}
