// Package formatter reshapes carbon metrics into the result frames consumed
// by the rendering layer.
package formatter

import (
	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/metrics"
	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

// Field units attached to frame columns.
const (
	unitGramsCO2    = "gCO2"
	unitKWh         = "kWh"
	unitGramsPerKWh = "gCO2/kWh"
)

// Convert reshapes metrics according to the query's output shape. An empty
// input yields an empty frame list for every shape, never a single frame
// with zero rows.
func Convert(carbonMetrics []*models.CarbonMetric, query *models.Query) ([]*models.Frame, error) {
	if len(carbonMetrics) == 0 {
		return []*models.Frame{}, nil
	}

	switch query.QueryType {
	case models.QueryTypeTimeSeries:
		return convertToTimeSeries(carbonMetrics, query), nil
	case models.QueryTypeTable:
		return convertToTable(carbonMetrics, query), nil
	case models.QueryTypeSingleValue:
		return convertToSingleValue(carbonMetrics, query), nil
	default:
		return convertToTimeSeries(carbonMetrics, query), nil
	}
}

// convertToTimeSeries emits one row per metric in input order. The formatter
// does not sort; callers supply time-ordered input when ordering matters.
func convertToTimeSeries(carbonMetrics []*models.CarbonMetric, query *models.Query) []*models.Frame {
	n := len(carbonMetrics)
	timeField := models.NewField("time", "", n)
	co2Field := models.NewField("co2_emissions", unitGramsCO2, n)
	energyField := models.NewField("energy_consumption", unitKWh, n)
	intensityField := models.NewField("grid_intensity", unitGramsPerKWh, n)

	for i, metric := range carbonMetrics {
		timeField.Values[i] = metric.Timestamp
		co2Field.Values[i] = metric.CO2Emissions
		energyField.Values[i] = metric.EnergyConsumption
		intensityField.Values[i] = metric.GridIntensity
	}

	return []*models.Frame{{
		RefID:  query.RefID,
		Type:   models.FrameTypeTimeSeries,
		Fields: []*models.Field{timeField, co2Field, energyField, intensityField},
	}}
}

// convertToTable emits one row per metric, intended for pre-aggregated
// one-row-per-resource input.
func convertToTable(carbonMetrics []*models.CarbonMetric, query *models.Query) []*models.Frame {
	n := len(carbonMetrics)
	resourceField := models.NewField("resource", "", n)
	namespaceField := models.NewField("namespace", "", n)
	co2Field := models.NewField("co2_emissions", unitGramsCO2, n)
	energyField := models.NewField("energy_consumption", unitKWh, n)

	for i, metric := range carbonMetrics {
		resourceField.Values[i] = metric.ResourceName
		namespaceField.Values[i] = metric.Namespace
		co2Field.Values[i] = metric.CO2Emissions
		energyField.Values[i] = metric.EnergyConsumption
	}

	return []*models.Frame{{
		RefID:  query.RefID,
		Type:   models.FrameTypeTable,
		Fields: []*models.Field{resourceField, namespaceField, co2Field, energyField},
	}}
}

// convertToSingleValue reduces all CO2 masses to one value with the query's
// aggregation operator. An unrecognized operator defaults to sum; the
// degradation is logged and counted but deliberately not an error, since
// downstream numeric expectations rely on the default.
func convertToSingleValue(carbonMetrics []*models.CarbonMetric, query *models.Query) []*models.Frame {
	var value float64

	switch query.Aggregation {
	case models.AggregationSum:
		for _, metric := range carbonMetrics {
			value += metric.CO2Emissions
		}
	case models.AggregationAvg:
		for _, metric := range carbonMetrics {
			value += metric.CO2Emissions
		}
		if len(carbonMetrics) > 0 {
			value /= float64(len(carbonMetrics))
		}
	case models.AggregationMax:
		for i, metric := range carbonMetrics {
			if i == 0 || metric.CO2Emissions > value {
				value = metric.CO2Emissions
			}
		}
	case models.AggregationMin:
		for i, metric := range carbonMetrics {
			if i == 0 || metric.CO2Emissions < value {
				value = metric.CO2Emissions
			}
		}
	default:
		metrics.UnknownAggregations.Inc()
		klog.V(2).InfoS("Unrecognized aggregation operator, defaulting to sum",
			"aggregation", query.Aggregation, "refId", query.RefID)
		for _, metric := range carbonMetrics {
			value += metric.CO2Emissions
		}
	}

	valueField := models.NewField("value", unitGramsCO2, 1)
	valueField.Values[0] = value

	return []*models.Frame{{
		RefID:  query.RefID,
		Type:   models.FrameTypeSingleValue,
		Fields: []*models.Field{valueField},
	}}
}
