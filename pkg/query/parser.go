// Package query deserializes external request payloads into typed queries.
package query

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

var validResourceTypes = map[string]bool{
	models.ResourceTypeCluster:   true,
	models.ResourceTypeNamespace: true,
	models.ResourceTypeNode:      true,
	models.ResourceTypePod:       true,
}

var validQueryTypes = map[string]bool{
	models.QueryTypeTimeSeries:  true,
	models.QueryTypeTable:       true,
	models.QueryTypeSingleValue: true,
}

// Parse deserializes a JSON request payload, applies defaults and validates
// the result. Malformed JSON is a parse error surfaced to the caller.
func Parse(payload []byte) (*models.Query, error) {
	var q models.Query
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	ApplyDefaults(&q)

	if err := Validate(&q); err != nil {
		return nil, err
	}

	return &q, nil
}

// ApplyDefaults fills unset query fields: a generated refId, the timeseries
// shape and sum aggregation.
func ApplyDefaults(q *models.Query) {
	if q.RefID == "" {
		q.RefID = uuid.New().String()
	}
	if q.QueryType == "" {
		q.QueryType = models.QueryTypeTimeSeries
	}
	if q.Aggregation == "" {
		q.Aggregation = models.AggregationSum
	}
}

// Validate checks scope, shape and time range. The aggregation operator is
// deliberately not validated here: the formatter treats unknown operators as
// sum, a documented default.
func Validate(q *models.Query) error {
	if !validResourceTypes[q.ResourceType] {
		return fmt.Errorf("unknown resource type: %q", q.ResourceType)
	}
	if !validQueryTypes[q.QueryType] {
		return fmt.Errorf("unknown query type: %q", q.QueryType)
	}
	if q.TimeRange.From != "" {
		if _, err := time.Parse(time.RFC3339, q.TimeRange.From); err != nil {
			return fmt.Errorf("invalid timeRange.from: %w", err)
		}
	}
	if q.TimeRange.To != "" {
		if _, err := time.Parse(time.RFC3339, q.TimeRange.To); err != nil {
			return fmt.Errorf("invalid timeRange.to: %w", err)
		}
	}
	return nil
}
