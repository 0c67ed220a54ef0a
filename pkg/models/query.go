package models

// Output shapes supported by the formatter.
const (
	QueryTypeTimeSeries  = "timeseries"
	QueryTypeTable       = "table"
	QueryTypeSingleValue = "single-value"
)

// Aggregation operators for single-value results.
const (
	AggregationSum = "sum"
	AggregationAvg = "avg"
	AggregationMax = "max"
	AggregationMin = "min"
)

// TimeRange holds the requested query window as RFC3339 strings. The current
// estimation models use a fixed one-hour accounting window, so the range is
// validated but not integrated over.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Query describes a single carbon footprint request. Immutable once parsed.
type Query struct {
	RefID        string                 `json:"refId"`
	QueryType    string                 `json:"queryType"`    // timeseries, table, single-value
	ResourceType string                 `json:"resourceType"` // cluster, namespace, node, pod
	Aggregation  string                 `json:"aggregation"`  // sum, avg, max, min
	GroupBy      []string               `json:"groupBy,omitempty"`
	Filters      map[string]interface{} `json:"filters,omitempty"`
	TimeRange    TimeRange              `json:"timeRange"`
}

// FilterString returns the named filter when it is present and a string.
func (q *Query) FilterString(key string) string {
	if q.Filters == nil {
		return ""
	}
	if v, ok := q.Filters[key].(string); ok {
		return v
	}
	return ""
}

// NamespaceFilter returns the namespace filter, if any.
func (q *Query) NamespaceFilter() string {
	return q.FilterString("namespace")
}
