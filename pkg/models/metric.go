package models

import "time"

// Resource scopes a carbon estimate can describe.
const (
	ResourceTypeCluster   = "cluster"
	ResourceTypeNamespace = "namespace"
	ResourceTypeNode      = "node"
	ResourceTypePod       = "pod"
)

// Provenance tags for CarbonMetric.Source.
const (
	SourceCalculated = "calculated"
	SourceEstimated  = "estimated" // a fallback grid intensity was substituted
)

// LabelSkippedResources is set on aggregate metrics when per-resource
// calculation errors caused contributions to be omitted.
const LabelSkippedResources = "skipped-resources"

// CarbonMetric represents the carbon footprint estimate for a single resource
// scope. Metrics are created fresh per query and their calculated fields are
// never mutated afterwards; CO2Emissions is always the product of
// EnergyConsumption and GridIntensity. The sole exception is the display-only
// usage block below, which a configured usage source may overlay with live
// readings before the metric is formatted.
type CarbonMetric struct {
	Timestamp         time.Time         `json:"timestamp"`
	ResourceType      string            `json:"resourceType"`
	ResourceName      string            `json:"resourceName"`
	Namespace         string            `json:"namespace,omitempty"`
	NodeName          string            `json:"nodeName,omitempty"`
	CO2Emissions      float64           `json:"co2Emissions"`      // grams CO2
	EnergyConsumption float64           `json:"energyConsumption"` // kWh
	GridIntensity     float64           `json:"gridIntensity"`     // gCO2/kWh
	Source            string            `json:"source"`
	Labels            map[string]string `json:"labels,omitempty"`

	// Raw usage carried through for display, not used in the calculation.
	// May be overlaid with live readings after creation; see type comment.
	CPUUsage       float64 `json:"cpuUsage,omitempty"`       // millicores
	MemoryUsage    float64 `json:"memoryUsage,omitempty"`    // bytes
	StorageUsage   float64 `json:"storageUsage,omitempty"`   // bytes
	NetworkTraffic float64 `json:"networkTraffic,omitempty"` // bytes
}
