// Package instancespecs resolves cloud instance types to power and capacity
// characteristics used by the node energy model.
package instancespecs

import "github.com/opscart/k8s-carbon-estimator/pkg/models"

// Fallback spec applied when an instance type is unknown. Lookups never fail
// so downstream energy calculations stay defined.
const (
	DefaultVCPUs    = 2
	DefaultMemoryGB = 4.0
	DefaultTDP      = 100.0 // watts
)

// Provider resolves an instance type identifier to its specification.
type Provider interface {
	GetInstanceSpec(instanceType string) *models.InstanceSpec
	Name() string
}

// DefaultSpec returns the fallback specification for the given type name.
func DefaultSpec(instanceType string) *models.InstanceSpec {
	return &models.InstanceSpec{
		InstanceType: instanceType,
		VCPUs:        DefaultVCPUs,
		MemoryGB:     DefaultMemoryGB,
		TDP:          DefaultTDP,
	}
}
