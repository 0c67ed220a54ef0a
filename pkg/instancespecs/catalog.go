package instancespecs

import (
	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

// CatalogProvider resolves instance types from a static table of common
// AWS, GCP and Azure machine types. TDP figures are conservative estimates
// of the per-instance share of the host socket's rated power.
type CatalogProvider struct {
	catalog map[string]models.InstanceSpec
}

// NewCatalogProvider creates a provider backed by the built-in catalog.
func NewCatalogProvider() *CatalogProvider {
	return &CatalogProvider{catalog: builtinCatalog}
}

func (p *CatalogProvider) Name() string {
	return "catalog"
}

// GetInstanceSpec resolves the given instance type. Unknown types yield the
// fallback spec rather than an error.
func (p *CatalogProvider) GetInstanceSpec(instanceType string) *models.InstanceSpec {
	if spec, ok := p.catalog[instanceType]; ok {
		out := spec
		return &out
	}
	klog.V(3).InfoS("Unknown instance type, using fallback spec", "instanceType", instanceType)
	return DefaultSpec(instanceType)
}

var builtinCatalog = map[string]models.InstanceSpec{
	// AWS
	"t3.small":    {InstanceType: "t3.small", VCPUs: 2, MemoryGB: 2, TDP: 35},
	"t3.medium":   {InstanceType: "t3.medium", VCPUs: 2, MemoryGB: 4, TDP: 45},
	"t3.large":    {InstanceType: "t3.large", VCPUs: 2, MemoryGB: 8, TDP: 60},
	"m5.large":    {InstanceType: "m5.large", VCPUs: 2, MemoryGB: 8, TDP: 85},
	"m5.xlarge":   {InstanceType: "m5.xlarge", VCPUs: 4, MemoryGB: 16, TDP: 125},
	"m5.2xlarge":  {InstanceType: "m5.2xlarge", VCPUs: 8, MemoryGB: 32, TDP: 190},
	"c5.large":    {InstanceType: "c5.large", VCPUs: 2, MemoryGB: 4, TDP: 95},
	"c5.xlarge":   {InstanceType: "c5.xlarge", VCPUs: 4, MemoryGB: 8, TDP: 140},
	"c5.2xlarge":  {InstanceType: "c5.2xlarge", VCPUs: 8, MemoryGB: 16, TDP: 210},
	"r5.large":    {InstanceType: "r5.large", VCPUs: 2, MemoryGB: 16, TDP: 90},
	"r5.xlarge":   {InstanceType: "r5.xlarge", VCPUs: 4, MemoryGB: 32, TDP: 130},
	// GCP
	"e2-standard-2": {InstanceType: "e2-standard-2", VCPUs: 2, MemoryGB: 8, TDP: 55},
	"e2-standard-4": {InstanceType: "e2-standard-4", VCPUs: 4, MemoryGB: 16, TDP: 90},
	"n2-standard-2": {InstanceType: "n2-standard-2", VCPUs: 2, MemoryGB: 8, TDP: 80},
	"n2-standard-4": {InstanceType: "n2-standard-4", VCPUs: 4, MemoryGB: 16, TDP: 120},
	"n2-standard-8": {InstanceType: "n2-standard-8", VCPUs: 8, MemoryGB: 32, TDP: 180},
	// Azure
	"Standard_B2s":    {InstanceType: "Standard_B2s", VCPUs: 2, MemoryGB: 4, TDP: 40},
	"Standard_D2s_v3": {InstanceType: "Standard_D2s_v3", VCPUs: 2, MemoryGB: 8, TDP: 85},
	"Standard_D4s_v3": {InstanceType: "Standard_D4s_v3", VCPUs: 4, MemoryGB: 16, TDP: 125},
	"Standard_D8s_v3": {InstanceType: "Standard_D8s_v3", VCPUs: 8, MemoryGB: 32, TDP: 195},
	"Standard_F4s_v2": {InstanceType: "Standard_F4s_v2", VCPUs: 4, MemoryGB: 8, TDP: 145},
}
