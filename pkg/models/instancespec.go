package models

// InstanceSpec describes the power and capacity characteristics of a cloud
// instance type.
type InstanceSpec struct {
	InstanceType string  `json:"instanceType"`
	VCPUs        int     `json:"vcpus"`
	MemoryGB     float64 `json:"memoryGB"`
	TDP          float64 `json:"tdp"` // watts
}
