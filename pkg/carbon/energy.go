package carbon

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

// Energy model coefficients. Both models produce the energy consumed over a
// fixed one-hour accounting window; there is no time-window parameter.
const (
	// Marginal draw attributable to one fully-requested CPU core, watts.
	wattsPerCore = 2.5
	// Marginal draw attributable to one GiB of requested memory, watts.
	wattsPerGiB = 0.375
	// Fraction of TDP an idle machine still draws.
	idleTDPFraction = 0.3

	bytesPerGiB = float64(1 << 30)
)

// podResourceRequests sums the container resource requests of a pod.
func podResourceRequests(pod *corev1.Pod) (cpuMillicores, memoryBytes float64) {
	for _, container := range pod.Spec.Containers {
		if cpu := container.Resources.Requests.Cpu(); cpu != nil {
			cpuMillicores += float64(cpu.MilliValue())
		}
		if memory := container.Resources.Requests.Memory(); memory != nil {
			memoryBytes += float64(memory.Value())
		}
	}
	return cpuMillicores, memoryBytes
}

// podEnergyKWh estimates the energy a pod consumes in one hour, from its
// resource requests. The model is additive: it prices the marginal cost of
// the workload, independent of the host machine's total draw. A pod with no
// assigned node has no basis for estimation and is an error.
func podEnergyKWh(pod *corev1.Pod) (float64, error) {
	if pod.Spec.NodeName == "" {
		return 0, fmt.Errorf("pod %s/%s is not scheduled to a node", pod.Namespace, pod.Name)
	}

	cpuMillicores, memoryBytes := podResourceRequests(pod)

	cpuWatts := (cpuMillicores / 1000.0) * wattsPerCore
	memoryWatts := (memoryBytes / bytesPerGiB) * wattsPerGiB

	return (cpuWatts + memoryWatts) / 1000.0, nil
}

// nodeEnergyKWh estimates the energy a whole node consumes in one hour,
// scaling the instance TDP by requested CPU saturation: 30% of TDP at idle,
// rising linearly to 100% at full requested capacity. Over-commitment is
// clamped, never amplifying past TDP. CPU is the sole utilization signal;
// memory influences only the pod model.
func nodeEnergyKWh(node *corev1.Node, pods []*corev1.Pod, spec *models.InstanceSpec) (float64, error) {
	cpuCapacity := float64(node.Status.Capacity.Cpu().MilliValue())
	if cpuCapacity <= 0 {
		return 0, fmt.Errorf("node %s reports no CPU capacity", node.Name)
	}

	var requestedMillicores float64
	for _, pod := range pods {
		if pod.Spec.NodeName != node.Name {
			continue
		}
		cpu, _ := podResourceRequests(pod)
		requestedMillicores += cpu
	}

	utilization := requestedMillicores / cpuCapacity
	if utilization > 1.0 {
		utilization = 1.0
	}

	factor := idleTDPFraction + (1.0-idleTDPFraction)*utilization

	return spec.TDP * factor / 1000.0, nil
}
