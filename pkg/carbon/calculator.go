package carbon

import (
	"context"
	"strconv"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/config"
	"github.com/opscart/k8s-carbon-estimator/pkg/gridintensity"
	"github.com/opscart/k8s-carbon-estimator/pkg/instancespecs"
	"github.com/opscart/k8s-carbon-estimator/pkg/metrics"
	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

// Node labels consulted for the instance type, in lookup order.
var instanceTypeLabels = []string{
	"beta.kubernetes.io/instance-type",
	"node.kubernetes.io/instance-type",
}

const zoneLabel = "topology.kubernetes.io/zone"

// Calculator produces CO2 emission estimates for Kubernetes resources. Each
// operation emits exactly one metric for its scope. Implementations must be
// safe for concurrent use; the four operations share only immutable
// configuration and the injected providers.
type Calculator interface {
	CalculateClusterCarbon(ctx context.Context, nodes []*corev1.Node, pods []*corev1.Pod) (*models.CarbonMetric, error)
	CalculateNamespaceCarbon(ctx context.Context, namespace *corev1.Namespace, pods []*corev1.Pod) (*models.CarbonMetric, error)
	CalculateNodeCarbon(ctx context.Context, node *corev1.Node, pods []*corev1.Pod) (*models.CarbonMetric, error)
	CalculatePodCarbon(ctx context.Context, pod *corev1.Pod) (*models.CarbonMetric, error)
}

type calculator struct {
	cfg           *config.Config
	gridIntensity gridintensity.Provider
	instanceSpecs instancespecs.Provider
}

// NewCalculator creates a Calculator with the given providers injected.
func NewCalculator(cfg *config.Config, grid gridintensity.Provider, specs instancespecs.Provider) Calculator {
	return &calculator{
		cfg:           cfg,
		gridIntensity: grid,
		instanceSpecs: specs,
	}
}

// CalculateClusterCarbon sums node energies across the whole cluster. Nodes
// whose calculation fails are omitted from the total rather than failing the
// cluster estimate.
func (c *calculator) CalculateClusterCarbon(ctx context.Context, nodes []*corev1.Node, pods []*corev1.Pod) (*models.CarbonMetric, error) {
	now := time.Now()

	var totalEnergy float64
	skipped := 0
	for _, node := range nodes {
		spec := c.instanceSpecs.GetInstanceSpec(instanceTypeFor(node))
		energy, err := nodeEnergyKWh(node, pods, spec)
		if err != nil {
			klog.V(2).InfoS("Skipping node in cluster aggregate", "node", node.Name, "error", err)
			skipped++
			continue
		}
		totalEnergy += energy
	}
	if skipped > 0 {
		metrics.SkippedResources.WithLabelValues(models.ResourceTypeCluster).Add(float64(skipped))
	}

	totalEnergy *= c.cfg.PUE
	res := c.resolveIntensity(ctx)

	return &models.CarbonMetric{
		Timestamp:         now,
		ResourceType:      models.ResourceTypeCluster,
		ResourceName:      "cluster",
		CO2Emissions:      totalEnergy * res.Intensity,
		EnergyConsumption: totalEnergy,
		GridIntensity:     res.Intensity,
		Source:            sourceFor(res),
		Labels:            skippedLabels(nil, skipped),
	}, nil
}

// CalculateNamespaceCarbon sums pod energies for the pods belonging to the
// namespace. Pods whose calculation fails are omitted from the total.
func (c *calculator) CalculateNamespaceCarbon(ctx context.Context, namespace *corev1.Namespace, pods []*corev1.Pod) (*models.CarbonMetric, error) {
	now := time.Now()

	var totalEnergy, cpuUsage, memoryUsage float64
	skipped := 0
	for _, pod := range pods {
		if pod.Namespace != namespace.Name {
			continue
		}
		energy, err := podEnergyKWh(pod)
		if err != nil {
			klog.V(2).InfoS("Skipping pod in namespace aggregate",
				"namespace", namespace.Name, "pod", pod.Name, "error", err)
			skipped++
			continue
		}
		totalEnergy += energy
		cpu, memory := podResourceRequests(pod)
		cpuUsage += cpu
		memoryUsage += memory
	}
	if skipped > 0 {
		metrics.SkippedResources.WithLabelValues(models.ResourceTypeNamespace).Add(float64(skipped))
	}

	totalEnergy *= c.cfg.PUE
	res := c.resolveIntensity(ctx)

	return &models.CarbonMetric{
		Timestamp:         now,
		ResourceType:      models.ResourceTypeNamespace,
		ResourceName:      namespace.Name,
		Namespace:         namespace.Name,
		CO2Emissions:      totalEnergy * res.Intensity,
		EnergyConsumption: totalEnergy,
		GridIntensity:     res.Intensity,
		Source:            sourceFor(res),
		Labels:            skippedLabels(namespace.Labels, skipped),
		CPUUsage:          cpuUsage,
		MemoryUsage:       memoryUsage,
	}, nil
}

// CalculateNodeCarbon estimates a single node with the whole-machine model.
// The estimate is not derived from summing pod estimates; the two models are
// intentionally different views of the same machine.
func (c *calculator) CalculateNodeCarbon(ctx context.Context, node *corev1.Node, pods []*corev1.Pod) (*models.CarbonMetric, error) {
	now := time.Now()

	nodePods := make([]*corev1.Pod, 0, len(pods))
	for _, pod := range pods {
		if pod.Spec.NodeName == node.Name {
			nodePods = append(nodePods, pod)
		}
	}

	instanceType := instanceTypeFor(node)
	spec := c.instanceSpecs.GetInstanceSpec(instanceType)
	energy, err := nodeEnergyKWh(node, nodePods, spec)
	if err != nil {
		return nil, err
	}

	energy *= c.cfg.PUE
	res := c.resolveIntensity(ctx)

	labels := map[string]string{
		"instance-type": instanceType,
		"zone":          node.Labels[zoneLabel],
	}

	return &models.CarbonMetric{
		Timestamp:         now,
		ResourceType:      models.ResourceTypeNode,
		ResourceName:      node.Name,
		NodeName:          node.Name,
		CO2Emissions:      energy * res.Intensity,
		EnergyConsumption: energy,
		GridIntensity:     res.Intensity,
		Source:            sourceFor(res),
		Labels:            labels,
	}, nil
}

// CalculatePodCarbon estimates a single pod with the additive request model.
// Unlike the aggregate operations this is a caller-facing single-resource
// entry point, so an unschedulable estimate propagates as an error.
func (c *calculator) CalculatePodCarbon(ctx context.Context, pod *corev1.Pod) (*models.CarbonMetric, error) {
	now := time.Now()

	energy, err := podEnergyKWh(pod)
	if err != nil {
		return nil, err
	}

	energy *= c.cfg.PUE
	res := c.resolveIntensity(ctx)
	cpuUsage, memoryUsage := podResourceRequests(pod)

	return &models.CarbonMetric{
		Timestamp:         now,
		ResourceType:      models.ResourceTypePod,
		ResourceName:      pod.Name,
		Namespace:         pod.Namespace,
		NodeName:          pod.Spec.NodeName,
		CO2Emissions:      energy * res.Intensity,
		EnergyConsumption: energy,
		GridIntensity:     res.Intensity,
		Source:            sourceFor(res),
		Labels:            pod.Labels,
		CPUUsage:          cpuUsage,
		MemoryUsage:       memoryUsage,
	}, nil
}

// resolveIntensity consults the provider and substitutes the configured
// default when the provider errors outright. Built-in providers degrade
// internally and never take the error path.
func (c *calculator) resolveIntensity(ctx context.Context) gridintensity.Resolution {
	res, err := c.gridIntensity.GetGridIntensity(ctx)
	if err != nil {
		metrics.GridIntensityFallbacks.Inc()
		klog.V(2).InfoS("Grid intensity provider failed, using default",
			"provider", c.gridIntensity.Name(), "error", err)
		return gridintensity.Resolution{
			Intensity: c.cfg.DefaultGridIntensity,
			Fallback:  true,
			Reason:    err.Error(),
		}
	}
	return res
}

func sourceFor(res gridintensity.Resolution) string {
	if res.Fallback {
		return models.SourceEstimated
	}
	return models.SourceCalculated
}

func instanceTypeFor(node *corev1.Node) string {
	for _, label := range instanceTypeLabels {
		if it, ok := node.Labels[label]; ok {
			return it
		}
	}
	return "unknown"
}

// skippedLabels copies base labels and records the skip count when any
// resources were dropped from an aggregate.
func skippedLabels(base map[string]string, skipped int) map[string]string {
	if skipped == 0 {
		return base
	}
	labels := make(map[string]string, len(base)+1)
	for k, v := range base {
		labels[k] = v
	}
	labels[models.LabelSkippedResources] = strconv.Itoa(skipped)
	return labels
}
