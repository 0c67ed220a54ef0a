package carbon

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/datasource"
	"github.com/opscart/k8s-carbon-estimator/pkg/formatter"
	"github.com/opscart/k8s-carbon-estimator/pkg/metrics"
	"github.com/opscart/k8s-carbon-estimator/pkg/models"
)

// Engine dispatches parsed queries: it gathers the descriptors the scope
// needs, runs the matching calculator operation and shapes the results.
// Engines hold no per-query state and are safe for concurrent use.
type Engine struct {
	calc  Calculator
	repo  datasource.Repository
	usage datasource.UsageSource
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithUsageSource enables live usage enrichment of pod metrics. Enrichment
// only feeds display fields and never fails a query.
func WithUsageSource(usage datasource.UsageSource) EngineOption {
	return func(e *Engine) {
		e.usage = usage
	}
}

// NewEngine creates an Engine over the given calculator and repository.
func NewEngine(calc Calculator, repo datasource.Repository, opts ...EngineOption) *Engine {
	e := &Engine{calc: calc, repo: repo}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleQuery processes one query end to end and returns the result frames.
func (e *Engine) HandleQuery(ctx context.Context, q *models.Query) ([]*models.Frame, error) {
	carbonMetrics, err := e.collect(ctx, q)
	if err != nil {
		return nil, err
	}

	metrics.QueriesTotal.WithLabelValues(q.ResourceType, q.QueryType).Inc()

	return formatter.Convert(carbonMetrics, q)
}

func (e *Engine) collect(ctx context.Context, q *models.Query) ([]*models.CarbonMetric, error) {
	switch q.ResourceType {
	case models.ResourceTypeCluster:
		return e.collectCluster(ctx)
	case models.ResourceTypeNamespace:
		return e.collectNamespaces(ctx, q)
	case models.ResourceTypeNode:
		return e.collectNodes(ctx, q)
	case models.ResourceTypePod:
		return e.collectPods(ctx, q)
	default:
		return nil, fmt.Errorf("unknown resource type: %q", q.ResourceType)
	}
}

func (e *Engine) collectCluster(ctx context.Context) ([]*models.CarbonMetric, error) {
	nodes, err := e.repo.GetNodes(ctx)
	if err != nil {
		return nil, err
	}
	pods, err := e.repo.GetPods(ctx, "")
	if err != nil {
		return nil, err
	}

	metric, err := e.calc.CalculateClusterCarbon(ctx, nodes, pods)
	if err != nil {
		return nil, err
	}
	return []*models.CarbonMetric{metric}, nil
}

func (e *Engine) collectNamespaces(ctx context.Context, q *models.Query) ([]*models.CarbonMetric, error) {
	namespaces, err := e.repo.GetNamespaces(ctx)
	if err != nil {
		return nil, err
	}

	nsFilter := q.NamespaceFilter()
	pods, err := e.repo.GetPods(ctx, nsFilter)
	if err != nil {
		return nil, err
	}

	out := make([]*models.CarbonMetric, 0, len(namespaces))
	for _, namespace := range namespaces {
		if nsFilter != "" && namespace.Name != nsFilter {
			continue
		}
		metric, err := e.calc.CalculateNamespaceCarbon(ctx, namespace, pods)
		if err != nil {
			klog.V(2).InfoS("Skipping namespace in listing", "namespace", namespace.Name, "error", err)
			continue
		}
		out = append(out, metric)
	}
	return out, nil
}

func (e *Engine) collectNodes(ctx context.Context, q *models.Query) ([]*models.CarbonMetric, error) {
	nodes, err := e.repo.GetNodes(ctx)
	if err != nil {
		return nil, err
	}

	nodeFilter := q.FilterString("node")
	out := make([]*models.CarbonMetric, 0, len(nodes))
	for _, node := range nodes {
		if nodeFilter != "" && node.Name != nodeFilter {
			continue
		}
		pods, err := e.repo.GetPodsOnNode(ctx, node.Name)
		if err != nil {
			klog.V(2).InfoS("Skipping node, pod listing failed", "node", node.Name, "error", err)
			metrics.SkippedResources.WithLabelValues(models.ResourceTypeNode).Inc()
			continue
		}
		metric, err := e.calc.CalculateNodeCarbon(ctx, node, pods)
		if err != nil {
			klog.V(2).InfoS("Skipping node in listing", "node", node.Name, "error", err)
			metrics.SkippedResources.WithLabelValues(models.ResourceTypeNode).Inc()
			continue
		}
		out = append(out, metric)
	}
	return out, nil
}

func (e *Engine) collectPods(ctx context.Context, q *models.Query) ([]*models.CarbonMetric, error) {
	pods, err := e.repo.GetPods(ctx, q.NamespaceFilter())
	if err != nil {
		return nil, err
	}

	podFilter := q.FilterString("pod")
	out := make([]*models.CarbonMetric, 0, len(pods))
	for _, pod := range pods {
		if podFilter != "" && pod.Name != podFilter {
			continue
		}
		// The pod scope is the single-resource entry point: calculation
		// errors propagate instead of being skipped.
		metric, err := e.calc.CalculatePodCarbon(ctx, pod)
		if err != nil {
			return nil, err
		}
		e.enrichUsage(ctx, pod, metric)
		out = append(out, metric)
	}
	return out, nil
}

// enrichUsage overlays live usage readings onto the display fields of a pod
// metric when a usage source is configured.
func (e *Engine) enrichUsage(ctx context.Context, pod *corev1.Pod, metric *models.CarbonMetric) {
	if e.usage == nil {
		return
	}
	cpu, memory, err := e.usage.PodUsage(ctx, pod.Namespace, pod.Name)
	if err != nil {
		klog.V(3).InfoS("Usage enrichment failed", "namespace", pod.Namespace, "pod", pod.Name, "error", err)
		return
	}
	metric.CPUUsage = cpu
	metric.MemoryUsage = memory
}
