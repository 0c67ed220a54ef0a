package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"k8s.io/klog/v2"
)

// PrometheusUsageSource reads live pod usage from a Prometheus server
// scraping cAdvisor metrics.
type PrometheusUsageSource struct {
	client promv1.API
	url    string
}

func NewPrometheusUsageSource(url string) (*PrometheusUsageSource, error) {
	client, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusUsageSource{
		client: promv1.NewAPI(client),
		url:    url,
	}, nil
}

// PodUsage returns current CPU (millicores) and working-set memory (bytes)
// for a pod, summed over its containers.
func (p *PrometheusUsageSource) PodUsage(ctx context.Context, namespace, pod string) (float64, float64, error) {
	cpuQuery := fmt.Sprintf(`sum(rate(container_cpu_usage_seconds_total{namespace=%q,pod=%q}[5m]))`, namespace, pod)
	cpuCores, err := p.querySingle(ctx, cpuQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("CPU query failed: %w", err)
	}

	memQuery := fmt.Sprintf(`sum(container_memory_working_set_bytes{namespace=%q,pod=%q})`, namespace, pod)
	memoryBytes, err := p.querySingle(ctx, memQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("memory query failed: %w", err)
	}

	return cpuCores * 1000.0, memoryBytes, nil
}

func (p *PrometheusUsageSource) querySingle(ctx context.Context, query string) (float64, error) {
	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}

	if len(warnings) > 0 {
		klog.V(2).InfoS("Prometheus query returned warnings", "warnings", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok || len(vector) == 0 {
		return 0, fmt.Errorf("no data for query: %s", query)
	}

	sum := 0.0
	for _, sample := range vector {
		sum += float64(sample.Value)
	}

	return sum, nil
}
