package datasource

import (
	"context"
	"fmt"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"
)

// MetricsServerUsageSource reads current pod usage from the in-cluster
// metrics-server API.
type MetricsServerUsageSource struct {
	metricsClient metricsv.Interface
}

func NewMetricsServerUsageSource() (*MetricsServerUsageSource, error) {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		var kubeconfig string
		if home := homedir.HomeDir(); home != "" {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build config: %w", err)
		}
	}

	metricsClient, err := metricsv.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return &MetricsServerUsageSource{metricsClient: metricsClient}, nil
}

// NewMetricsServerUsageSourceWithClient wraps an existing metrics clientset,
// used by tests with a fake clientset.
func NewMetricsServerUsageSourceWithClient(metricsClient metricsv.Interface) *MetricsServerUsageSource {
	return &MetricsServerUsageSource{metricsClient: metricsClient}
}

func (m *MetricsServerUsageSource) PodUsage(ctx context.Context, namespace, pod string) (float64, float64, error) {
	podMetrics, err := m.metricsClient.MetricsV1beta1().PodMetricses(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get pod metrics: %w", err)
	}

	var cpuMillicores, memoryBytes float64
	for _, container := range podMetrics.Containers {
		cpuMillicores += float64(container.Usage.Cpu().MilliValue())
		memoryBytes += float64(container.Usage.Memory().Value())
	}

	return cpuMillicores, memoryBytes, nil
}
