package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"
)

func TestMetricsServerPodUsage(t *testing.T) {
	client := metricsfake.NewSimpleClientset()
	// The fake clientset serves pod metrics from the "pods" resource, but
	// NewSimpleClientset seeds objects under the kind-guessed name
	// "podmetricses", so seed the tracker explicitly.
	err := client.Tracker().Create(v1beta1.SchemeGroupVersion.WithResource("pods"), &v1beta1.PodMetrics{
		ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "prod"},
		Containers: []v1beta1.ContainerMetrics{
			{
				Name: "main",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("250m"),
					corev1.ResourceMemory: resource.MustParse("128Mi"),
				},
			},
			{
				Name: "sidecar",
				Usage: corev1.ResourceList{
					corev1.ResourceCPU:    resource.MustParse("50m"),
					corev1.ResourceMemory: resource.MustParse("32Mi"),
				},
			},
		},
	}, "prod")
	require.NoError(t, err)

	source := NewMetricsServerUsageSourceWithClient(client)

	cpu, memory, err := source.PodUsage(context.Background(), "prod", "web-1")
	require.NoError(t, err)

	// Usage is summed over containers
	assert.Equal(t, 300.0, cpu)
	assert.Equal(t, float64(160<<20), memory)
}

func TestMetricsServerPodUsageMissingPod(t *testing.T) {
	source := NewMetricsServerUsageSourceWithClient(metricsfake.NewSimpleClientset())

	_, _, err := source.PodUsage(context.Background(), "prod", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get pod metrics")
}
