// Package datasource supplies the resource descriptors and optional live
// usage readings the estimation engine consumes.
package datasource

import (
	"context"

	corev1 "k8s.io/api/core/v1"
)

// Repository retrieves resource descriptors from a cluster. The engine only
// depends on this interface; the client-go implementation below is one
// provider of it.
type Repository interface {
	GetNodes(ctx context.Context) ([]*corev1.Node, error)
	// GetPods lists pods, restricted to a namespace when namespaceFilter is
	// non-empty.
	GetPods(ctx context.Context, namespaceFilter string) ([]*corev1.Pod, error)
	GetNamespaces(ctx context.Context) ([]*corev1.Namespace, error)
	GetPodsOnNode(ctx context.Context, nodeName string) ([]*corev1.Pod, error)
}

// UsageSource reads live resource usage for a pod. Usage only feeds the
// display fields of a metric; failures must not fail a query.
type UsageSource interface {
	PodUsage(ctx context.Context, namespace, pod string) (cpuMillicores, memoryBytes float64, err error)
}
