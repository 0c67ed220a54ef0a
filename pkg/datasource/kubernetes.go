package datasource

import (
	"context"
	"fmt"
	"path/filepath"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// KubernetesRepository implements Repository against a live cluster.
type KubernetesRepository struct {
	clientset kubernetes.Interface
}

// NewKubernetesRepository connects using in-cluster configuration when
// available, falling back to the local kubeconfig.
func NewKubernetesRepository() (*KubernetesRepository, error) {
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

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &KubernetesRepository{clientset: clientset}, nil
}

// NewKubernetesRepositoryWithClient wraps an existing clientset, used by
// tests with a fake clientset.
func NewKubernetesRepositoryWithClient(clientset kubernetes.Interface) *KubernetesRepository {
	return &KubernetesRepository{clientset: clientset}
}

func (r *KubernetesRepository) GetNodes(ctx context.Context) ([]*corev1.Node, error) {
	list, err := r.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodes := make([]*corev1.Node, 0, len(list.Items))
	for i := range list.Items {
		nodes = append(nodes, &list.Items[i])
	}
	return nodes, nil
}

func (r *KubernetesRepository) GetPods(ctx context.Context, namespaceFilter string) ([]*corev1.Pod, error) {
	namespace := namespaceFilter // empty lists across all namespaces
	list, err := r.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	pods := make([]*corev1.Pod, 0, len(list.Items))
	for i := range list.Items {
		pods = append(pods, &list.Items[i])
	}
	return pods, nil
}

func (r *KubernetesRepository) GetNamespaces(ctx context.Context) ([]*corev1.Namespace, error) {
	list, err := r.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	namespaces := make([]*corev1.Namespace, 0, len(list.Items))
	for i := range list.Items {
		namespaces = append(namespaces, &list.Items[i])
	}
	return namespaces, nil
}

func (r *KubernetesRepository) GetPodsOnNode(ctx context.Context, nodeName string) ([]*corev1.Pod, error) {
	list, err := r.clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + nodeName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods on node %s: %w", nodeName, err)
	}
	pods := make([]*corev1.Pod, 0, len(list.Items))
	for i := range list.Items {
		pods = append(pods, &list.Items[i])
	}
	return pods, nil
}
