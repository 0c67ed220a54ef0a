package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func fakeCluster() *fake.Clientset {
	return fake.NewSimpleClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-a"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-b"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "prod"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "staging"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "prod"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "api-1", Namespace: "staging"}},
	)
}

func TestGetNodes(t *testing.T) {
	repo := NewKubernetesRepositoryWithClient(fakeCluster())

	nodes, err := repo.GetNodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestGetNamespaces(t *testing.T) {
	repo := NewKubernetesRepositoryWithClient(fakeCluster())

	namespaces, err := repo.GetNamespaces(context.Background())
	require.NoError(t, err)
	assert.Len(t, namespaces, 2)
}

func TestGetPodsAllNamespaces(t *testing.T) {
	repo := NewKubernetesRepositoryWithClient(fakeCluster())

	pods, err := repo.GetPods(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, pods, 2)
}

func TestGetPodsNamespaceFilter(t *testing.T) {
	repo := NewKubernetesRepositoryWithClient(fakeCluster())

	pods, err := repo.GetPods(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "web-1", pods[0].Name)
}
