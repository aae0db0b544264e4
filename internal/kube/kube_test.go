package kube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func testNode(name string, ready bool, labels map[string]string) *corev1.Node {
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Labels:            labels,
			CreationTimestamp: metav1.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		Spec: corev1.NodeSpec{ProviderID: "aws:///eu-west-1a/i-" + name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: status},
			},
			Addresses: []corev1.NodeAddress{
				{Type: corev1.NodeHostName, Address: name},
				{Type: corev1.NodeInternalIP, Address: "10.0.0.1"},
			},
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("4"),
				corev1.ResourceMemory: resource.MustParse("16Gi"),
			},
			NodeInfo: corev1.NodeSystemInfo{KubeletVersion: "v1.33.0"},
		},
	}
}

func TestListNodes(t *testing.T) {
	pressured := testNode("worker-b", true, map[string]string{"node-role.kubernetes.io/worker": ""})
	pressured.Status.Conditions = append(pressured.Status.Conditions,
		corev1.NodeCondition{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionTrue},
		corev1.NodeCondition{Type: corev1.NodeDiskPressure, Status: corev1.ConditionFalse},
	)
	pressured.Spec.Unschedulable = true

	clientset := fake.NewSimpleClientset(
		pressured,
		testNode("control-a", true, map[string]string{
			"node-role.kubernetes.io/control-plane": "",
			"node-role.kubernetes.io/master":        "",
		}),
		testNode("worker-c", false, nil),
	)

	nodes, err := ListNodes(context.Background(), clientset)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "control-a", nodes[0].Name)
	assert.Equal(t, []string{"control-plane", "master"}, nodes[0].Roles)
	assert.Equal(t, "Ready", nodes[0].Status())
	assert.Equal(t, "aws", nodes[0].Provider)
	assert.Equal(t, "10.0.0.1", nodes[0].InternalIP)
	assert.Equal(t, "4", nodes[0].CPU)
	assert.Equal(t, "16Gi", nodes[0].Memory)
	assert.Equal(t, "v1.33.0", nodes[0].KubeletVersion)

	assert.Equal(t, "worker-b", nodes[1].Name)
	assert.Equal(t, "Ready,SchedulingDisabled", nodes[1].Status())
	assert.Equal(t, []string{"MemoryPressure"}, nodes[1].Pressure)

	assert.Equal(t, "NotReady", nodes[2].Status())
	assert.Equal(t, "<none>", nodes[2].RoleList())

	assert.Equal(t, NodeHealth{ReadyNodes: 2, TotalNodes: 3}, Health(nodes))
}

func TestListNodes_Error(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	_, err := ListNodes(context.Background(), clientset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServerVersion(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: "v1.33.1"}

	got, err := ServerVersion(clientset)
	require.NoError(t, err)
	assert.Equal(t, "v1.33.1", got)
}

func TestGetNode(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		testNode("control-a", true, map[string]string{"node-role.kubernetes.io/control-plane": ""}),
		testNode("worker-b", false, nil),
	)

	node, err := GetNode(context.Background(), clientset, "control-a")
	require.NoError(t, err)
	assert.Equal(t, "control-a", node.Name)
	assert.Equal(t, []string{"control-plane"}, node.Roles)
	assert.Equal(t, "10.0.0.1", node.InternalIP)

	_, err = GetNode(context.Background(), clientset, "worker-z")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "worker-z")
}

func TestGetNode_Error(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("get", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	_, err := GetNode(context.Background(), clientset, "control-a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}
