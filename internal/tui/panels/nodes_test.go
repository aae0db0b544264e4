package panels

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dashctl/internal/tui/screen"

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

var nodesNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func fakeNode(name string, ready bool, created time.Time, labels map[string]string) *corev1.Node {
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Labels:            labels,
			CreationTimestamp: metav1.NewTime(created),
		},
		Spec: corev1.NodeSpec{ProviderID: "kind://docker/dev/" + name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: status}},
			Addresses:  []corev1.NodeAddress{{Type: corev1.NodeInternalIP, Address: "172.18.0.2"}},
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("8"),
				corev1.ResourceMemory: resource.MustParse("32Gi"),
			},
			NodeInfo: corev1.NodeSystemInfo{KubeletVersion: "v1.33.0"},
		},
	}
}

func newTestNodesPanel(t *testing.T, clientset *fake.Clientset) (*NodesPanel, *screen.Screen) {
	t.Helper()
	clientset.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: "v1.33.1"}

	s := screen.New(100, 20)
	p := NewNodesPanel(s, time.Second, clientset, "dev")
	p.now = func() time.Time { return nodesNow }
	p.SetVisible(true)
	return p, s
}

func testClientset() *fake.Clientset {
	return fake.NewSimpleClientset(
		fakeNode("worker-b", true, nodesNow.Add(-2*time.Hour), map[string]string{"node-role.kubernetes.io/worker": ""}),
		fakeNode("control-a", true, nodesNow.Add(-72*time.Hour), map[string]string{"node-role.kubernetes.io/control-plane": ""}),
		fakeNode("worker-c", false, nodesNow.Add(-time.Hour), nil),
	)
}

func TestNodesPanel_Draw(t *testing.T) {
	p, s := newTestNodesPanel(t, testClientset())
	require.NoError(t, p.Update(context.Background()))
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, "Nodes (context: dev, server v1.33.1, 2/3 ready):", lines[0])
	assert.Contains(t, strings.ToUpper(lines[1]), "NAME")
	assert.Contains(t, strings.ToUpper(lines[1]), "STATUS")

	assert.Contains(t, lines[2], "control-a")
	assert.Contains(t, lines[2], "control-plane")
	assert.Contains(t, lines[2], "3d")
	assert.Contains(t, lines[2], "kind")
	assert.Contains(t, lines[3], "worker-b")
	assert.Contains(t, lines[4], "worker-c")
	assert.Contains(t, lines[4], "NotReady")
	assert.Contains(t, lines[4], "<none>")
}

func TestNodesPanel_BeforeFirstUpdate(t *testing.T) {
	p, s := newTestNodesPanel(t, testClientset())
	p.Redraw(true)

	assert.Equal(t, "Nodes (context: dev):\nLoading nodes...", s.Content())
}

func TestNodesPanel_NoNodes(t *testing.T) {
	p, s := newTestNodesPanel(t, fake.NewSimpleClientset())
	require.NoError(t, p.Update(context.Background()))
	p.Redraw(true)

	assert.Equal(t, "Nodes (context: dev, server v1.33.1, 0/0 ready):\nNo nodes found", s.Content())
}

func TestNodesPanel_ListError(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	p, s := newTestNodesPanel(t, clientset)

	err := p.Update(context.Background())
	require.Error(t, err)

	p.Redraw(true)
	assert.Contains(t, s.Content(), "Unable to list nodes")
	assert.Contains(t, s.Content(), "connection refused")
}

func TestNodesPanel_ServerVersionCached(t *testing.T) {
	clientset := testClientset()
	p, _ := newTestNodesPanel(t, clientset)
	require.NoError(t, p.Update(context.Background()))

	clientset.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: "v1.34.0"}
	require.NoError(t, p.Update(context.Background()))

	assert.Equal(t, "v1.33.1", p.serverVersion())
}

func TestNodesPanel_Selection(t *testing.T) {
	p, s := newTestNodesPanel(t, testClientset())
	require.NoError(t, p.Update(context.Background()))
	p.Redraw(true)

	selected, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "control-a", selected)

	assert.True(t, press(t, p, "down"))
	selected, _ = p.Selected()
	assert.Equal(t, "worker-b", selected)

	assert.True(t, press(t, p, "end"))
	selected, _ = p.Selected()
	assert.Equal(t, "worker-c", selected)

	assert.False(t, press(t, p, "x"))
	assert.Contains(t, s.Content(), "control-a")
}

func TestNodesPanel_SortOrder(t *testing.T) {
	p, s := newTestNodesPanel(t, testClientset())
	require.NoError(t, p.Update(context.Background()))

	assert.Equal(t, "name", handler(t, p, "s").Current)

	require.True(t, press(t, p, "s"))
	assert.Equal(t, "status", handler(t, p, "s").Current)
	p.Redraw(true)
	lines := contentLines(s)
	assert.Less(t, lineIndex(lines, "worker-c"), lineIndex(lines, "control-a"))

	require.True(t, press(t, p, "s"))
	assert.Equal(t, "age", handler(t, p, "s").Current)
	p.Redraw(true)
	lines = contentLines(s)
	assert.Less(t, lineIndex(lines, "worker-c"), lineIndex(lines, "worker-b"))
	assert.Less(t, lineIndex(lines, "worker-b"), lineIndex(lines, "control-a"))

	require.True(t, press(t, p, "s"))
	require.True(t, press(t, p, "s"))
	assert.Equal(t, "name", handler(t, p, "s").Current)
}

func TestNodesPanel_Detail(t *testing.T) {
	p, s := newTestNodesPanel(t, testClientset())
	require.NoError(t, p.Update(context.Background()))

	assert.Equal(t, "show node details", handler(t, p, "enter").Description)
	require.True(t, press(t, p, "enter"))
	assert.Equal(t, "hide node details", handler(t, p, "enter").Description)

	p.Redraw(true)
	content := s.Content()
	assert.Contains(t, content, "┌─ control-a ─")
	assert.Contains(t, content, "address: 172.18.0.2")
	assert.Contains(t, content, "capacity: 8 cpu, 32Gi memory")
	assert.Contains(t, content, "conditions: no pressure")

	require.True(t, press(t, p, "enter"))
	p.Redraw(true)
	assert.NotContains(t, s.Content(), "address:")
}
