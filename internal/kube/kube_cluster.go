package kube

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	requestTimeout  = 15 * time.Second
	roleLabelPrefix = "node-role.kubernetes.io/"
)

// ListNodes retrieves a summary of every node in the cluster.
var ListNodes = func(ctx context.Context, clientset kubernetes.Interface) ([]NodeInfo, error) {
	// List Nodes with an explicit context timeout to ensure the call cannot hang indefinitely.
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	nodeList, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]NodeInfo, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		nodes = append(nodes, summarizeNode(&nodeList.Items[i]))
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes, nil
}

// ErrNodeNotFound is returned by GetNode when the cluster has no such node.
var ErrNodeNotFound = errors.New("node not found")

// GetNode retrieves a summary of a single node.
var GetNode = func(ctx context.Context, clientset kubernetes.Interface, name string) (NodeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	node, err := clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return NodeInfo{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	if err != nil {
		return NodeInfo{}, fmt.Errorf("failed to get node %s: %w", name, err)
	}
	return summarizeNode(node), nil
}

// ServerVersion asks the API server for its version.
var ServerVersion = func(clientset kubernetes.Interface) (string, error) {
	info, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	return info.GitVersion, nil
}

func summarizeNode(node *corev1.Node) NodeInfo {
	info := NodeInfo{
		Name:           node.Name,
		Unschedulable:  node.Spec.Unschedulable,
		KubeletVersion: node.Status.NodeInfo.KubeletVersion,
		Provider:       determineProviderFromNode(node),
		Created:        node.CreationTimestamp.Time,
	}

	for _, condition := range node.Status.Conditions {
		if condition.Status != corev1.ConditionTrue {
			continue
		}
		if condition.Type == corev1.NodeReady {
			info.Ready = true
		} else {
			info.Pressure = append(info.Pressure, string(condition.Type))
		}
	}

	for label := range node.Labels {
		if role, ok := strings.CutPrefix(label, roleLabelPrefix); ok && role != "" {
			info.Roles = append(info.Roles, role)
		}
	}
	sort.Strings(info.Roles)

	for _, addr := range node.Status.Addresses {
		if addr.Type == corev1.NodeInternalIP {
			info.InternalIP = addr.Address
			break
		}
	}

	if cpu, ok := node.Status.Capacity[corev1.ResourceCPU]; ok {
		info.CPU = cpu.String()
	}
	if memory, ok := node.Status.Capacity[corev1.ResourceMemory]; ok {
		info.Memory = memory.String()
	}
	return info
}

// determineProviderFromNode is an unexported helper that inspects a single node's
// ProviderID and labels to determine the cloud provider.
func determineProviderFromNode(node *corev1.Node) string {
	if node == nil {
		return "unknown"
	}

	providerID := node.Spec.ProviderID

	if providerID != "" {
		if strings.HasPrefix(providerID, "aws://") {
			return "aws"
		} else if strings.HasPrefix(providerID, "azure://") {
			return "azure"
		} else if strings.HasPrefix(providerID, "gce://") {
			return "gcp"
		} else if strings.Contains(providerID, "vsphere") {
			return "vsphere"
		} else if strings.Contains(providerID, "openstack") {
			return "openstack"
		} else if strings.HasPrefix(providerID, "kind://") {
			return "kind"
		}
		// If providerID is present but not matched, try labels next
	}

	for k := range node.GetLabels() {
		if strings.Contains(k, "eks.amazonaws.com") || strings.Contains(k, "amazonaws.com/compute") {
			return "aws"
		} else if strings.Contains(k, "kubernetes.azure.com") || strings.Contains(k, "cloud-provider-azure") {
			return "azure"
		} else if strings.Contains(k, "cloud.google.com/gke") || strings.Contains(k, "instancegroup.gke.io") {
			return "gcp"
		}
	}
	return "unknown"
}

// GetClientsetForContext creates a Kubernetes clientset for a specific
// context, or the current one if kubeContextName is empty. It also returns the
// name of the context that was used.
var GetClientsetForContext = func(kubeContextName string) (kubernetes.Interface, string, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContextName}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	resolvedContext := kubeContextName
	if resolvedContext == "" {
		rawConfig, err := kubeConfig.RawConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		resolvedContext = rawConfig.CurrentContext
	}

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get REST config for context %q: %w", resolvedContext, err)
	}
	restConfig.Timeout = requestTimeout

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Kubernetes clientset for context %q: %w", resolvedContext, err)
	}

	return clientset, resolvedContext, nil
}
