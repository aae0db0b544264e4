// Package kube provides the read-only Kubernetes access behind the nodes
// panel.
//
// It resolves a kubeconfig context into a clientset and summarizes the
// cluster's nodes into NodeInfo values that are cheap to sort and render.
// Everything takes a kubernetes.Interface so tests can substitute the
// client-go fake clientset.
//
// # Context Resolution
//
// An empty context name means the kubeconfig's current context, following
// the usual KUBECONFIG and ~/.kube/config lookup:
//
//	clientset, contextName, err := kube.GetClientsetForContext("")
//
// # Node Summaries
//
//	nodes, err := kube.ListNodes(ctx, clientset)
//	for _, node := range nodes {
//	    fmt.Println(node.Name, node.Status())
//	}
//
// The cloud provider of each node is inferred from its providerID, falling
// back to well known labels.
package kube
