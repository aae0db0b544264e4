package kube

import (
	"strings"
	"time"
)

// NodeInfo summarizes a cluster node.
type NodeInfo struct {
	Name           string
	Ready          bool
	Unschedulable  bool
	Roles          []string
	KubeletVersion string
	InternalIP     string
	Provider       string
	CPU            string
	Memory         string
	Created        time.Time
	// Pressure lists conditions such as MemoryPressure that are currently
	// true.
	Pressure []string
}

// Status is the node state as kubectl shows it.
func (n NodeInfo) Status() string {
	status := "NotReady"
	if n.Ready {
		status = "Ready"
	}
	if n.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

// RoleList is the node's roles joined for display.
func (n NodeInfo) RoleList() string {
	if len(n.Roles) == 0 {
		return "<none>"
	}
	return strings.Join(n.Roles, ",")
}

// NodeHealth represents the health status of nodes in a cluster
type NodeHealth struct {
	ReadyNodes int
	TotalNodes int
}

// Health counts the ready nodes.
func Health(nodes []NodeInfo) NodeHealth {
	health := NodeHealth{TotalNodes: len(nodes)}
	for _, node := range nodes {
		if node.Ready {
			health.ReadyNodes++
		}
	}
	return health
}
