// Package mapping translates between local task enumerations and remote
// workflow states / priority integers.
//
// These functions are the single source of truth for both directions of
// translation; push and pull stay symmetric because they go through the
// same tables.
package mapping

import (
	"fmt"
	"strings"

	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/types"
)

// StatusMap maps each local status to a remote workflow-state name.
// Lookups against state names are case-insensitive.
type StatusMap map[types.Status]string

// PriorityMap maps each local priority to a remote priority integer
// (smaller = more urgent).
type PriorityMap map[types.Priority]int

// DefaultStatusMap returns the stock status mapping.
func DefaultStatusMap() StatusMap {
	return StatusMap{
		types.StatusPending:    "Triage",
		types.StatusReady:      "Todo",
		types.StatusInProgress: "In Progress",
		types.StatusComplete:   "Done",
		types.StatusCancelled:  "Cancelled",
	}
}

// DefaultPriorityMap returns the stock priority mapping.
func DefaultPriorityMap() PriorityMap {
	return PriorityMap{
		types.PriorityP1: 1,
		types.PriorityP2: 2,
		types.PriorityP3: 3,
	}
}

// StatusToRemoteState finds the workflow state whose name matches the
// mapped name for status, case-insensitively. Returns an error when the
// configured remote workflow has no such state.
func StatusToRemoteState(status types.Status, candidates []*linear.WorkflowState, m StatusMap) (*linear.WorkflowState, error) {
	name, ok := m[status]
	if !ok {
		return nil, fmt.Errorf("status %q has no remote state mapping", status)
	}
	for _, state := range candidates {
		if strings.EqualFold(state.Name, name) {
			return state, nil
		}
	}
	return nil, fmt.Errorf("remote workflow has no state named %q (for status %q)", name, status)
}

// RemoteStateToStatus is the inverse lookup, case-insensitive. Returns
// StatusUnresolved when no local status maps to the name; callers must
// leave the local status unchanged in that case.
func RemoteStateToStatus(remoteStateName string, m StatusMap) types.Status {
	for status, name := range m {
		if strings.EqualFold(name, remoteStateName) {
			return status
		}
	}
	return types.StatusUnresolved
}

// PriorityToRemote translates a local priority to the remote integer.
// Priorities absent from the map fall back to the normal tier.
func PriorityToRemote(p types.Priority, m PriorityMap) int {
	if n, ok := m[p]; ok {
		return n
	}
	if n, ok := m[types.PriorityP3]; ok {
		return n
	}
	return 3
}

// RemoteToPriority translates a remote priority integer back to the local
// enumeration. Unknown or unset (zero) remote priorities default to the
// normal tier.
func RemoteToPriority(n int, m PriorityMap) types.Priority {
	for p, remote := range m {
		if remote == n {
			return p
		}
	}
	return types.PriorityP3
}
