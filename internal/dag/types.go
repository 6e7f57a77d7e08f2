package dag

import (
	"errors"
	"sync"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
)

var (
	// ErrUnknownTask is returned when a requested task is not in the graph.
	ErrUnknownTask = errors.New("unknown task")
	// ErrCycle is returned when the prerequisites form a cycle.
	ErrCycle = errors.New("cycle detected")
)

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during construction.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by task name.
	nodes map[string]*Node
}

// Node is a typed handle for a single task in the graph.
type Node struct {
	// Task is the registered task definition.
	Task *registry.Task
	// deps holds the nodes this node depends on (predecessors).
	deps map[string]*Node
	// dependents holds the nodes that depend on this node (successors).
	dependents map[string]*Node
}

// Name returns the task name of the node.
func (n *Node) Name() string {
	return n.Task.Name
}

// State represents the execution state of a node within a single run.
type State int32

const (
	// Pending means the node has not started yet.
	Pending State = iota
	// Running means the node's body is executing.
	Running
	// Done means the node completed successfully.
	Done
	// Failed means the node's body returned an error.
	Failed
	// Skipped means a prerequisite failed so the node never ran.
	Skipped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}
