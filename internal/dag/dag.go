package dag

import (
	"fmt"
	"sort"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// AddNode adds a node for the task and returns its handle. If a node with
// the same name already exists, the existing handle is returned.
func (g *Graph) AddNode(t *registry.Task) *Node {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n, ok := g.nodes[t.Name]; ok {
		return n
	}

	n := &Node{
		Task:       t,
		deps:       make(map[string]*Node),
		dependents: make(map[string]*Node),
	}
	g.nodes[t.Name] = n
	return n
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Node returns the handle for name.
func (g *Graph) Node(name string) (*Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the sorted names of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted names of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// DetectCycles checks the graph for any cycles. It returns an error wrapping
// ErrCycle and naming a node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the recursion stack of the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.Name()] {
			return nil
		}
		if temporary[n.Name()] {
			return fmt.Errorf("%w involving task '%s'", ErrCycle, n.Name())
		}

		temporary[n.Name()] = true
		for _, name := range sortedKeys(n.dependents) {
			if err := visit(n.dependents[name]); err != nil {
				return err
			}
		}
		delete(temporary, n.Name())
		permanent[n.Name()] = true

		return nil
	}

	// Visit in name order so the reported node is deterministic.
	for _, name := range sortedKeys(g.nodes) {
		if err := visit(g.nodes[name]); err != nil {
			return err
		}
	}

	return nil
}

// Closure returns the requested nodes together with all their transitive
// prerequisites, sorted by name.
func (g *Graph) Closure(names ...string) ([]*Node, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]*Node)
	var visit func(n *Node)
	visit = func(n *Node) {
		if _, ok := seen[n.Name()]; ok {
			return
		}
		seen[n.Name()] = n
		for _, dep := range n.deps {
			visit(dep)
		}
	}

	for _, name := range names {
		n, ok := g.nodes[name]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnknownTask, name)
		}
		visit(n)
	}

	out := make([]*Node, 0, len(seen))
	for _, name := range sortedKeys(seen) {
		out = append(out, seen[name])
	}
	return out, nil
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
