// Package dag provides the dependency-graph primitive shared by cycle
// detection, topological sequencing and date propagation. It supports
// reachability, Kahn ordering with caller-defined tie-breaking, dependency
// levels and transitive dependent queries.
//
// Every traversal is bounded by a visited set, so a graph that was built
// with Link and happens to contain a cycle never causes an infinite loop:
// queries still terminate and orderings report ErrCycle.
package dag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when the graph contains a dependency cycle.
var ErrCycle = errors.New("cycle detected")

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when an edge would create a self-loop.
var ErrSelfEdge = errors.New("self-referencing edge")

// Node is a vertex in the graph. Seq records insertion order and is the
// final tiebreaker of every ordering.
type Node struct {
	ID  string
	Seq int
}

// DAG is a directed graph of tasks. Edges point from a node to its
// dependencies: if A depends on B, there is an edge from A to B.
type DAG struct {
	nodes map[string]*Node
	// adjacency maps nodeID → set of dependency IDs (forward edges).
	adjacency map[string]map[string]bool
	// reverse maps nodeID → set of dependent IDs (backward edges).
	reverse map[string]map[string]bool
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:     make(map[string]*Node),
		adjacency: make(map[string]map[string]bool),
		reverse:   make(map[string]map[string]bool),
	}
}

// AddNode adds a node with the given ID. Returns ErrDuplicateNode if a node
// with that ID already exists.
func (d *DAG) AddNode(id string) error {
	if _, exists := d.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	d.nodes[id] = &Node{ID: id, Seq: len(d.nodes)}
	d.adjacency[id] = make(map[string]bool)
	d.reverse[id] = make(map[string]bool)
	return nil
}

// AddEdge adds a dependency edge: from depends on to. Both nodes must
// already exist. Returns an error if either node is missing, the edge
// would create a self-loop, or the edge would introduce a cycle.
func (d *DAG) AddEdge(from, to string) error {
	if err := d.checkEdge(from, to); err != nil {
		return err
	}
	if d.adjacency[from][to] {
		return nil
	}
	// A path to→…→from plus from→to closes a loop.
	if d.HasPath(to, from) {
		return fmt.Errorf("%w: edge %s → %s would create a cycle", ErrCycle, from, to)
	}
	d.link(from, to)
	return nil
}

// Link adds a dependency edge without the cycle check. It is used to load
// an existing snapshot as-is so that a malformed graph can be detected and
// reported instead of silently repaired. Self-loops are accepted too.
func (d *DAG) Link(from, to string) error {
	if _, ok := d.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if _, ok := d.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	d.link(from, to)
	return nil
}

func (d *DAG) checkEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfEdge, from)
	}
	if _, ok := d.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if _, ok := d.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	return nil
}

func (d *DAG) link(from, to string) {
	d.adjacency[from][to] = true
	d.reverse[to][from] = true
}

// Node returns the node with the given ID, or nil if not found.
func (d *DAG) Node(id string) *Node {
	return d.nodes[id]
}

// Nodes returns all node IDs in insertion order.
func (d *DAG) Nodes() []string {
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	d.sortBySeq(ids)
	return ids
}

// Dependencies returns the direct dependencies of id in insertion order.
func (d *DAG) Dependencies(id string) []string {
	return d.setToSlice(d.adjacency[id])
}

// HasPath reports whether there is a directed path from src to dst along
// dependency edges. A node reaches itself only through a non-empty cycle.
// The search visits each node at most once and therefore terminates on any
// graph.
func (d *DAG) HasPath(src, dst string) bool {
	visited := make(map[string]bool)
	stack := []string{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range d.adjacency[cur] {
			if dep == dst {
				return true
			}
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}

// Descendants returns all transitive dependents of id in insertion order.
// Returns nil if the node has no dependents or does not exist.
func (d *DAG) Descendants(id string) []string {
	if _, ok := d.nodes[id]; !ok {
		return nil
	}
	visited := map[string]bool{id: true}
	queue := []string{id}
	var result []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range d.reverse[cur] {
			if !visited[next] {
				visited[next] = true
				result = append(result, next)
				queue = append(queue, next)
			}
		}
	}
	d.sortBySeq(result)
	return result
}

// LessFunc orders two ready nodes; it is consulted before insertion order.
// A nil LessFunc means insertion order alone.
type LessFunc func(a, b string) bool

// TopologicalSort returns all node IDs with dependencies before their
// dependents. Whenever several nodes are ready, the one ranked first by
// less (then by insertion order) is emitted first. Returns ErrCycle if the
// graph contains a cycle.
func (d *DAG) TopologicalSort(less LessFunc) ([]string, error) {
	return d.SortSubset(d.Nodes(), less)
}

// SortSubset topologically orders the given IDs, considering only edges
// between members of the subset. Unknown IDs are ignored. Returns ErrCycle
// if the induced subgraph contains a cycle.
func (d *DAG) SortSubset(ids []string, less LessFunc) ([]string, error) {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := d.nodes[id]; ok {
			member[id] = true
		}
	}

	inDegree := make(map[string]int, len(member))
	var ready []string
	for id := range member {
		for dep := range d.adjacency[id] {
			if member[dep] {
				inDegree[id]++
			}
		}
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(member))
	for len(ready) > 0 {
		d.sortReady(ready, less)
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for dependent := range d.reverse[id] {
			if !member[dependent] {
				continue
			}
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(sorted) != len(member) {
		return nil, fmt.Errorf("%w: not all nodes could be ordered (%d of %d)",
			ErrCycle, len(sorted), len(member))
	}
	return sorted, nil
}

// Levels assigns every node its dependency level: 0 for a node without
// dependencies, otherwise one more than the highest level among its
// dependencies. Returns ErrCycle if the graph contains a cycle.
func (d *DAG) Levels() (map[string]int, error) {
	order, err := d.TopologicalSort(nil)
	if err != nil {
		return nil, err
	}
	levels := make(map[string]int, len(order))
	for _, id := range order {
		lvl := 0
		for dep := range d.adjacency[id] {
			if l := levels[dep] + 1; l > lvl {
				lvl = l
			}
		}
		levels[id] = lvl
	}
	return levels, nil
}

// FindCycle returns one cycle as a path whose first and last elements are
// the same node, or nil if the graph is acyclic. Uses DFS with coloring:
// white (unvisited), gray (on the stack), black (finished).
func (d *DAG) FindCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(d.nodes))
	parent := make(map[string]string, len(d.nodes))

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range d.Dependencies(node) {
			switch color[next] {
			case gray:
				cycle := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, next)
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			case white:
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range d.Nodes() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func (d *DAG) setToSlice(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	d.sortBySeq(ids)
	return ids
}

func (d *DAG) sortBySeq(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return d.nodes[ids[i]].Seq < d.nodes[ids[j]].Seq
	})
}

func (d *DAG) sortReady(ids []string, less LessFunc) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if less != nil {
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
		}
		return d.nodes[a].Seq < d.nodes[b].Seq
	})
}
