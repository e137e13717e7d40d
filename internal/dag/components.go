package dag

import "sort"

// Components partitions the graph into weakly connected components: nodes
// in different components share no dependency path in either direction.
// Each component is topologically ordered with less as tiebreaker, and the
// components are ordered by their first member's insertion order. Returns
// ErrCycle if the graph contains a cycle.
func (d *DAG) Components(less LessFunc) ([][]string, error) {
	if len(d.nodes) == 0 {
		return nil, nil
	}
	order, err := d.TopologicalSort(less)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	uf := newUnionFind()
	for id := range d.nodes {
		uf.find(id)
	}
	for from, deps := range d.adjacency {
		for to := range deps {
			uf.union(from, to)
		}
	}

	groups := make(map[string][]string)
	for id := range d.nodes {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	out := make([][]string, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return pos[members[i]] < pos[members[j]] })
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return d.firstSeq(out[i]) < d.firstSeq(out[j]) })
	return out, nil
}

func (d *DAG) firstSeq(ids []string) int {
	lowest := -1
	for _, id := range ids {
		if s := d.nodes[id].Seq; lowest < 0 || s < lowest {
			lowest = s
		}
	}
	return lowest
}
