package dag

import (
	"errors"
	"reflect"
	"testing"
)

// nodeSpec describes a node and the IDs it depends on.
type nodeSpec struct {
	id   string
	deps []string
}

func buildDAG(t *testing.T, specs []nodeSpec) *DAG {
	t.Helper()
	d := New()
	for _, s := range specs {
		if err := d.AddNode(s.id); err != nil {
			t.Fatalf("AddNode(%q): %v", s.id, err)
		}
	}
	for _, s := range specs {
		for _, dep := range s.deps {
			if err := d.AddEdge(s.id, dep); err != nil {
				t.Fatalf("AddEdge(%q, %q): %v", s.id, dep, err)
			}
		}
	}
	return d
}

// linkDAG builds a graph with Link so cycles are allowed in.
func linkDAG(t *testing.T, specs []nodeSpec) *DAG {
	t.Helper()
	d := New()
	for _, s := range specs {
		if err := d.AddNode(s.id); err != nil {
			t.Fatalf("AddNode(%q): %v", s.id, err)
		}
	}
	for _, s := range specs {
		for _, dep := range s.deps {
			if err := d.Link(s.id, dep); err != nil {
				t.Fatalf("Link(%q, %q): %v", s.id, dep, err)
			}
		}
	}
	return d
}

// validTopologicalOrder checks that every dependency appears before
// its dependent in the ordering.
func validTopologicalOrder(d *DAG, order []string) bool {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for id, deps := range d.adjacency {
		for dep := range deps {
			pi, okI := pos[id]
			pd, okD := pos[dep]
			if okI && okD && pd >= pi {
				return false
			}
		}
	}
	return true
}

// diamond: d depends on b and c, which both depend on a.
var diamond = []nodeSpec{
	{"a", nil},
	{"b", []string{"a"}},
	{"c", []string{"a"}},
	{"d", []string{"b", "c"}},
}

func TestAddNode(t *testing.T) {
	t.Parallel()
	d := New()
	if err := d.AddNode("a"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := d.AddNode("a"); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate AddNode = %v, want ErrDuplicateNode", err)
	}
	if got := d.Nodes(); !reflect.DeepEqual(got, []string{"a"}) || d.Node("a").Seq != 0 {
		t.Errorf("unexpected state: nodes=%v node=%+v", got, d.Node("a"))
	}
}

func TestAddEdge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{"self edge", "a", "a", ErrSelfEdge},
		{"missing from", "x", "a", ErrNodeNotFound},
		{"missing to", "a", "x", ErrNodeNotFound},
		{"closing a cycle", "a", "d", ErrCycle},
		{"transitive cycle", "b", "d", ErrCycle},
		{"existing edge is a no-op", "d", "b", nil},
		{"new forward edge", "d", "a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := buildDAG(t, diamond)
			err := d.AddEdge(tt.from, tt.to)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("AddEdge(%s, %s) = %v, want nil", tt.from, tt.to, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("AddEdge(%s, %s) = %v, want %v", tt.from, tt.to, err, tt.want)
			}
		})
	}
}

func TestHasPath(t *testing.T) {
	t.Parallel()
	d := buildDAG(t, diamond)
	tests := []struct {
		src, dst string
		want     bool
	}{
		{"d", "a", true},
		{"b", "a", true},
		{"a", "d", false},
		{"b", "c", false},
		{"a", "a", false},
	}
	for _, tt := range tests {
		if got := d.HasPath(tt.src, tt.dst); got != tt.want {
			t.Errorf("HasPath(%s, %s) = %v, want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestHasPathTerminatesOnCycle(t *testing.T) {
	t.Parallel()
	d := linkDAG(t, []nodeSpec{
		{"a", []string{"b"}},
		{"b", []string{"c"}},
		{"c", []string{"a"}},
		{"z", nil},
	})
	if d.HasPath("a", "z") {
		t.Error("HasPath(a, z) = true on disconnected node")
	}
	if !d.HasPath("a", "a") {
		t.Error("HasPath(a, a) = false, want true through the cycle")
	}
}

func TestDescendants(t *testing.T) {
	t.Parallel()
	d := buildDAG(t, diamond)
	if got := d.Descendants("a"); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Descendants(a) = %v", got)
	}
	if got := d.Descendants("d"); got != nil {
		t.Errorf("Descendants(d) = %v, want nil", got)
	}
	if got := d.Descendants("missing"); got != nil {
		t.Errorf("Descendants(missing) = %v, want nil", got)
	}
}

func TestTopologicalSort(t *testing.T) {
	t.Parallel()

	t.Run("insertion order tiebreak", func(t *testing.T) {
		t.Parallel()
		d := buildDAG(t, diamond)
		order, err := d.TopologicalSort(nil)
		if err != nil {
			t.Fatalf("TopologicalSort: %v", err)
		}
		if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("custom less", func(t *testing.T) {
		t.Parallel()
		d := buildDAG(t, diamond)
		preferC := func(a, b string) bool { return a == "c" && b != "c" }
		order, err := d.TopologicalSort(preferC)
		if err != nil {
			t.Fatalf("TopologicalSort: %v", err)
		}
		if want := []string{"a", "c", "b", "d"}; !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()
		d := linkDAG(t, []nodeSpec{{"a", []string{"b"}}, {"b", []string{"a"}}, {"c", nil}})
		if _, err := d.TopologicalSort(nil); !errors.Is(err, ErrCycle) {
			t.Errorf("err = %v, want ErrCycle", err)
		}
	})

	t.Run("wide graph stays valid", func(t *testing.T) {
		t.Parallel()
		specs := []nodeSpec{{"root", nil}}
		var leaves []string
		for _, id := range []string{"m1", "m2", "m3", "m4"} {
			specs = append(specs, nodeSpec{id, []string{"root"}})
			leaves = append(leaves, id)
		}
		specs = append(specs, nodeSpec{"sink", leaves})
		d := buildDAG(t, specs)
		order, err := d.TopologicalSort(nil)
		if err != nil {
			t.Fatalf("TopologicalSort: %v", err)
		}
		if !validTopologicalOrder(d, order) {
			t.Errorf("invalid order %v", order)
		}
	})
}

func TestSortSubset(t *testing.T) {
	t.Parallel()

	t.Run("ignores edges leaving the subset", func(t *testing.T) {
		t.Parallel()
		d := buildDAG(t, diamond)
		order, err := d.SortSubset([]string{"d", "b", "missing"}, nil)
		if err != nil {
			t.Fatalf("SortSubset: %v", err)
		}
		if want := []string{"b", "d"}; !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("cycle outside subset is harmless", func(t *testing.T) {
		t.Parallel()
		d := linkDAG(t, []nodeSpec{
			{"x", []string{"y"}},
			{"y", []string{"x"}},
			{"a", nil},
			{"b", []string{"a", "x"}},
		})
		order, err := d.SortSubset([]string{"a", "b"}, nil)
		if err != nil {
			t.Fatalf("SortSubset: %v", err)
		}
		if want := []string{"a", "b"}; !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})
}

func TestLevels(t *testing.T) {
	t.Parallel()
	d := buildDAG(t, []nodeSpec{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", nil},
		{"d", []string{"b", "c"}},
		{"e", []string{"a"}},
	})
	levels, err := d.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	want := map[string]int{"a": 0, "b": 1, "c": 0, "d": 2, "e": 1}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("Levels = %v, want %v", levels, want)
	}
	for id, deps := range d.adjacency {
		for dep := range deps {
			if levels[id] <= levels[dep] {
				t.Errorf("level(%s)=%d not above level(%s)=%d", id, levels[id], dep, levels[dep])
			}
		}
	}
}

func TestFindCycle(t *testing.T) {
	t.Parallel()

	if c := buildDAG(t, diamond).FindCycle(); c != nil {
		t.Errorf("FindCycle on DAG = %v, want nil", c)
	}

	d := linkDAG(t, []nodeSpec{
		{"a", []string{"b"}},
		{"b", []string{"c"}},
		{"c", []string{"a"}},
	})
	cycle := d.FindCycle()
	if len(cycle) != 4 || cycle[0] != cycle[len(cycle)-1] {
		t.Fatalf("FindCycle = %v, want closed path of 3 edges", cycle)
	}
	for i := 0; i < len(cycle)-1; i++ {
		if !d.adjacency[cycle[i]][cycle[i+1]] {
			t.Errorf("cycle step %s → %s is not an edge", cycle[i], cycle[i+1])
		}
	}

	self := linkDAG(t, []nodeSpec{{"s", []string{"s"}}})
	if got := self.FindCycle(); !reflect.DeepEqual(got, []string{"s", "s"}) {
		t.Errorf("self-loop FindCycle = %v, want [s s]", got)
	}
}
