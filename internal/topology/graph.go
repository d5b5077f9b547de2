package topology

import "sort"

// Degree counts the links touching name. Parallel links count separately.
func (t *Topology) Degree(name string) int {
	degree := 0
	for _, l := range t.Links {
		if l.NodeA == name || l.NodeB == name {
			degree++
		}
	}
	return degree
}

// Neighbors returns the distinct nodes adjacent to name, sorted.
func (t *Topology) Neighbors(name string) []string {
	seen := map[string]bool{}
	for _, l := range t.Links {
		if l.NodeA == name || l.NodeB == name {
			seen[l.Other(name)] = true
		}
	}

	neighbors := make([]string, 0, len(seen))
	for n := range seen {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

func (t *Topology) HasLink(a, b string) bool {
	key := Link{NodeA: a, NodeB: b}.Key()
	for _, l := range t.Links {
		if l.Key() == key {
			return true
		}
	}
	return false
}

// Path returns the shortest node sequence from a to b, both included, or
// nil when b is unreachable.
func (t *Topology) Path(a, b string) []string {
	if _, ok := t.Nodes[a]; !ok {
		return nil
	}
	if _, ok := t.Nodes[b]; !ok {
		return nil
	}

	prev := map[string]string{a: ""}
	queue := []string{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			break
		}
		for _, next := range t.Neighbors(cur) {
			if _, visited := prev[next]; visited {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}

	if _, ok := prev[b]; !ok {
		return nil
	}

	var path []string
	for cur := b; cur != ""; cur = prev[cur] {
		path = append([]string{cur}, path...)
	}
	return path
}

// Connected reports whether every node can reach every other node.
// An empty topology is connected.
func (t *Topology) Connected() bool {
	nodes := t.SortedNodes()
	if len(nodes) == 0 {
		return true
	}

	start := nodes[0].Name
	for _, n := range nodes[1:] {
		if t.Path(start, n.Name) == nil {
			return false
		}
	}
	return true
}

// Equal compares node sets (names, types, addresses) and link multisets,
// ignoring link orientation and declaration order.
func (t *Topology) Equal(other *Topology) bool {
	if other == nil || len(t.Nodes) != len(other.Nodes) || len(t.Links) != len(other.Links) {
		return false
	}
	for name, n := range t.Nodes {
		if o, ok := other.Nodes[name]; !ok || o != n {
			return false
		}
	}

	counts := map[string]int{}
	for _, l := range t.Links {
		counts[l.Key()]++
	}
	for _, l := range other.Links {
		counts[l.Key()]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// LinkKeys returns the canonical key of every link, sorted.
func (t *Topology) LinkKeys() []string {
	keys := make([]string, 0, len(t.Links))
	for _, l := range t.Links {
		keys = append(keys, l.Key())
	}
	sort.Strings(keys)
	return keys
}
