package graph

import "sort"

// UnionFind implements a disjoint-set structure with path halving and
// union by rank, over segment ids.
type UnionFind struct {
	parent []int
	rank   []byte
	size   []int
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already
// in the same set.
func (uf *UnionFind) Union(x, y int) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Components groups segment ids into weakly connected components using
// the derived adjacency (direction ignored). Sensor road networks come
// in as disjoint pieces; this reports them largest first so callers can
// spot roads that never joined the main network. Call after
// ConnectSegments.
func Components(g *Graph) [][]int {
	if g.Len() == 0 {
		return nil
	}

	uf := NewUnionFind(g.Len())
	g.ForEach(func(s *Segment) {
		for _, e := range s.Edges {
			uf.Union(s.ID, e)
		}
	})

	groups := make(map[int][]int)
	for i := 0; i < g.Len(); i++ {
		root := uf.Find(i)
		groups[root] = append(groups[root], i)
	}

	components := make([][]int, 0, len(groups))
	for _, members := range groups {
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

// LargestComponent returns the segment ids of the largest weakly
// connected component, or nil for an empty graph.
func LargestComponent(g *Graph) []int {
	components := Components(g)
	if len(components) == 0 {
		return nil
	}
	return components[0]
}
