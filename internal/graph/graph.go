// Package graph holds the immutable geographic graph and its text loader.
//
// A Graph is built once, either by Load/Parse or through a Builder, and is
// read-only afterwards. It is safe for concurrent readers.
package graph

import (
	"math"
	"sort"
)

// Bounds is the bounding box of all node coordinates.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Stats counts what happened while a graph was ingested.
type Stats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	Malformed    int `json:"malformed"`
	DroppedEdges int `json:"dropped_edges"`
	Ignored      int `json:"ignored"`
}

// Graph is an undirected weighted multigraph of geographic nodes.
type Graph struct {
	nodes     map[string]Node
	incident  map[string][]int
	adjacency map[string][]string
	source    string
	order     []string
	edges     []Edge
	bounds    Bounds
	stats     Stats
}

// Builder accumulates nodes and edges before freezing them into a Graph.
type Builder struct {
	nodes map[string]Node
	edges []edgeRef
	stats Stats
}

// edgeRef is an edge by endpoint ids; coordinates and weight are taken from
// the final node declarations in Build.
type edgeRef struct {
	id, from, to string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[string]Node)}
}

// AddNode declares a node. A repeated id replaces the earlier declaration,
// including for edges already added.
func (b *Builder) AddNode(id string, lat, lon float64) Node {
	n := Node{ID: id, Lat: lat, Lon: lon}
	b.nodes[id] = n
	return n
}

// AddEdge connects two previously declared nodes. The returned edge reflects
// the current declarations; Build recomputes it if either endpoint is
// declared again.
func (b *Builder) AddEdge(id, from, to string) (Edge, error) {
	start, ok := b.nodes[from]
	if !ok {
		return Edge{}, nodeRef(from)
	}
	end, ok := b.nodes[to]
	if !ok {
		return Edge{}, nodeRef(to)
	}

	b.edges = append(b.edges, edgeRef{id: id, from: from, to: to})
	return NewEdge(id, start, end), nil
}

// HasNode reports whether id was declared.
func (b *Builder) HasNode(id string) bool {
	_, ok := b.nodes[id]
	return ok
}

// Build freezes the builder and derives adjacency. The builder must not be
// reused afterwards.
func (b *Builder) Build() *Graph {
	edges := make([]Edge, 0, len(b.edges))
	for _, ref := range b.edges {
		edges = append(edges, NewEdge(ref.id, b.nodes[ref.from], b.nodes[ref.to]))
	}

	g := &Graph{
		nodes:     b.nodes,
		edges:     edges,
		incident:  make(map[string][]int, len(b.nodes)),
		adjacency: make(map[string][]string, len(b.nodes)),
		order:     make([]string, 0, len(b.nodes)),
		stats:     b.stats,
	}

	for id := range g.nodes {
		g.order = append(g.order, id)
	}
	sort.Strings(g.order)

	for i, e := range g.edges {
		g.incident[e.From.ID] = append(g.incident[e.From.ID], i)
		if e.To.ID != e.From.ID {
			g.incident[e.To.ID] = append(g.incident[e.To.ID], i)
		}
	}

	for _, id := range g.order {
		seen := make(map[string]struct{})
		neighbors := make([]string, 0, len(g.incident[id]))
		for _, i := range g.incident[id] {
			other := g.edges[i].Other(id).ID
			if _, dup := seen[other]; dup {
				continue
			}
			seen[other] = struct{}{}
			neighbors = append(neighbors, other)
		}
		sort.Strings(neighbors)
		g.adjacency[id] = neighbors
	}

	g.bounds = Bounds{
		MinLat: math.Inf(1),
		MinLon: math.Inf(1),
		MaxLat: math.Inf(-1),
		MaxLon: math.Inf(-1),
	}
	for _, n := range g.nodes {
		g.bounds.MinLat = math.Min(g.bounds.MinLat, n.Lat)
		g.bounds.MinLon = math.Min(g.bounds.MinLon, n.Lon)
		g.bounds.MaxLat = math.Max(g.bounds.MaxLat, n.Lat)
		g.bounds.MaxLon = math.Max(g.bounds.MaxLon, n.Lon)
	}

	g.stats.Nodes = len(g.nodes)
	g.stats.Edges = len(g.edges)

	return g
}

// Node looks a node up by id.
func (g *Graph) Node(id string) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, nodeNotFound(id)
	}
	return n, nil
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in input order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the distinct neighbors of id sorted by id.
func (g *Graph) Neighbors(id string) ([]Node, error) {
	ids, ok := g.adjacency[id]
	if !ok {
		return nil, nodeNotFound(id)
	}

	out := make([]Node, 0, len(ids))
	for _, nid := range ids {
		out = append(out, g.nodes[nid])
	}
	return out, nil
}

// Incident returns the edges touching id in input order. Unknown ids yield nil.
func (g *Graph) Incident(id string) []Edge {
	idx := g.incident[id]
	if len(idx) == 0 {
		return nil
	}

	out := make([]Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// EachIncident calls fn for every edge touching id without allocating.
func (g *Graph) EachIncident(id string, fn func(Edge)) {
	for _, i := range g.incident[id] {
		fn(g.edges[i])
	}
}

// EdgeBetween returns the lightest edge joining a and b. Among equal weights
// the first in input order wins.
func (g *Graph) EdgeBetween(a, b string) (Edge, bool) {
	var (
		best  Edge
		found bool
	)
	for _, i := range g.incident[a] {
		e := g.edges[i]
		if !e.Connects(a, b) {
			continue
		}
		if !found || e.Weight < best.Weight {
			best = e
			found = true
		}
	}
	return best, found
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Bounds returns the bounding box. It is +Inf/-Inf for an empty graph.
func (g *Graph) Bounds() Bounds { return g.bounds }

// MinLatitude returns the smallest node latitude.
func (g *Graph) MinLatitude() float64 { return g.bounds.MinLat }

// MinLongitude returns the smallest node longitude.
func (g *Graph) MinLongitude() float64 { return g.bounds.MinLon }

// MaxLatitude returns the largest node latitude.
func (g *Graph) MaxLatitude() float64 { return g.bounds.MaxLat }

// MaxLongitude returns the largest node longitude.
func (g *Graph) MaxLongitude() float64 { return g.bounds.MaxLon }

// Stats returns ingestion counters.
func (g *Graph) Stats() Stats { return g.stats }

// Source is the path the graph was loaded from, empty if built in memory.
func (g *Graph) Source() string { return g.source }
