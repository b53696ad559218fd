// Package route computes shortest paths over a graph.Graph.
//
// The search is a lazy Dijkstra: instead of a decrease-key heap the frontier
// accepts duplicate entries for a node, and any entry popped for a node that
// is already finalized is dropped. With non-negative weights the first pop of
// a node always carries its smallest distance.
package route

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"

	"github.com/woozymasta/geopath/internal/graph"
)

// ErrNotReachable is returned when no path joins source and destination.
var ErrNotReachable = errors.New("destination not reachable")

// Engine answers shortest path queries on an immutable graph. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	g *graph.Graph
}

// New returns an engine bound to g.
func New(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// ShortestPath is a shorthand for New(g).ShortestPath(source, destination).
func ShortestPath(g *graph.Graph, source, destination string) (*Path, error) {
	return New(g).ShortestPath(source, destination)
}

// ShortestPath returns the lightest path from source to destination.
//
// Unknown ids yield graph.ErrNodeNotFound, a disconnected destination yields
// ErrNotReachable. A query from a node to itself is the single node path with
// zero distance.
func (e *Engine) ShortestPath(source, destination string) (*Path, error) {
	if _, err := e.g.Node(source); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if _, err := e.g.Node(destination); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	distance := map[string]float64{source: 0}
	previous := make(map[string]string)
	visited := make(map[string]bool)

	pq := frontier{{id: source, dist: 0}}

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(entry)

		if cur.id == destination {
			return e.reconstruct(previous, source, destination), nil
		}
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		e.g.EachIncident(cur.id, func(edge graph.Edge) {
			next := edge.Other(cur.id).ID
			candidate := distance[cur.id] + edge.Weight

			if known, ok := distance[next]; ok && candidate >= known {
				return
			}

			distance[next] = candidate
			previous[next] = cur.id
			heap.Push(&pq, entry{id: next, dist: candidate})
		})
	}

	return nil, fmt.Errorf("%w: %q -> %q", ErrNotReachable, source, destination)
}

// reconstruct walks previous links back from destination and sums edge
// weights from the graph rather than reusing the running distance.
func (e *Engine) reconstruct(previous map[string]string, source, destination string) *Path {
	ids := []string{destination}
	for id := destination; id != source; {
		id = previous[id]
		ids = append(ids, id)
	}
	slices.Reverse(ids)

	p := &Path{
		Nodes: make([]graph.Node, 0, len(ids)),
		Edges: make([]graph.Edge, 0, len(ids)-1),
	}
	for i, id := range ids {
		n, _ := e.g.Node(id)
		p.Nodes = append(p.Nodes, n)
		if i == 0 {
			continue
		}

		edge, _ := e.g.EdgeBetween(ids[i-1], id)
		p.Edges = append(p.Edges, edge)
		p.Distance += edge.Weight
	}

	return p
}
