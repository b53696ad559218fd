package graph

import (
	"github.com/woozymasta/geopath/internal/geo"
)

// Node is a graph vertex. Nodes are compared by ID only.
type Node struct {
	ID  string  `json:"id" yaml:"id"`
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Edge is an undirected connection between two nodes. Weight is the
// great-circle distance between the endpoints in miles.
type Edge struct {
	ID     string  `json:"id" yaml:"id"`
	From   Node    `json:"from" yaml:"from"`
	To     Node    `json:"to" yaml:"to"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// NewEdge creates an edge and computes its weight once.
func NewEdge(id string, from, to Node) Edge {
	return Edge{
		ID:     id,
		From:   from,
		To:     to,
		Weight: geo.Haversine(from.Lat, from.Lon, to.Lat, to.Lon),
	}
}

// Other returns the endpoint opposite to the node with the given id.
// For a self-loop both endpoints are the same node.
func (e Edge) Other(id string) Node {
	if e.From.ID == id {
		return e.To
	}
	return e.From
}

// Connects reports whether the edge joins a and b in either orientation.
func (e Edge) Connects(a, b string) bool {
	return (e.From.ID == a && e.To.ID == b) || (e.From.ID == b && e.To.ID == a)
}
