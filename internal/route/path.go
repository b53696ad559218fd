package route

import (
	"strings"

	"github.com/woozymasta/geopath/internal/graph"

	"github.com/twpayne/go-polyline"
)

// Path is the result of a shortest path query. Edges[i] joins Nodes[i] and
// Nodes[i+1]; Distance is the sum of their weights in miles.
type Path struct {
	Nodes    []graph.Node
	Edges    []graph.Edge
	Distance float64
}

// IDs returns the node ids along the path.
func (p *Path) IDs() []string {
	ids := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// Contains reports whether the node id lies on the path.
func (p *Path) Contains(id string) bool {
	for _, n := range p.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Coordinates returns [lat, lon] pairs along the path.
func (p *Path) Coordinates() [][2]float64 {
	coords := make([][2]float64, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		coords = append(coords, [2]float64{n.Lat, n.Lon})
	}
	return coords
}

// Polyline encodes the path with the Google polyline algorithm.
func (p *Path) Polyline() string {
	coords := make([][]float64, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		coords = append(coords, []float64{n.Lat, n.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// String renders the path as space separated ids.
func (p *Path) String() string {
	return strings.Join(p.IDs(), " ")
}
