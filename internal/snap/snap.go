// Package snap finds the graph node nearest to an arbitrary coordinate.
package snap

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/geopath/internal/geo"
	"github.com/woozymasta/geopath/internal/graph"

	"github.com/dhconnelly/rtreego"
)

const (
	pointTolerance = 1e-9

	// planar nearest neighbours used to seed the search radius
	candidates = 8

	// widens the search cap to absorb rounding, in radians
	capSlack = 1e-9
)

var (
	// ErrEmptyIndex is returned when the graph has no nodes.
	ErrEmptyIndex = errors.New("snap index is empty")

	// ErrInvalidPoint is returned for coordinates outside the WGS84 range.
	ErrInvalidPoint = errors.New("invalid coordinate")
)

type leaf struct {
	node graph.Node
	rect rtreego.Rect
}

func (l *leaf) Bounds() rtreego.Rect {
	return l.rect
}

// Index is an R-tree over node coordinates. It is read-only after New.
type Index struct {
	tree *rtreego.Rtree
}

// New bulk loads every node of g into an R-tree.
func New(g *graph.Graph) *Index {
	nodes := g.Nodes()
	objs := make([]rtreego.Spatial, 0, len(nodes))
	for _, n := range nodes {
		objs = append(objs, &leaf{
			node: n,
			rect: rtreego.Point{n.Lat, n.Lon}.ToRect(pointTolerance),
		})
	}

	return &Index{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

// Len returns the number of indexed nodes.
func (i *Index) Len() int {
	return i.tree.Size()
}

// Nearest returns the node closest to lat/lon by great-circle distance and
// that distance in miles. Ties go to the lexicographically smaller id.
//
// The planar nearest neighbours only bound the answer: every node inside the
// spherical cap of that radius is then fetched by bounding box and ranked by
// haversine, so high latitudes and the antimeridian are handled exactly.
func (i *Index) Nearest(lat, lon float64) (graph.Node, float64, error) {
	if !geo.ValidCoordinate(lat, lon) {
		return graph.Node{}, 0, fmt.Errorf("%w: (%g, %g)", ErrInvalidPoint, lat, lon)
	}
	if i.tree.Size() == 0 {
		return graph.Node{}, 0, ErrEmptyIndex
	}

	seed, radius, found := closest(lat, lon, i.tree.NearestNeighbors(candidates, rtreego.Point{lat, lon}))
	if !found {
		return graph.Node{}, 0, ErrEmptyIndex
	}

	var hits []rtreego.Spatial
	for _, box := range capBoxes(lat, lon, radius) {
		hits = append(hits, i.tree.SearchIntersect(box)...)
	}

	best, dist, ok := closest(lat, lon, hits)
	if !ok || dist > radius || (dist == radius && seed.ID < best.ID) {
		best, dist = seed, radius
	}
	return best, dist, nil
}

// closest ranks spatial hits by haversine distance to lat/lon.
func closest(lat, lon float64, hits []rtreego.Spatial) (graph.Node, float64, bool) {
	var (
		best  graph.Node
		dist  float64
		found bool
	)
	for _, s := range hits {
		l, ok := s.(*leaf)
		if !ok || l == nil {
			continue
		}

		d := geo.Haversine(lat, lon, l.node.Lat, l.node.Lon)
		if !found || d < dist || (d == dist && l.node.ID < best.ID) {
			best, dist, found = l.node, d, true
		}
	}
	return best, dist, found
}

// capBoxes returns lat/lon rectangles that together cover every point within
// miles of lat/lon. A cap crossing the antimeridian is split in two; a cap
// reaching a pole spans all longitudes.
func capBoxes(lat, lon, miles float64) []rtreego.Rect {
	r := miles/geo.EarthRadiusMiles + capSlack
	minLat := lat - geo.Degrees(r)
	maxLat := lat + geo.Degrees(r)

	if minLat <= -90 || maxLat >= 90 {
		return []rtreego.Rect{box(math.Max(minLat, -90), -180, math.Min(maxLat, 90), 180)}
	}

	s := math.Sin(r) / math.Cos(geo.Radians(lat))
	if s >= 1 {
		return []rtreego.Rect{box(minLat, -180, maxLat, 180)}
	}

	dLon := geo.Degrees(math.Asin(s))
	minLon, maxLon := lon-dLon, lon+dLon
	switch {
	case minLon < -180:
		return []rtreego.Rect{box(minLat, minLon+360, maxLat, 180), box(minLat, -180, maxLat, maxLon)}
	case maxLon > 180:
		return []rtreego.Rect{box(minLat, minLon, maxLat, 180), box(minLat, -180, maxLat, maxLon-360)}
	default:
		return []rtreego.Rect{box(minLat, minLon, maxLat, maxLon)}
	}
}

func box(minLat, minLon, maxLat, maxLon float64) rtreego.Rect {
	// both points are 2-D, NewRectFromPoints cannot fail
	r, _ := rtreego.NewRectFromPoints(rtreego.Point{minLat, minLon}, rtreego.Point{maxLat, maxLon})
	return r
}
