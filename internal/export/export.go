// Package export converts graphs and routes to GeoJSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/woozymasta/geopath/internal/geo"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Feature kinds stored in the "kind" property.
const (
	KindNode  = "node"
	KindEdge  = "edge"
	KindRoute = "route"
)

// FeatureCollection builds a GeoJSON collection with a Point per node, a
// LineString per edge and, when p is not nil, a LineString for the route.
func FeatureCollection(g *graph.Graph, p *route.Path) geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection(g.Len() + g.EdgeCount() + 1)

	for _, n := range g.Nodes() {
		fc.Features = append(fc.Features, geo.PointFeature(n.Lat, n.Lon, map[string]interface{}{
			"kind": KindNode,
			"id":   n.ID,
		}))
	}

	for _, e := range g.Edges() {
		fc.Features = append(fc.Features, geo.LineFeature(
			[][2]float64{{e.From.Lat, e.From.Lon}, {e.To.Lat, e.To.Lon}},
			map[string]interface{}{
				"kind":         KindEdge,
				"id":           e.ID,
				"from":         e.From.ID,
				"to":           e.To.ID,
				"weight_miles": e.Weight,
			}))
	}

	if p != nil {
		fc.Features = append(fc.Features, RouteFeature(p))
	}

	return fc
}

// RouteFeature returns the route as a single LineString feature.
func RouteFeature(p *route.Path) geo.GeoJSONFeature {
	return geo.LineFeature(p.Coordinates(), map[string]interface{}{
		"kind":           KindRoute,
		"nodes":          p.IDs(),
		"distance_miles": p.Distance,
		"polyline":       p.Polyline(),
	})
}

// Write marshals fc as indented JSON or as YAML.
func Write(w io.Writer, fc geo.GeoJSONFeatureCollection, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Save writes fc to path, creating the parent directory.
func Save(path string, fc geo.GeoJSONFeatureCollection, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := writeClose(f, fc, format); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Str("format", format).
		Int("features", len(fc.Features)).
		Msg("GeoJSON saved")

	return nil
}

// writeClose writes fc and closes wc, returning the close error when the
// write itself succeeded.
func writeClose(wc io.WriteCloser, fc geo.GeoJSONFeatureCollection, format string) (err error) {
	defer func() {
		if closeErr := wc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return Write(wc, fc, format)
}
