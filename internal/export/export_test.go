package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func campus(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Load(filepath.Join("..", "graph", "testdata", "campus.txt"))
	require.NoError(t, err)
	return g
}

type decoded struct {
	Type     string `json:"type" yaml:"type"`
	Features []struct {
		Type       string         `json:"type" yaml:"type"`
		Properties map[string]any `json:"properties" yaml:"properties"`
		Geometry   struct {
			Type        string `json:"type" yaml:"type"`
			Coordinates any    `json:"coordinates" yaml:"coordinates"`
		} `json:"geometry" yaml:"geometry"`
	} `json:"features" yaml:"features"`
}

func TestFeatureCollectionJSON(t *testing.T) {
	g := campus(t)
	p, err := route.ShortestPath(g, "HOYT", "CSB")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FeatureCollection(g, p), "json"))

	var fc decoded
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, g.Len()+g.EdgeCount()+1)

	kinds := map[string]int{}
	for _, f := range fc.Features {
		kinds[f.Properties["kind"].(string)]++
	}
	assert.Equal(t, map[string]int{KindNode: 6, KindEdge: 6, KindRoute: 1}, kinds)

	first := fc.Features[0]
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.Equal(t, "CSB", first.Properties["id"])
	assert.Equal(t, []any{-77.626, 43.127}, first.Geometry.Coordinates)

	last := fc.Features[len(fc.Features)-1]
	assert.Equal(t, "LineString", last.Geometry.Type)
	assert.Equal(t, []any{"HOYT", "TIERNAN", "CSB"}, last.Properties["nodes"])
	assert.InDelta(t, p.Distance, last.Properties["distance_miles"], 1e-12)
}

func TestFeatureCollectionYAML(t *testing.T) {
	g := campus(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FeatureCollection(g, nil), "yaml"))

	var fc decoded
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fc))
	assert.Len(t, fc.Features, g.Len()+g.EdgeCount())
	assert.Equal(t, "edge", fc.Features[g.Len()].Properties["kind"])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, FeatureCollection(campus(t), nil), "xml"))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "campus.geojson")
	require.NoError(t, Save(path, FeatureCollection(campus(t), nil), "json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

type closeFailer struct {
	bytes.Buffer
	err error
}

func (c *closeFailer) Close() error { return c.err }

func TestSaveReportsCloseError(t *testing.T) {
	errClose := errors.New("disk full")
	fc := FeatureCollection(campus(t), nil)

	w := &closeFailer{err: errClose}
	assert.ErrorIs(t, writeClose(w, fc, "json"), errClose)
	assert.True(t, json.Valid(w.Bytes()))

	// a write error wins over the close error
	w = &closeFailer{err: errClose}
	err := writeClose(w, fc, "xml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errClose)

	assert.NoError(t, writeClose(&closeFailer{}, fc, "yaml"))
}
