package snap

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/geopath/internal/geo"
	"github.com/woozymasta/geopath/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestCampus(t *testing.T) {
	g, err := graph.Load(filepath.Join("..", "graph", "testdata", "campus.txt"))
	require.NoError(t, err)
	idx := New(g)
	assert.Equal(t, 6, idx.Len())

	cases := []struct {
		lat, lon float64
		expected string
	}{
		{43.1251, -77.6301, "HOYT"},
		{43.127, -77.626, "CSB"},
		{43.139, -77.601, "ISLAND"},
		{43.1289, -77.6279, "GLEASON"},
		{50, -70, "ISLAND"},
	}

	for _, c := range cases {
		n, d, err := idx.Nearest(c.lat, c.lon)
		require.NoError(t, err)
		assert.Equal(t, c.expected, n.ID)
		assert.InDelta(t, geo.Haversine(c.lat, c.lon, n.Lat, n.Lon), d, 1e-12)
	}
}

func TestNearestExact(t *testing.T) {
	b := graph.NewBuilder()
	for i := 0; i < 200; i++ {
		b.AddNode(fmt.Sprintf("n%03d", i), float64(i%20)*0.01, float64(i/20)*0.01)
	}
	idx := New(b.Build())

	n, d, err := idx.Nearest(0.05, 0.03)
	require.NoError(t, err)
	assert.Equal(t, "n065", n.ID)
	assert.Zero(t, d)
}

func bruteNearest(g *graph.Graph, lat, lon float64) (string, float64) {
	want, best := "", 0.0
	for _, cand := range g.Nodes() {
		d := geo.Haversine(lat, lon, cand.Lat, cand.Lon)
		if want == "" || d < best {
			want, best = cand.ID, d
		}
	}
	return want, best
}

func TestNearestBruteForce(t *testing.T) {
	g, err := graph.Parse(strings.NewReader(strings.Join([]string{
		"i\ta\t60.0\t10.0",
		"i\tb\t60.0\t10.3",
		"i\tc\t60.2\t10.0",
		"i\td\t59.9\t10.1",
	}, "\n")))
	require.NoError(t, err)
	idx := New(g)

	for _, q := range [][2]float64{{60.1, 10.0}, {60.0, 10.2}, {59.95, 10.05}} {
		n, _, err := idx.Nearest(q[0], q[1])
		require.NoError(t, err)

		want, _ := bruteNearest(g, q[0], q[1])
		assert.Equal(t, want, n.ID)
	}
}

// lineGraph puts eight nodes in a row so they fill every planar candidate
// slot, plus one extra node.
func lineGraph(lat, lon, step float64, extraID string, extraLat, extraLon float64) *graph.Graph {
	b := graph.NewBuilder()
	for i := 0; i < 8; i++ {
		b.AddNode(fmt.Sprintf("n%d", i), lat, lon+float64(i)*step)
	}
	b.AddNode(extraID, extraLat, extraLon)
	return b.Build()
}

func TestNearestHighLatitude(t *testing.T) {
	// a degree of longitude at 80N is about a sixth of a degree of latitude
	g := lineGraph(80.5, 0, 0.01, "far", 80, 2)
	n, d, err := New(g).Nearest(80, 0)
	require.NoError(t, err)

	want, best := bruteNearest(g, 80, 0)
	assert.Equal(t, "far", want)
	assert.Equal(t, want, n.ID)
	assert.InDelta(t, best, d, 1e-12)
}

func TestNearestAcrossAntimeridian(t *testing.T) {
	g := lineGraph(0, 179.97, -0.01, "east", 0, -179.995)
	n, _, err := New(g).Nearest(0, 179.999)
	require.NoError(t, err)
	assert.Equal(t, "east", n.ID)

	n, _, err = New(g).Nearest(0, -179.999)
	require.NoError(t, err)
	assert.Equal(t, "east", n.ID)
}

func TestNearestAcrossPole(t *testing.T) {
	g := lineGraph(89, 0, 0.01, "opposite", 89.95, 180)
	n, _, err := New(g).Nearest(89.95, 0)
	require.NoError(t, err)
	assert.Equal(t, "opposite", n.ID)
}

func TestNearestRandomHighLatitudes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := graph.NewBuilder()
	for i := 0; i < 300; i++ {
		b.AddNode(fmt.Sprintf("n%03d", i), 70+rng.Float64()*19.9, rng.Float64()*360-180)
	}
	g := b.Build()
	idx := New(g)

	for i := 0; i < 200; i++ {
		lat, lon := 65+rng.Float64()*25, rng.Float64()*360-180
		n, d, err := idx.Nearest(lat, lon)
		require.NoError(t, err)

		want, best := bruteNearest(g, lat, lon)
		assert.Equal(t, want, n.ID, "query (%f, %f)", lat, lon)
		assert.InDelta(t, best, d, 1e-9)
	}
}

func TestCapBoxes(t *testing.T) {
	assert.Len(t, capBoxes(45, 0, 10), 1)
	assert.Len(t, capBoxes(0, 179.99, 10), 2)
	assert.Len(t, capBoxes(0, -179.99, 10), 2)

	polar := capBoxes(89.99, 10, 10)
	require.Len(t, polar, 1)
	assert.Equal(t, -180.0, polar[0].PointCoord(1))
	assert.Equal(t, 180.0, polar[0].PointCoord(1)+polar[0].LengthsCoord(1))
}

func TestNearestErrors(t *testing.T) {
	empty := New(graph.NewBuilder().Build())
	_, _, err := empty.Nearest(0, 0)
	assert.ErrorIs(t, err, ErrEmptyIndex)

	_, _, err = empty.Nearest(100, 0)
	assert.ErrorIs(t, err, ErrInvalidPoint)
}
