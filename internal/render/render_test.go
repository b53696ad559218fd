package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/geopath/internal/config"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campus(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Load(filepath.Join("..", "graph", "testdata", "campus.txt"))
	require.NoError(t, err)
	return g
}

func plainConfig() *config.Config {
	cfg := config.Default()
	cfg.Render.Supersample = 1
	cfg.Render.Caption = false
	return cfg
}

func pixelAt(img *image.RGBA, proj projection, n graph.Node) color.RGBA {
	x, y := proj.point(n.Lat, n.Lon)
	return img.RGBAAt(int(x), int(y))
}

func TestRenderColors(t *testing.T) {
	g := campus(t)
	cfg := plainConfig()
	r, err := New(cfg)
	require.NoError(t, err)

	p, err := route.ShortestPath(g, "HOYT", "CSB")
	require.NoError(t, err)

	img := r.Render(g, p)
	assert.Equal(t, image.Rect(0, 0, 800, 572), img.Bounds())

	proj := newProjection(g.Bounds(), 800, 572, 20)
	black := color.RGBA{A: 255}
	grey := color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 255}

	for _, id := range []string{"HOYT", "TIERNAN", "CSB"} {
		n, err := g.Node(id)
		require.NoError(t, err)
		assert.Equal(t, black, pixelAt(img, proj, n), id)
	}
	for _, id := range []string{"LIBRARY", "GLEASON", "ISLAND"} {
		n, err := g.Node(id)
		require.NoError(t, err)
		assert.Equal(t, grey, pixelAt(img, proj, n), id)
	}

	assert.Equal(t, color.RGBA{R: 0x66, G: 0xcc, B: 0x66, A: 255}, img.RGBAAt(1, 1))
}

func TestRenderWithoutRoute(t *testing.T) {
	g := campus(t)
	r, err := New(plainConfig())
	require.NoError(t, err)

	img := r.Render(g, nil)
	proj := newProjection(g.Bounds(), 800, 572, 20)
	grey := color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 255}

	for _, n := range g.Nodes() {
		assert.Equal(t, grey, pixelAt(img, proj, n), n.ID)
	}
}

func TestRenderSupersampleAndCaption(t *testing.T) {
	g := campus(t)
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 320, 200
	r, err := New(cfg)
	require.NoError(t, err)

	img := r.Render(g, nil)
	assert.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())

	// caption text lands in the top left corner
	dark := 0
	for y := 8; y < 21; y++ {
		for x := 8; x < 60; x++ {
			if img.RGBAAt(x, y).G < 0x40 {
				dark++
			}
		}
	}
	assert.Positive(t, dark)
}

func TestRenderEmptyGraph(t *testing.T) {
	r, err := New(plainConfig())
	require.NoError(t, err)

	img := r.Render(graph.NewBuilder().Build(), nil)
	assert.Equal(t, color.RGBA{R: 0x66, G: 0xcc, B: 0x66, A: 255}, img.RGBAAt(400, 286))
}

func TestProjection(t *testing.T) {
	b := graph.Bounds{MinLat: 10, MinLon: 20, MaxLat: 11, MaxLon: 22}
	proj := newProjection(b, 400, 400, 10)

	x0, y0 := proj.point(10, 20)
	x1, y1 := proj.point(11, 22)

	assert.Less(t, x0, x1)
	assert.Greater(t, y0, y1, "north is up")
	assert.GreaterOrEqual(t, x0, float32(10))
	assert.LessOrEqual(t, x1, float32(390))
	assert.InDelta(t, 200, (x0+x1)/2, 0.01)
	assert.InDelta(t, 200, (y0+y1)/2, 0.01)

	single := newProjection(graph.Bounds{MinLat: 5, MinLon: 5, MaxLat: 5, MaxLon: 5}, 100, 60, 0)
	x, y := single.point(5, 5)
	assert.Equal(t, float32(50), x)
	assert.Equal(t, float32(30), y)
}

func TestEncode(t *testing.T) {
	r, err := New(plainConfig())
	require.NoError(t, err)
	img := r.Render(campus(t), nil)

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf, img, "png"))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, r.Encode(&buf, img, "webp"))
	require.Greater(t, buf.Len(), 12)
	assert.Equal(t, "RIFF", string(buf.Bytes()[0:4]))
	assert.Equal(t, "WEBP", string(buf.Bytes()[8:12]))

	assert.Error(t, r.Encode(&buf, img, "gif"))
}

func TestWriteFile(t *testing.T) {
	r, err := New(plainConfig())
	require.NoError(t, err)
	img := r.Render(campus(t), nil)

	path := filepath.Join(t.TempDir(), "out", "campus.png")
	require.NoError(t, r.WriteFile(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	_, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	assert.Equal(t, "webp", r.FormatFor("map.WEBP"))
	assert.Equal(t, "webp", r.FormatFor("map.img"))
}

func TestParseHexColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#66cc66":   {R: 0x66, G: 0xcc, B: 0x66, A: 0xff},
		"#fff":      {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		"#0008":     {A: 0x88},
		"#11223344": {R: 0x11, G: 0x22, B: 0x33, A: 0x44},
	}
	for in, want := range cases {
		got, err := ParseHexColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"66cc66", "#12345", "#gggggg", ""} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}
