// Package render rasterizes a graph and an optional route into an image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/geopath/internal/config"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const circleSegments = 16

// Renderer draws graphs with a fixed style. It keeps no per-image state and
// may be shared between goroutines.
type Renderer struct {
	style  config.Render
	window config.Window

	background color.NRGBA
	graph      color.NRGBA
	path       color.NRGBA
	text       color.NRGBA
}

// New parses the colors of cfg and returns a renderer.
func New(cfg *config.Config) (*Renderer, error) {
	r := &Renderer{style: cfg.Render, window: cfg.Window}

	var err error
	if r.background, err = ParseHexColor(cfg.Render.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if r.graph, err = ParseHexColor(cfg.Render.GraphColor); err != nil {
		return nil, fmt.Errorf("graph_color: %w", err)
	}
	if r.path, err = ParseHexColor(cfg.Render.PathColor); err != nil {
		return nil, fmt.Errorf("path_color: %w", err)
	}
	if r.text, err = ParseHexColor(cfg.Render.TextColor); err != nil {
		return nil, fmt.Errorf("text_color: %w", err)
	}

	if r.style.Supersample < 1 {
		r.style.Supersample = 1
	}

	return r, nil
}

// Render draws every edge and node of g at the window size, with p
// highlighted when it is not nil.
func (r *Renderer) Render(g *graph.Graph, p *route.Path) *image.RGBA {
	width, height := r.window.Width, r.window.Height
	ss := r.style.Supersample

	canvas := image.NewRGBA(image.Rect(0, 0, width*ss, height*ss))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	if g.Len() > 0 {
		proj := newProjection(g.Bounds(), float64(width*ss), float64(height*ss), float64(r.style.Padding*ss))
		r.drawGraph(canvas, proj, float32(ss), g, p)
	}

	out := canvas
	if ss > 1 {
		out = image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)
	}

	if r.style.Caption {
		r.drawCaption(out, g, p)
	}

	log.Debug().
		Int("width", width).
		Int("height", height).
		Int("supersample", ss).
		Bool("route", p != nil).
		Msg("Graph rendered")

	return out
}

func (r *Renderer) drawGraph(dst *image.RGBA, proj projection, ss float32, g *graph.Graph, p *route.Path) {
	size := dst.Bounds().Size()
	z := vector.NewRasterizer(size.X, size.Y)

	edgeWidth := float32(r.style.EdgeWidth) * ss
	pathWidth := float32(r.style.PathWidth) * ss
	radius := float32(r.style.NodeRadius) * ss

	for _, e := range g.Edges() {
		x1, y1 := proj.point(e.From.Lat, e.From.Lon)
		x2, y2 := proj.point(e.To.Lat, e.To.Lon)
		segment(z, x1, y1, x2, y2, edgeWidth)
	}
	fill(z, dst, r.graph)

	if p != nil {
		for _, e := range p.Edges {
			x1, y1 := proj.point(e.From.Lat, e.From.Lon)
			x2, y2 := proj.point(e.To.Lat, e.To.Lon)
			segment(z, x1, y1, x2, y2, pathWidth)
		}
		fill(z, dst, r.path)
	}

	for _, n := range g.Nodes() {
		if p != nil && p.Contains(n.ID) {
			continue
		}
		x, y := proj.point(n.Lat, n.Lon)
		circle(z, x, y, radius)
	}
	fill(z, dst, r.graph)

	if p != nil {
		for _, n := range p.Nodes {
			x, y := proj.point(n.Lat, n.Lon)
			circle(z, x, y, radius)
		}
		fill(z, dst, r.path)
	}
}

func (r *Renderer) drawCaption(dst *image.RGBA, g *graph.Graph, p *route.Path) {
	parts := make([]string, 0, 3)
	if r.window.Title != "" {
		parts = append(parts, r.window.Title)
	}
	parts = append(parts, fmt.Sprintf("%d nodes, %d edges", g.Len(), g.EdgeCount()))
	if p != nil {
		parts = append(parts, fmt.Sprintf("%.3f mi", p.Distance))
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.text),
		Face: face,
		Dot:  fixed.P(8, 8+face.Ascent),
	}
	d.DrawString(strings.Join(parts, " | "))
}

// fill paints everything accumulated in z and resets it for the next layer.
func fill(z *vector.Rasterizer, dst *image.RGBA, c color.NRGBA) {
	z.DrawOp = draw.Over
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	size := dst.Bounds().Size()
	z.Reset(size.X, size.Y)
}

// segment adds a line of the given width as a quad. All quads share the same
// winding so overlapping segments do not cancel out.
func segment(z *vector.Rasterizer, x1, y1, x2, y2, width float32) {
	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}

	nx, ny := -dy/length*width/2, dx/length*width/2
	z.MoveTo(x1+nx, y1+ny)
	z.LineTo(x2+nx, y2+ny)
	z.LineTo(x2-nx, y2-ny)
	z.LineTo(x1-nx, y1-ny)
	z.ClosePath()
}

func circle(z *vector.Rasterizer, cx, cy, radius float32) {
	z.MoveTo(cx+radius, cy)
	for i := 1; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		z.LineTo(cx+radius*float32(math.Cos(a)), cy+radius*float32(math.Sin(a)))
	}
	z.ClosePath()
}

// Encode writes img in the given format ("webp" or "png").
func (r *Renderer) Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: r.style.Lossless, Quality: r.style.Quality})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// FormatFor picks the image format from the file extension, falling back to
// the configured format.
func (r *Renderer) FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return r.style.Format
	}
}

// WriteFile encodes img into path, creating parent directories.
func (r *Renderer) WriteFile(path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return r.Encode(f, img, r.FormatFor(path))
}

// ParseHexColor parses #rgb, #rgba, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, c := range hex {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
