package render

import (
	"math"

	"github.com/woozymasta/geopath/internal/geo"
	"github.com/woozymasta/geopath/internal/graph"
)

// projection maps lat/lon to pixel space with north up. Longitudes are
// shrunk by cos(mid latitude) so small areas keep their proportions.
type projection struct {
	minLat, minLon float64
	lonFactor      float64
	scale          float64
	offX, offY     float64
	height         float64
}

func newProjection(b graph.Bounds, width, height, padding float64) projection {
	midLat := (b.MinLat + b.MaxLat) / 2
	p := projection{
		minLat:    b.MinLat,
		minLon:    b.MinLon,
		lonFactor: math.Cos(geo.Radians(midLat)),
		height:    height,
	}

	spanX := (b.MaxLon - b.MinLon) * p.lonFactor
	spanY := b.MaxLat - b.MinLat
	availX := math.Max(width-2*padding, 1)
	availY := math.Max(height-2*padding, 1)

	switch {
	case spanX <= 0 && spanY <= 0:
		p.scale = 1
	case spanX <= 0:
		p.scale = availY / spanY
	case spanY <= 0:
		p.scale = availX / spanX
	default:
		p.scale = math.Min(availX/spanX, availY/spanY)
	}

	// center the drawing inside the padded area
	p.offX = (width - spanX*p.scale) / 2
	p.offY = (height - spanY*p.scale) / 2

	return p
}

// point returns pixel coordinates for lat/lon.
func (p projection) point(lat, lon float64) (float32, float32) {
	x := p.offX + (lon-p.minLon)*p.lonFactor*p.scale
	y := p.height - (p.offY + (lat-p.minLat)*p.scale)
	return float32(x), float32(y)
}
