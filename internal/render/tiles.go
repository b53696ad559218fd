package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

const (
	// MaxZoomLimit is the deepest zoom level Tiles accepts.
	MaxZoomLimit = 8

	// MaxLevelPixels bounds the edge of the square image scaled for the
	// deepest level.
	MaxLevelPixels = 16384
)

// TileOptions controls the zoom pyramid written by Tiles.
type TileOptions struct {
	ZoomLimit   int  // deepest zoom level, inclusive
	TileSize    int  // tile edge in pixels
	Concurrency int  // parallel tile writers
	Force       bool // overwrite tiles that already exist
}

// Validate checks the zoom limit and tile size against MaxZoomLimit and
// MaxLevelPixels.
func (o TileOptions) Validate() error {
	if o.TileSize <= 0 || o.TileSize > MaxLevelPixels {
		return fmt.Errorf("invalid tile size %d", o.TileSize)
	}
	if o.ZoomLimit < 0 || o.ZoomLimit > MaxZoomLimit {
		return fmt.Errorf("invalid zoom limit %d: must be within 0..%d", o.ZoomLimit, MaxZoomLimit)
	}
	if px := (1 << o.ZoomLimit) * o.TileSize; px > MaxLevelPixels {
		return fmt.Errorf("zoom %d with %dpx tiles needs a %dpx level, limit is %dpx",
			o.ZoomLimit, o.TileSize, px, MaxLevelPixels)
	}
	return nil
}

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// Path returns dir/z/x/y.webp.
func (c TileCoordinate) Path(dir string) string {
	return filepath.Join(dir, strconv.Itoa(c.Z), strconv.Itoa(c.X), strconv.Itoa(c.Y)+".webp")
}

// Tiles slices img into a square z/x/y pyramid of webp tiles under dir. At
// zoom z the image is fitted into a 2^z by 2^z grid, centered on the
// background color. It returns the number of tiles written.
func (r *Renderer) Tiles(img image.Image, dir string, opts TileOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	var (
		mu      sync.Mutex
		errs    []error
		written int
	)

	for z := 0; z <= opts.ZoomLimit; z++ {
		gridSize := 1 << z
		totalPixels := gridSize * opts.TileSize

		log.Debug().
			Int("zoom", z).
			Int("grid", gridSize).
			Int("px", totalPixels).
			Msg("Processing zoom level")

		level := r.fitSquare(img, totalPixels)

		var wg sync.WaitGroup
		sem := make(chan struct{}, opts.Concurrency)

		for x := 0; x < gridSize; x++ {
			for y := 0; y < gridSize; y++ {
				wg.Add(1)
				sem <- struct{}{}

				go func(c TileCoordinate) {
					defer wg.Done()
					defer func() { <-sem }()

					rect := image.Rect(c.X*opts.TileSize, c.Y*opts.TileSize, (c.X+1)*opts.TileSize, (c.Y+1)*opts.TileSize)
					ok, err := r.writeTile(level.SubImage(rect), c.Path(dir), opts.Force)

					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, fmt.Errorf("tile %d/%d/%d: %w", c.Z, c.X, c.Y, err))
						return
					}
					if ok {
						written++
					}
				}(TileCoordinate{Z: z, X: x, Y: y})
			}
		}
		wg.Wait()
	}

	log.Info().
		Str("dir", dir).
		Int("zoom_limit", opts.ZoomLimit).
		Int("written", written).
		Int("failed", len(errs)).
		Msg("Tiles generated")

	return written, errors.Join(errs...)
}

// fitSquare scales img into a size by size canvas keeping its aspect ratio.
func (r *Renderer) fitSquare(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	b := img.Bounds()
	w, h := size, size
	if b.Dx() > b.Dy() {
		h = size * b.Dy() / b.Dx()
	} else if b.Dy() > b.Dx() {
		w = size * b.Dx() / b.Dy()
	}
	offX, offY := (size-w)/2, (size-h)/2

	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+w, offY+h), img, b, draw.Over, nil)
	return dst
}

// writeTile reports false when the tile exists and force is not set.
func (r *Renderer) writeTile(img image.Image, path string, force bool) (written bool, err error) {
	if !force {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}

	f, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := webp.Encode(f, img, &webp.Options{Lossless: r.style.Lossless, Quality: r.style.Quality}); err != nil {
		return false, err
	}
	return true, nil
}
