// Command geopath loads a geographic graph, prints shortest paths and renders
// the graph to an image.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/woozymasta/geopath/internal/config"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/logger"
	"github.com/woozymasta/geopath/internal/render"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Show       string `short:"s" long:"show"       description:"Render the graph (and route) to an image file (.webp or .png)"`
	Directions bool   `short:"d" long:"directions" description:"Print the shortest path from START to END"`
	Polyline   bool   `short:"P" long:"polyline"   description:"Also print the route as an encoded polyline"`

	Tiles       string `short:"t" long:"tiles"       description:"Slice the rendered map into z/x/y webp tiles under this directory"`
	ZoomLimit   int    `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT"  description:"Tiles zoom limit (at most 8)" default:"3"`
	TileSize    int    `long:"tile-size"             description:"Tile size in pixels" default:"256"`
	Concurrency int    `short:"j" long:"concurrency" env:"CONCURRENCY" description:"Parallel tile writers" default:"20"`
	Force       bool   `short:"f" long:"force"       description:"Force overwrite of existing tiles"`

	Args struct {
		Graph string `positional-arg-name:"GRAPH" description:"Graph file of i/r records" required:"yes"`
		Start string `positional-arg-name:"START" description:"Source node id"`
		End   string `positional-arg-name:"END"   description:"Destination node id"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] GRAPH [START END]"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Tiles != "" {
		if err := opts.tileOptions().Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid tile options")
		}
	}

	g, err := graph.Load(opts.Args.Graph)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Args.Graph).Msg("Failed to load graph")
	}

	var (
		p       *route.Path
		failure error
	)
	if opts.Directions {
		if opts.Args.Start == "" || opts.Args.End == "" {
			log.Fatal().Msg("START and END are required with --directions")
		}

		p, failure = directions(g, opts.Args.Start, opts.Args.End, opts.Polyline)
	}

	if opts.Show != "" || opts.Tiles != "" {
		if err := show(cfg, g, p, opts); err != nil {
			log.Fatal().Err(err).Msg("Failed to render graph")
		}
	}

	if failure != nil {
		os.Exit(1)
	}
}

// directions prints the route from start to end on stdout.
func directions(g *graph.Graph, start, end string, withPolyline bool) (*route.Path, error) {
	p, err := route.ShortestPath(g, start, end)
	switch {
	case errors.Is(err, route.ErrNotReachable):
		fmt.Printf("No path found from %s to %s\n", start, end)
		return nil, err
	case err != nil:
		log.Error().Err(err).Msg("Route query failed")
		return nil, err
	}

	fmt.Println(strings.Join(p.IDs(), " "))
	fmt.Printf("Distance travelled: %v miles\n", p.Distance)
	if withPolyline {
		fmt.Println(p.Polyline())
	}

	log.Debug().
		Str("from", start).
		Str("to", end).
		Int("hops", len(p.Edges)).
		Msg("Route printed")

	return p, nil
}

// show renders the graph once and writes it to the image file and the tile
// pyramid requested in opts.
func show(cfg *config.Config, g *graph.Graph, p *route.Path, opts Options) error {
	r, err := render.New(cfg)
	if err != nil {
		return err
	}
	img := r.Render(g, p)

	if opts.Show != "" {
		if err := r.WriteFile(opts.Show, img); err != nil {
			return fmt.Errorf("write %s: %w", opts.Show, err)
		}

		log.Info().
			Str("path", opts.Show).
			Str("format", r.FormatFor(opts.Show)).
			Bool("route", p != nil).
			Msg("Graph rendered to file")
	}

	if opts.Tiles != "" {
		_, err := r.Tiles(img, opts.Tiles, opts.tileOptions())
		if err != nil {
			return fmt.Errorf("tiles %s: %w", opts.Tiles, err)
		}
	}

	return nil
}

func (o Options) tileOptions() render.TileOptions {
	return render.TileOptions{
		ZoomLimit:   o.ZoomLimit,
		TileSize:    o.TileSize,
		Concurrency: o.Concurrency,
		Force:       o.Force,
	}
}
