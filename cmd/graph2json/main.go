// Command graph2json converts a graph file to GeoJSON, optionally adding the
// shortest route between two nodes.
package main

import (
	"os"

	"github.com/woozymasta/geopath/internal/export"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/logger"
	"github.com/woozymasta/geopath/internal/route"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in"     description:"Input graph file. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	From   string `long:"from"             description:"Include the route starting at this node"`
	To     string `long:"to"               description:"Include the route ending at this node"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	var (
		g   *graph.Graph
		err error
	)
	if opts.Input != "" {
		g, err = graph.Load(opts.Input)
	} else {
		g, err = graph.Parse(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read graph")
	}

	var p *route.Path
	if opts.From != "" || opts.To != "" {
		if opts.From == "" || opts.To == "" {
			log.Fatal().Msg("--from and --to must be set together")
		}
		if p, err = route.ShortestPath(g, opts.From, opts.To); err != nil {
			log.Fatal().Err(err).Str("from", opts.From).Str("to", opts.To).Msg("Failed to find route")
		}
	}

	fc := export.FeatureCollection(g, p)

	if opts.Output == "" {
		if err := export.Write(os.Stdout, fc, opts.Format); err != nil {
			log.Fatal().Err(err).Msg("Failed to write GeoJSON")
		}
		return
	}

	if err := export.Save(opts.Output, fc, opts.Format); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to save GeoJSON")
	}

	log.Info().
		Int("features", len(fc.Features)).
		Str("path", opts.Output).
		Str("format", opts.Format).
		Msg("Graph converted")
}
