package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"net/http"

	"github.com/woozymasta/geopath/assets"
	"github.com/woozymasta/geopath/internal/config"
	"github.com/woozymasta/geopath/internal/export"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/render"
	"github.com/woozymasta/geopath/internal/route"
	"github.com/woozymasta/geopath/internal/snap"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers. Everything in it is
// read-only once NewServerContext returns.
type ServerContext struct {
	Config   *config.Config
	Graph    *graph.Graph
	Engine   *route.Engine
	Snap     *snap.Index
	Renderer *render.Renderer

	IndexHTML []byte
	Favicon   []byte

	// pre-encoded /api/graph body and its ETag
	graphJSON []byte
	graphETag string

	validate *validator.Validate
}

// NewServerContext builds the search engine, spatial index and renderer for
// g and pre-encodes the graph GeoJSON.
func NewServerContext(cfg *config.Config, g *graph.Graph) (*ServerContext, error) {
	log.Info().
		Int("nodes", g.Len()).
		Int("edges", g.EdgeCount()).
		Msg("Initializing server context")

	renderer, err := render.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(export.FeatureCollection(g, nil)); err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	idx := snap.New(g)
	log.Debug().Int("indexed", idx.Len()).Msg("Spatial index built")

	s := &ServerContext{
		Config:    cfg,
		Graph:     g,
		Engine:    route.New(g),
		Snap:      idx,
		Renderer:  renderer,
		IndexHTML: assets.Index,
		Favicon:   assets.Favicon,
		graphJSON: buf.Bytes(),
		graphETag: fmt.Sprintf(`"%x-%x"`, buf.Len(), crc32.ChecksumIEEE(buf.Bytes())),
		validate:  validator.New(),
	}

	log.Info().
		Int("graph_json_bytes", len(s.graphJSON)).
		Msg("Server context initialized successfully")

	return s, nil
}

// Handler returns the routed and logged HTTP handler.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graph", s.HandleGraph)
	mux.HandleFunc("/api/info", s.HandleInfo)
	mux.HandleFunc("/api/route", s.HandleRoute)
	mux.HandleFunc("/api/nearest", s.HandleNearest)
	mux.HandleFunc("/map.webp", s.HandleMap)
	mux.HandleFunc("/map.png", s.HandleMap)
	mux.HandleFunc("/favicon.svg", s.HandleFavicon)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
