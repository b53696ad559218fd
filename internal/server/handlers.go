// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/geopath/internal/export"
	"github.com/woozymasta/geopath/internal/geo"
	"github.com/woozymasta/geopath/internal/graph"
	"github.com/woozymasta/geopath/internal/route"
	"github.com/woozymasta/geopath/internal/snap"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// InfoResponse describes the loaded graph.
type InfoResponse struct {
	Title  string        `json:"title"`
	Source string        `json:"source,omitempty"`
	Nodes  int           `json:"nodes"`
	Edges  int           `json:"edges"`
	Bounds *graph.Bounds `json:"bounds,omitempty"`
	Stats  graph.Stats   `json:"stats"`
}

// RouteResponse is the body of a successful /api/route call.
type RouteResponse struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	Nodes         []graph.Node       `json:"nodes"`
	DistanceMiles float64            `json:"distance_miles"`
	Polyline      string             `json:"polyline"`
	GeoJSON       geo.GeoJSONFeature `json:"geojson"`
}

// NearestResponse is the body of a successful /api/nearest call.
type NearestResponse struct {
	ID            string  `json:"id"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	DistanceMiles float64 `json:"distance_miles"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

type routeQuery struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

type pointQuery struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

// HandleInfo serves graph metadata.
func (s *ServerContext) HandleInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		Title: s.Config.Window.Title,
		Nodes: s.Graph.Len(),
		Edges: s.Graph.EdgeCount(),
		Stats: s.Graph.Stats(),
	}
	if src := s.Graph.Source(); src != "" {
		resp.Source = filepath.Base(src)
	}
	// empty graphs have infinite bounds, which JSON cannot carry
	if s.Graph.Len() > 0 {
		b := s.Graph.Bounds()
		resp.Bounds = &b
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGraph serves the whole graph as GeoJSON.
func (s *ServerContext) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if match := r.Header.Get("If-None-Match"); match == s.graphETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("ETag", s.graphETag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.graphJSON)
}

// HandleRoute answers /api/route?from=A&to=B.
func (s *ServerContext) HandleRoute(w http.ResponseWriter, r *http.Request) {
	q := routeQuery{
		From: strings.TrimSpace(r.URL.Query().Get("from")),
		To:   strings.TrimSpace(r.URL.Query().Get("to")),
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	p, err := s.Engine.ShortestPath(q.From, q.To)
	if err != nil {
		writeError(w, routeStatus(err), err.Error())
		return
	}

	log.Debug().
		Str("from", q.From).
		Str("to", q.To).
		Int("hops", len(p.Edges)).
		Float64("miles", p.Distance).
		Msg("Route found")

	writeJSON(w, http.StatusOK, RouteResponse{
		From:          q.From,
		To:            q.To,
		Nodes:         p.Nodes,
		DistanceMiles: p.Distance,
		Polyline:      p.Polyline(),
		GeoJSON:       export.RouteFeature(p),
	})
}

// HandleNearest answers /api/nearest?lat=..&lon=.. with the closest node.
func (s *ServerContext) HandleNearest(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}

	if err := s.validate.Struct(pointQuery{Lat: lat, Lon: lon}); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	n, dist, err := s.Snap.Nearest(lat, lon)
	switch {
	case errors.Is(err, snap.ErrInvalidPoint):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NearestResponse{
		ID:            n.ID,
		Lat:           n.Lat,
		Lon:           n.Lon,
		DistanceMiles: dist,
	})
}

// HandleMap renders the graph as an image, with the route between the
// optional from and to parameters highlighted.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	var p *route.Path
	if from != "" || to != "" {
		if err := s.validate.Struct(routeQuery{From: from, To: to}); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		var err error
		if p, err = s.Engine.ShortestPath(from, to); err != nil {
			writeError(w, routeStatus(err), err.Error())
			return
		}
	}

	format := s.Renderer.FormatFor(r.URL.Path)
	img := s.Renderer.Render(s.Graph, p)

	w.Header().Set("Content-Type", "image/"+format)
	w.Header().Set("Cache-Control", "no-cache")
	if err := s.Renderer.Encode(w, img, format); err != nil {
		log.Error().Err(err).Str("format", format).Msg("Failed to encode map image")
	}
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// routeStatus maps search errors to HTTP status codes.
func routeStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, route.ErrNotReachable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
