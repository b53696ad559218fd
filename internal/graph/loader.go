package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/geopath/internal/geo"

	"github.com/rs/zerolog/log"
)

// Record tags of the text format.
const (
	TagNode = "i"
	TagEdge = "r"
)

const maxLineSize = 1 << 20

type pendingEdge struct {
	id, from, to string
	line         int
}

// Load reads a graph file. Any failure to open or read the file is fatal
// and no partial graph is returned.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g.source = path

	log.Info().
		Str("path", path).
		Int("nodes", g.stats.Nodes).
		Int("edges", g.stats.Edges).
		Int("malformed", g.stats.Malformed).
		Int("dropped_edges", g.stats.DroppedEdges).
		Msg("Graph loaded")

	return g, nil
}

// Parse reads tab separated node ("i") and edge ("r") records from r.
//
// Node records are applied before any edge record is resolved, so the order
// of records in the input does not matter. Malformed records and edges with
// unknown endpoints are skipped; only read errors are returned.
func Parse(r io.Reader) (*Graph, error) {
	b := NewBuilder()
	var pending []pendingEdge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")

		switch fields[0] {
		case TagNode:
			id, lat, lon, err := parseNode(fields)
			if err != nil {
				b.skip(&RecordError{Line: line, Tag: TagNode, Err: err})
				continue
			}
			if b.HasNode(id) {
				log.Debug().Int("line", line).Str("id", id).Msg("Duplicate node id, replacing")
			}
			b.AddNode(id, lat, lon)

		case TagEdge:
			if len(fields) < 4 || fields[1] == "" || fields[2] == "" || fields[3] == "" {
				b.skip(&RecordError{Line: line, Tag: TagEdge, Err: fmt.Errorf("%w: want 4 fields, got %d", ErrMalformed, len(fields))})
				continue
			}
			pending = append(pending, pendingEdge{id: fields[1], from: fields[2], to: fields[3], line: line})

		default:
			b.stats.Ignored++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	for _, p := range pending {
		if _, err := b.AddEdge(p.id, p.from, p.to); err != nil {
			b.skip(&RecordError{Line: p.line, Tag: TagEdge, Err: err})
		}
	}

	return b.Build(), nil
}

func parseNode(fields []string) (string, float64, float64, error) {
	if len(fields) < 4 {
		return "", 0, 0, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformed, len(fields))
	}

	id := fields[1]
	if id == "" {
		return "", 0, 0, fmt.Errorf("%w: empty id", ErrMalformed)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: latitude: %w", ErrMalformed, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: longitude: %w", ErrMalformed, err)
	}
	if !geo.ValidCoordinate(lat, lon) {
		return "", 0, 0, fmt.Errorf("%w: coordinate out of range (%g, %g)", ErrMalformed, lat, lon)
	}

	return id, lat, lon, nil
}

func (b *Builder) skip(err *RecordError) {
	if errors.Is(err, ErrUnknownNode) {
		b.stats.DroppedEdges++
	} else {
		b.stats.Malformed++
	}

	log.Debug().Err(err).Msg("Record skipped")
}
