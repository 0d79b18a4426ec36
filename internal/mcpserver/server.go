// Package mcpserver exposes the loaded graph to MCP clients over stdio.
// Every tool is read-only; mutation stays with the batch commands so an
// agent can never race a recalibration run.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"arketype/internal/graph"
	"arketype/internal/logging"
	"arketype/internal/spectral"
	"arketype/internal/validate"
)

// Server wraps the MCP SDK server around one immutable graph snapshot.
type Server struct {
	MCPServer *sdkmcp.Server

	graph    *graph.Graph
	registry *spectral.Registry
	log      *slog.Logger
}

// NewServer creates the server and registers the graph tools.
func NewServer(g *graph.Graph, reg *spectral.Registry, version string) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "arketype", Version: version},
			nil,
		),
		graph:    g,
		registry: reg,
		log:      logging.New("mcpserver"),
	}
	s.registerTools()
	return s
}

// Run serves on the given transport until ctx is canceled.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	s.log.Info("serving graph over MCP", "archetypes", s.graph.Len())
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "lookup_archetype",
		Description: "Fetch one archetype record by id, including coordinates and relationships.",
	}, s.handleLookup)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "semantic_distance",
		Description: "Euclidean distance between two archetypes over their shared coordinate axes, with per-axis differences.",
	}, s.handleDistance)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "nearest_archetypes",
		Description: "Rank the archetypes closest to the given one in coordinate space.",
	}, s.handleNearest)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_pair",
		Description: "Run the relationship validator and return the findings involving the given pair of archetypes.",
	}, s.handleValidatePair)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "graph_stats",
		Description: "Census of the loaded graph: record, namespace, relationship, and axis coverage counts.",
	}, s.handleStats)
}

// --- Tool input/output types ---

type lookupInput struct {
	ID string `json:"id" jsonschema:"archetype id, e.g. greek:athena"`
}

type lookupOutput struct {
	Archetype graph.Archetype `json:"archetype"`
	Namespace string          `json:"namespace"`
	Edges     int             `json:"edges"`
}

type distanceInput struct {
	A string `json:"a" jsonschema:"first archetype id"`
	B string `json:"b" jsonschema:"second archetype id"`
}

type distanceOutput struct {
	Distance   float64            `json:"distance"`
	SharedAxes []string           `json:"shared_axes"`
	AxisDiffs  map[string]float64 `json:"axis_diffs"`
}

type nearestInput struct {
	ID    string `json:"id" jsonschema:"archetype id to search around"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum neighbours to return (default 5)"`
}

type neighbour struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Distance float64 `json:"distance"`
}

type nearestOutput struct {
	Neighbours []neighbour `json:"neighbours"`
	Skipped    int         `json:"skipped"` // records sharing no axes with the anchor
}

type validatePairInput struct {
	Source   string `json:"source" jsonschema:"first archetype id"`
	Target   string `json:"target" jsonschema:"second archetype id"`
	Advisory bool   `json:"advisory,omitempty" jsonschema:"include advisory findings such as echo drift"`
}

type validatePairOutput struct {
	Findings []validate.Finding `json:"findings"`
	Clean    bool               `json:"clean"`
}

type statsInput struct{}

type statsOutput struct {
	Census graph.Census `json:"census"`
	Axes   []string     `json:"axes"`
}

// --- Tool handlers ---

func (s *Server) handleLookup(_ context.Context, _ *sdkmcp.CallToolRequest, input lookupInput) (*sdkmcp.CallToolResult, lookupOutput, error) {
	a, ok := s.graph.Get(input.ID)
	if !ok {
		return nil, lookupOutput{}, fmt.Errorf("archetype %q not in graph", input.ID)
	}
	return nil, lookupOutput{
		Archetype: *a,
		Namespace: a.Namespace(),
		Edges:     len(a.Relationships),
	}, nil
}

func (s *Server) handleDistance(_ context.Context, _ *sdkmcp.CallToolRequest, input distanceInput) (*sdkmcp.CallToolResult, distanceOutput, error) {
	a, ok := s.graph.Get(input.A)
	if !ok {
		return nil, distanceOutput{}, fmt.Errorf("archetype %q not in graph", input.A)
	}
	b, ok := s.graph.Get(input.B)
	if !ok {
		return nil, distanceOutput{}, fmt.Errorf("archetype %q not in graph", input.B)
	}
	dist, err := spectral.Distance(a.Coordinates, b.Coordinates)
	if err != nil {
		return nil, distanceOutput{}, fmt.Errorf("distance %s / %s: %w", input.A, input.B, err)
	}
	shared := spectral.SharedAxes(a.Coordinates, b.Coordinates)
	diffs := make(map[string]float64, len(shared))
	for _, axis := range shared {
		d, err := spectral.AxisDifference(a.Coordinates, b.Coordinates, axis)
		if err != nil {
			continue
		}
		diffs[axis] = d
	}
	return nil, distanceOutput{Distance: dist, SharedAxes: shared, AxisDiffs: diffs}, nil
}

func (s *Server) handleNearest(_ context.Context, _ *sdkmcp.CallToolRequest, input nearestInput) (*sdkmcp.CallToolResult, nearestOutput, error) {
	anchor, ok := s.graph.Get(input.ID)
	if !ok {
		return nil, nearestOutput{}, fmt.Errorf("archetype %q not in graph", input.ID)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	out := nearestOutput{Neighbours: []neighbour{}}
	for _, b := range s.graph.All() {
		if b.ID == anchor.ID {
			continue
		}
		dist, err := spectral.Distance(anchor.Coordinates, b.Coordinates)
		if err != nil {
			out.Skipped++
			continue
		}
		out.Neighbours = append(out.Neighbours, neighbour{ID: b.ID, Name: b.Name, Distance: dist})
	}
	sort.Slice(out.Neighbours, func(i, j int) bool {
		if out.Neighbours[i].Distance != out.Neighbours[j].Distance {
			return out.Neighbours[i].Distance < out.Neighbours[j].Distance
		}
		return out.Neighbours[i].ID < out.Neighbours[j].ID
	})
	if len(out.Neighbours) > limit {
		out.Neighbours = out.Neighbours[:limit]
	}
	return nil, out, nil
}

func (s *Server) handleValidatePair(_ context.Context, _ *sdkmcp.CallToolRequest, input validatePairInput) (*sdkmcp.CallToolResult, validatePairOutput, error) {
	if _, ok := s.graph.Get(input.Source); !ok {
		return nil, validatePairOutput{}, fmt.Errorf("archetype %q not in graph", input.Source)
	}
	if _, ok := s.graph.Get(input.Target); !ok {
		return nil, validatePairOutput{}, fmt.Errorf("archetype %q not in graph", input.Target)
	}

	params := validate.DefaultParams()
	params.Advisory = input.Advisory
	rep := validate.Run(s.graph, s.registry, params)

	out := validatePairOutput{Findings: []validate.Finding{}, Clean: true}
	for _, f := range rep.Findings {
		if !pairMatch(f, input.Source, input.Target) {
			continue
		}
		out.Findings = append(out.Findings, f)
		if f.Severity == validate.SeverityViolation {
			out.Clean = false
		}
	}
	return nil, out, nil
}

func pairMatch(f validate.Finding, a, b string) bool {
	return (f.Source == a && f.Target == b) || (f.Source == b && f.Target == a)
}

func (s *Server) handleStats(_ context.Context, _ *sdkmcp.CallToolRequest, _ statsInput) (*sdkmcp.CallToolResult, statsOutput, error) {
	return nil, statsOutput{
		Census: graph.TakeCensus(s.graph),
		Axes:   s.registry.Names(),
	}, nil
}
