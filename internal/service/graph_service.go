package service

import (
	"context"
	"fmt"

	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
)

// GraphService is the read side of the crowdsourced route graph: direct
// route lookup and bounded composition of shared segments.
type GraphService struct {
	routes   *repository.RouteRepository
	segments *repository.SegmentRepository
	hopBound int
}

// NewGraphService creates a new graph service. hopBound caps the segment
// search depth so malformed or cyclic segment data cannot loop.
func NewGraphService(routes *repository.RouteRepository, segments *repository.SegmentRepository, hopBound int) *GraphService {
	if hopBound <= 0 {
		hopBound = 3
	}
	return &GraphService{routes: routes, segments: segments, hopBound: hopBound}
}

// FindDirect returns the best stored routes between two locations,
// filtered to the preferred modes when given. Returns (nil, nil) when the
// graph has no direct edge; that is a fallback signal, not an error.
func (g *GraphService) FindDirect(ctx context.Context, startID, endID int64, modes []string, limit int) ([]models.Route, error) {
	routes, err := g.routes.FindDirect(ctx, startID, endID, limit)
	if err != nil {
		return nil, fmt.Errorf("direct route lookup: %w", err)
	}

	if len(modes) == 0 {
		return routes, nil
	}

	var matched []models.Route
	for _, rt := range routes {
		if models.ModesOverlap(rt.TransportModes, modes) {
			matched = append(matched, rt)
		}
	}
	return matched, nil
}

// segmentEdge is one adjacency entry in the composition graph.
type segmentEdge struct {
	segment models.RouteSegment
	to      int64
}

// FindViaSegments chains shared segments start -> ... -> end with a
// breadth-first search bounded by the hop limit. Segments join only when
// their mode sets let a rider stay on a coherent journey; walking bridges
// any two modes. Returns (nil, nil) when no chain exists within the bound.
func (g *GraphService) FindViaSegments(ctx context.Context, startID, endID int64, modes []string) (*models.ComposedPath, error) {
	if startID == endID {
		return nil, nil
	}

	segments, err := g.segments.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("segment adjacency load: %w", err)
	}

	adjacency := make(map[int64][]segmentEdge)
	for _, s := range segments {
		if len(modes) > 0 && !models.ModesOverlap(s.TransportModes, modes) {
			continue
		}
		adjacency[s.StartLocationID] = append(adjacency[s.StartLocationID], segmentEdge{segment: s, to: s.EndLocationID})
	}

	type state struct {
		location int64
		chain    []models.RouteSegment
	}

	queue := []state{{location: startID}}
	visited := map[int64]bool{startID: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.chain) >= g.hopBound {
			continue
		}

		for _, edge := range adjacency[cur.location] {
			if visited[edge.to] {
				continue
			}
			if len(cur.chain) > 0 && !models.ModesOverlap(cur.chain[len(cur.chain)-1].TransportModes, edge.segment.TransportModes) {
				continue
			}

			chain := make([]models.RouteSegment, len(cur.chain), len(cur.chain)+1)
			copy(chain, cur.chain)
			chain = append(chain, edge.segment)

			if edge.to == endID {
				return &models.ComposedPath{Segments: chain}, nil
			}

			visited[edge.to] = true
			queue = append(queue, state{location: edge.to, chain: chain})
		}
	}

	return nil, nil
}

// GetRoute returns a stored route with steps for the route detail endpoint.
func (g *GraphService) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	return g.routes.GetByID(ctx, id)
}
