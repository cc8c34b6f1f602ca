package service

import (
	"context"
	"testing"

	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
)

func TestFindDirectPrefersVerified(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)

	unverified := seedRoute(t, db, "Unverified run", start, end, []string{models.ModeBus}, false, 80, 120, 25)
	seedStep(t, db, unverified, 1, start, end, models.ModeBus, 80, 120, 25)

	verified := seedRoute(t, db, "Market to Park express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, verified, 1, start, end, models.ModeBus, 100, 150, 20)

	routes, err := graph.FindDirect(context.Background(), start, end, nil, 3)
	if err != nil {
		t.Fatalf("FindDirect returned error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].ID != verified {
		t.Errorf("verified route must rank first, got route %d", routes[0].ID)
	}
	if len(routes[0].Steps) != 1 {
		t.Errorf("steps not loaded: %d", len(routes[0].Steps))
	}
}

func TestFindDirectModeFilter(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	start := seedLocation(t, db, "A", 6.40, 3.40, true)
	end := seedLocation(t, db, "B", 6.41, 3.41, true)
	seedRoute(t, db, "Bus only", start, end, []string{models.ModeBus}, true, 100, 150, 20)

	routes, err := graph.FindDirect(context.Background(), start, end, []string{models.ModeOkada}, 3)
	if err != nil {
		t.Fatalf("FindDirect returned error: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("okada filter should exclude the bus route, got %d routes", len(routes))
	}
}

func TestFindViaSegmentsChains(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	a := seedLocation(t, db, "A", 6.40, 3.40, true)
	b := seedLocation(t, db, "B", 6.42, 3.41, true)
	c := seedLocation(t, db, "C", 6.44, 3.42, true)

	seedSegment(t, db, "A-B", a, b, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "B-C", b, c, []string{models.ModeBus}, true, 60, 90, 12)

	path, err := graph.FindViaSegments(context.Background(), a, c, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path == nil {
		t.Fatal("expected a composed path")
	}
	if len(path.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(path.Segments))
	}
	if path.Segments[0].StartLocationID != a || path.Segments[1].EndLocationID != c {
		t.Error("chain endpoints do not match the request")
	}
	if path.TotalDurationMinutes() != 22 {
		t.Errorf("total duration = %d, want 22", path.TotalDurationMinutes())
	}
}

func TestFindViaSegmentsHopBound(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	// A five-stop corridor needs four hops; the bound of three must
	// reject it rather than hang or loop.
	a := seedLocation(t, db, "A", 6.40, 3.40, true)
	b := seedLocation(t, db, "B", 6.42, 3.41, true)
	c := seedLocation(t, db, "C", 6.44, 3.42, true)
	d := seedLocation(t, db, "D", 6.46, 3.43, true)
	e := seedLocation(t, db, "E", 6.48, 3.44, true)

	seedSegment(t, db, "A-B", a, b, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "B-C", b, c, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "C-D", c, d, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "D-E", d, e, []string{models.ModeBus}, true, 50, 80, 10)

	path, err := graph.FindViaSegments(context.Background(), a, e, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path != nil {
		t.Errorf("a 4-hop-only path must be rejected at hop bound 3, got %d segments", len(path.Segments))
	}

	// D is reachable in exactly three hops
	path, err = graph.FindViaSegments(context.Background(), a, d, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path == nil || len(path.Segments) != 3 {
		t.Errorf("3-hop path should be found, got %+v", path)
	}
}

func TestFindViaSegmentsCycleSafety(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	a := seedLocation(t, db, "A", 6.40, 3.40, true)
	b := seedLocation(t, db, "B", 6.42, 3.41, true)

	// A cycle between two stops and no way to the target
	seedSegment(t, db, "A-B", a, b, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "B-A", b, a, []string{models.ModeBus}, true, 50, 80, 10)

	unreachable := seedLocation(t, db, "Z", 6.60, 3.50, true)

	path, err := graph.FindViaSegments(context.Background(), a, unreachable, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path != nil {
		t.Error("cyclic segments must not fabricate a path")
	}
}

func TestFindViaSegmentsModeCompatibility(t *testing.T) {
	db := newTestDB(t)
	graph := NewGraphService(repository.NewRouteRepository(db), repository.NewSegmentRepository(db), 3)

	a := seedLocation(t, db, "A", 6.40, 3.40, true)
	b := seedLocation(t, db, "B", 6.42, 3.41, true)
	c := seedLocation(t, db, "C", 6.44, 3.42, true)

	// Incompatible modes with no walking bridge: the chain must break
	seedSegment(t, db, "A-B", a, b, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "B-C", b, c, []string{models.ModeOkada}, true, 60, 90, 12)

	path, err := graph.FindViaSegments(context.Background(), a, c, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path != nil {
		t.Error("bus and okada segments must not chain without a walking bridge")
	}

	// A walking segment bridges any two modes
	d := seedLocation(t, db, "D", 6.46, 3.43, true)
	seedSegment(t, db, "B-D walk", b, d, []string{models.ModeWalking}, true, 0, 0, 8)
	seedSegment(t, db, "D-C", d, c, []string{models.ModeOkada}, true, 60, 90, 12)

	path, err = graph.FindViaSegments(context.Background(), a, c, nil)
	if err != nil {
		t.Fatalf("FindViaSegments returned error: %v", err)
	}
	if path == nil {
		t.Fatal("walking bridge should connect bus to okada")
	}
	if len(path.Segments) != 3 {
		t.Errorf("got %d segments, want 3", len(path.Segments))
	}
}
