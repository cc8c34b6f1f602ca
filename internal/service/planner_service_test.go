package service

import (
	"context"
	"errors"
	"math"
	"testing"

	gocache "github.com/patrickmn/go-cache"

	"github.com/AvigateGroup/avigate-api-sub004/internal/geocoding"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
)

func planByID(startID, endID int64) models.PlanRequest {
	return models.PlanRequest{
		Start: models.LocationQuery{ID: startID},
		End:   models.LocationQuery{ID: endID},
	}
}

func TestPlanVerifiedDirectRoute(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Market to Park express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(result.Routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(result.Routes))
	}

	r := result.Routes[0]
	if r.Source != "graph" {
		t.Errorf("source = %q, want graph", r.Source)
	}
	if r.TotalEstimatedFareMin != 100 || r.TotalEstimatedFareMax != 150 {
		t.Errorf("fare totals = [%f, %f], want [100, 150]", r.TotalEstimatedFareMin, r.TotalEstimatedFareMax)
	}
	if r.TotalDurationMinutes != 20 {
		t.Errorf("duration = %d, want 20", r.TotalDurationMinutes)
	}

	// Verified but without recent reports ranks medium
	if r.OverallConfidence != models.ConfidenceMedium {
		t.Errorf("confidence = %q, want medium", r.OverallConfidence)
	}
	if !r.Steps[0].DataAvailability.HasVehicleData {
		t.Error("graph steps carry vehicle data")
	}
}

func TestPlanFareSumsMatchSteps(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Garage A", 6.45, 3.39, true)
	mid := seedLocation(t, db, "Junction", 6.48, 3.38, true)
	end := seedLocation(t, db, "Garage B", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Two-leg run", start, end, []string{models.ModeBus, models.ModeKeke}, true, 130, 200, 35)
	seedStep(t, db, routeID, 1, start, mid, models.ModeBus, 100, 150, 20)
	seedStep(t, db, routeID, 2, mid, end, models.ModeKeke, 30, 50, 15)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	r := result.Routes[0]
	var sumMin, sumMax float64
	var sumDuration int
	for _, s := range r.Steps {
		sumMin += s.EstimatedFareMin
		sumMax += s.EstimatedFareMax
		sumDuration += s.DurationMinutes
	}
	if math.Abs(r.TotalEstimatedFareMin-sumMin) > 0.001 || math.Abs(r.TotalEstimatedFareMax-sumMax) > 0.001 {
		t.Errorf("totals [%f, %f] do not equal step sums [%f, %f]",
			r.TotalEstimatedFareMin, r.TotalEstimatedFareMax, sumMin, sumMax)
	}
	if r.TotalDurationMinutes != sumDuration {
		t.Errorf("total duration %d does not equal step sum %d", r.TotalDurationMinutes, sumDuration)
	}
}

func TestPlanHighConfidenceWithRecentReports(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	planner, repos := newTestPlanner(t, db, &fakeProvider{}, cfg)

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	stepID := seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	fares := NewFareService(repos.feedback, repos.routes, cfg)
	for _, amount := range []float64{110, 120, 130} {
		if _, err := fares.RecordFeedback(context.Background(), feedbackReq(stepID, amount), nil); err != nil {
			t.Fatalf("feedback failed: %v", err)
		}
	}

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	r := result.Routes[0]
	if r.OverallConfidence != models.ConfidenceHigh {
		t.Errorf("confidence = %q, want high after 3 recent reports", r.OverallConfidence)
	}
	if r.TotalEstimatedFareMin > 120 || r.TotalEstimatedFareMax < 120 {
		t.Errorf("crowd average 120 outside enriched range [%f, %f]",
			r.TotalEstimatedFareMin, r.TotalEstimatedFareMax)
	}
}

func TestPlanHeuristicFallback(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	// Same endpoints, no graph data, dead provider: the plan degrades to
	// straight-line arithmetic instead of failing.
	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(result.Routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(result.Routes))
	}

	r := result.Routes[0]
	if r.Source != "heuristic" {
		t.Errorf("source = %q, want heuristic", r.Source)
	}
	if r.OverallConfidence != models.ConfidenceLow {
		t.Errorf("confidence = %q, want low", r.OverallConfidence)
	}

	step := r.Steps[0]
	if step.DataAvailability.HasVehicleData {
		t.Error("heuristic plan must not claim vehicle data")
	}
	if step.DistanceKm < 7.5 || step.DistanceKm > 8.5 {
		t.Errorf("distance = %f km, want about 8.1", step.DistanceKm)
	}
	if step.DurationMinutes <= 0 {
		t.Errorf("duration = %d, want positive", step.DurationMinutes)
	}
	if step.AlternativeOptions == nil {
		t.Fatal("heuristic plan must carry alternative options")
	}
	if step.AlternativeOptions.Walkable {
		t.Error("8 km is not walkable")
	}
	if len(step.AlternativeOptions.AskLocalsPhrases) == 0 {
		t.Error("ask-locals phrases missing")
	}
}

func TestPlanHeuristicWalkableShortHop(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Gate", 6.450, 3.390, true)
	end := seedLocation(t, db, "Kiosk", 6.454, 3.390, true)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	step := result.Routes[0].Steps[0]
	if step.TransportMode != models.ModeWalking {
		t.Errorf("mode = %q, want walking for a sub-kilometre hop", step.TransportMode)
	}
	if step.AlternativeOptions == nil || !step.AlternativeOptions.Walkable {
		t.Error("short hop must be marked walkable")
	}
	if step.WalkingDirections == nil {
		t.Fatal("walking directions missing")
	}
	if step.WalkingDirections.CardinalDirection == "" {
		t.Error("cardinal direction missing")
	}
}

func TestPlanProviderDirections(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{
		directionsFn: func(ctx context.Context, originLat, originLng, destLat, destLng float64, mode string) (*geocoding.DirectionsResult, error) {
			return &geocoding.DirectionsResult{
				DistanceMeters: 9200,
				DurationSecs:   1500,
				Steps: []geocoding.PolylineStep{
					{Instructions: "Head north on Ikorodu Rd", DistanceMeters: 9200, DurationSecs: 1500},
				},
			}, nil
		},
	}
	planner, _ := newTestPlanner(t, db, provider, testConfig())

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	r := result.Routes[0]
	if r.Source != "provider" {
		t.Errorf("source = %q, want provider", r.Source)
	}
	if r.Steps[0].DurationMinutes != 25 {
		t.Errorf("duration = %d, want 25 from provider seconds", r.Steps[0].DurationMinutes)
	}
	if math.Abs(r.Steps[0].DistanceKm-9.2) > 0.001 {
		t.Errorf("distance = %f, want 9.2", r.Steps[0].DistanceKm)
	}
	if r.OverallConfidence != models.ConfidenceLow {
		t.Errorf("confidence = %q, provider geometry is still low", r.OverallConfidence)
	}
}

func TestPlanMaxFareFiltersEverything(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	req := planByID(start, end)
	req.MaxFare = 50

	_, err := planner.Plan(context.Background(), req)
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("want ErrUnresolvable when the fare cap removes every plan, got %v", err)
	}
}

func TestPlanUnresolvableEndpoint(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)

	req := models.PlanRequest{
		Start: models.LocationQuery{Text: "no such place"},
		End:   models.LocationQuery{ID: end},
	}
	_, err := planner.Plan(context.Background(), req)
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("want ErrUnresolvable, got %v", err)
	}
}

func TestPlanSegmentComposition(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	a := seedLocation(t, db, "Agege", 6.62, 3.32, true)
	b := seedLocation(t, db, "Ikeja", 6.60, 3.35, true)
	c := seedLocation(t, db, "Maryland", 6.57, 3.37, true)

	seedSegment(t, db, "Agege-Ikeja", a, b, []string{models.ModeBus}, true, 50, 80, 10)
	seedSegment(t, db, "Ikeja-Maryland", b, c, []string{models.ModeBus}, true, 60, 90, 12)

	result, err := planner.Plan(context.Background(), planByID(a, c))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	r := result.Routes[0]
	if r.Source != "segments" {
		t.Errorf("source = %q, want segments", r.Source)
	}
	if len(r.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.Steps))
	}
	if r.TotalEstimatedFareMin != 110 || r.TotalEstimatedFareMax != 170 {
		t.Errorf("fare totals = [%f, %f], want [110, 170]", r.TotalEstimatedFareMin, r.TotalEstimatedFareMax)
	}
	if r.Steps[0].ToName != "Ikeja" {
		t.Errorf("transfer stop = %q, want Ikeja", r.Steps[0].ToName)
	}
}

func TestPlanFinalWalkingLeg(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	// The requested point sits about 90 m past the route's last stop:
	// close enough to resolve to the park, far enough to need a walk.
	result, err := planner.Plan(context.Background(), models.PlanRequest{
		Start: models.LocationQuery{ID: start},
		End:   models.LocationQuery{Latitude: floatPtr(6.5208), Longitude: floatPtr(3.37)},
	})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	r := result.Routes[0]
	if result.End.ID != end {
		t.Fatalf("destination resolved to location %d, want %d", result.End.ID, end)
	}
	if len(r.Steps) != 2 {
		t.Fatalf("got %d steps, want bus leg plus walking leg", len(r.Steps))
	}
	last := r.Steps[len(r.Steps)-1]
	if last.TransportMode != models.ModeWalking {
		t.Errorf("final leg mode = %q, want walking", last.TransportMode)
	}
	if r.FinalDestinationInfo == nil {
		t.Fatal("destination gap info missing")
	}
	if !r.FinalDestinationInfo.Walkable {
		t.Error("a 90 m gap must be walkable")
	}
	if r.FinalDestinationInfo.DistanceKm > 0.15 {
		t.Errorf("gap = %f km, want under 0.15", r.FinalDestinationInfo.DistanceKm)
	}
}

func TestPlanExactArrivalHasNoGap(t *testing.T) {
	db := newTestDB(t)
	planner, _ := newTestPlanner(t, db, &fakeProvider{}, testConfig())

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	result, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if result.Routes[0].FinalDestinationInfo != nil {
		t.Error("exact arrival must not report a destination gap")
	}
	if len(result.Routes[0].Steps) != 1 {
		t.Errorf("got %d steps, want 1", len(result.Routes[0].Steps))
	}
}

func TestPlanResponseCache(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()

	repos := &repositorySet{
		locations: repository.NewLocationRepository(db),
		routes:    repository.NewRouteRepository(db),
		segments:  repository.NewSegmentRepository(db),
		feedback:  repository.NewFeedbackRepository(db),
	}
	provider := &fakeProvider{}
	planner := NewPlannerService(
		NewLocationService(repos.locations, provider, cfg),
		NewGraphService(repos.routes, repos.segments, cfg.SegmentHopBound),
		NewFareService(repos.feedback, repos.routes, cfg),
		NewFallbackService(provider, cfg),
		NewConfidenceScorer(cfg),
		repos.locations, repos.routes,
		gocache.New(cfg.ResponseCacheTTL, 2*cfg.ResponseCacheTTL),
		cfg,
	)

	start := seedLocation(t, db, "Market Square", 6.45, 3.39, true)
	end := seedLocation(t, db, "Central Park", 6.52, 3.37, true)
	routeID := seedRoute(t, db, "Express", start, end, []string{models.ModeBus}, true, 100, 150, 20)
	seedStep(t, db, routeID, 1, start, end, models.ModeBus, 100, 150, 20)

	first, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("first Plan returned error: %v", err)
	}
	if first.Cached {
		t.Error("first response must not be marked cached")
	}

	second, err := planner.Plan(context.Background(), planByID(start, end))
	if err != nil {
		t.Fatalf("second Plan returned error: %v", err)
	}
	if !second.Cached {
		t.Error("second identical request must come from the cache")
	}
	if len(second.Routes) != len(first.Routes) {
		t.Errorf("cached response has %d routes, first had %d", len(second.Routes), len(first.Routes))
	}

	// A different fare cap is a different cache entry
	capped := planByID(start, end)
	capped.MaxFare = 500
	third, err := planner.Plan(context.Background(), capped)
	if err != nil {
		t.Fatalf("capped Plan returned error: %v", err)
	}
	if third.Cached {
		t.Error("different request parameters must bypass the cache")
	}
}
