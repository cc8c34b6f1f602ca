package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/AvigateGroup/avigate-api-sub004/internal/config"
	"github.com/AvigateGroup/avigate-api-sub004/internal/models"
	"github.com/AvigateGroup/avigate-api-sub004/internal/repository"
	"github.com/AvigateGroup/avigate-api-sub004/internal/spatial"
)

// PlannerService composes resolution, graph search, fare enrichment,
// confidence scoring and the external fallback into ranked route plans.
// Each request is stateless; the only shared state is the TTL response
// cache, which holds assembled values, never the source-of-truth graph.
type PlannerService struct {
	locations *LocationService
	graph     *GraphService
	fares     *FareService
	fallback  *FallbackService
	scorer    *ConfidenceScorer

	locRepo   *repository.LocationRepository
	routeRepo *repository.RouteRepository

	cache *gocache.Cache
	cfg   *config.Config
}

// NewPlannerService creates a new planner. cache may be nil to disable
// response caching (tests do this).
func NewPlannerService(
	locations *LocationService,
	graph *GraphService,
	fares *FareService,
	fallback *FallbackService,
	scorer *ConfidenceScorer,
	locRepo *repository.LocationRepository,
	routeRepo *repository.RouteRepository,
	cache *gocache.Cache,
	cfg *config.Config,
) *PlannerService {
	return &PlannerService{
		locations: locations,
		graph:     graph,
		fares:     fares,
		fallback:  fallback,
		scorer:    scorer,
		locRepo:   locRepo,
		routeRepo: routeRepo,
		cache:     cache,
		cfg:       cfg,
	}
}

// Plan produces ranked route plans for a request. Only ErrUnresolvable
// comes back as an error; every lesser failure degrades confidence.
func (p *PlannerService) Plan(ctx context.Context, req models.PlanRequest) (*models.PlanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PlanDeadline)
	defer cancel()

	start, end, err := p.resolveEndpoints(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: deadline exceeded", ErrUnresolvable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	cacheKey := planCacheKey(start.ID, end.ID, req.PreferredModes, req.MaxFare)
	if p.cache != nil {
		if cached, ok := p.cache.Get(cacheKey); ok {
			result := cached.(*models.PlanResult)
			return &models.PlanResult{
				Start:  result.Start,
				End:    result.End,
				Routes: result.Routes,
				Cached: true,
			}, nil
		}
	}

	routes, err := p.assemble(ctx, req, start, end)
	if err != nil {
		return nil, err
	}

	routes = p.finalize(req, start, end, routes)
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: no plan survived the fare filter", ErrUnresolvable)
	}

	result := &models.PlanResult{Start: start, End: end, Routes: routes}
	if p.cache != nil {
		p.cache.Set(cacheKey, result, p.cfg.ResponseCacheTTL)
	}

	return result, nil
}

// resolveEndpoints runs both location resolutions concurrently and joins
// them; this is the pipeline's only mandatory synchronization point.
func (p *PlannerService) resolveEndpoints(ctx context.Context, req models.PlanRequest) (*models.Location, *models.Location, error) {
	var wg sync.WaitGroup
	var start, end *models.Location
	var startErr, endErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		start, startErr = p.locations.Resolve(ctx, req.Start)
	}()
	go func() {
		defer wg.Done()
		end, endErr = p.locations.Resolve(ctx, req.End)
	}()
	wg.Wait()

	if startErr != nil {
		return nil, nil, fmt.Errorf("start: %w", startErr)
	}
	if endErr != nil {
		return nil, nil, fmt.Errorf("end: %w", endErr)
	}

	return start, end, nil
}

// assemble walks the fallback tiers in order: direct routes, segment
// chains, provider geometry, straight-line heuristic. The first tier that
// yields candidates wins.
func (p *PlannerService) assemble(ctx context.Context, req models.PlanRequest, start, end *models.Location) ([]models.EnhancedRoute, error) {
	names := newNameCache(p.locRepo)
	names.put(start)
	names.put(end)

	direct, err := p.graph.FindDirect(ctx, start.ID, end.ID, req.PreferredModes, p.cfg.MaxRoutesReturned)
	if err != nil {
		log.Printf("Direct route lookup failed: %v", err)
	}

	var candidates []models.EnhancedRoute
	for i := range direct {
		er, err := p.buildFromRoute(ctx, &direct[i], names)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: deadline exceeded", ErrUnresolvable)
			}
			log.Printf("Failed to build plan from route %d: %v", direct[i].ID, err)
			continue
		}
		candidates = append(candidates, *er)

		go p.bumpUsage(direct[i].ID)
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	path, err := p.graph.FindViaSegments(ctx, start.ID, end.ID, req.PreferredModes)
	if err != nil {
		log.Printf("Segment composition failed: %v", err)
	}
	if path != nil {
		er, err := p.buildFromSegments(ctx, path, names)
		if err == nil {
			return []models.EnhancedRoute{*er}, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: deadline exceeded", ErrUnresolvable)
		}
		log.Printf("Failed to build plan from segments: %v", err)
	}

	// No graph path. Not an error; fall through to geometry.
	return []models.EnhancedRoute{*p.buildGeometric(ctx, req, start, end)}, nil
}

// nameCache memoizes location lookups while one plan is assembled.
type nameCache struct {
	repo *repository.LocationRepository
	byID map[int64]*models.Location
}

func newNameCache(repo *repository.LocationRepository) *nameCache {
	return &nameCache{repo: repo, byID: make(map[int64]*models.Location)}
}

func (n *nameCache) put(l *models.Location) {
	if l != nil {
		n.byID[l.ID] = l
	}
}

func (n *nameCache) get(ctx context.Context, id int64) *models.Location {
	if l, ok := n.byID[id]; ok {
		return l
	}
	l, err := n.repo.GetByID(ctx, id)
	if err != nil || l == nil {
		return nil
	}
	n.byID[id] = l
	return l
}

func (p *PlannerService) buildFromRoute(ctx context.Context, rt *models.Route, names *nameCache) (*models.EnhancedRoute, error) {
	er := &models.EnhancedRoute{
		Source:  "graph",
		RouteID: rt.ID,
		Name:    rt.Name,
	}

	for i := range rt.Steps {
		step := &rt.Steps[i]

		est, err := p.fares.Enrich(ctx, step)
		if err != nil {
			return nil, err
		}

		from := names.get(ctx, step.FromLocationID)
		to := names.get(ctx, step.ToLocationID)

		es := models.EnhancedRouteStep{
			Position:         i + 1,
			TransportMode:    step.TransportMode,
			Instructions:     step.Instructions,
			EstimatedFareMin: est.FareMin,
			EstimatedFareMax: est.FareMax,
			DurationMinutes:  est.DurationMinutes,
			AccuracyScore:    est.AccuracyScore,
			PickupPoint:      step.PickupPoint,
			DropoffPoint:     step.DropoffPoint,
			StepID:           step.ID,
		}
		fillEndpoints(&es, from, to)

		es.DataAvailability = p.scorer.Score(StepProvenance{
			FromGraph:     true,
			Verified:      rt.IsVerified,
			RecentReports: est.RecentReports,
		})

		if step.TransportMode == models.ModeWalking && from != nil && to != nil {
			es.WalkingDirections = p.walkingDirections(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
		}

		er.Steps = append(er.Steps, es)
	}

	sumRouteTotals(er)
	return er, nil
}

func (p *PlannerService) buildFromSegments(ctx context.Context, path *models.ComposedPath, names *nameCache) (*models.EnhancedRoute, error) {
	er := &models.EnhancedRoute{
		Source: "segments",
		Name:   "Connecting route",
	}

	for i := range path.Segments {
		seg := &path.Segments[i]

		from := names.get(ctx, seg.StartLocationID)
		to := names.get(ctx, seg.EndLocationID)

		mode := models.ModeBus
		if len(seg.TransportModes) > 0 {
			mode = seg.TransportModes[0]
		}

		es := models.EnhancedRouteStep{
			Position:         i + 1,
			TransportMode:    mode,
			Instructions:     segmentInstructions(seg, from, to),
			EstimatedFareMin: seg.FareMin,
			EstimatedFareMax: seg.FareMax,
			DurationMinutes:  seg.DurationMinutes,
			DistanceKm:       seg.DistanceKm,
		}
		fillEndpoints(&es, from, to)
		if len(seg.TransportModes) > 1 {
			es.AlternativeTransport = seg.TransportModes[1:]
		}

		es.DataAvailability = p.scorer.Score(StepProvenance{
			FromGraph: true,
			Verified:  seg.IsVerified,
			// Segments carry no per-step feedback; score on verification alone.
		})

		er.Steps = append(er.Steps, es)
	}

	sumRouteTotals(er)
	return er, nil
}

// buildGeometric is the last tier: provider directions, then raw
// haversine arithmetic when the provider fails too.
func (p *PlannerService) buildGeometric(ctx context.Context, req models.PlanRequest, start, end *models.Location) *models.EnhancedRoute {
	distanceKm := spatial.HaversineDistanceKm(start.Latitude, start.Longitude, end.Latitude, end.Longitude)
	walkable := spatial.IsWalkable(distanceKm, p.cfg.WalkableDistanceKm)

	mode := models.ModeTaxi
	providerMode := "driving"
	if walkable {
		mode = models.ModeWalking
		providerMode = "walking"
	}
	if len(req.PreferredModes) == 1 {
		mode = req.PreferredModes[0]
	}

	geo := p.fallback.GetDirections(ctx, start.Latitude, start.Longitude, end.Latitude, end.Longitude, providerMode)

	source := "provider"
	if geo.Fallback {
		source = "heuristic"
	}

	es := models.EnhancedRouteStep{
		Position:        1,
		TransportMode:   mode,
		Instructions:    geometricInstructions(start, end, mode),
		DurationMinutes: geo.DurationMinutes,
		DistanceKm:      geo.DistanceKm,
		FromName:        start.Name,
		ToName:          end.Name,
		FromLatitude:    start.Latitude,
		FromLongitude:   start.Longitude,
		ToLatitude:      end.Latitude,
		ToLongitude:     end.Longitude,
	}

	es.DataAvailability = p.scorer.Score(StepProvenance{
		FromGraph:         false,
		GeometricFallback: true,
		HeuristicOnly:     geo.Fallback,
	})

	es.WalkingDirections = p.walkingDirections(start.Latitude, start.Longitude, end.Latitude, end.Longitude)
	es.AlternativeOptions = &models.AlternativeOptions{
		AskLocalsPhrases: askLocalsPhrases(end.Name),
		Walkable:         walkable,
	}

	er := &models.EnhancedRoute{
		Source: source,
		Name:   fmt.Sprintf("%s to %s", start.Name, end.Name),
		Steps:  []models.EnhancedRouteStep{es},
	}
	sumRouteTotals(er)
	return er
}

// finalize applies the fare cap, appends the last-mile walking leg when
// the plan stops short of the literal destination, ranks the candidates
// and trims to the top K.
func (p *PlannerService) finalize(req models.PlanRequest, start, end *models.Location, routes []models.EnhancedRoute) []models.EnhancedRoute {
	destLat, destLng := end.Latitude, end.Longitude
	if req.End.HasCoordinates() {
		destLat, destLng = *req.End.Latitude, *req.End.Longitude
	}

	var kept []models.EnhancedRoute
	for i := range routes {
		r := routes[i]

		if req.MaxFare > 0 && r.TotalEstimatedFareMin > req.MaxFare {
			continue
		}

		p.attachFinalLeg(&r, end, destLat, destLng)
		r.OverallConfidence = overallConfidence(r.Steps)
		kept = append(kept, r)
	}

	rankRoutes(kept)

	if len(kept) > p.cfg.MaxRoutesReturned {
		kept = kept[:p.cfg.MaxRoutesReturned]
	}
	return kept
}

// attachFinalLeg handles plans whose last stop is not the requested
// destination: inside walking range a synthesized walking leg is
// appended, beyond it the gap is only reported.
func (p *PlannerService) attachFinalLeg(r *models.EnhancedRoute, end *models.Location, destLat, destLng float64) {
	if len(r.Steps) == 0 {
		return
	}

	last := r.Steps[len(r.Steps)-1]
	gapKm := spatial.HaversineDistanceKm(last.ToLatitude, last.ToLongitude, destLat, destLng)

	// Treat anything under ~50 m as arrival
	if gapKm < 0.05 {
		return
	}

	walkable := spatial.IsWalkable(gapKm, p.cfg.WalkableDistanceKm)
	duration := spatial.WalkingDurationMinutes(gapKm, p.cfg.WalkingSpeedKmh)

	r.FinalDestinationInfo = &models.FinalDestinationInfo{
		Name:            end.Name,
		DistanceKm:      gapKm,
		Walkable:        walkable,
		DurationMinutes: duration,
	}

	if !walkable {
		return
	}

	es := models.EnhancedRouteStep{
		Position:        len(r.Steps) + 1,
		TransportMode:   models.ModeWalking,
		Instructions:    fmt.Sprintf("Walk the remaining %.1f km to %s", gapKm, end.Name),
		DurationMinutes: duration,
		DistanceKm:      gapKm,
		FromName:        last.ToName,
		ToName:          end.Name,
		FromLatitude:    last.ToLatitude,
		FromLongitude:   last.ToLongitude,
		ToLatitude:      destLat,
		ToLongitude:     destLng,
	}
	es.DataAvailability = p.scorer.Score(StepProvenance{GeometricFallback: true})
	es.WalkingDirections = p.walkingDirections(last.ToLatitude, last.ToLongitude, destLat, destLng)
	es.AlternativeOptions = &models.AlternativeOptions{
		AskLocalsPhrases: askLocalsPhrases(end.Name),
		Walkable:         true,
	}

	r.Steps = append(r.Steps, es)
	sumRouteTotals(r)
}

// rankRoutes orders candidates by a weighted score of confidence, total
// fare and total duration, best first.
func rankRoutes(routes []models.EnhancedRoute) {
	if len(routes) < 2 {
		for i := range routes {
			routes[i].Score = scoreAgainst(routes[i], 1, 1)
		}
		return
	}

	maxFare, maxDuration := 1.0, 1.0
	for _, r := range routes {
		if r.TotalEstimatedFareMax > maxFare {
			maxFare = r.TotalEstimatedFareMax
		}
		if float64(r.TotalDurationMinutes) > maxDuration {
			maxDuration = float64(r.TotalDurationMinutes)
		}
	}

	for i := range routes {
		routes[i].Score = scoreAgainst(routes[i], maxFare, maxDuration)
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Score > routes[j].Score
	})
}

func scoreAgainst(r models.EnhancedRoute, maxFare, maxDuration float64) float64 {
	confidence := float64(ConfidenceRank(r.OverallConfidence)) / 2.0
	fare := 1.0 - r.TotalEstimatedFareMax/maxFare
	duration := 1.0 - float64(r.TotalDurationMinutes)/maxDuration
	return 0.5*confidence + 0.25*fare + 0.25*duration
}

func (p *PlannerService) walkingDirections(fromLat, fromLng, toLat, toLng float64) *models.WalkingDirections {
	distanceKm := spatial.HaversineDistanceKm(fromLat, fromLng, toLat, toLng)
	bearing := spatial.Bearing(fromLat, fromLng, toLat, toLng)
	return &models.WalkingDirections{
		DistanceKm:        distanceKm,
		DurationMinutes:   spatial.WalkingDurationMinutes(distanceKm, p.cfg.WalkingSpeedKmh),
		Bearing:           bearing,
		CardinalDirection: spatial.CardinalDirection(bearing),
	}
}

func (p *PlannerService) bumpUsage(routeID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.routeRepo.IncrementUsage(ctx, routeID); err != nil {
		log.Printf("Failed to bump usage for route %d: %v", routeID, err)
	}
}

func fillEndpoints(es *models.EnhancedRouteStep, from, to *models.Location) {
	if from != nil {
		es.FromName = from.Name
		es.FromLatitude = from.Latitude
		es.FromLongitude = from.Longitude
	}
	if to != nil {
		es.ToName = to.Name
		es.ToLatitude = to.Latitude
		es.ToLongitude = to.Longitude
	}
	if es.DistanceKm == 0 && from != nil && to != nil {
		es.DistanceKm = spatial.HaversineDistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	}
}

func sumRouteTotals(er *models.EnhancedRoute) {
	er.TotalEstimatedFareMin = 0
	er.TotalEstimatedFareMax = 0
	er.TotalDurationMinutes = 0
	er.TotalDistanceKm = 0
	for _, s := range er.Steps {
		er.TotalEstimatedFareMin += s.EstimatedFareMin
		er.TotalEstimatedFareMax += s.EstimatedFareMax
		er.TotalDurationMinutes += s.DurationMinutes
		er.TotalDistanceKm += s.DistanceKm
	}
}

// overallConfidence is the weakest step confidence: a route is only as
// trustworthy as its shakiest leg.
func overallConfidence(steps []models.EnhancedRouteStep) string {
	overall := models.ConfidenceHigh
	rank := ConfidenceRank(overall)
	for _, s := range steps {
		if r := ConfidenceRank(s.DataAvailability.Confidence); r < rank {
			rank = r
			overall = s.DataAvailability.Confidence
		}
	}
	if len(steps) == 0 {
		return models.ConfidenceLow
	}
	return overall
}

func segmentInstructions(seg *models.RouteSegment, from, to *models.Location) string {
	fromName, toName := "the start", "the next stop"
	if from != nil {
		fromName = from.Name
	}
	if to != nil {
		toName = to.Name
	}
	mode := "a vehicle"
	if len(seg.TransportModes) > 0 {
		mode = "a " + seg.TransportModes[0]
	}
	return fmt.Sprintf("Board %s at %s heading to %s", mode, fromName, toName)
}

func geometricInstructions(start, end *models.Location, mode string) string {
	if mode == models.ModeWalking {
		return fmt.Sprintf("Walk from %s to %s", start.Name, end.Name)
	}
	return fmt.Sprintf("Take a %s from %s to %s", mode, start.Name, end.Name)
}

// askLocalsPhrases gives the rider something to say when no route data
// exists. English and pidgin cover the common cases.
func askLocalsPhrases(destination string) []string {
	return []string{
		fmt.Sprintf("Please, how can I get to %s?", destination),
		fmt.Sprintf("Abeg, which bus dey go %s?", destination),
		fmt.Sprintf("Where can I enter keke or okada going to %s?", destination),
	}
}

func planCacheKey(startID, endID int64, modes []string, maxFare float64) string {
	sorted := make([]string, len(modes))
	copy(sorted, modes)
	sort.Strings(sorted)
	return fmt.Sprintf("plan:%d:%d:%s:%.0f", startID, endID, strings.Join(sorted, ","), maxFare)
}
