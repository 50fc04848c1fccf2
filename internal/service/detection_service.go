package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jengzang/firewatch-backend-go/internal/analysis"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/burned"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/impact"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/metrics"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/repository"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// DefaultAnalyzers are attached to every cluster of a run
var DefaultAnalyzers = []string{burned.AnalyzerName, impact.AnalyzerName}

var (
	// ErrNoHotspotSource is returned when a run needs FIRMS but no client is configured
	ErrNoHotspotSource = errors.New("no hotspot source configured")
	// ErrRunNotActive is returned when cancelling a run that already finished
	ErrRunNotActive = errors.New("run is not pending or running")
)

// HotspotSource fetches hotspots from a satellite product
type HotspotSource interface {
	FetchArea(ctx context.Context, bbox spatial.BBox, days int) ([]models.Hotspot, error)
	FetchCountry(ctx context.Context, iso3 string, days int) ([]models.Hotspot, error)
	Source() string
}

// DetectionConfig holds the run defaults
type DetectionConfig struct {
	DistanceKm       float64
	TimeWindow       time.Duration
	BurnedAreaMethod string
	Workers          int
	DefaultBBox      spatial.BBox
	DefaultCountry   string
	DefaultDays      int
}

// StartRunRequest describes a detection run. Hotspots, when present, are used
// as-is; otherwise they are fetched from FIRMS for Country or BBox.
type StartRunRequest struct {
	Hotspots         []models.Hotspot `json:"hotspots"`
	BBox             *spatial.BBox    `json:"bbox"`
	Country          string           `json:"country"`
	Days             int              `json:"days"`
	DistanceKm       float64          `json:"distance_km"`
	TimeWindowHours  float64          `json:"time_window_hours"`
	BurnedAreaMethod string           `json:"burned_area_method"`
	Analyzers        []string         `json:"analyzers"`
}

// DetectionService ingests hotspots, clusters them and persists the results
type DetectionService struct {
	hotspots *repository.HotspotRepository
	runs     *repository.RunRepository
	clusters *repository.ClusterRepository
	source   HotspotSource // may be nil
	lookup   vegetation.Lookup
	cfg      DetectionConfig

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	hotspots *repository.HotspotRepository,
	runs *repository.RunRepository,
	clusters *repository.ClusterRepository,
	source HotspotSource,
	lookup vegetation.Lookup,
	cfg DetectionConfig,
) *DetectionService {
	if lookup == nil {
		lookup = vegetation.NewStaticLookup()
	}
	if cfg.DistanceKm <= 0 {
		cfg.DistanceKm = clustering.DefaultDistanceKm
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 1
	}
	return &DetectionService{
		hotspots: hotspots,
		runs:     runs,
		clusters: clusters,
		source:   source,
		lookup:   lookup,
		cfg:      cfg,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// ClusterResult is the stateless clustering response
type ClusterResult struct {
	Clusters   []*clustering.FireCluster `json:"clusters"`
	Statistics clustering.Statistics     `json:"statistics"`
}

// ClusterHotspots clusters a hotspot batch without storing anything
func (s *DetectionService) ClusterHotspots(hotspots []models.Hotspot, distanceKm, timeWindowHours float64) ClusterResult {
	opts := s.clusterOptions(distanceKm, timeWindowHours)

	started := time.Now()
	clusters := clustering.Cluster(hotspots, opts)
	metrics.ObserveStage("cluster", started)

	return ClusterResult{Clusters: clusters, Statistics: clustering.Summarize(clusters)}
}

func (s *DetectionService) clusterOptions(distanceKm, timeWindowHours float64) clustering.Options {
	opts := clustering.Options{DistanceKm: s.cfg.DistanceKm, TimeWindow: s.cfg.TimeWindow}
	if distanceKm > 0 {
		opts.DistanceKm = distanceKm
	}
	if timeWindowHours > 0 {
		opts.TimeWindow = time.Duration(timeWindowHours * float64(time.Hour))
	}
	return opts
}

// StartRun validates the request, records a pending run and processes it in the background
func (s *DetectionService) StartRun(req StartRunRequest, createdBy string) (*models.DetectionRun, error) {
	run, analyzers, err := s.prepare(req, createdBy)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.forget(run.ID)
		s.execute(ctx, run, req, analyzers)
	}()

	return run, nil
}

// RunSync records and processes a run in the caller's goroutine
func (s *DetectionService) RunSync(ctx context.Context, req StartRunRequest, createdBy string) (*models.DetectionRun, error) {
	run, analyzers, err := s.prepare(req, createdBy)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()
	defer s.forget(run.ID)

	s.execute(ctx, run, req, analyzers)
	return s.runs.GetByID(run.ID)
}

func (s *DetectionService) prepare(req StartRunRequest, createdBy string) (*models.DetectionRun, []analysis.ClusterAnalyzer, error) {
	if len(req.Hotspots) == 0 && s.source == nil {
		return nil, nil, ErrNoHotspotSource
	}

	names := req.Analyzers
	if len(names) == 0 {
		names = DefaultAnalyzers
	}
	method := req.BurnedAreaMethod
	if method == "" {
		method = s.cfg.BurnedAreaMethod
	}
	analyzers, err := analysis.BuildAnalyzers(names, analysis.Params{
		BurnedAreaMethod: method,
		Vegetation:       s.lookup,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.DistanceKm < 0 || req.TimeWindowHours < 0 {
		return nil, nil, fmt.Errorf("%w: distance and time window must not be negative", ErrInvalidInput)
	}

	opts := s.clusterOptions(req.DistanceKm, req.TimeWindowHours)
	run := &models.DetectionRun{
		ID:               uuid.NewString(),
		Status:           models.RunStatusPending,
		DistanceKm:       opts.DistanceKm,
		TimeWindowHours:  opts.TimeWindow.Hours(),
		BurnedAreaMethod: string(burned.ParseMethod(method)),
		CreatedBy:        createdBy,
	}
	if len(req.Hotspots) > 0 {
		run.Source = models.RunSourceUpload
		run.SourceRef = createdBy
	} else {
		run.Source = models.RunSourceFIRMS
		run.SourceRef = s.source.Source()
	}

	if err := s.runs.Create(run); err != nil {
		return nil, nil, fmt.Errorf("failed to create run: %w", err)
	}

	log.Printf("[DetectionService] Created run %s (source: %s)", run.ID, run.Source)
	return run, analyzers, nil
}

func (s *DetectionService) forget(runID string) {
	s.mu.Lock()
	if cancel, ok := s.cancels[runID]; ok {
		cancel()
		delete(s.cancels, runID)
	}
	s.mu.Unlock()
}

// execute drives a run to a terminal state
func (s *DetectionService) execute(ctx context.Context, run *models.DetectionRun, req StartRunRequest, analyzers []analysis.ClusterAnalyzer) {
	if err := s.runs.MarkAsRunning(run.ID); err != nil {
		log.Printf("[DetectionService] Run %s could not start: %v", run.ID, err)
		return
	}
	log.Printf("[DetectionService] Run %s started", run.ID)

	err := s.process(ctx, run, req, analyzers)
	switch {
	case err == nil:
		metrics.RecordRun(models.RunStatusCompleted)
		log.Printf("[DetectionService] Run %s completed: %d hotspots, %d clusters, %.1f ha",
			run.ID, run.TotalHotspots, run.ClusterCount, run.TotalAreaHectares)
	case ctx.Err() != nil:
		// CancelRun has usually recorded the state already; shutdown has not
		metrics.RecordRun(models.RunStatusCancelled)
		log.Printf("[DetectionService] Run %s stopped: %v", run.ID, ctx.Err())
		if markErr := s.runs.MarkAsCancelled(run.ID); markErr != nil && !errors.Is(markErr, repository.ErrNotFound) {
			log.Printf("[DetectionService] Failed to mark run %s as cancelled: %v", run.ID, markErr)
		}
	default:
		metrics.RecordRun(models.RunStatusFailed)
		log.Printf("[DetectionService] Run %s failed: %v", run.ID, err)
		if markErr := s.runs.MarkAsFailed(run.ID, err.Error()); markErr != nil && !errors.Is(markErr, repository.ErrNotFound) {
			log.Printf("[DetectionService] Failed to mark run %s as failed: %v", run.ID, markErr)
		}
	}
}

func (s *DetectionService) process(ctx context.Context, run *models.DetectionRun, req StartRunRequest, analyzers []analysis.ClusterAnalyzer) error {
	hotspots, err := s.collect(ctx, req)
	if err != nil {
		return err
	}
	s.progress(run.ID, 20)

	inserted, err := s.hotspots.InsertBatch(hotspots, run.ID)
	if err != nil {
		return fmt.Errorf("failed to store hotspots: %w", err)
	}
	metrics.RecordIngest(run.Source, len(hotspots), inserted)
	s.progress(run.ID, 30)

	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	opts := clustering.Options{DistanceKm: run.DistanceKm, TimeWindow: time.Duration(run.TimeWindowHours * float64(time.Hour))}
	clusters := clustering.Cluster(hotspots, opts)
	metrics.ObserveStage("cluster", started)
	metrics.RecordClusters(len(clusters))
	s.progress(run.ID, 50)

	started = time.Now()
	records, failed, err := s.analyze(ctx, run.ID, clusters, analyzers)
	if err != nil {
		return err
	}
	metrics.ObserveStage("analyze", started)
	if failed > 0 {
		log.Printf("[DetectionService] Run %s: %d cluster analyses failed", run.ID, failed)
	}
	s.progress(run.ID, 90)

	if err := s.clusters.SaveBatch(records); err != nil {
		return fmt.Errorf("failed to store clusters: %w", err)
	}

	total := 0.0
	for _, r := range records {
		total += r.BurnedAreaHectares
	}
	summary, err := json.Marshal(struct {
		clustering.Statistics
		FailedAnalyses int      `json:"failed_analyses"`
		Analyzers      []string `json:"analyzers"`
	}{clustering.Summarize(clusters), failed, analyzerNames(analyzers)})
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	run.TotalHotspots = len(hotspots)
	run.NewHotspots = inserted
	run.ClusterCount = len(clusters)
	run.TotalAreaHectares = total
	run.ResultSummary = string(summary)

	if err := s.runs.MarkAsCompleted(run); err != nil {
		if errors.Is(err, repository.ErrNotFound) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

func (s *DetectionService) collect(ctx context.Context, req StartRunRequest) ([]models.Hotspot, error) {
	if len(req.Hotspots) > 0 {
		return req.Hotspots, nil
	}

	days := req.Days
	if days <= 0 {
		days = s.cfg.DefaultDays
	}

	started := time.Now()
	defer metrics.ObserveStage("fetch", started)

	country := req.Country
	if country == "" && req.BBox == nil {
		country = s.cfg.DefaultCountry
	}
	if country != "" {
		hotspots, err := s.source.FetchCountry(ctx, country, days)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch hotspots for %s: %w", country, err)
		}
		return hotspots, nil
	}

	bbox := s.cfg.DefaultBBox
	if req.BBox != nil {
		bbox = *req.BBox
	}
	hotspots, err := s.source.FetchArea(ctx, bbox, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotspots: %w", err)
	}
	return hotspots, nil
}

// analyze runs every analyzer over every cluster on the worker pool. A failing
// analyzer leaves its fields empty on that cluster and is counted.
func (s *DetectionService) analyze(ctx context.Context, runID string, clusters []*clustering.FireCluster, analyzers []analysis.ClusterAnalyzer) ([]models.ClusterRecord, int, error) {
	outcomes, err := analysis.Map(ctx, s.cfg.Workers, clusters, func(ctx context.Context, c *clustering.FireCluster) (models.ClusterRecord, error) {
		record := c.Record(runID)
		var errs []error
		for _, a := range analyzers {
			result, err := a.Analyze(ctx, c)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", a.GetName(), err))
				continue
			}
			result.Apply(&record)
		}
		return record, errors.Join(errs...)
	})
	if err != nil {
		return nil, 0, err
	}

	records := make([]models.ClusterRecord, len(outcomes))
	failed := 0
	for i, o := range outcomes {
		records[i] = o.Value
		if o.Err != nil {
			failed++
			log.Printf("[DetectionService] Cluster %s analysis failed: %v", clusters[i].ID, o.Err)
		}
	}
	return records, failed, nil
}

func (s *DetectionService) progress(runID string, percent int) {
	if err := s.runs.UpdateProgress(runID, percent); err != nil {
		log.Printf("[DetectionService] Failed to update progress of run %s: %v", runID, err)
	}
}

func analyzerNames(analyzers []analysis.ClusterAnalyzer) []string {
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.GetName()
	}
	return names
}

// GetRun retrieves a run by ID
func (s *DetectionService) GetRun(id string) (*models.DetectionRun, error) {
	return s.runs.GetByID(id)
}

// ListRuns retrieves runs with optional filters
func (s *DetectionService) ListRuns(filter models.RunFilter) ([]*models.DetectionRun, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.runs.List(filter)
}

// ListClusters retrieves the cluster snapshots of a run
func (s *DetectionService) ListClusters(runID string) ([]models.ClusterRecord, error) {
	if _, err := s.runs.GetByID(runID); err != nil {
		return nil, err
	}
	return s.clusters.ListByRun(runID)
}

// RunGeoJSON exports the burned-area polygons of a run, or the cluster centre
// when no polygon was estimated
func (s *DetectionService) RunGeoJSON(runID string) (spatial.FeatureCollection, error) {
	records, err := s.ListClusters(runID)
	if err != nil {
		return spatial.FeatureCollection{}, err
	}

	features := make([]spatial.Feature, 0, len(records))
	for _, r := range records {
		props := map[string]interface{}{
			"cluster_id":           r.ClusterID,
			"hotspot_count":        r.HotspotCount,
			"intensity":            r.Intensity,
			"burned_area_hectares": r.BurnedAreaHectares,
			"biome":                r.Biome,
			"co2_tons":             r.CO2Tons,
		}

		var ring [][2]float64
		if r.PolygonJSON != "" {
			if err := json.Unmarshal([]byte(r.PolygonJSON), &ring); err != nil {
				log.Printf("[DetectionService] Cluster %s has an invalid polygon: %v", r.ClusterID, err)
				ring = nil
			}
		}
		if len(ring) < 3 {
			features = append(features, spatial.PointFeature(spatial.Point{Lat: r.CenterLat, Lon: r.CenterLon}, props))
			continue
		}

		points := make([]spatial.Point, len(ring))
		for i, p := range ring {
			points[i] = spatial.Point{Lat: p[0], Lon: p[1]}
		}
		features = append(features, spatial.PolygonFeature(points, props))
	}

	return spatial.NewFeatureCollection(features...), nil
}

// CancelRun stops a pending or running run
func (s *DetectionService) CancelRun(id string) error {
	run, err := s.runs.GetByID(id)
	if err != nil {
		return err
	}
	if run.IsTerminal() {
		return ErrRunNotActive
	}

	if err := s.runs.MarkAsCancelled(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRunNotActive
		}
		return err
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
	}
	s.mu.Unlock()

	log.Printf("[DetectionService] Run %s cancelled", id)
	return nil
}

// Wait blocks until every background run has finished
func (s *DetectionService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels the background runs and waits for them
func (s *DetectionService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.Wait()
}
