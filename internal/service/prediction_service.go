package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/metrics"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/evacuation"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/risk"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/spread"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// maxBatchSize bounds a single batch prediction request
const maxBatchSize = 500

// ErrInvalidInput wraps validation failures of caller supplied values
var ErrInvalidInput = errors.New("invalid input")

// PredictionService runs spread projections, danger assessments and evacuation planning
type PredictionService struct {
	defaultHours []float64
	workers      int
}

// NewPredictionService creates a new prediction service
func NewPredictionService(defaultHours []float64, workers int) *PredictionService {
	if len(defaultHours) == 0 {
		defaultHours = spread.DefaultHours
	}
	return &PredictionService{defaultHours: defaultHours, workers: workers}
}

// RothermelRequest are the inputs of a single Rothermel evaluation
type RothermelRequest struct {
	FuelType         string  `json:"fuel_type"`
	WindSpeedKmh     float64 `json:"wind_speed_kmh"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	HumidityPercent  float64 `json:"humidity_percent"`
	TemperatureC     float64 `json:"temperature_c"`
	SlopeDeg         float64 `json:"slope_deg"`

	// Optional: hours for a circular fire to grow between the two areas at the head rate
	CurrentAreaHectares float64 `json:"current_area_hectares"`
	TargetAreaHectares  float64 `json:"target_area_hectares"`
}

// RothermelResponse pairs the spread result with the fuel it was computed for
type RothermelResponse struct {
	Fuel              spread.FuelModel    `json:"fuel"`
	Result            spread.SpreadResult `json:"result"`
	TimeToTargetHours *float64            `json:"time_to_target_hours,omitempty"`
}

// Rothermel evaluates surface spread for a fuel under the given weather
func (s *PredictionService) Rothermel(req RothermelRequest) (RothermelResponse, error) {
	if req.FuelType == "" {
		req.FuelType = spread.DefaultFuel
	}
	if !spread.HasFuel(req.FuelType) {
		return RothermelResponse{}, fmt.Errorf("%w: unknown fuel type %q", ErrInvalidInput, req.FuelType)
	}
	if err := validateWeather(req.WindSpeedKmh, req.HumidityPercent); err != nil {
		return RothermelResponse{}, err
	}

	result := spread.CalculateFireSpread(req.WindSpeedKmh, req.WindDirectionDeg, req.HumidityPercent, req.TemperatureC, req.SlopeDeg, req.FuelType)
	fuel := spread.AdjustMoisture(spread.Fuel(req.FuelType), req.HumidityPercent, req.TemperatureC)
	resp := RothermelResponse{Fuel: fuel, Result: result}

	if req.TargetAreaHectares > 0 {
		if req.CurrentAreaHectares < 0 {
			return RothermelResponse{}, fmt.Errorf("%w: negative area", ErrInvalidInput)
		}
		hours := spread.EstimateTimeToArea(req.CurrentAreaHectares, req.TargetAreaHectares, result.HeadRateMPerMin)
		resp.TimeToTargetHours = &hours
	}
	return resp, nil
}

// Predict projects one fire
func (s *PredictionService) Predict(req spread.PredictionRequest) (spread.Prediction, error) {
	if err := s.normalize(&req); err != nil {
		return spread.Prediction{}, err
	}

	started := time.Now()
	p := spread.Predict(req)
	metrics.ObserveStage("predict", started)

	log.Printf("[PredictionService] Fire %s: %d steps, %d threats", req.FireID, len(p.Steps), len(p.Threats))
	return p, nil
}

// PredictBatch projects many fires on the worker pool
func (s *PredictionService) PredictBatch(ctx context.Context, reqs []spread.PredictionRequest) ([]spread.Prediction, error) {
	if len(reqs) == 0 {
		return []spread.Prediction{}, nil
	}
	if len(reqs) > maxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d exceeds %d", ErrInvalidInput, len(reqs), maxBatchSize)
	}
	for i := range reqs {
		if err := s.normalize(&reqs[i]); err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
	}

	started := time.Now()
	predictions, err := spread.PredictBatch(ctx, reqs, s.workers)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("predict_batch", started)
	return predictions, nil
}

func (s *PredictionService) normalize(req *spread.PredictionRequest) error {
	if err := validatePoint(req.Center); err != nil {
		return err
	}
	req.ResolveWeather()
	if req.CurrentAreaHectares < 0 {
		return fmt.Errorf("%w: negative current area", ErrInvalidInput)
	}
	if req.FuelType != "" && !spread.HasFuel(req.FuelType) {
		return fmt.Errorf("%w: unknown fuel type %q", ErrInvalidInput, req.FuelType)
	}
	if err := validateWeather(req.WindSpeedKmh, req.HumidityPercent); err != nil {
		return err
	}
	if len(req.Hours) == 0 {
		req.Hours = append([]float64(nil), s.defaultHours...)
	}
	return nil
}

// AssessRisk computes the fire danger index
func (s *PredictionService) AssessRisk(c risk.Conditions) (risk.Assessment, error) {
	if err := validatePoint(spatial.Point{Lat: c.Latitude, Lon: c.Longitude}); err != nil {
		return risk.Assessment{}, err
	}
	if err := validateWeather(c.WindSpeedKmh, c.HumidityPercent); err != nil {
		return risk.Assessment{}, err
	}
	if c.DaysWithoutRain < 0 {
		return risk.Assessment{}, fmt.Errorf("%w: negative days without rain", ErrInvalidInput)
	}
	return risk.Assess(c), nil
}

// Forecast builds the multi-day danger outlook
func (s *PredictionService) Forecast(lat, lon float64, days int, base *risk.BaseConditions) ([]risk.DailyForecast, error) {
	if err := validatePoint(spatial.Point{Lat: lat, Lon: lon}); err != nil {
		return nil, err
	}
	if days > 16 {
		return nil, fmt.Errorf("%w: forecast limited to 16 days", ErrInvalidInput)
	}
	return risk.Forecast(lat, lon, days, base, time.Now()), nil
}

// EvacuationRequest describes a fire threatening communities
type EvacuationRequest struct {
	FireID             string             `json:"fire_id"`
	Center             spatial.Point      `json:"center"`
	SpreadDirectionDeg float64            `json:"spread_direction_deg"`
	SpreadRateMPerMin  float64            `json:"spread_rate_m_per_min"`
	Communities        []models.Community `json:"communities"`
}

// EvacuationResponse is the plan plus a clearance-time estimate per at-risk zone
type EvacuationResponse struct {
	evacuation.EvacuationPlan
	TimeEstimates map[string]evacuation.TimeEstimate `json:"time_estimates"`
}

// Evacuate plans the evacuation of the communities around a fire. Routes and
// estimates are keyed by community name, so names must be unique.
func (s *PredictionService) Evacuate(req EvacuationRequest) (EvacuationResponse, error) {
	if err := validatePoint(req.Center); err != nil {
		return EvacuationResponse{}, err
	}
	if req.SpreadRateMPerMin < 0 {
		return EvacuationResponse{}, fmt.Errorf("%w: negative spread rate", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(req.Communities))
	for _, c := range req.Communities {
		if _, dup := seen[c.Name]; dup {
			return EvacuationResponse{}, fmt.Errorf("%w: duplicate community name %q", ErrInvalidInput, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	plan := evacuation.Plan(req.FireID, req.Center, req.SpreadDirectionDeg, req.SpreadRateMPerMin, req.Communities)

	estimates := make(map[string]evacuation.TimeEstimate, len(plan.Zones))
	for _, z := range plan.Zones {
		estimates[z.Name] = evacuation.EstimateEvacuationTime(z.Population, len(plan.RoutesByCommunity[z.Name]), 0)
	}

	log.Printf("[PredictionService] Fire %s: %d communities in evacuation range", req.FireID, len(plan.Zones))
	return EvacuationResponse{EvacuationPlan: plan, TimeEstimates: estimates}, nil
}

func validatePoint(p spatial.Point) error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range (%g, %g)", ErrInvalidInput, p.Lat, p.Lon)
	}
	return nil
}

func validateWeather(windKmh, humidity float64) error {
	if windKmh < 0 {
		return fmt.Errorf("%w: negative wind speed", ErrInvalidInput)
	}
	if humidity < 0 || humidity > 100 {
		return fmt.Errorf("%w: humidity must be within 0-100", ErrInvalidInput)
	}
	return nil
}
