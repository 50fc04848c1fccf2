package spread

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/analysis"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/burned"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/evacuation"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// DefaultHours are the horizons projected when none are requested
var DefaultHours = []float64{1, 3, 6}

const (
	centerLag       = 0.3 // share of the spread distance the centre moves
	maxConfidence   = 0.95
	minConfidence   = 0.3
	confidenceDecay = 0.1 // per hour
)

// PredictionRequest describes the current state of a fire and the weather driving it
type PredictionRequest struct {
	FireID              string             `json:"fire_id"`
	Center              spatial.Point      `json:"center"`
	CurrentAreaHectares float64            `json:"current_area_hectares"`
	WindSpeedKmh        float64            `json:"wind_speed_kmh"`
	WindDirectionDeg    float64            `json:"wind_direction_deg"` // direction the fire is pushed towards
	HumidityPercent     float64            `json:"humidity_percent"`
	TemperatureC        float64            `json:"temperature_c"`
	SlopeDeg            float64            `json:"slope_deg"`
	FuelType            string             `json:"fuel_type"`
	Hours               []float64          `json:"hours"`
	Communities         []models.Community `json:"communities,omitempty"`

	// Weather, when set, replaces the scalar weather fields above.
	// Otherwise WeatherSeries, when non-empty, is averaged and applied.
	Weather       *models.WeatherReading  `json:"weather,omitempty"`
	WeatherSeries []models.WeatherReading `json:"weather_series,omitempty"`

	// IssuedAt anchors step timestamps; zero means now
	IssuedAt time.Time `json:"-"`
}

// ApplyWeather copies an observation onto the request. A zero ObservedAt
// leaves IssuedAt untouched.
func (r *PredictionRequest) ApplyWeather(w models.WeatherReading) {
	r.WindSpeedKmh = w.WindSpeedKmh
	r.WindDirectionDeg = w.WindDirectionDeg
	r.HumidityPercent = w.HumidityPercent
	r.TemperatureC = w.TemperatureC
	if r.IssuedAt.IsZero() && !w.ObservedAt.IsZero() {
		r.IssuedAt = w.ObservedAt
	}
}

// ResolveWeather applies Weather or the averaged WeatherSeries, then clears
// both so a second call is a no-op.
func (r *PredictionRequest) ResolveWeather() {
	switch {
	case r.Weather != nil:
		r.ApplyWeather(*r.Weather)
	case len(r.WeatherSeries) > 0:
		r.ApplyWeather(models.AverageWeather(r.WeatherSeries))
	}
	r.Weather, r.WeatherSeries = nil, nil
}

// Step is the projected fire state at one horizon
type Step struct {
	TimeHours          float64         `json:"time_hours"`
	Timestamp          time.Time       `json:"timestamp"`
	Center             spatial.Point   `json:"center"`
	AreaHectares       float64         `json:"predicted_area_hectares"`
	PerimeterKm        float64         `json:"predicted_perimeter_km"`
	Polygon            []spatial.Point `json:"polygon"`
	SpreadDirectionDeg float64         `json:"spread_direction_degrees"`
	SpreadRateMPerMin  float64         `json:"spread_rate_m_per_min"`
	Confidence         float64         `json:"confidence"`
}

// Feature encodes the step polygon as GeoJSON
func (s Step) Feature() spatial.Feature {
	return spatial.PolygonFeature(s.Polygon, map[string]interface{}{
		"time_hours":    s.TimeHours,
		"area_hectares": stats.Round(s.AreaHectares, 2),
		"confidence":    stats.Round(s.Confidence, 2),
	})
}

// Threat is a community endangered by the projected spread
type Threat struct {
	Type                  string        `json:"type"`
	Name                  string        `json:"name"`
	Location              spatial.Point `json:"location"`
	DistanceKm            float64       `json:"distance_km"`
	EstimatedArrivalHours *float64      `json:"estimated_arrival_hours"`
	Population            int           `json:"population"`
	InsideFootprint       bool          `json:"inside_footprint"`
	EvacuationRecommended bool          `json:"evacuation_recommended"`
	Priority              string        `json:"priority"`
}

// Conditions echoes the weather used for a prediction
type Conditions struct {
	WindSpeedKmh     float64 `json:"wind_speed_kmh"`
	WindDirectionDeg float64 `json:"wind_direction_degrees"`
	HumidityPercent  float64 `json:"humidity_percent"`
	TemperatureC     float64 `json:"temperature_celsius"`
	SlopeDeg         float64 `json:"slope_degrees"`
	FuelType         string  `json:"fuel_type"`
}

// Prediction is the projected growth of one fire
type Prediction struct {
	FireID              string        `json:"fire_id"`
	IssuedAt            time.Time     `json:"prediction_timestamp"`
	CurrentCenter       spatial.Point `json:"current_center"`
	CurrentAreaHectares float64       `json:"current_area_hectares"`
	Conditions          Conditions    `json:"conditions"`
	Steps               []Step        `json:"predictions"`
	Threats             []Threat      `json:"threats"`
}

// FeatureCollection encodes every step as GeoJSON
func (p Prediction) FeatureCollection() spatial.FeatureCollection {
	features := make([]spatial.Feature, len(p.Steps))
	for i, s := range p.Steps {
		features[i] = s.Feature()
	}
	return spatial.NewFeatureCollection(features...)
}

// Predict projects the fire to each requested horizon. Horizons are sorted and
// de-duplicated, negative ones dropped; a 0h horizon is the current state. The
// centre advances downwind by a fraction of the spread distance, the area never
// shrinks between steps and confidence decays linearly with the horizon.
func Predict(req PredictionRequest) Prediction {
	req.ResolveWeather()
	issued := req.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	fuel := req.FuelType
	if fuel == "" {
		fuel = DefaultFuel
	}

	rate := SimpleSpreadRate(req.WindSpeedKmh, req.HumidityPercent, req.TemperatureC, req.SlopeDeg, fuel)
	if !finite(rate) || rate < 0 {
		rate = 0
	}
	elongation := 1.5 + math.Max(req.WindSpeedKmh, 0)/50
	windDir := req.WindDirectionDeg
	currentArea := math.Max(req.CurrentAreaHectares, 0)

	steps := make([]Step, 0, len(req.Hours))
	prevArea := currentArea
	for _, h := range normalizeHours(req.Hours) {
		distanceKm := rate * 60 * h / 1000
		center := spatial.DestinationPoint(req.Center.Lat, req.Center.Lon, distanceKm*centerLag, req.WindDirectionDeg)

		area := math.Max(currentArea*(1+distanceKm), prevArea)
		prevArea = area

		steps = append(steps, Step{
			TimeHours:          h,
			Timestamp:          issued.Add(time.Duration(h * float64(time.Hour))),
			Center:             center,
			AreaHectares:       area,
			PerimeterKm:        2 * math.Pi * math.Sqrt(area/(100*math.Pi)) * 1.2,
			Polygon:            burned.FirePolygon(center, area, &windDir, elongation),
			SpreadDirectionDeg: req.WindDirectionDeg,
			SpreadRateMPerMin:  rate,
			Confidence:         math.Max(minConfidence, maxConfidence-h*confidenceDecay),
		})
	}

	return Prediction{
		FireID:              req.FireID,
		IssuedAt:            issued,
		CurrentCenter:       req.Center,
		CurrentAreaHectares: req.CurrentAreaHectares,
		Conditions: Conditions{
			WindSpeedKmh:     req.WindSpeedKmh,
			WindDirectionDeg: req.WindDirectionDeg,
			HumidityPercent:  req.HumidityPercent,
			TemperatureC:     req.TemperatureC,
			SlopeDeg:         req.SlopeDeg,
			FuelType:         fuel,
		},
		Steps:   steps,
		Threats: threats(req, rate, steps),
	}
}

func normalizeHours(hours []float64) []float64 {
	if len(hours) == 0 {
		hours = DefaultHours
	}

	out := make([]float64, 0, len(hours))
	for _, h := range hours {
		if h >= 0 && finite(h) {
			out = append(out, h)
		}
	}
	sort.Float64s(out)

	uniq := out[:0]
	for i, h := range out {
		if i == 0 || h != out[i-1] {
			uniq = append(uniq, h)
		}
	}
	return uniq
}

// threats lists the communities inside the last projected footprint or within
// evacuation range, ranked with the evacuation router
func threats(req PredictionRequest, rate float64, steps []Step) []Threat {
	out := []Threat{}
	if len(req.Communities) == 0 {
		return out
	}

	var footprint []spatial.Point
	if len(steps) > 0 {
		footprint = steps[len(steps)-1].Polygon
	}

	for _, c := range req.Communities {
		inside := footprint != nil && spatial.PointInPolygon(c.Point(), footprint)
		if !inside && spatial.Distance(req.Center, c.Point()) > evacuation.MaxRadiusKm {
			continue
		}

		a := evacuation.Assess(req.Center, req.WindDirectionDeg, rate, c)
		out = append(out, Threat{
			Type:                  "populated_area",
			Name:                  a.Name,
			Location:              c.Point(),
			DistanceKm:            a.DistanceKm,
			EstimatedArrivalHours: a.EstimatedArrivalHours,
			Population:            a.Population,
			InsideFootprint:       inside,
			EvacuationRecommended: inside || a.Priority <= 2,
			Priority:              a.RiskLevel,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// PredictBatch runs many predictions on a bounded worker pool. The output
// keeps the request order.
func PredictBatch(ctx context.Context, reqs []PredictionRequest, workers int) ([]Prediction, error) {
	outcomes, err := analysis.Map(ctx, workers, reqs, func(ctx context.Context, req PredictionRequest) (Prediction, error) {
		if err := ctx.Err(); err != nil {
			return Prediction{}, err
		}
		return Predict(req), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run batch prediction: %w", err)
	}

	predictions := make([]Prediction, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			return nil, fmt.Errorf("failed to predict fire %s: %w", reqs[i].FireID, o.Err)
		}
		predictions[i] = o.Value
	}
	return predictions, nil
}
