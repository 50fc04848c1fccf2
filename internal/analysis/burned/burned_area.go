package burned

import (
	"errors"
	"math"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// Method selects how the burned area is derived from the hotspot set
type Method string

// Methods
const (
	MethodConvexHull Method = "convex_hull"
	MethodBuffer     Method = "buffer"
	MethodHybrid     Method = "hybrid"
)

// ParseMethod maps a method name to a Method, defaulting to hybrid
func ParseMethod(s string) Method {
	switch Method(s) {
	case MethodConvexHull, MethodBuffer:
		return Method(s)
	}
	return MethodHybrid
}

// ErrInvalidTimeOrder is returned when a later measurement is not after an earlier one
var ErrInvalidTimeOrder = errors.New("new timestamp must be after old timestamp")

const (
	viirsPixelKm       = 0.375   // VIIRS I-band pixel size
	viirsPixelHectares = 14.0625 // 375 m x 375 m
	defaultAvgFRP      = 10.0
	minHullBufferKm    = 0.5
	minHullAreaKm2     = 0.79
	maxConfidence      = 0.95
	intervalMargin     = 0.2
)

// Estimate is the burned-area estimate of one fire
type Estimate struct {
	FireID    string        `json:"fire_id"`
	Method    Method        `json:"calculation_method"`
	Timestamp time.Time     `json:"timestamp"` // latest acquisition time of the input
	Center    spatial.Point `json:"center"`

	TotalHectares      float64         `json:"total_hectares"`
	ConfidenceInterval [2]float64      `json:"confidence_interval"`
	Confidence         float64         `json:"confidence_level"`
	PerimeterKm        float64         `json:"perimeter_km"`
	Polygon            []spatial.Point `json:"polygon"`

	SevereHectares   float64 `json:"severe_hectares"`
	ModerateHectares float64 `json:"moderate_hectares"`
	LightHectares    float64 `json:"light_hectares"`

	ExpansionRateHaPerHour *float64 `json:"expansion_rate_ha_per_hour,omitempty"`
}

// TotalKm2 returns the estimate in square kilometres
func (e Estimate) TotalKm2() float64 {
	return e.TotalHectares / 100
}

// Feature encodes the estimate polygon as GeoJSON
func (e Estimate) Feature() spatial.Feature {
	return spatial.PolygonFeature(e.Polygon, map[string]interface{}{
		"fire_id":          e.FireID,
		"total_hectares":   stats.Round(e.TotalHectares, 2),
		"perimeter_km":     stats.Round(e.PerimeterKm, 2),
		"confidence_level": stats.Round(e.Confidence, 2),
	})
}

// EstimateBurnedArea converts a hotspot set into an area, boundary and severity split.
// An empty set yields a zero estimate.
//
// With the hybrid method the area includes the FRP expansion while the polygon
// is the plain hull, so the polygon area is smaller than TotalHectares.
func EstimateBurnedArea(fireID string, hotspots []models.Hotspot, method Method) Estimate {
	method = ParseMethod(string(method))
	est := Estimate{FireID: fireID, Method: method, Polygon: []spatial.Point{}}
	if len(hotspots) == 0 {
		return est
	}

	points := models.Points(hotspots)
	frp := stats.Positive(models.FRPValues(hotspots))

	var polygon []spatial.Point
	var areaKm2 float64
	switch method {
	case MethodConvexHull:
		polygon, areaKm2 = convexHullArea(points)
	case MethodBuffer:
		polygon, areaKm2 = bufferArea(points, frp)
	default:
		polygon, areaKm2 = hybridArea(points, frp)
	}

	hectares := areaKm2 * 100
	severe, moderate, light := severitySplit(hectares, frp)
	margin := hectares * intervalMargin

	est.Timestamp = latestAcquisition(hotspots)
	est.Center = spatial.Centroid(points)
	est.TotalHectares = hectares
	est.ConfidenceInterval = [2]float64{math.Max(0, hectares-margin), hectares + margin}
	est.Confidence = confidence(hotspots, areaKm2)
	est.PerimeterKm = spatial.PerimeterLength(polygon)
	est.Polygon = polygon
	est.SevereHectares = severe
	est.ModerateHectares = moderate
	est.LightHectares = light
	return est
}

func convexHullArea(points []spatial.Point) ([]spatial.Point, float64) {
	if len(points) < 3 {
		return spatial.BufferPolygon(points[0], minHullBufferKm, 32), minHullAreaKm2
	}
	hull := spatial.ConvexHull(points)
	return hull, spatial.PolygonArea(hull)
}

func bufferArea(points []spatial.Point, frp []float64) ([]spatial.Point, float64) {
	center := spatial.Centroid(points)
	radius := viirsPixelKm * math.Sqrt(averageFRP(frp)/10)

	if len(points) > 1 {
		var maxDist float64
		for _, p := range points {
			maxDist = math.Max(maxDist, spatial.Distance(center, p))
		}
		radius = math.Max(radius, maxDist+0.5)
	}

	return spatial.BufferPolygon(center, radius, 32), math.Pi * radius * radius
}

func hybridArea(points []spatial.Point, frp []float64) ([]spatial.Point, float64) {
	if len(points) < 3 {
		return bufferArea(points, frp)
	}
	hull := spatial.ConvexHull(points)
	return hull, spatial.PolygonArea(hull) * HybridExpansion(frp)
}

// HybridExpansion is the FRP-driven area factor of the hybrid method,
// roughly 1.0 to 1.5 for typical fires
func HybridExpansion(frp []float64) float64 {
	return 1 + math.Sqrt(averageFRP(frp))/20
}

func averageFRP(frp []float64) float64 {
	if len(frp) == 0 {
		return defaultAvgFRP
	}
	return stats.Mean(frp)
}

// severitySplit returns severe, moderate and light hectares. Light takes the remainder.
func severitySplit(total float64, frp []float64) (float64, float64, float64) {
	if len(frp) == 0 || total <= 0 {
		return 0, 0, total
	}

	var severePct, moderatePct float64
	switch maxFRP := stats.Max(frp); {
	case maxFRP >= 100:
		severePct, moderatePct = 0.30, 0.50
	case maxFRP >= 50:
		severePct, moderatePct = 0.15, 0.45
	case maxFRP >= 20:
		severePct, moderatePct = 0.05, 0.35
	default:
		severePct, moderatePct = 0.02, 0.28
	}

	severe := total * severePct
	moderate := total * moderatePct
	return severe, moderate, total - severe - moderate
}

// confidence weighs hotspot count (capped at 20), share of high-confidence
// detections and density (capped at 10 per km²)
func confidence(hotspots []models.Hotspot, areaKm2 float64) float64 {
	n := float64(len(hotspots))
	if n == 0 {
		return 0
	}

	high := 0
	for _, h := range hotspots {
		if h.IsHighConfidence() {
			high++
		}
	}

	density := 0.0
	if areaKm2 > 0 {
		density = n / areaKm2
	}

	c := math.Min(n/20, 1)*0.3 + float64(high)/n*0.4 + math.Min(density/10, 1)*0.3
	return math.Min(c, maxConfidence)
}

func latestAcquisition(hotspots []models.Hotspot) time.Time {
	var latest time.Time
	for _, h := range hotspots {
		if h.AcquiredAt.After(latest) {
			latest = h.AcquiredAt
		}
	}
	return latest
}

// QuickAreaHectares is a fast area estimate: one VIIRS pixel per hotspot below
// three points, otherwise the hull area scaled by expansion
func QuickAreaHectares(hotspots []models.Hotspot, expansion float64) float64 {
	switch {
	case len(hotspots) == 0:
		return 0
	case len(hotspots) < 3:
		return float64(len(hotspots)) * viirsPixelHectares
	}
	hull := spatial.ConvexHull(models.Points(hotspots))
	return spatial.PolygonArea(hull) * 100 * expansion
}

// ExpansionRate returns the growth in hectares per hour between two estimates of the same fire
func ExpansionRate(prev, next Estimate) (float64, error) {
	hours := next.Timestamp.Sub(prev.Timestamp).Hours()
	if hours <= 0 {
		return 0, ErrInvalidTimeOrder
	}
	return (next.TotalHectares - prev.TotalHectares) / hours, nil
}

// WithExpansionRate returns a copy of next carrying the growth rate since prev
func WithExpansionRate(prev, next Estimate) (Estimate, error) {
	rate, err := ExpansionRate(prev, next)
	if err != nil {
		return next, err
	}
	next.ExpansionRateHaPerHour = &rate
	return next, nil
}
