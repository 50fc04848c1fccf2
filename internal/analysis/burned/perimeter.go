package burned

import (
	"math"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// Wind is the surface wind driving the fire head
type Wind struct {
	DirectionDeg float64 `json:"direction_deg"` // direction the fire is pushed towards
	SpeedKmh     float64 `json:"speed_kmh"`
}

// Perimeter is the boundary of a fire with shape metrics
type Perimeter struct {
	FireID       string          `json:"fire_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Polygon      []spatial.Point `json:"polygon"`
	Center       spatial.Point   `json:"center"`
	AreaHectares float64         `json:"area_hectares"`
	PerimeterKm  float64         `json:"perimeter_km"`
	Compactness  float64         `json:"compactness"` // Polsby-Popper, 1 = circle
	Elongation   float64         `json:"elongation"`  // bounding box major/minor

	HeadDirectionDeg *float64 `json:"head_direction_degrees,omitempty"`
	HeadRateMPerMin  *float64 `json:"head_rate_m_per_min,omitempty"`
}

// Feature encodes the perimeter as GeoJSON
func (p Perimeter) Feature() spatial.Feature {
	return spatial.PolygonFeature(p.Polygon, map[string]interface{}{
		"fire_id":       p.FireID,
		"area_hectares": stats.Round(p.AreaHectares, 2),
		"perimeter_km":  stats.Round(p.PerimeterKm, 2),
	})
}

// CalculatePerimeter builds the fire boundary from hotspots. Hulls are pushed
// outwards from the centre by 1 + avgFRP/100; fewer than three points get a
// buffer of at least 0.5 km. wind may be nil.
func CalculatePerimeter(fireID string, hotspots []models.Hotspot, wind *Wind) Perimeter {
	if len(hotspots) == 0 {
		return Perimeter{FireID: fireID, Polygon: []spatial.Point{}, Elongation: 1}
	}

	points := models.Points(hotspots)
	center := spatial.Centroid(points)

	// missing FRP still counts in the denominator
	avgFRP := stats.Sum(stats.Positive(models.FRPValues(hotspots))) / float64(len(hotspots))

	var polygon []spatial.Point
	if len(points) < 3 {
		radius := viirsPixelKm * math.Sqrt(avgFRP/10)
		polygon = spatial.BufferPolygon(center, math.Max(radius, minHullBufferKm), 32)
	} else {
		polygon = spatial.ScaleFromCenter(spatial.ConvexHull(points), center, 1+avgFRP/100)
	}

	areaKm2 := spatial.PolygonArea(polygon)
	perimeterKm := spatial.PerimeterLength(polygon)

	p := Perimeter{
		FireID:       fireID,
		Timestamp:    latestAcquisition(hotspots),
		Polygon:      polygon,
		Center:       center,
		AreaHectares: areaKm2 * 100,
		PerimeterKm:  perimeterKm,
		Compactness:  compactness(areaKm2, perimeterKm),
		Elongation:   elongation(polygon),
	}

	if wind != nil {
		dir := wind.DirectionDeg
		rate := HeadRate(wind.SpeedKmh, avgFRP)
		p.HeadDirectionDeg = &dir
		p.HeadRateMPerMin = &rate
	}

	return p
}

// HeadRate estimates the head fire rate (m/min) from wind and radiative power
func HeadRate(windKmh, frp float64) float64 {
	return 5.0 * (1 + windKmh/30) * (1 + math.Sqrt(math.Max(frp, 0)/50))
}

func compactness(areaKm2, perimeterKm float64) float64 {
	if perimeterKm <= 0 {
		return 0
	}
	return 4 * math.Pi * areaKm2 / (perimeterKm * perimeterKm)
}

func elongation(polygon []spatial.Point) float64 {
	if len(polygon) < 3 {
		return 1
	}

	box := spatial.BoundingBox(polygon)
	meanLat := spatial.Centroid(polygon).Lat
	latKm := (box.North - box.South) * 111
	lonKm := (box.East - box.West) * 111 * math.Cos(meanLat*math.Pi/180)

	minor, major := math.Min(latKm, lonKm), math.Max(latKm, lonKm)
	if minor <= 0 {
		return 1
	}
	return major / minor
}

// Change compares two perimeter measurements
type Change struct {
	TimeDifferenceHours     float64 `json:"time_difference_hours"`
	AreaChangeHectares      float64 `json:"area_change_hectares"`
	AreaChangeRateHaPerHour float64 `json:"area_change_rate_ha_per_hour"`
	PerimeterChangeKm       float64 `json:"perimeter_change_km"`
	IsGrowing               bool    `json:"is_growing"`
	GrowthPercentage        float64 `json:"growth_percentage"`
}

// TrackChange compares an earlier and a later perimeter of the same fire
func TrackChange(prev, next Perimeter) (Change, error) {
	hours := next.Timestamp.Sub(prev.Timestamp).Hours()
	if hours <= 0 {
		return Change{}, ErrInvalidTimeOrder
	}

	areaChange := next.AreaHectares - prev.AreaHectares
	c := Change{
		TimeDifferenceHours:     stats.Round(hours, 2),
		AreaChangeHectares:      stats.Round(areaChange, 2),
		AreaChangeRateHaPerHour: stats.Round(areaChange/hours, 2),
		PerimeterChangeKm:       stats.Round(next.PerimeterKm-prev.PerimeterKm, 2),
		IsGrowing:               areaChange > 0,
	}
	if prev.AreaHectares > 0 {
		c.GrowthPercentage = stats.Round(areaChange/prev.AreaHectares*100, 1)
	}
	return c, nil
}

// FirePolygon builds a fire outline of the given area: a circle without wind,
// otherwise an ellipse elongated along the wind direction
func FirePolygon(center spatial.Point, areaHectares float64, windDirection *float64, elongationFactor float64) []spatial.Point {
	if windDirection == nil {
		return spatial.EllipsePolygon(center, areaHectares, 0, 1, 32)
	}
	return spatial.EllipsePolygon(center, areaHectares, *windDirection, elongationFactor, 32)
}
