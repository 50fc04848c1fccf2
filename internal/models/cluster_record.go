package models

import "time"

// ClusterRecord is the persisted snapshot of one fire cluster of a detection run
type ClusterRecord struct {
	ID        int64  `json:"id" db:"id"`
	RunID     string `json:"run_id" db:"run_id"`
	ClusterID string `json:"cluster_id" db:"cluster_id"` // FIRE-0001, unique per run only

	HotspotCount int     `json:"hotspot_count" db:"hotspot_count"`
	CenterLat    float64 `json:"center_lat" db:"center_lat"`
	CenterLon    float64 `json:"center_lon" db:"center_lon"`
	West         float64 `json:"west" db:"west"`
	South        float64 `json:"south" db:"south"`
	East         float64 `json:"east" db:"east"`
	North        float64 `json:"north" db:"north"`

	AreaKm2  float64 `json:"area_km2" db:"area_km2"`
	TotalFRP float64 `json:"total_frp" db:"total_frp"`
	AvgFRP   float64 `json:"avg_frp" db:"avg_frp"`
	MaxFRP   float64 `json:"max_frp" db:"max_frp"`

	Intensity       string `json:"intensity" db:"intensity"`
	ConfidenceLevel string `json:"confidence_level" db:"confidence_level"`

	FirstDetection time.Time `json:"first_detection" db:"first_detection"`
	LastDetection  time.Time `json:"last_detection" db:"last_detection"`

	BurnedAreaHectares float64 `json:"burned_area_hectares" db:"burned_area_hectares"`
	BurnedConfidence   float64 `json:"burned_confidence" db:"burned_confidence"`
	PerimeterKm        float64 `json:"perimeter_km" db:"perimeter_km"`
	PolygonJSON        string  `json:"polygon,omitempty" db:"polygon_json"` // [[lat, lon], ...]

	Biome   string  `json:"biome,omitempty" db:"biome"`
	CO2Tons float64 `json:"co2_tons" db:"co2_tons"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
