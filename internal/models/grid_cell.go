package models

import (
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// GridCell aggregates the stored hotspots falling into one geohash cell
type GridCell struct {
	GridID    string        `json:"grid_id"` // geohash
	Precision int           `json:"precision"`
	Center    spatial.Point `json:"center"`
	BBox      spatial.BBox  `json:"bbox"`

	HotspotCount   int     `json:"hotspot_count"`
	HighConfidence int     `json:"high_confidence"`
	TotalFRP       float64 `json:"total_frp"`
	MaxFRP         float64 `json:"max_frp"`

	FirstDetection time.Time `json:"first_detection"`
	LastDetection  time.Time `json:"last_detection"`
}

// GridFilter represents filter parameters for the hotspot density grid
type GridFilter struct {
	Precision int     `form:"precision"` // geohash length, 3-7
	MinCount  int     `form:"minCount"`
	MinLat    float64 `form:"minLat"`
	MaxLat    float64 `form:"maxLat"`
	MinLon    float64 `form:"minLon"`
	MaxLon    float64 `form:"maxLon"`
	Since     int64   `form:"since"` // Unix timestamp
	Until     int64   `form:"until"` // Unix timestamp
}

// HotspotFilter returns the hotspot selection of the grid filter
func (f GridFilter) HotspotFilter() HotspotFilter {
	return HotspotFilter{
		MinLat: f.MinLat,
		MaxLat: f.MaxLat,
		MinLon: f.MinLon,
		MaxLon: f.MaxLon,
		Since:  f.Since,
		Until:  f.Until,
	}
}
