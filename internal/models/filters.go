package models

// HotspotFilter represents filter parameters for querying stored hotspots
type HotspotFilter struct {
	MinLat     float64 `form:"minLat"`
	MaxLat     float64 `form:"maxLat"`
	MinLon     float64 `form:"minLon"`
	MaxLon     float64 `form:"maxLon"`
	Since      int64   `form:"since"` // Unix timestamp
	Until      int64   `form:"until"` // Unix timestamp
	Confidence string  `form:"confidence"`
	MinFRP     float64 `form:"minFrp"`
	Page       int     `form:"page"`
	PageSize   int     `form:"pageSize"`
}

// HasBBox reports whether a bounding box was supplied
func (f HotspotFilter) HasBBox() bool {
	return f.MinLat != 0 || f.MaxLat != 0 || f.MinLon != 0 || f.MaxLon != 0
}

// RunFilter represents filter parameters for listing detection runs
type RunFilter struct {
	Status string `form:"status"`
	Source string `form:"source"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
