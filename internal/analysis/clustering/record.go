package clustering

import (
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Record converts the cluster into its persisted snapshot for a run.
// Analyzer results are applied on top of it.
func (c *FireCluster) Record(runID string) models.ClusterRecord {
	return models.ClusterRecord{
		RunID:           runID,
		ClusterID:       c.ID,
		HotspotCount:    c.HotspotCount(),
		CenterLat:       c.Centroid.Lat,
		CenterLon:       c.Centroid.Lon,
		West:            c.BBox.West,
		South:           c.BBox.South,
		East:            c.BBox.East,
		North:           c.BBox.North,
		AreaKm2:         c.AreaKm2,
		TotalFRP:        c.TotalFRP,
		AvgFRP:          c.AvgFRP,
		MaxFRP:          c.MaxFRP,
		Intensity:       c.Intensity(),
		ConfidenceLevel: c.ConfidenceLevel(),
		FirstDetection:  c.FirstDetection,
		LastDetection:   c.LastDetection,
	}
}

// Feature encodes the cluster hull as GeoJSON; clusters whose hull encloses no
// area (fewer than three distinct points) are emitted as their centroid
func (c *FireCluster) Feature() spatial.Feature {
	props := map[string]interface{}{
		"cluster_id":    c.ID,
		"hotspot_count": c.HotspotCount(),
		"intensity":     c.Intensity(),
		"total_frp_mw":  c.TotalFRP,
		"area_km2":      c.AreaKm2,
	}
	if len(c.Hull) < 3 || c.AreaKm2 <= 0 {
		return spatial.PointFeature(c.Centroid, props)
	}
	return spatial.PolygonFeature(c.Hull, props)
}
