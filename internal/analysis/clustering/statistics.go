package clustering

import "github.com/jengzang/firewatch-backend-go/internal/stats"

// Statistics aggregates a clustering run
type Statistics struct {
	TotalClusters          int            `json:"total_clusters"`
	TotalHotspots          int            `json:"total_hotspots"`
	TotalAreaKm2           float64        `json:"total_area_km2"`
	TotalFRP               float64        `json:"total_frp_mw"`
	AverageClusterSize     float64        `json:"average_cluster_size"`
	MedianClusterSize      float64        `json:"median_cluster_size"`
	LargestClusterHotspots int            `json:"largest_cluster_hotspots"`
	MaxFRP                 float64        `json:"max_frp_mw"`
	P90MaxFRP              float64        `json:"p90_max_frp_mw"` // 90th percentile of per-cluster max FRP
	IntensityDistribution  map[string]int `json:"intensity_distribution"`
}

// Summarize computes aggregate statistics for a list of clusters
func Summarize(clusters []*FireCluster) Statistics {
	s := Statistics{
		IntensityDistribution: map[string]int{"extreme": 0, "high": 0, "moderate": 0, "low": 0},
	}
	if len(clusters) == 0 {
		return s
	}

	sizes := make([]float64, 0, len(clusters))
	peaks := make([]float64, 0, len(clusters))
	for _, c := range clusters {
		sizes = append(sizes, float64(c.HotspotCount()))
		peaks = append(peaks, c.MaxFRP)
		s.TotalClusters++
		s.TotalHotspots += c.HotspotCount()
		s.TotalAreaKm2 += c.AreaKm2
		s.TotalFRP += c.TotalFRP
		if c.HotspotCount() > s.LargestClusterHotspots {
			s.LargestClusterHotspots = c.HotspotCount()
		}
		if c.MaxFRP > s.MaxFRP {
			s.MaxFRP = c.MaxFRP
		}
		s.IntensityDistribution[c.Intensity()]++
	}

	s.TotalAreaKm2 = stats.Round(s.TotalAreaKm2, 2)
	s.TotalFRP = stats.Round(s.TotalFRP, 2)
	s.MaxFRP = stats.Round(s.MaxFRP, 2)
	s.AverageClusterSize = stats.Round(float64(s.TotalHotspots)/float64(s.TotalClusters), 1)
	s.MedianClusterSize = stats.Median(sizes)
	s.P90MaxFRP = stats.Round(stats.Percentile(peaks, 90), 2)
	return s
}
