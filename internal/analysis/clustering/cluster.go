package clustering

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// ErrEmptyCluster is returned when a cluster is built from no hotspots
var ErrEmptyCluster = errors.New("cannot create cluster from empty hotspot list")

// Defaults
const (
	DefaultDistanceKm     = 5.0
	DefaultIndexThreshold = 512
)

// Options controls neighbour detection.
// A zero TimeWindow disables the temporal gate. IndexThreshold is the batch size
// from which the s2 cell index replaces the pairwise scan; 0 means the default,
// a negative value always scans pairwise.
type Options struct {
	DistanceKm     float64
	TimeWindow     time.Duration
	IndexThreshold int
}

func (o Options) withDefaults() Options {
	if o.DistanceKm <= 0 {
		o.DistanceKm = DefaultDistanceKm
	}
	if o.IndexThreshold == 0 {
		o.IndexThreshold = DefaultIndexThreshold
	}
	return o
}

// FireCluster is a connected group of hotspots treated as one fire event
type FireCluster struct {
	ID                  string           `json:"cluster_id"`
	Hotspots            []models.Hotspot `json:"-"`
	Centroid            spatial.Point    `json:"center"`
	BBox                spatial.BBox     `json:"bounding_box"`
	Hull                []spatial.Point  `json:"convex_hull"`
	FirstDetection      time.Time        `json:"first_detection"`
	LastDetection       time.Time        `json:"last_detection"`
	TotalFRP            float64          `json:"total_frp_mw"`
	AvgFRP              float64          `json:"average_frp_mw"`
	MaxFRP              float64          `json:"max_frp_mw"`
	AreaKm2             float64          `json:"area_km2"`
	HighConfidenceCount int              `json:"high_confidence_count"`
}

// NewFireCluster aggregates the members of a cluster.
// Members without an acquisition time are ignored for first/last detection.
func NewFireCluster(id string, members []models.Hotspot) (*FireCluster, error) {
	if len(members) == 0 {
		return nil, ErrEmptyCluster
	}

	points := models.Points(members)

	hull := points
	if len(points) >= 3 {
		hull = spatial.ConvexHull(points)
	}
	area := 0.0
	if len(hull) >= 3 {
		area = spatial.PolygonArea(hull)
	}

	c := &FireCluster{
		ID:       id,
		Hotspots: members,
		Centroid: spatial.Centroid(points),
		BBox:     spatial.BoundingBox(points),
		Hull:     hull,
		AreaKm2:  area,
	}

	for _, h := range members {
		if !h.AcquiredAt.IsZero() {
			if c.FirstDetection.IsZero() || h.AcquiredAt.Before(c.FirstDetection) {
				c.FirstDetection = h.AcquiredAt
			}
			if h.AcquiredAt.After(c.LastDetection) {
				c.LastDetection = h.AcquiredAt
			}
		}
		if h.IsHighConfidence() {
			c.HighConfidenceCount++
		}
	}

	frp := stats.Positive(models.FRPValues(members))
	c.TotalFRP = stats.Sum(frp)
	c.AvgFRP = stats.Mean(frp)
	c.MaxFRP = stats.Max(frp)

	return c, nil
}

// HotspotCount returns the number of member detections
func (c *FireCluster) HotspotCount() int {
	return len(c.Hotspots)
}

// DurationHours returns the time between first and last detection
func (c *FireCluster) DurationHours() float64 {
	return c.LastDetection.Sub(c.FirstDetection).Hours()
}

// Intensity classifies the cluster by its maximum FRP
func (c *FireCluster) Intensity() string {
	switch {
	case c.MaxFRP >= 100:
		return "extreme"
	case c.MaxFRP >= 50:
		return "high"
	case c.MaxFRP >= 20:
		return "moderate"
	}
	return "low"
}

// ConfidenceLevel classifies the cluster by its share of high-confidence detections
func (c *FireCluster) ConfidenceLevel() string {
	if c.HotspotCount() == 0 {
		return "unknown"
	}
	ratio := float64(c.HighConfidenceCount) / float64(c.HotspotCount())
	switch {
	case ratio >= 0.7:
		return "high"
	case ratio >= 0.4:
		return "moderate"
	}
	return "low"
}

// Cluster groups hotspots into fires by transitive closure over the neighbour
// relation (distance <= DistanceKm, and |dt| <= TimeWindow when set).
// Every hotspot ends up in exactly one cluster; isolated detections form
// singletons. IDs follow discovery order, the returned slice is ordered by
// descending size for presentation only.
func Cluster(hotspots []models.Hotspot, opts Options) []*FireCluster {
	if len(hotspots) == 0 {
		return []*FireCluster{}
	}
	opts = opts.withDefaults()

	neighbours := pairwiseNeighbours(hotspots, opts)
	if opts.IndexThreshold > 0 && len(hotspots) >= opts.IndexThreshold {
		neighbours = indexedNeighbours(hotspots, opts)
	}

	visited := make([]bool, len(hotspots))
	var clusters []*FireCluster

	for i := range hotspots {
		if visited[i] {
			continue
		}

		visited[i] = true
		queue := []int{i}
		var members []models.Hotspot
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			members = append(members, hotspots[current])

			for _, j := range neighbours(current) {
				if !visited[j] {
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}

		c, err := NewFireCluster(fmt.Sprintf("FIRE-%04d", len(clusters)+1), members)
		if err != nil {
			continue
		}
		clusters = append(clusters, c)
	}

	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].HotspotCount() > clusters[b].HotspotCount()
	})

	return clusters
}

type neighbourFunc func(i int) []int

func pairwiseNeighbours(hotspots []models.Hotspot, opts Options) neighbourFunc {
	return func(i int) []int {
		var out []int
		for j := range hotspots {
			if isNeighbour(hotspots[i], hotspots[j], opts) {
				out = append(out, j)
			}
		}
		return out
	}
}

func indexedNeighbours(hotspots []models.Hotspot, opts Options) neighbourFunc {
	idx := spatial.NewCellIndex(models.Points(hotspots), opts.DistanceKm)
	return func(i int) []int {
		candidates := idx.Within(i)
		out := candidates[:0]
		for _, j := range candidates {
			if withinWindow(hotspots[i], hotspots[j], opts.TimeWindow) {
				out = append(out, j)
			}
		}
		return out
	}
}

func isNeighbour(a, b models.Hotspot, opts Options) bool {
	if spatial.Distance(a.Point(), b.Point()) > opts.DistanceKm {
		return false
	}
	return withinWindow(a, b, opts.TimeWindow)
}

// withinWindow passes hotspots lacking an acquisition time
func withinWindow(a, b models.Hotspot, window time.Duration) bool {
	if window <= 0 || a.AcquiredAt.IsZero() || b.AcquiredAt.IsZero() {
		return true
	}
	return math.Abs(float64(a.AcquiredAt.Sub(b.AcquiredAt))) <= float64(window)
}
