package spatial

import (
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const maxCellLevel = 30

// CellIndex buckets points by S2 cell so that radius queries only compare
// against points in the handful of cells covering the search cap.
type CellIndex struct {
	points   []Point
	radiusKm float64
	level    int
	cells    map[s2.CellID][]int
	coverer  *s2.RegionCoverer
}

// NewCellIndex indexes points for neighbour queries of radiusKm.
// The cell level is the finest one whose cells are still at least radiusKm wide.
func NewCellIndex(points []Point, radiusKm float64) *CellIndex {
	level := maxCellLevel
	if radiusKm > 0 {
		level = s2.MinWidthMetric.MaxLevel(radiusKm / EarthRadiusKm)
	}
	if level < 0 {
		level = 0
	}
	if level > maxCellLevel {
		level = maxCellLevel
	}

	idx := &CellIndex{
		points:   points,
		radiusKm: radiusKm,
		level:    level,
		cells:    make(map[s2.CellID][]int),
		coverer:  &s2.RegionCoverer{MinLevel: level, MaxLevel: level, LevelMod: 1, MaxCells: 16},
	}
	for i, p := range points {
		id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)).Parent(level)
		idx.cells[id] = append(idx.cells[id], i)
	}
	return idx
}

// Within returns the indices of all points whose great-circle distance to the
// i-th point is <= radiusKm, including i itself, in ascending order of insertion.
func (idx *CellIndex) Within(i int) []int {
	origin := idx.points[i]
	var out []int
	for _, id := range idx.covering(origin) {
		for _, j := range idx.cells[id] {
			if Distance(origin, idx.points[j]) <= idx.radiusKm {
				out = append(out, j)
			}
		}
	}
	sort.Ints(out)
	return out
}

// covering returns the level-aligned cells touching a slightly padded cap
// around origin. Padding absorbs rounding between chord and haversine distances.
func (idx *CellIndex) covering(origin Point) []s2.CellID {
	angle := idx.radiusKm/EarthRadiusKm*1.01 + 1e-12
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(origin.Lat, origin.Lon))
	capRegion := s2.CapFromCenterAngle(center, s1.Angle(math.Min(angle, math.Pi)))

	seen := make(map[s2.CellID]struct{})
	var ids []s2.CellID
	add := func(id s2.CellID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range idx.coverer.Covering(capRegion) {
		switch {
		case id.Level() == idx.level:
			add(id)
		case id.Level() > idx.level:
			add(id.Parent(idx.level))
		default:
			end := id.ChildEndAtLevel(idx.level)
			for c := id.ChildBeginAtLevel(idx.level); c != end; c = c.Next() {
				add(c)
			}
		}
	}
	return ids
}
