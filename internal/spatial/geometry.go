package spatial

import (
	"math"
	"sort"
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BBox is an axis-aligned bounding box in degrees
type BBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Contains reports whether p lies inside the box (edges inclusive)
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lon >= b.West && p.Lon <= b.East
}

// Center returns the midpoint of the box
func (b BBox) Center() Point {
	return Point{Lat: (b.South + b.North) / 2, Lon: (b.West + b.East) / 2}
}

// Centroid calculates the arithmetic mean of a set of points
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// BoundingBox calculates the bounding box of a set of points
func BoundingBox(points []Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}

	box := BBox{West: points[0].Lon, South: points[0].Lat, East: points[0].Lon, North: points[0].Lat}
	for _, p := range points[1:] {
		box.South = math.Min(box.South, p.Lat)
		box.North = math.Max(box.North, p.Lat)
		box.West = math.Min(box.West, p.Lon)
		box.East = math.Max(box.East, p.Lon)
	}

	return box
}

// PolygonArea calculates the area of a polygon in square kilometers using the
// spherical excess approximation. Valid for rings that do not cross the antimeridian.
// Returns 0 for fewer than 3 vertices.
func PolygonArea(polygon []Point) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		p1 := polygon[i]
		p2 := polygon[(i+1)%n]
		sum += toRadians(p2.Lon-p1.Lon) * (2 + math.Sin(toRadians(p1.Lat)) + math.Sin(toRadians(p2.Lat)))
	}

	return math.Abs(sum) * EarthRadiusKm * EarthRadiusKm / 2
}

// PointInPolygon checks if a point is inside a polygon using ray casting
func PointInPolygon(point Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		if ((polygon[i].Lat > point.Lat) != (polygon[j].Lat > point.Lat)) &&
			(point.Lon < (polygon[j].Lon-polygon[i].Lon)*(point.Lat-polygon[i].Lat)/(polygon[j].Lat-polygon[i].Lat)+polygon[i].Lon) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PerimeterLength sums the great-circle edge lengths of a ring in kilometers,
// including the closing edge back to the first vertex
func PerimeterLength(polygon []Point) float64 {
	if len(polygon) < 2 {
		return 0
	}

	var total float64
	for i := range polygon {
		total += Distance(polygon[i], polygon[(i+1)%len(polygon)])
	}
	return total
}

// ConvexHull computes the convex hull with a monotone-chain Graham scan over the
// de-duplicated points sorted by (lat, lon). Input with fewer than 3 distinct points
// is returned unchanged.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		return points
	}

	seen := make(map[Point]struct{}, len(points))
	unique := make([]Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	if len(unique) < 3 {
		return points
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Lat != unique[j].Lat {
			return unique[i].Lat < unique[j].Lat
		}
		return unique[i].Lon < unique[j].Lon
	})

	cross := func(o, a, b Point) float64 {
		return (a.Lat-o.Lat)*(b.Lon-o.Lon) - (a.Lon-o.Lon)*(b.Lat-o.Lat)
	}

	lower := make([]Point, 0, len(unique))
	for _, p := range unique {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]Point, 0, len(unique))
	for i := len(unique) - 1; i >= 0; i-- {
		p := unique[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

// BufferPolygon approximates a circle of radiusKm around center with numPoints
// vertices (32 when numPoints <= 0). The returned ring is closed.
func BufferPolygon(center Point, radiusKm float64, numPoints int) []Point {
	if numPoints <= 0 {
		numPoints = 32
	}

	ring := make([]Point, 0, numPoints+1)
	step := 360.0 / float64(numPoints)
	for i := 0; i < numPoints; i++ {
		ring = append(ring, DestinationPoint(center.Lat, center.Lon, radiusKm, step*float64(i)))
	}
	return append(ring, ring[0])
}

// EllipsePolygon builds a closed ring of the given area (hectares) whose long axis
// follows the compass bearing directionDeg. elongation <= 1 yields a circle.
func EllipsePolygon(center Point, areaHectares, directionDeg, elongation float64, numPoints int) []Point {
	if numPoints <= 0 {
		numPoints = 32
	}
	radiusKm := math.Sqrt(math.Max(areaHectares, 0) / 100 / math.Pi)
	if elongation <= 1 {
		return BufferPolygon(center, radiusKm, numPoints)
	}

	a := radiusKm * math.Sqrt(elongation)
	b := radiusKm / math.Sqrt(elongation)
	dir := toRadians(directionDeg)

	ring := make([]Point, 0, numPoints+1)
	for i := 0; i < numPoints; i++ {
		theta := 2 * math.Pi * float64(i) / float64(numPoints)
		along := a * math.Cos(theta)
		across := b * math.Sin(theta)

		// rotate onto the compass: 0 = north, 90 = east
		north := along*math.Cos(dir) - across*math.Sin(dir)
		east := along*math.Sin(dir) + across*math.Cos(dir)

		ring = append(ring, DestinationPoint(center.Lat, center.Lon, math.Hypot(north, east), toDegrees(math.Atan2(east, north))))
	}
	return append(ring, ring[0])
}

// ScaleFromCenter moves every vertex away from center by factor in degree space
func ScaleFromCenter(polygon []Point, center Point, factor float64) []Point {
	scaled := make([]Point, len(polygon))
	for i, p := range polygon {
		scaled[i] = Point{
			Lat: center.Lat + (p.Lat-center.Lat)*factor,
			Lon: center.Lon + (p.Lon-center.Lon)*factor,
		}
	}
	return scaled
}

// CloseRing returns the ring with its first vertex repeated at the end if needed
func CloseRing(ring []Point) []Point {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	closed := make([]Point, len(ring), len(ring)+1)
	copy(closed, ring)
	return append(closed, ring[0])
}
