package spatial

// Geometry is a GeoJSON geometry object
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Feature is a GeoJSON feature
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features into a collection
func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// PolygonFeature converts a (lat, lon) ring into a GeoJSON polygon feature with
// [lon, lat] coordinates. The ring is closed if it is not already.
func PolygonFeature(ring []Point, props map[string]interface{}) Feature {
	closed := CloseRing(ring)
	coords := make([][2]float64, len(closed))
	for i, p := range closed {
		coords[i] = [2]float64{p.Lon, p.Lat}
	}
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Polygon", Coordinates: [][][2]float64{coords}},
		Properties: props,
	}
}

// PointFeature converts a point into a GeoJSON point feature
func PointFeature(p Point, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}},
		Properties: props,
	}
}
