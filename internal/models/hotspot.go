package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Confidence is the categorical detection confidence of a hotspot
type Confidence string

// Confidence constants
const (
	ConfidenceLow     Confidence = "low"
	ConfidenceNominal Confidence = "nominal"
	ConfidenceHigh    Confidence = "high"
)

// ParseConfidence normalizes the confidence field of the satellite products.
// VIIRS reports l/n/h, MODIS a 0-100 percentage.
func ParseConfidence(raw string) Confidence {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "h", "high":
		return ConfidenceHigh
	case "n", "nominal":
		return ConfidenceNominal
	case "l", "low":
		return ConfidenceLow
	}
	if pct, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case pct >= 80:
			return ConfidenceHigh
		case pct >= 30:
			return ConfidenceNominal
		}
		return ConfidenceLow
	}
	return ConfidenceNominal
}

// UnmarshalJSON accepts either a string or a MODIS-style number
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseConfidence(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid confidence %s", string(data))
	}
	*c = ParseConfidence(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Hotspot is a single satellite fire detection. It is treated as immutable once parsed.
type Hotspot struct {
	ID int64 `json:"id,omitempty" db:"id"`

	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	Brightness float64 `json:"brightness" db:"brightness"` // Kelvin, I4/band 21
	BrightT31  float64 `json:"bright_t31" db:"bright_t31"` // Kelvin, I5/band 31
	Scan       float64 `json:"scan" db:"scan"`
	Track      float64 `json:"track" db:"track"`
	FRP        float64 `json:"frp" db:"frp"` // MW, 0 when absent

	AcquiredAt time.Time `json:"acquired_at" db:"acquired_at"`

	Satellite  string     `json:"satellite" db:"satellite"`
	Instrument string     `json:"instrument" db:"instrument"`
	Version    string     `json:"version,omitempty" db:"version"`
	Confidence Confidence `json:"confidence" db:"confidence"`
	DayNight   string     `json:"daynight" db:"daynight"` // D, N
	Source     string     `json:"source,omitempty" db:"source"`
}

// Point returns the hotspot location
func (h Hotspot) Point() spatial.Point {
	return spatial.Point{Lat: h.Latitude, Lon: h.Longitude}
}

// IsHighConfidence reports whether the detection was flagged high confidence
func (h Hotspot) IsHighConfidence() bool {
	return h.Confidence == ConfidenceHigh
}

// DedupKey identifies repeated detections of the same pixel at the same overpass
func (h Hotspot) DedupKey() string {
	return fmt.Sprintf("%s:%d", spatial.EncodeGeohash(h.Latitude, h.Longitude, 8), h.AcquiredAt.Unix())
}

// Points extracts the locations of a hotspot list
func Points(hotspots []Hotspot) []spatial.Point {
	points := make([]spatial.Point, len(hotspots))
	for i, h := range hotspots {
		points[i] = h.Point()
	}
	return points
}

// FRPValues extracts the FRP readings of a hotspot list
func FRPValues(hotspots []Hotspot) []float64 {
	values := make([]float64, len(hotspots))
	for i, h := range hotspots {
		values[i] = h.FRP
	}
	return values
}
