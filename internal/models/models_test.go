package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		raw  string
		want Confidence
	}{
		{"h", ConfidenceHigh},
		{" HIGH ", ConfidenceHigh},
		{"n", ConfidenceNominal},
		{"l", ConfidenceLow},
		{"Low", ConfidenceLow},
		{"95", ConfidenceHigh},
		{"80", ConfidenceHigh},
		{"79.9", ConfidenceNominal},
		{"30", ConfidenceNominal},
		{"12", ConfidenceLow},
		{"", ConfidenceNominal},
		{"unknown", ConfidenceNominal},
	}
	for _, tt := range tests {
		if got := ParseConfidence(tt.raw); got != tt.want {
			t.Errorf("ParseConfidence(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestHotspotUnmarshalConfidence(t *testing.T) {
	tests := []struct {
		body    string
		want    Confidence
		wantErr bool
	}{
		{`{"latitude": -10, "longitude": -55, "confidence": "h"}`, ConfidenceHigh, false},
		{`{"latitude": -10, "longitude": -55, "confidence": 85}`, ConfidenceHigh, false},
		{`{"latitude": -10, "longitude": -55, "confidence": 10}`, ConfidenceLow, false},
		{`{"latitude": -10, "longitude": -55, "confidence": true}`, "", true},
	}

	for _, tt := range tests {
		var h Hotspot
		err := json.Unmarshal([]byte(tt.body), &h)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && h.Confidence != tt.want {
			t.Errorf("Unmarshal(%s) confidence = %q, want %q", tt.body, h.Confidence, tt.want)
		}
	}
}

func TestHotspotDedupKey(t *testing.T) {
	at := time.Date(2024, 8, 20, 15, 42, 0, 0, time.UTC)
	a := Hotspot{Latitude: -10.123456, Longitude: -55.654321, AcquiredAt: at, FRP: 10}
	b := Hotspot{Latitude: -10.123456, Longitude: -55.654321, AcquiredAt: at, FRP: 99, Satellite: "N20"}
	c := a
	c.AcquiredAt = at.Add(12 * time.Hour)
	d := a
	d.Latitude += 0.01

	if a.DedupKey() != b.DedupKey() {
		t.Error("same pixel and overpass produced different keys")
	}
	if a.DedupKey() == c.DedupKey() {
		t.Error("different overpasses share a key")
	}
	if a.DedupKey() == d.DedupKey() {
		t.Error("pixels 1 km apart share a key")
	}
}

func TestHotspotHelpers(t *testing.T) {
	hotspots := []Hotspot{
		{Latitude: 1, Longitude: 2, FRP: 3, Confidence: ConfidenceHigh},
		{Latitude: 4, Longitude: 5, FRP: 6},
	}

	points := Points(hotspots)
	if len(points) != 2 || points[1].Lat != 4 || points[1].Lon != 5 {
		t.Errorf("Points = %v", points)
	}
	frp := FRPValues(hotspots)
	if len(frp) != 2 || frp[0] != 3 || frp[1] != 6 {
		t.Errorf("FRPValues = %v", frp)
	}
	if !hotspots[0].IsHighConfidence() || hotspots[1].IsHighConfidence() {
		t.Error("IsHighConfidence mismatch")
	}
}

func TestRunIsTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		RunStatusPending:   false,
		RunStatusRunning:   false,
		RunStatusCompleted: true,
		RunStatusFailed:    true,
		RunStatusCancelled: true,
	} {
		r := DetectionRun{Status: status}
		if got := r.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestCommunityPopulation(t *testing.T) {
	if got := (Community{Population: 0}).EffectivePopulation(); got != DefaultPopulation {
		t.Errorf("EffectivePopulation = %d, want %d", got, DefaultPopulation)
	}
	if got := (Community{Population: 250}).EffectivePopulation(); got != 250 {
		t.Errorf("EffectivePopulation = %d, want 250", got)
	}
	if (HotspotFilter{}).HasBBox() {
		t.Error("empty filter has a bbox")
	}
	if !(HotspotFilter{MinLat: -10}).HasBBox() {
		t.Error("filter with MinLat has no bbox")
	}
}

func TestAverageWeather(t *testing.T) {
	early := time.Date(2024, 8, 21, 9, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Hour)

	tests := []struct {
		name      string
		readings  []WeatherReading
		wantDir   float64
		wantSpeed float64
		wantTemp  float64
		wantAt    time.Time
	}{
		{"empty", nil, 0, 0, 0, time.Time{}},
		{
			name: "across north",
			readings: []WeatherReading{
				{TemperatureC: 20, WindSpeedKmh: 20, WindDirectionDeg: 350, ObservedAt: late},
				{TemperatureC: 30, WindSpeedKmh: 20, WindDirectionDeg: 10, ObservedAt: early},
			},
			wantDir:   0,
			wantSpeed: 20 * math.Cos(10*math.Pi/180),
			wantTemp:  25,
			wantAt:    late,
		},
		{
			name: "opposing winds cancel",
			readings: []WeatherReading{
				{WindSpeedKmh: 30, WindDirectionDeg: 90},
				{WindSpeedKmh: 30, WindDirectionDeg: 270},
			},
			wantSpeed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageWeather(tt.readings)
			if tt.wantSpeed > 0 {
				diff := math.Abs(math.Mod(got.WindDirectionDeg-tt.wantDir+540, 360) - 180)
				if diff > 1e-9 {
					t.Errorf("direction = %v, want %v", got.WindDirectionDeg, tt.wantDir)
				}
			}
			if math.Abs(got.WindSpeedKmh-tt.wantSpeed) > 1e-9 {
				t.Errorf("speed = %v, want %v", got.WindSpeedKmh, tt.wantSpeed)
			}
			if math.Abs(got.TemperatureC-tt.wantTemp) > 1e-9 {
				t.Errorf("temperature = %v, want %v", got.TemperatureC, tt.wantTemp)
			}
			if !got.ObservedAt.Equal(tt.wantAt) {
				t.Errorf("observed = %v, want %v", got.ObservedAt, tt.wantAt)
			}
		})
	}
}
