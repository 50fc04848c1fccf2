package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// Risk levels, lowest first
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelVeryHigh = "very_high"
	LevelExtreme  = "extreme"
)

// DefaultDryness is used when the caller has no vegetation dryness estimate
const DefaultDryness = 0.5

const (
	weightTemperature = 0.20
	weightHumidity    = 0.25
	weightWind        = 0.20
	weightDrought     = 0.20
	weightVegetation  = 0.15
)

// some biomes burn more readily than others
var biomeMultipliers = map[string]float64{
	vegetation.BiomeCerrado:       1.1,
	vegetation.BiomeCaatinga:      1.0,
	vegetation.BiomePantanal:      0.9,
	vegetation.BiomeAmazonia:      0.8,
	vegetation.BiomeMataAtlantica: 0.85,
	vegetation.BiomePampa:         0.95,
}

var recommendations = map[string][]string{
	LevelLow: {
		"Normal fire precautions apply",
		"Monitor weather conditions",
	},
	LevelModerate: {
		"Exercise caution with fire activities",
		"Ensure firefighting equipment is ready",
		"Clear dry vegetation around structures",
	},
	LevelHigh: {
		"Avoid all outdoor burning",
		"Increase vigilance for fire starts",
		"Review evacuation plans",
		"Keep vehicles fueled and ready",
	},
	LevelVeryHigh: {
		"No open fires permitted",
		"Restrict access to high-risk areas",
		"Pre-position firefighting resources",
		"Alert communities in vulnerable areas",
		"Prepare for possible evacuations",
	},
	LevelExtreme: {
		"Maximum alert status",
		"Evacuate vulnerable populations",
		"Close forests and parks",
		"All firefighting resources on standby",
		"Emergency services on high alert",
		"Consider preemptive evacuations",
	},
}

// Conditions are the inputs of a fire danger assessment
type Conditions struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	TemperatureC      float64 `json:"temperature_celsius"`
	HumidityPercent   float64 `json:"humidity_percent"`
	WindSpeedKmh      float64 `json:"wind_speed_kmh"`
	DaysWithoutRain   int     `json:"days_without_rain"`
	VegetationDryness float64 `json:"vegetation_dryness"` // 0-1
	Biome             string  `json:"biome"`              // empty means Cerrado

	AssessedAt time.Time `json:"-"`
}

// Factor is one weighted component of the index
type Factor struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Index       float64 `json:"index"`
	RiskLevel   string  `json:"risk_level"`
	Description string  `json:"description"`
}

// Assessment is the fire danger at one location
type Assessment struct {
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	AssessedAt      time.Time  `json:"assessment_timestamp"`
	Index           float64    `json:"risk_index"` // 0-100
	Level           string     `json:"risk_level"`
	BiomeMultiplier float64    `json:"biome_multiplier"`
	Conditions      Conditions `json:"conditions"`
	Factors         []Factor   `json:"factors"`
	Recommendations []string   `json:"recommendations"`
}

// Assess combines temperature, humidity, wind, drought and vegetation dryness
// into a 0-100 danger index scaled by the biome's fire proneness
func Assess(c Conditions) Assessment {
	if c.AssessedAt.IsZero() {
		c.AssessedAt = time.Now()
	}
	if c.Biome == "" {
		c.Biome = vegetation.BiomeCerrado
	}
	c.VegetationDryness = stats.Clamp(c.VegetationDryness, 0, 1)

	tempRisk := TemperatureRisk(c.TemperatureC)
	humidityRisk := HumidityRisk(c.HumidityPercent)
	windRisk := WindRisk(c.WindSpeedKmh)
	droughtRisk := DroughtRisk(c.DaysWithoutRain)
	vegRisk := c.VegetationDryness * 100

	factors := []Factor{
		{
			Name: "Temperature", Value: c.TemperatureC, Weight: weightTemperature, Index: tempRisk,
			RiskLevel:   LevelFor(tempRisk),
			Description: fmt.Sprintf("%g°C - %s", c.TemperatureC, temperatureDescription(c.TemperatureC)),
		},
		{
			Name: "Humidity", Value: c.HumidityPercent, Weight: weightHumidity, Index: humidityRisk,
			RiskLevel:   LevelFor(humidityRisk),
			Description: fmt.Sprintf("%g%% - %s", c.HumidityPercent, humidityDescription(c.HumidityPercent)),
		},
		{
			Name: "Wind Speed", Value: c.WindSpeedKmh, Weight: weightWind, Index: windRisk,
			RiskLevel:   LevelFor(windRisk),
			Description: fmt.Sprintf("%g km/h - %s", c.WindSpeedKmh, windDescription(c.WindSpeedKmh)),
		},
		{
			Name: "Drought", Value: float64(c.DaysWithoutRain), Weight: weightDrought, Index: droughtRisk,
			RiskLevel:   LevelFor(droughtRisk),
			Description: fmt.Sprintf("%d days without rain", c.DaysWithoutRain),
		},
		{
			Name: "Vegetation Dryness", Value: c.VegetationDryness, Weight: weightVegetation, Index: vegRisk,
			RiskLevel:   LevelFor(vegRisk),
			Description: fmt.Sprintf("%.0f%% dry", vegRisk),
		},
	}

	var index float64
	for _, f := range factors {
		index += f.Index * f.Weight
	}

	multiplier, ok := biomeMultipliers[c.Biome]
	if !ok {
		multiplier = 1.0
	}
	index = math.Min(100, index*multiplier)
	level := LevelFor(index)

	return Assessment{
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		AssessedAt:      c.AssessedAt,
		Index:           index,
		Level:           level,
		BiomeMultiplier: multiplier,
		Conditions:      c,
		Factors:         factors,
		Recommendations: Recommendations(level),
	}
}

// LevelFor maps a 0-100 index onto a risk level
func LevelFor(index float64) string {
	switch {
	case index < 20:
		return LevelLow
	case index < 40:
		return LevelModerate
	case index < 60:
		return LevelHigh
	case index < 80:
		return LevelVeryHigh
	}
	return LevelExtreme
}

// Recommendations returns the actions advised at a level. Unknown levels get
// the moderate advice.
func Recommendations(level string) []string {
	recs, ok := recommendations[level]
	if !ok {
		recs = recommendations[LevelModerate]
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// TemperatureRisk is piecewise linear from 10 at 20°C to 100 above 40°C
func TemperatureRisk(temp float64) float64 {
	switch {
	case temp <= 20:
		return 10
	case temp <= 25:
		return 20 + (temp-20)*4
	case temp <= 30:
		return 40 + (temp-25)*6
	case temp <= 35:
		return 70 + (temp-30)*4
	case temp <= 40:
		return 90 + (temp-35)*2
	}
	return 100
}

// HumidityRisk rises as relative humidity drops
func HumidityRisk(humidity float64) float64 {
	switch {
	case humidity >= 70:
		return 10
	case humidity >= 50:
		return 10 + (70-humidity)*1.5
	case humidity >= 30:
		return 40 + (50-humidity)*2
	case humidity >= 20:
		return 80 + (30-humidity)*1
	case humidity >= 10:
		return 90 + (20-humidity)*1
	}
	return 100
}

func WindRisk(wind float64) float64 {
	switch {
	case wind <= 10:
		return 10 + wind*2
	case wind <= 20:
		return 30 + (wind-10)*3
	case wind <= 35:
		return 60 + (wind-20)*2
	case wind <= 50:
		return 90 + (wind-35)*0.67
	}
	return 100
}

func DroughtRisk(days int) float64 {
	d := float64(days)
	switch {
	case days <= 3:
		return 10 + d*5
	case days <= 7:
		return 25 + (d-3)*7.5
	case days <= 15:
		return 55 + (d-7)*3.75
	case days <= 30:
		return 85 + (d-15)*1
	}
	return 100
}

func temperatureDescription(temp float64) string {
	switch {
	case temp < 25:
		return "Cool conditions"
	case temp < 30:
		return "Warm conditions"
	case temp < 35:
		return "Hot conditions"
	}
	return "Extreme heat"
}

func humidityDescription(humidity float64) string {
	switch {
	case humidity > 60:
		return "Humid conditions"
	case humidity > 40:
		return "Moderate humidity"
	case humidity > 25:
		return "Dry conditions"
	}
	return "Very dry conditions"
}

func windDescription(wind float64) string {
	switch {
	case wind < 10:
		return "Light winds"
	case wind < 25:
		return "Moderate winds"
	case wind < 40:
		return "Strong winds"
	}
	return "Dangerous winds"
}
