package risk

import (
	"math"
	"testing"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
)

func TestFactorCurves(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"temperature cold", TemperatureRisk, 15, 10},
		{"temperature 25", TemperatureRisk, 25, 40},
		{"temperature 30", TemperatureRisk, 30, 70},
		{"temperature 35", TemperatureRisk, 35, 90},
		{"temperature 40", TemperatureRisk, 40, 100},
		{"temperature extreme", TemperatureRisk, 48, 100},
		{"humidity humid", HumidityRisk, 85, 10},
		{"humidity 50", HumidityRisk, 50, 40},
		{"humidity 30", HumidityRisk, 30, 80},
		{"humidity 20", HumidityRisk, 20, 90},
		{"humidity 10", HumidityRisk, 10, 100},
		{"humidity desert", HumidityRisk, 4, 100},
		{"wind calm", WindRisk, 0, 10},
		{"wind 10", WindRisk, 10, 30},
		{"wind 20", WindRisk, 20, 60},
		{"wind 35", WindRisk, 35, 90},
		{"wind gale", WindRisk, 70, 100},
		{"drought 0", func(v float64) float64 { return DroughtRisk(int(v)) }, 0, 10},
		{"drought 3", func(v float64) float64 { return DroughtRisk(int(v)) }, 3, 25},
		{"drought 7", func(v float64) float64 { return DroughtRisk(int(v)) }, 7, 55},
		{"drought 15", func(v float64) float64 { return DroughtRisk(int(v)) }, 15, 85},
		{"drought 30", func(v float64) float64 { return DroughtRisk(int(v)) }, 30, 100},
		{"drought 60", func(v float64) float64 { return DroughtRisk(int(v)) }, 60, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("f(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		index float64
		want  string
	}{
		{0, LevelLow},
		{19.9, LevelLow},
		{20, LevelModerate},
		{40, LevelHigh},
		{60, LevelVeryHigh},
		{79.99, LevelVeryHigh},
		{80, LevelExtreme},
		{100, LevelExtreme},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.index); got != tt.want {
			t.Errorf("LevelFor(%v) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func dryAfternoon() Conditions {
	return Conditions{
		Latitude:          -15.8,
		Longitude:         -47.9,
		TemperatureC:      35,
		HumidityPercent:   20,
		WindSpeedKmh:      20,
		DaysWithoutRain:   7,
		VegetationDryness: 0.5,
		AssessedAt:        time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAssess(t *testing.T) {
	a := Assess(dryAfternoon())

	// 90*.20 + 90*.25 + 60*.20 + 55*.20 + 50*.15 = 71, cerrado x1.1
	if math.Abs(a.Index-78.1) > 1e-9 {
		t.Errorf("Index = %v, want 78.1", a.Index)
	}
	if a.Level != LevelVeryHigh {
		t.Errorf("Level = %s, want %s", a.Level, LevelVeryHigh)
	}
	if a.Conditions.Biome != vegetation.BiomeCerrado {
		t.Errorf("biome defaulted to %q", a.Conditions.Biome)
	}
	if len(a.Factors) != 5 {
		t.Fatalf("got %d factors, want 5", len(a.Factors))
	}

	var weights float64
	for _, f := range a.Factors {
		weights += f.Weight
	}
	if math.Abs(weights-1) > 1e-9 {
		t.Errorf("factor weights sum to %v", weights)
	}
	if len(a.Recommendations) != 5 {
		t.Errorf("got %d recommendations for %s", len(a.Recommendations), a.Level)
	}
}

func TestAssessBiomeMultiplier(t *testing.T) {
	tests := []struct {
		biome      string
		multiplier float64
		level      string
	}{
		{vegetation.BiomeAmazonia, 0.8, LevelHigh},
		{vegetation.BiomeCaatinga, 1.0, LevelVeryHigh},
		{vegetation.BiomePantanal, 0.9, LevelVeryHigh},
		{"Unknown", 1.0, LevelVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.biome, func(t *testing.T) {
			c := dryAfternoon()
			c.Biome = tt.biome
			a := Assess(c)
			if a.BiomeMultiplier != tt.multiplier {
				t.Errorf("multiplier = %v, want %v", a.BiomeMultiplier, tt.multiplier)
			}
			if math.Abs(a.Index-71*tt.multiplier) > 1e-9 {
				t.Errorf("Index = %v, want %v", a.Index, 71*tt.multiplier)
			}
			if a.Level != tt.level {
				t.Errorf("Level = %s, want %s", a.Level, tt.level)
			}
		})
	}
}

func TestAssessCapped(t *testing.T) {
	a := Assess(Conditions{
		TemperatureC:      45,
		HumidityPercent:   5,
		WindSpeedKmh:      60,
		DaysWithoutRain:   40,
		VegetationDryness: 3, // clamped to 1
	})
	if a.Index != 100 {
		t.Errorf("Index = %v, want 100", a.Index)
	}
	if a.Level != LevelExtreme {
		t.Errorf("Level = %s, want %s", a.Level, LevelExtreme)
	}
	if a.Conditions.VegetationDryness != 1 {
		t.Errorf("dryness = %v, want clamped to 1", a.Conditions.VegetationDryness)
	}
	if a.AssessedAt.IsZero() {
		t.Error("AssessedAt not set")
	}
}

func TestRecommendationsAreCopies(t *testing.T) {
	recs := Recommendations(LevelExtreme)
	recs[0] = "changed"
	if Recommendations(LevelExtreme)[0] == "changed" {
		t.Error("Recommendations returned the shared slice")
	}

	if got, want := Recommendations("unknown"), Recommendations(LevelModerate); len(got) != len(want) || got[0] != want[0] {
		t.Errorf("unknown level advice = %v, want moderate advice", got)
	}
}

func TestForecast(t *testing.T) {
	now := time.Date(2024, 8, 30, 9, 0, 0, 0, time.UTC)

	days := Forecast(-10, -55, 0, nil, now)
	if len(days) != DefaultForecastDays {
		t.Fatalf("got %d days, want %d", len(days), DefaultForecastDays)
	}
	if days[0].Date != "2024-08-30" || days[2].Date != "2024-09-01" {
		t.Errorf("dates = %s, %s", days[0].Date, days[2].Date)
	}

	first := days[0]
	if first.MaxTemperatureC != 30 || first.MinHumidityPercent != 35 || first.MaxWindSpeedKmh != 15 || first.PrecipitationProbability != 20 {
		t.Errorf("day 0 = %+v", first)
	}

	for i, d := range days {
		if d.RiskIndex != math.Round(d.RiskIndex*10)/10 {
			t.Errorf("day %d: index %v not rounded to one decimal", i, d.RiskIndex)
		}
		if d.PrecipitationProbability < 0 || d.PrecipitationProbability > 80 {
			t.Errorf("day %d: precipitation %v out of range", i, d.PrecipitationProbability)
		}
	}

	custom := Forecast(-10, -55, 3, &BaseConditions{TemperatureC: 20, HumidityPercent: 80, WindSpeedKmh: 0, DaysDry: 0}, now)
	if len(custom) != 3 {
		t.Fatalf("got %d days, want 3", len(custom))
	}
	if custom[0].MaxWindSpeedKmh != 5 {
		t.Errorf("wind floor = %v, want 5", custom[0].MaxWindSpeedKmh)
	}
	// 10*.20 + 10*.25 + 20*.20 + 10*.20 + 50*.15 = 18, cerrado x1.1
	if custom[0].RiskIndex != 19.8 || custom[0].RiskLevel != LevelLow {
		t.Errorf("humid cool day = %v %s, want 19.8 low", custom[0].RiskIndex, custom[0].RiskLevel)
	}
}
