package risk

import (
	"math"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// DefaultForecastDays is the outlook length when none is requested
const DefaultForecastDays = 7

// BaseConditions seed the synthetic outlook
type BaseConditions struct {
	TemperatureC    float64 `json:"temperature"`
	HumidityPercent float64 `json:"humidity"`
	WindSpeedKmh    float64 `json:"wind"`
	DaysDry         int     `json:"days_dry"`
}

// DefaultBaseConditions is a typical dry-season afternoon
func DefaultBaseConditions() BaseConditions {
	return BaseConditions{TemperatureC: 30, HumidityPercent: 40, WindSpeedKmh: 15, DaysDry: 5}
}

// DailyForecast is the expected danger for one day
type DailyForecast struct {
	Date                     string  `json:"date"`
	RiskIndex                float64 `json:"risk_index"`
	RiskLevel                string  `json:"risk_level"`
	MaxTemperatureC          float64 `json:"max_temperature"`
	MinHumidityPercent       float64 `json:"min_humidity"`
	MaxWindSpeedKmh          float64 `json:"max_wind_speed"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
}

// Forecast projects the danger index for the next days by perturbing the base
// conditions with smooth periodic variation and accumulating dry days.
// days <= 0 falls back to DefaultForecastDays.
func Forecast(lat, lon float64, days int, base *BaseConditions, now time.Time) []DailyForecast {
	if days <= 0 {
		days = DefaultForecastDays
	}
	b := DefaultBaseConditions()
	if base != nil {
		b = *base
	}
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]DailyForecast, 0, days)
	for day := 0; day < days; day++ {
		d := float64(day)
		maxTemp := b.TemperatureC + 3*math.Sin(d*0.5)
		minHumidity := math.Max(10, b.HumidityPercent-5*math.Cos(d*0.7))
		maxWind := math.Max(5, b.WindSpeedKmh+5*math.Sin(d*0.3))
		precip := stats.Clamp(20-d*3+10*math.Sin(d), 0, 80)

		a := Assess(Conditions{
			Latitude:          lat,
			Longitude:         lon,
			TemperatureC:      maxTemp,
			HumidityPercent:   minHumidity,
			WindSpeedKmh:      maxWind,
			DaysWithoutRain:   b.DaysDry + day,
			VegetationDryness: DefaultDryness,
			AssessedAt:        now,
		})

		out = append(out, DailyForecast{
			Date:                     now.AddDate(0, 0, day).Format("2006-01-02"),
			RiskIndex:                stats.Round(a.Index, 1),
			RiskLevel:                a.Level,
			MaxTemperatureC:          stats.Round(maxTemp, 1),
			MinHumidityPercent:       stats.Round(minHumidity, 1),
			MaxWindSpeedKmh:          stats.Round(maxWind, 1),
			PrecipitationProbability: stats.Round(precip, 1),
		})
	}
	return out
}
