package models

import (
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// WeatherReading is a scalar observation supplied by a weather collaborator
type WeatherReading struct {
	TemperatureC     float64   `json:"temperature_c"`
	HumidityPercent  float64   `json:"humidity_percent"`
	WindSpeedKmh     float64   `json:"wind_speed_kmh"`
	WindDirectionDeg float64   `json:"wind_direction_deg"` // direction the fire is pushed towards
	PrecipitationMm  float64   `json:"precipitation_mm"`
	ObservedAt       time.Time `json:"observed_at"`
}

// AverageWeather folds several readings into one. Scalars are averaged, the
// wind direction is the speed-weighted circular mean and the wind speed is
// discounted by how scattered the directions are, so shifting winds push less
// than a steady one. ObservedAt is the latest observation.
func AverageWeather(readings []WeatherReading) WeatherReading {
	if len(readings) == 0 {
		return WeatherReading{}
	}

	n := float64(len(readings))
	var out WeatherReading
	directions := make([]float64, len(readings))
	speeds := make([]float64, len(readings))
	for i, r := range readings {
		out.TemperatureC += r.TemperatureC / n
		out.HumidityPercent += r.HumidityPercent / n
		out.WindSpeedKmh += r.WindSpeedKmh / n
		out.PrecipitationMm += r.PrecipitationMm / n
		if r.ObservedAt.After(out.ObservedAt) {
			out.ObservedAt = r.ObservedAt
		}
		directions[i] = r.WindDirectionDeg
		speeds[i] = r.WindSpeedKmh
	}

	out.WindDirectionDeg = spatial.CircularMeanDegrees(directions, speeds)
	out.WindSpeedKmh *= spatial.MeanResultantLength(directions)
	return out
}
