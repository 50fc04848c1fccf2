package spread

import (
	"math"

	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

type simpleFuel struct {
	base float64 // m/min
	wind float64
}

var simpleFuels = map[string]simpleFuel{
	"floresta_densa":  {3.0, 0.8},
	"floresta_aberta": {5.0, 1.0},
	"cerrado":         {8.0, 1.3},
	"campo":           {12.0, 1.5},
	"pastagem":        {15.0, 1.8},
	"agricultura":     {10.0, 1.2},
}

// SimpleSpreadRate is the empirical spread rate (m/min) used by the projector:
// a fuel base rate scaled by wind, humidity, temperature and slope multipliers
func SimpleSpreadRate(windSpeedKmh, humidityPercent, temperatureC, slopeDeg float64, fuelType string) float64 {
	fuel, ok := simpleFuels[fuelType]
	if !ok {
		fuel = simpleFuels[DefaultFuel]
	}

	windMs := math.Max(windSpeedKmh, 0) / 3.6
	windFactor := 1 + windMs*fuel.wind*0.1
	humidityFactor := stats.Clamp(1+(50-humidityPercent)/100, 0.5, 2.0)
	tempFactor := stats.Clamp(1+(temperatureC-25)/50, 0.7, 1.5)
	// doubles every 10 degrees, capped at 4x
	slopeFactor := math.Min(math.Pow(2, slopeDeg/10), 4.0)

	return fuel.base * windFactor * humidityFactor * tempFactor * slopeFactor
}
