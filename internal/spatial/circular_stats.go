package spatial

import (
	"math"
)

var cardinals = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CircularMeanDegrees calculates the (optionally weighted) mean direction of
// angles given in degrees. Returns [0, 360).
func CircularMeanDegrees(angles []float64, weights []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	for i, angle := range angles {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		rad := toRadians(angle)
		sumSin += w * math.Sin(rad)
		sumCos += w * math.Cos(rad)
	}

	return NormalizeDegrees(toDegrees(math.Atan2(sumSin, sumCos)))
}

// MeanResultantLength measures how concentrated a set of directions (degrees) is.
// 0 = spread evenly around the compass, 1 = all identical.
func MeanResultantLength(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	for _, angle := range angles {
		rad := toRadians(angle)
		sumSin += math.Sin(rad)
		sumCos += math.Cos(rad)
	}

	return math.Hypot(sumSin, sumCos) / float64(len(angles))
}

// AngleBetween returns the absolute smallest difference between two headings
// in degrees, in [0, 180]
func AngleBetween(a, b float64) float64 {
	return math.Abs(math.Mod(math.Mod(a-b+180, 360)+360, 360) - 180)
}

// DegreesToCardinal maps a heading to one of the eight compass points
func DegreesToCardinal(deg float64) string {
	idx := int(math.RoundToEven(NormalizeDegrees(deg)/45)) % 8
	return cardinals[idx]
}

// CardinalName returns the spoken name of a compass point abbreviation
func CardinalName(abbrev string) string {
	switch abbrev {
	case "N":
		return "north"
	case "NE":
		return "northeast"
	case "E":
		return "east"
	case "SE":
		return "southeast"
	case "S":
		return "south"
	case "SW":
		return "southwest"
	case "W":
		return "west"
	case "NW":
		return "northwest"
	}
	return abbrev
}
