package spread

import (
	"math"

	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// Unit conversions. The empirical coefficients below are calibrated against
// imperial units, so the fuel bed is converted before use.
const (
	kgM2ToLbFt2   = 0.2048
	mToFt         = 3.281
	perMToPerFt   = 0.3048
	kJKgToBTULb   = 0.4299
	ftToM         = 0.3048
	msToFtMin     = 196.85
	btuFtSToKWM   = 3.461
	btuFt2ToKJM2  = 11.356
	particleDens  = 32.0 // lb/ft3, wood
	maxSlopeDeg   = 85.0
	minSigma      = 1.0
	minBulkDens   = 0.01
	minPacking    = 1e-6
	minExtinction = 1e-3
)

// SpreadResult is the fire behaviour at the head and around the perimeter
type SpreadResult struct {
	SpreadRateMPerMin float64 `json:"spread_rate_m_per_min"`
	SpreadRateKmPerH  float64 `json:"spread_rate_km_per_hour"`
	BaseRateMPerMin   float64 `json:"base_rate_m_per_min"` // no wind, no slope
	FlameLengthM      float64 `json:"flame_length_m"`
	FirelineIntensity float64 `json:"fireline_intensity_kw_m"`
	HeatPerUnitArea   float64 `json:"heat_per_unit_area_kj_m2"`
	ReactionIntensity float64 `json:"reaction_intensity_kw_m2"`
	HeadRateMPerMin   float64 `json:"head_m_per_min"`
	FlankRateMPerMin  float64 `json:"flank_m_per_min"`
	BackRateMPerMin   float64 `json:"back_m_per_min"`
	WindFactor        float64 `json:"wind_factor"`
	SlopeFactor       float64 `json:"slope_factor"`
}

// Rothermel computes surface fire spread for a fuel bed under wind and slope.
// Wind and upslope are assumed aligned with the head. windDirectionDeg and
// slopeAspectDeg are accepted for callers that track them but do not change
// the rate; downhill slopes add nothing. Non-finite fuel parameters count as
// 0, degenerate ones are floored, and the result falls back to the no-wind,
// no-slope rate if anything turns non-finite.
func Rothermel(fuel FuelModel, windSpeedMs, windDirectionDeg, slopeDeg, slopeAspectDeg float64) SpreadResult {
	fuel = fuel.sanitized()

	w0 := math.Max(fuel.LoadKgM2, 0) * kgM2ToLbFt2
	delta := fuel.DepthM * mToFt
	sigma := math.Max(fuel.SurfaceToVolume*perMToPerFt, minSigma)
	h := math.Max(fuel.HeatContentKJKg, 0) * kJKgToBTULb
	mf := math.Max(fuel.DeadMoisture, 0)
	mx := math.Max(fuel.MoistureOfExtinction, minExtinction)
	se := fuel.MineralContent

	rhoB := minBulkDens
	if delta > 0 {
		rhoB = math.Max(w0/delta, minBulkDens)
	}

	beta := math.Max(rhoB/particleDens, minPacking)
	betaOp := 3.348 * math.Pow(sigma, -0.8189)
	betaRatio := beta / betaOp

	sigma15 := math.Pow(sigma, 1.5)
	gammaMax := sigma15 / (495 + 0.0594*sigma15)
	a := 133 * math.Pow(sigma, -0.7913)
	gamma := gammaMax * math.Pow(betaRatio, a) * math.Exp(a*(1-betaRatio))

	rM := math.Min(mf/mx, 1)
	etaM := math.Max(0, 1-2.59*rM+5.11*rM*rM-3.52*rM*rM*rM)

	etaS := 1.0
	if se > 0 {
		etaS = stats.Clamp(0.174*math.Pow(se, -0.19), 0, 1)
	}

	iR := gamma * w0 * h * etaM * etaS
	if !finite(iR) || iR < 0 {
		iR = 0
	}

	xi := math.Exp((0.792+0.681*math.Sqrt(sigma))*(beta+0.1)) / (192 + 0.2595*sigma)
	epsilon := math.Exp(-138 / sigma)
	qIg := 250 + 1116*mf

	r0 := 0.0
	if denom := rhoB * epsilon * qIg; denom > 0 {
		r0 = iR * xi / denom
	}
	if !finite(r0) || r0 < 0 {
		r0 = 0
	}

	c := 7.47 * math.Exp(-0.133*math.Pow(sigma, 0.55))
	b := 0.02526 * math.Pow(sigma, 0.54)
	e := 0.715 * math.Exp(-3.59e-4*sigma)

	phiW := 0.0
	if u := windSpeedMs * msToFtMin; u > 0 {
		phiW = c * math.Pow(u, b) * math.Pow(betaRatio, -e)
	}

	slope := stats.Clamp(slopeDeg, 0, maxSlopeDeg) * math.Pi / 180
	phiS := 5.275 * math.Pow(beta, -0.3) * math.Pow(math.Tan(slope), 2)

	if !finite(phiW) || phiW < 0 {
		phiW = 0
	}
	if !finite(phiS) || phiS < 0 {
		phiS = 0
	}

	return behaviour(r0, iR, phiW, phiS)
}

// behaviour derives directional rates and intensities from the base rate (ft/min)
// and the reaction intensity (BTU/ft²/min)
func behaviour(r0, iR, phiW, phiS float64) SpreadResult {
	if r0 == 0 {
		phiW, phiS = 0, 0
	}
	r := r0 * (1 + phiW + phiS)
	if !finite(r) {
		r, phiW, phiS = r0, 0, 0
	}

	head := r * ftToM
	back := r0 * ftToM * 0.3
	flank := (head + back) / 2 * 0.7

	intensity := iR * r / 60 * btuFtSToKWM
	heatPerArea := 0.0
	if r > 0 {
		heatPerArea = iR * btuFt2ToKJM2 / (r / 60)
	}

	return SpreadResult{
		SpreadRateMPerMin: head,
		SpreadRateKmPerH:  head * 0.06,
		BaseRateMPerMin:   r0 * ftToM,
		FlameLengthM:      0.0775 * math.Pow(intensity, 0.46),
		FirelineIntensity: intensity,
		HeatPerUnitArea:   heatPerArea,
		ReactionIntensity: iR * btuFt2ToKJM2,
		HeadRateMPerMin:   head,
		FlankRateMPerMin:  flank,
		BackRateMPerMin:   back,
		WindFactor:        phiW,
		SlopeFactor:       phiS,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if finite(v) {
		return v
	}
	return 0
}

// sanitized zeroes NaN and infinite parameters
func (f FuelModel) sanitized() FuelModel {
	f.LoadKgM2 = finiteOrZero(f.LoadKgM2)
	f.DepthM = finiteOrZero(f.DepthM)
	f.SurfaceToVolume = finiteOrZero(f.SurfaceToVolume)
	f.HeatContentKJKg = finiteOrZero(f.HeatContentKJKg)
	f.DeadMoisture = finiteOrZero(f.DeadMoisture)
	f.MoistureOfExtinction = finiteOrZero(f.MoistureOfExtinction)
	f.MineralContent = finiteOrZero(f.MineralContent)
	return f
}

// AdjustMoisture scales the dead fuel moisture of a model by weather. The
// result is limited to 3-30 %.
func AdjustMoisture(fuel FuelModel, humidityPercent, temperatureC float64) FuelModel {
	humidityFactor := humidityPercent / 50
	tempFactor := (30 - temperatureC) / 30

	adjusted := fuel
	adjusted.DeadMoisture = stats.Clamp(fuel.DeadMoisture*humidityFactor*(1+tempFactor*0.2), 0.03, 0.30)
	return adjusted
}

// CalculateFireSpread runs Rothermel for a fuel type under the given weather
func CalculateFireSpread(windSpeedKmh, windDirectionDeg, humidityPercent, temperatureC, slopeDeg float64, fuelType string) SpreadResult {
	fuel := AdjustMoisture(Fuel(fuelType), humidityPercent, temperatureC)
	return Rothermel(fuel, windSpeedKmh/3.6, windDirectionDeg, slopeDeg, 0)
}

// EstimateTimeToArea returns the hours needed for a circular fire to grow from
// currentHa to targetHa at the given head rate. 0 when no growth is needed or possible.
func EstimateTimeToArea(currentHa, targetHa, rateMPerMin float64) float64 {
	if rateMPerMin <= 0 || targetHa <= currentHa {
		return 0
	}
	currentRadius := math.Sqrt(math.Max(currentHa, 0) * 10000 / math.Pi)
	targetRadius := math.Sqrt(targetHa * 10000 / math.Pi)
	return (targetRadius - currentRadius) / rateMPerMin / 60
}
