package impact

import (
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/stats"
)

// kg emitted per ton of dry matter burned
var emissionFactors = struct {
	CO2, CO, CH4, N2O, NOx, PM25, PM10 float64
}{1613, 107, 4.7, 0.26, 3.9, 9.7, 12.4}

// 100-year global warming potential, IPCC AR5
const (
	gwpCH4 = 28
	gwpN2O = 265
)

const carbonFraction = 0.47 // share of dry biomass that is carbon

type biomassPools struct {
	AboveGround, BelowGround, Litter float64 // t dry matter/ha
}

var biomassByBiome = map[string]biomassPools{
	vegetation.BiomeAmazonia:      {300, 60, 15},
	vegetation.BiomeMataAtlantica: {200, 40, 12},
	vegetation.BiomeCerrado:       {40, 30, 5},
	vegetation.BiomeCaatinga:      {25, 15, 3},
	vegetation.BiomePampa:         {10, 20, 2},
	vegetation.BiomePantanal:      {60, 25, 8},
}

// fraction of each pool consumed by the fire
var combustionCompleteness = map[string]biomassPools{
	"forest":    {0.40, 0.05, 0.90},
	"savanna":   {0.65, 0.10, 0.95},
	"grassland": {0.85, 0.15, 0.98},
}

func poolsFor(biome string) biomassPools {
	if p, ok := biomassByBiome[biome]; ok {
		return p
	}
	return biomassByBiome[vegetation.BiomeCerrado]
}

func vegetationClass(biome string) string {
	switch biome {
	case vegetation.BiomeAmazonia, vegetation.BiomeMataAtlantica:
		return "forest"
	case vegetation.BiomeCerrado, vegetation.BiomeCaatinga:
		return "savanna"
	}
	return "grassland"
}

// Emissions are the greenhouse gas and particulate emissions of a fire, in tons
type Emissions struct {
	FireID       string  `json:"fire_id"`
	AreaHectares float64 `json:"area_hectares"`
	Biome        string  `json:"biome"`

	TotalBiomassTons  float64 `json:"total_biomass_tons"`
	BiomassBurnedTons float64 `json:"biomass_burned_tons"`

	CO2Tons  float64 `json:"co2_tons"`
	COTons   float64 `json:"co_tons"`
	CH4Tons  float64 `json:"ch4_tons"`
	N2OTons  float64 `json:"n2o_tons"`
	NOxTons  float64 `json:"nox_tons"`
	PM25Tons float64 `json:"pm25_tons"`
	PM10Tons float64 `json:"pm10_tons"`

	CO2EquivalentTons float64 `json:"co2_equivalent_tons"`

	CarbonStockBeforeTons float64 `json:"carbon_stock_before_tons"`
	CarbonReleasedTons    float64 `json:"carbon_released_tons"`
}

// PerHectare returns CO2, CO2e (tons) and PM2.5 (kg) per hectare, nil for zero area
func (e Emissions) PerHectare() map[string]float64 {
	if e.AreaHectares <= 0 {
		return nil
	}
	return map[string]float64{
		"co2_tons":  e.CO2Tons / e.AreaHectares,
		"co2e_tons": e.CO2EquivalentTons / e.AreaHectares,
		"pm25_kg":   e.PM25Tons * 1000 / e.AreaHectares,
	}
}

// CalculateEmissions estimates emissions from biome biomass pools, combustion
// completeness and IPCC emission factors
func CalculateEmissions(fireID string, lat, lon, areaHectares float64, lookup vegetation.Lookup) Emissions {
	biome := lookup.Vegetation(lat, lon).Biome
	pools := poolsFor(biome)
	cc := combustionCompleteness[vegetationClass(biome)]

	above := pools.AboveGround * areaHectares
	below := pools.BelowGround * areaHectares
	litter := pools.Litter * areaHectares
	total := above + below + litter
	burned := above*cc.AboveGround + below*cc.BelowGround + litter*cc.Litter

	e := Emissions{
		FireID:                fireID,
		AreaHectares:          areaHectares,
		Biome:                 biome,
		TotalBiomassTons:      total,
		BiomassBurnedTons:     burned,
		CO2Tons:               burned * emissionFactors.CO2 / 1000,
		COTons:                burned * emissionFactors.CO / 1000,
		CH4Tons:               burned * emissionFactors.CH4 / 1000,
		N2OTons:               burned * emissionFactors.N2O / 1000,
		NOxTons:               burned * emissionFactors.NOx / 1000,
		PM25Tons:              burned * emissionFactors.PM25 / 1000,
		PM10Tons:              burned * emissionFactors.PM10 / 1000,
		CarbonStockBeforeTons: total * carbonFraction,
		CarbonReleasedTons:    burned * carbonFraction,
	}
	e.CO2EquivalentTons = e.CO2Tons + e.CH4Tons*gwpCH4 + e.N2OTons*gwpN2O
	return e
}

// Equivalent expresses CO2e tons in everyday terms
type Equivalent struct {
	CarsOneYear          int `json:"cars_one_year"`
	FlightsSPNewYork     int `json:"flights_sp_new_york"`
	HouseholdsOneYear    int `json:"households_one_year"`
	TreesToOffsetOneYear int `json:"trees_to_offset_one_year"`
	LitersGasoline       int `json:"liters_gasoline"`
}

// Equivalents converts CO2e tons to relatable quantities, truncated
func Equivalents(co2eTons float64) Equivalent {
	return Equivalent{
		CarsOneYear:          int(co2eTons / 4.6),
		FlightsSPNewYork:     int(co2eTons / 2.0),
		HouseholdsOneYear:    int(co2eTons / 3.2),
		TreesToOffsetOneYear: int(co2eTons / 0.022),
		LitersGasoline:       int(co2eTons / 0.0023),
	}
}

// AirQualityImpact is a coarse PM2.5 exposure estimate
type AirQualityImpact struct {
	PM25ConcentrationUgM3 float64  `json:"estimated_pm25_concentration_ug_m3"`
	Category              string   `json:"aqi_category"`
	HealthConcern         string   `json:"health_concern"`
	Recommendations       []string `json:"recommendations"`
}

var aqiBands = []struct {
	upper           float64
	category        string
	concern         string
	recommendations []string
}{
	{12, "Good", "Air quality is satisfactory", []string{
		"Air quality is good, enjoy outdoor activities",
	}},
	{35.4, "Moderate", "Sensitive groups may experience effects", []string{
		"Sensitive individuals should consider limiting prolonged outdoor exposure",
	}},
	{55.4, "Unhealthy for Sensitive Groups", "Sensitive groups should reduce outdoor activities", []string{
		"Children, elderly, and those with respiratory conditions should limit outdoor activities",
		"Keep windows closed",
		"Consider using air purifiers indoors",
	}},
	{150.4, "Unhealthy", "Everyone may experience health effects", []string{
		"Everyone should reduce prolonged outdoor activities",
		"Keep windows and doors closed",
		"Use air purifiers if available",
		"Wear N95 masks if going outside is necessary",
	}},
	{250.4, "Very Unhealthy", "Health alert: significant risk", []string{
		"Avoid all outdoor activities",
		"Stay indoors with windows closed",
		"Use air purifiers",
		"Seek medical attention if experiencing symptoms",
	}},
}

var hazardous = []string{
	"Stay indoors",
	"Evacuate if possible",
	"Seal doors and windows",
	"Seek medical attention immediately if experiencing symptoms",
	"Follow local emergency guidelines",
}

// AirQuality disperses PM2.5 over a 1 km mixing layer above areaKm2 and
// classifies the result on the US EPA scale
func AirQuality(pm25Tons, areaKm2 float64) AirQualityImpact {
	concentration := 0.0
	if areaKm2 > 0 {
		concentration = pm25Tons * 1e12 / (areaKm2 * 1e6 * 1000)
	}

	out := AirQualityImpact{
		PM25ConcentrationUgM3: stats.Round(concentration, 1),
		Category:              "Hazardous",
		HealthConcern:         "Emergency conditions",
		Recommendations:       hazardous,
	}
	for _, band := range aqiBands {
		if concentration <= band.upper {
			out.Category = band.category
			out.HealthConcern = band.concern
			out.Recommendations = band.recommendations
			break
		}
	}
	return out
}
