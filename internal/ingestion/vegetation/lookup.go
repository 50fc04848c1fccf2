// Package vegetation resolves biome, land use and fuel characteristics for a
// location from static MapBiomas-derived tables.
package vegetation

import (
	"math"

	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Brazilian biomes
const (
	BiomeAmazonia      = "Amazônia"
	BiomeCerrado       = "Cerrado"
	BiomeMataAtlantica = "Mata Atlântica"
	BiomeCaatinga      = "Caatinga"
	BiomePampa         = "Pampa"
	BiomePantanal      = "Pantanal"
)

// Conservation status values
const (
	ConservationCritical   = "critical"
	ConservationVulnerable = "vulnerable"
	ConservationStable     = "stable"
)

// Lookup resolves the vegetation at a location
type Lookup interface {
	Vegetation(lat, lon float64) Vegetation
}

// Vegetation describes the land cover at a location
type Vegetation struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Biome              string  `json:"biome"`
	LandUseClass       string  `json:"land_use_class"`
	LandUseCode        int     `json:"land_use_code"`
	FuelType           string  `json:"fuel_type"`
	FuelLoadTonHa      float64 `json:"fuel_load_ton_ha"`
	FuelDepthM         float64 `json:"fuel_depth_m"`
	MoistureContent    float64 `json:"moisture_content"`
	SpreadRateFactor   float64 `json:"spread_rate_factor"`
	BiomassTonCHa      float64 `json:"biomass_ton_c_ha"`
	ConservationStatus string  `json:"conservation_status"`
}

// FuelCharacteristics are the fire-relevant properties of a land use type
type FuelCharacteristics struct {
	Key               string  `json:"fuel_type"`
	LoadTonHa         float64 `json:"fuel_load_ton_ha"`
	DepthM            float64 `json:"fuel_depth_m"`
	MoistureContent   float64 `json:"moisture_content"`
	SpreadRateFactor  float64 `json:"spread_rate_factor"`
	FlameLengthFactor float64 `json:"flame_length_factor"`
	Description       string  `json:"description"`
	Classes           []int   `json:"mapbiomas_classes"`
}

var fuelCharacteristics = map[string]FuelCharacteristics{
	"floresta_densa":  {"floresta_densa", 25.0, 0.5, 0.20, 0.6, 1.2, "Dense forest with high canopy closure", []int{1, 3, 5, 6}},
	"floresta_aberta": {"floresta_aberta", 15.0, 0.4, 0.15, 0.8, 1.0, "Open woodland or savanna forest", []int{4}},
	"cerrado":         {"cerrado", 8.0, 0.6, 0.10, 1.2, 0.8, "Brazilian savanna with mixed grass and shrubs", []int{4, 12}},
	"campo":           {"campo", 4.0, 0.8, 0.08, 1.5, 0.6, "Grassland and open fields", []int{12, 13}},
	"pastagem":        {"pastagem", 3.0, 0.4, 0.10, 1.8, 0.5, "Pasture for cattle", []int{15}},
	"agricultura":     {"agricultura", 6.0, 0.5, 0.12, 1.3, 0.7, "Agricultural areas", []int{18, 19, 20, 21, 36, 39, 40, 46, 62}},
	"area_umida":      {"area_umida", 10.0, 0.3, 0.40, 0.3, 0.4, "Wetlands and flooded areas", []int{11, 6}},
	"urbano":          {"urbano", 0.5, 0.1, 0.05, 0.1, 0.2, "Urban and built-up areas", []int{24, 30}},
}

// Characteristics returns the fuel characteristics of a fuel type, falling back to cerrado
func Characteristics(fuelType string) FuelCharacteristics {
	if fc, ok := fuelCharacteristics[fuelType]; ok {
		return fc
	}
	return fuelCharacteristics["cerrado"]
}

type biomeInfo struct {
	name                     string
	centerLat, centerLon     float64
	south, west, north, east float64
	biomassAvg               float64 // t C/ha
	fuelType                 string
	landUse                  string
	landUseCode              int
}

// The bounds overlap; see findBiome.
var biomes = []biomeInfo{
	{BiomeAmazonia, -3.4653, -62.2159, -9.0, -73.0, 5.0, -44.0, 225, "floresta_densa", "Floresta Densa", 3},
	{BiomeCerrado, -15.7801, -47.9292, -24.0, -60.0, -2.0, -41.0, 55, "cerrado", "Cerrado Típico", 4},
	{BiomeMataAtlantica, -23.5505, -46.6333, -30.0, -55.0, -3.0, -35.0, 150, "floresta_aberta", "Floresta Estacional", 3},
	{BiomeCaatinga, -9.0, -40.0, -17.0, -45.0, -3.0, -35.0, 30, "campo", "Caatinga", 12},
	{BiomePampa, -30.0, -54.0, -34.0, -58.0, -28.0, -50.0, 20, "campo", "Campo Nativo", 12},
	{BiomePantanal, -19.0, -57.0, -22.0, -59.0, -16.0, -55.0, 70, "area_umida", "Área Úmida", 11},
}

// StaticLookup resolves vegetation from approximate biome bounding boxes
type StaticLookup struct{}

// NewStaticLookup creates a new static lookup
func NewStaticLookup() *StaticLookup {
	return &StaticLookup{}
}

// Vegetation implements Lookup
func (l *StaticLookup) Vegetation(lat, lon float64) Vegetation {
	b := findBiome(lat, lon)
	fc := Characteristics(b.fuelType)

	return Vegetation{
		Latitude:           lat,
		Longitude:          lon,
		Biome:              b.name,
		LandUseClass:       b.landUse,
		LandUseCode:        b.landUseCode,
		FuelType:           fc.Key,
		FuelLoadTonHa:      fc.LoadTonHa,
		FuelDepthM:         fc.DepthM,
		MoistureContent:    fc.MoistureContent,
		SpreadRateFactor:   fc.SpreadRateFactor,
		BiomassTonCHa:      b.biomassAvg,
		ConservationStatus: ConservationStatusOf(b.name),
	}
}

// findBiome picks, among the biomes whose bounds contain the point, the one with
// the nearest reference centre. Points outside every box resolve to Cerrado,
// which covers most of central Brazil.
func findBiome(lat, lon float64) biomeInfo {
	best := -1
	bestDist := math.Inf(1)
	for i, b := range biomes {
		if lat < b.south || lat > b.north || lon < b.west || lon > b.east {
			continue
		}
		if d := spatial.HaversineDistance(lat, lon, b.centerLat, b.centerLon); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return biomes[1]
	}
	return biomes[best]
}

// ConservationStatusOf returns the conservation status of a biome
func ConservationStatusOf(biome string) string {
	switch biome {
	case BiomeAmazonia, BiomeMataAtlantica:
		return ConservationCritical
	case BiomeCerrado, BiomeCaatinga:
		return ConservationVulnerable
	}
	return ConservationStable
}

// FuelModelSuggestion is the fuel parameter set suggested for spread modelling
type FuelModelSuggestion struct {
	FuelType           string  `json:"fuel_type"`
	FuelLoadKgM2       float64 `json:"fuel_load_kg_m2"`
	FuelDepthM         float64 `json:"fuel_depth_m"`
	MoistureExtinction float64 `json:"moisture_extinction"` // percent
	SpreadRateFactor   float64 `json:"spread_rate_factor"`
	FlameLengthFactor  float64 `json:"flame_length_factor"`
	Description        string  `json:"description"`
	Biome              string  `json:"biome"`
}

// SuggestFuelModel derives spread-model fuel parameters for a location
func SuggestFuelModel(lookup Lookup, lat, lon float64) FuelModelSuggestion {
	v := lookup.Vegetation(lat, lon)
	fc := Characteristics(v.FuelType)

	return FuelModelSuggestion{
		FuelType:           v.FuelType,
		FuelLoadKgM2:       fc.LoadTonHa / 10,
		FuelDepthM:         fc.DepthM,
		MoistureExtinction: fc.MoistureContent * 100,
		SpreadRateFactor:   fc.SpreadRateFactor,
		FlameLengthFactor:  fc.FlameLengthFactor,
		Description:        fc.Description,
		Biome:              v.Biome,
	}
}
