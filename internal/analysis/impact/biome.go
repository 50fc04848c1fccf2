package impact

import (
	"math"

	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Impact levels
const (
	ImpactMinor       = "minor"
	ImpactModerate    = "moderate"
	ImpactSignificant = "significant"
	ImpactSevere      = "severe"
)

const (
	combustionFactor = 0.5  // share of standing carbon that burns
	carbonToCO2      = 3.67 // molar mass ratio CO2/C
)

// t C/ha by land use class
var biomassByVegetation = map[string]float64{
	"Floresta Densa":      250,
	"Floresta Aberta":     180,
	"Floresta Estacional": 150,
	"Cerrado Típico":      55,
	"Cerrado Campo":       30,
	"Caatinga":            25,
	"Campo Nativo":        15,
	"Área Úmida":          80,
	"Pastagem":            8,
	"Agricultura":         5,
}

var treesPerHectare = map[string]int{
	"Floresta Densa":      500,
	"Floresta Aberta":     350,
	"Floresta Estacional": 400,
	"Cerrado Típico":      200,
	"Cerrado Campo":       50,
	"Caatinga":            150,
	"Campo Nativo":        10,
	"Área Úmida":          100,
}

// years to full recovery
var recoveryYears = map[string]int{
	vegetation.BiomeAmazonia:      50,
	vegetation.BiomeMataAtlantica: 40,
	vegetation.BiomeCerrado:       15,
	vegetation.BiomeCaatinga:      20,
	vegetation.BiomePampa:         5,
	vegetation.BiomePantanal:      10,
}

var endemicSpecies = map[string][]string{
	vegetation.BiomeAmazonia: {
		"Castanheira (Bertholletia excelsa)",
		"Seringueira (Hevea brasiliensis)",
		"Mogno (Swietenia macrophylla)",
		"Açaí (Euterpe oleracea)",
		"Cupuaçu (Theobroma grandiflorum)",
	},
	vegetation.BiomeMataAtlantica: {
		"Pau-brasil (Paubrasilia echinata)",
		"Ipê-amarelo (Handroanthus albus)",
		"Peroba-rosa (Aspidosperma polyneuron)",
		"Palmito-juçara (Euterpe edulis)",
		"Araucária (Araucaria angustifolia)",
	},
	vegetation.BiomeCerrado: {
		"Pequi (Caryocar brasiliense)",
		"Buriti (Mauritia flexuosa)",
		"Cagaita (Eugenia dysenterica)",
		"Baru (Dipteryx alata)",
		"Mangaba (Hancornia speciosa)",
	},
	vegetation.BiomeCaatinga: {
		"Mandacaru (Cereus jamacaru)",
		"Juazeiro (Ziziphus joazeiro)",
		"Umbuzeiro (Spondias tuberosa)",
		"Catingueira (Poincianella pyramidalis)",
		"Aroeira (Myracrodruon urundeuva)",
	},
	vegetation.BiomePampa: {
		"Capim-barba-de-bode (Aristida spp.)",
		"Espinilho (Vachellia caven)",
		"Butiá (Butia spp.)",
		"Coronilha (Scutia buxifolia)",
	},
	vegetation.BiomePantanal: {
		"Carandá (Copernicia alba)",
		"Piúva (Handroanthus impetiginosus)",
		"Paratudo (Tabebuia aurea)",
		"Cambará (Vochysia divergens)",
	},
}

// VegetationType is one land cover class affected by a fire
type VegetationType struct {
	Name               string  `json:"name"`
	AreaHectares       float64 `json:"area_hectares"`
	Percentage         float64 `json:"percentage"`
	BiomassTonPerHa    float64 `json:"biomass_ton_per_ha"`
	CarbonStockTons    float64 `json:"carbon_stock_tons"`
	ConservationStatus string  `json:"conservation_status"`
}

// ProtectedArea is a conservation unit presumed to intersect the fire
type ProtectedArea struct {
	Name                 string  `json:"name"`
	Type                 string  `json:"type"`
	AreaAffectedHectares float64 `json:"area_affected_hectares"`
	ProtectionLevel      string  `json:"protection_level"`
}

// BiomeImpact is the ecological assessment of a fire
type BiomeImpact struct {
	FireID          string           `json:"fire_id"`
	Center          spatial.Point    `json:"location"`
	Biome           string           `json:"biome"`
	TotalHectares   float64          `json:"total_hectares"`
	VegetationTypes []VegetationType `json:"vegetation_types"`

	TotalCarbonStockTons float64 `json:"total_carbon_stock_tons"`
	CarbonReleasedTons   float64 `json:"carbon_released_tons"`
	CO2EmissionsTons     float64 `json:"co2_emissions_tons"`

	RecoveryYears          int             `json:"recovery_time_years"`
	EndemicSpeciesAtRisk   []string        `json:"endemic_species_at_risk"`
	ProtectedAreasAffected []ProtectedArea `json:"protected_areas_affected"`
	ImpactLevel            string          `json:"conservation_impact_level"`
	TreesAffected          int             `json:"estimated_trees_affected"`
	WaterResourcesAtRisk   bool            `json:"water_resources_at_risk"`
}

// AnalyzeBiome assesses the ecological impact of a fire of areaHectares centred at (lat, lon)
func AnalyzeBiome(fireID string, lat, lon, areaHectares float64, lookup vegetation.Lookup) BiomeImpact {
	veg := lookup.Vegetation(lat, lon)
	biome := veg.Biome

	biomassPerHa, ok := biomassByVegetation[veg.LandUseClass]
	if !ok {
		biomassPerHa = 50
	}
	totalCarbon := areaHectares * biomassPerHa
	released := totalCarbon * combustionFactor

	recovery, ok := recoveryYears[biome]
	if !ok {
		recovery = 20
	}

	species := endemicSpecies[biome]
	if len(species) > 5 {
		species = species[:5]
	}
	species = append([]string{}, species...)

	trees, ok := treesPerHectare[veg.LandUseClass]
	if !ok {
		trees = 100
	}

	forestBiome := biome == vegetation.BiomeAmazonia || biome == vegetation.BiomeMataAtlantica

	return BiomeImpact{
		FireID:        fireID,
		Center:        spatial.Point{Lat: lat, Lon: lon},
		Biome:         biome,
		TotalHectares: areaHectares,
		VegetationTypes: []VegetationType{{
			Name:               veg.LandUseClass,
			AreaHectares:       areaHectares,
			Percentage:         100,
			BiomassTonPerHa:    biomassPerHa,
			CarbonStockTons:    totalCarbon,
			ConservationStatus: veg.ConservationStatus,
		}},
		TotalCarbonStockTons:   totalCarbon,
		CarbonReleasedTons:     released,
		CO2EmissionsTons:       released * carbonToCO2,
		RecoveryYears:          recovery,
		EndemicSpeciesAtRisk:   species,
		ProtectedAreasAffected: protectedAreas(biome, areaHectares),
		ImpactLevel:            impactLevel(areaHectares, forestBiome),
		TreesAffected:          int(areaHectares * float64(trees)),
		WaterResourcesAtRisk:   biome == vegetation.BiomePantanal || biome == vegetation.BiomeAmazonia || veg.LandUseClass == "Área Úmida",
	}
}

func impactLevel(areaHectares float64, forestBiome bool) string {
	switch {
	case areaHectares > 1000 && forestBiome:
		return ImpactSevere
	case areaHectares > 500 || (areaHectares > 100 && forestBiome):
		return ImpactSignificant
	case areaHectares > 100:
		return ImpactModerate
	}
	return ImpactMinor
}

// protectedAreas is a coarse biome-level stand-in for a conservation unit registry
func protectedAreas(biome string, areaHectares float64) []ProtectedArea {
	switch biome {
	case vegetation.BiomeAmazonia:
		return []ProtectedArea{{"Reserva Florestal", "Reserva Biológica", math.Min(areaHectares*0.3, 100), "strict"}}
	case vegetation.BiomeMataAtlantica:
		return []ProtectedArea{{"Área de Proteção Ambiental", "APA", math.Min(areaHectares*0.2, 50), "sustainable_use"}}
	case vegetation.BiomePantanal:
		return []ProtectedArea{{"Reserva da Biosfera do Pantanal", "Reserva da Biosfera", math.Min(areaHectares*0.5, 200), "biosphere_reserve"}}
	}
	return []ProtectedArea{}
}
