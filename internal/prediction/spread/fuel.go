package spread

// FuelModel holds the physical fuel bed parameters used by the Rothermel model
type FuelModel struct {
	Key                  string  `json:"key"`
	Name                 string  `json:"name"`
	LoadKgM2             float64 `json:"fuel_load_kg_m2"`
	DepthM               float64 `json:"fuel_depth_m"`
	DeadMoisture         float64 `json:"dead_fuel_moisture"` // fraction
	LiveMoisture         float64 `json:"live_fuel_moisture"` // fraction
	SurfaceToVolume      float64 `json:"surface_to_volume_ratio"` // 1/m
	HeatContentKJKg      float64 `json:"heat_content_kj_kg"`
	MineralContent       float64 `json:"mineral_content"`     // fraction
	MoistureOfExtinction float64 `json:"moisture_extinction"` // fraction
}

// DefaultFuel is used for unknown fuel keys
const DefaultFuel = "cerrado"

var fuelModels = map[string]FuelModel{
	"floresta_densa": {
		Key: "floresta_densa", Name: "Dense Forest",
		LoadKgM2: 2.5, DepthM: 0.5, DeadMoisture: 0.15, LiveMoisture: 1.0,
		SurfaceToVolume: 5000, HeatContentKJKg: 18000, MineralContent: 0.055, MoistureOfExtinction: 0.30,
	},
	"cerrado": {
		Key: "cerrado", Name: "Cerrado Savanna",
		LoadKgM2: 0.8, DepthM: 0.6, DeadMoisture: 0.10, LiveMoisture: 0.8,
		SurfaceToVolume: 6000, HeatContentKJKg: 18500, MineralContent: 0.05, MoistureOfExtinction: 0.25,
	},
	"campo": {
		Key: "campo", Name: "Grassland",
		LoadKgM2: 0.4, DepthM: 0.8, DeadMoisture: 0.08, LiveMoisture: 0.5,
		SurfaceToVolume: 8000, HeatContentKJKg: 18000, MineralContent: 0.04, MoistureOfExtinction: 0.20,
	},
	"pastagem": {
		Key: "pastagem", Name: "Pasture",
		LoadKgM2: 0.3, DepthM: 0.4, DeadMoisture: 0.10, LiveMoisture: 0.6,
		SurfaceToVolume: 7000, HeatContentKJKg: 17500, MineralContent: 0.05, MoistureOfExtinction: 0.22,
	},
}

// Fuel returns the fuel model for a key, falling back to cerrado
func Fuel(key string) FuelModel {
	if m, ok := fuelModels[key]; ok {
		return m
	}
	return fuelModels[DefaultFuel]
}

// HasFuel reports whether a dedicated Rothermel fuel model exists for key
func HasFuel(key string) bool {
	_, ok := fuelModels[key]
	return ok
}
