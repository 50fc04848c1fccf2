package service

import (
	"fmt"

	"github.com/jengzang/firewatch-backend-go/internal/analysis/burned"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/impact"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// ImpactService derives burned area, perimeter and environmental impact
type ImpactService struct {
	lookup vegetation.Lookup
}

// NewImpactService creates a new impact service
func NewImpactService(lookup vegetation.Lookup) *ImpactService {
	if lookup == nil {
		lookup = vegetation.NewStaticLookup()
	}
	return &ImpactService{lookup: lookup}
}

// AreaRequest identifies a location and the area burned there
type AreaRequest struct {
	FireID       string  `json:"fire_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AreaHectares float64 `json:"area_hectares"`
}

func (r AreaRequest) validate() error {
	if err := validatePoint(spatial.Point{Lat: r.Latitude, Lon: r.Longitude}); err != nil {
		return err
	}
	if r.AreaHectares < 0 {
		return fmt.Errorf("%w: negative area", ErrInvalidInput)
	}
	return nil
}

// CarbonResponse groups emissions with their everyday equivalents and air quality impact
type CarbonResponse struct {
	Emissions   impact.Emissions        `json:"emissions"`
	PerHectare  map[string]float64      `json:"per_hectare,omitempty"`
	Equivalents impact.Equivalent       `json:"equivalents"`
	AirQuality  impact.AirQualityImpact `json:"air_quality"`
}

// BurnedArea estimates the area burned by a hotspot group. When prev is an
// earlier estimate of the same fire the growth rate since then is attached.
func (s *ImpactService) BurnedArea(fireID string, hotspots []models.Hotspot, method string, prev *burned.Estimate) (burned.Estimate, error) {
	if len(hotspots) == 0 {
		return burned.Estimate{}, fmt.Errorf("%w: no hotspots", ErrInvalidInput)
	}

	est := burned.EstimateBurnedArea(fireID, hotspots, burned.ParseMethod(method))
	if prev == nil {
		return est, nil
	}
	est, err := burned.WithExpansionRate(*prev, est)
	if err != nil {
		return burned.Estimate{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return est, nil
}

// PerimeterResponse is a traced perimeter, with the change against an earlier one when given
type PerimeterResponse struct {
	Perimeter burned.Perimeter `json:"perimeter"`
	Change    *burned.Change   `json:"change,omitempty"`
}

// Perimeter traces the boundary of a hotspot group
func (s *ImpactService) Perimeter(fireID string, hotspots []models.Hotspot, wind *burned.Wind, prev *burned.Perimeter) (PerimeterResponse, error) {
	if len(hotspots) == 0 {
		return PerimeterResponse{}, fmt.Errorf("%w: no hotspots", ErrInvalidInput)
	}
	if wind != nil && wind.SpeedKmh < 0 {
		return PerimeterResponse{}, fmt.Errorf("%w: negative wind speed", ErrInvalidInput)
	}

	resp := PerimeterResponse{Perimeter: burned.CalculatePerimeter(fireID, hotspots, wind)}
	if prev != nil {
		change, err := burned.TrackChange(*prev, resp.Perimeter)
		if err != nil {
			return PerimeterResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		resp.Change = &change
	}
	return resp, nil
}

// Biome analyzes the ecological impact of a burned area
func (s *ImpactService) Biome(req AreaRequest) (impact.BiomeImpact, error) {
	if err := req.validate(); err != nil {
		return impact.BiomeImpact{}, err
	}
	return impact.AnalyzeBiome(req.FireID, req.Latitude, req.Longitude, req.AreaHectares, s.lookup), nil
}

// Carbon estimates the emissions of a burned area
func (s *ImpactService) Carbon(req AreaRequest) (CarbonResponse, error) {
	if err := req.validate(); err != nil {
		return CarbonResponse{}, err
	}

	e := impact.CalculateEmissions(req.FireID, req.Latitude, req.Longitude, req.AreaHectares, s.lookup)
	return CarbonResponse{
		Emissions:   e,
		PerHectare:  e.PerHectare(),
		Equivalents: impact.Equivalents(e.CO2EquivalentTons),
		AirQuality:  impact.AirQuality(e.PM25Tons, req.AreaHectares/100),
	}, nil
}

// VegetationResponse is the vegetation at a point with the suggested fuel model
type VegetationResponse struct {
	vegetation.Vegetation
	FuelModel vegetation.FuelModelSuggestion `json:"fuel_model"`
}

// Vegetation looks up the vegetation at a point
func (s *ImpactService) Vegetation(lat, lon float64) (VegetationResponse, error) {
	if err := validatePoint(spatial.Point{Lat: lat, Lon: lon}); err != nil {
		return VegetationResponse{}, err
	}
	return VegetationResponse{
		Vegetation: s.lookup.Vegetation(lat, lon),
		FuelModel:  vegetation.SuggestFuelModel(s.lookup, lat, lon),
	}, nil
}
