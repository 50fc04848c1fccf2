package vegetation

import "testing"

func TestStaticLookupBiomeCentres(t *testing.T) {
	l := NewStaticLookup()
	for _, b := range biomes {
		if got := l.Vegetation(b.centerLat, b.centerLon).Biome; got != b.name {
			t.Errorf("centre of %s resolved to %s", b.name, got)
		}
	}
}

func TestStaticLookupVegetation(t *testing.T) {
	l := NewStaticLookup()

	tests := []struct {
		name       string
		lat, lon   float64
		wantBiome  string
		wantFuel   string
		wantStatus string
	}{
		{"manaus", -3.1, -60.0, BiomeAmazonia, "floresta_densa", ConservationCritical},
		{"brasilia", -15.8, -47.9, BiomeCerrado, "cerrado", ConservationVulnerable},
		{"corumba", -19.0, -57.2, BiomePantanal, "area_umida", ConservationStable},
		{"outside every box", 10, 10, BiomeCerrado, "cerrado", ConservationVulnerable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := l.Vegetation(tt.lat, tt.lon)
			if v.Biome != tt.wantBiome || v.FuelType != tt.wantFuel || v.ConservationStatus != tt.wantStatus {
				t.Errorf("Vegetation() = %s/%s/%s, want %s/%s/%s",
					v.Biome, v.FuelType, v.ConservationStatus, tt.wantBiome, tt.wantFuel, tt.wantStatus)
			}
			if v.Latitude != tt.lat || v.Longitude != tt.lon {
				t.Errorf("location not echoed: %v, %v", v.Latitude, v.Longitude)
			}
		})
	}
}

func TestCharacteristicsFallback(t *testing.T) {
	if got := Characteristics("unknown").Key; got != "cerrado" {
		t.Errorf("Characteristics(unknown) = %q, want cerrado", got)
	}
	if got := Characteristics("pastagem").SpreadRateFactor; got != 1.8 {
		t.Errorf("pastagem spread factor = %v, want 1.8", got)
	}
}

func TestSuggestFuelModel(t *testing.T) {
	s := SuggestFuelModel(NewStaticLookup(), -3.4653, -62.2159)
	if s.FuelType != "floresta_densa" || s.FuelLoadKgM2 != 2.5 || s.MoistureExtinction != 20 {
		t.Errorf("SuggestFuelModel() = %+v", s)
	}
	if s.Biome != BiomeAmazonia {
		t.Errorf("biome = %q", s.Biome)
	}
}
