package evacuation

import (
	"math"
	"testing"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

var fire = spatial.Point{Lat: -10, Lon: -55}

func community(name string, distKm, bearing float64, population int) models.Community {
	p := spatial.DestinationPoint(fire.Lat, fire.Lon, distKm, bearing)
	return models.Community{Name: name, Latitude: p.Lat, Longitude: p.Lon, Population: population}
}

func TestRiskFactor(t *testing.T) {
	tests := []struct {
		angle float64
		want  float64
	}{
		{0, 1.0},
		{45, 1.0},
		{46, 0.7},
		{90, 0.7},
		{91, 0.3},
		{180, 0.3},
	}
	for _, tt := range tests {
		if got := RiskFactor(tt.angle); got != tt.want {
			t.Errorf("RiskFactor(%v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func TestIdentifyAtRisk(t *testing.T) {
	communities := []models.Community{
		community("South", 4, 180, 800),
		community("North 5km", 5, 0, 3000),
		community("Far North", 40, 0, 100000),
		community("North 1km", 1, 0, 1000),
		community("East of head", 2, 60, 500),
		community("North 500m", 0.5, 0, 5000),
	}

	zones := IdentifyAtRisk(fire, 0, 10, communities, MaxRadiusKm)
	if len(zones) != 5 {
		t.Fatalf("got %d zones, want 5: %+v", len(zones), zones)
	}

	want := []struct {
		name     string
		level    string
		priority int
	}{
		{"North 500m", RiskCritical, 1},
		{"North 1km", RiskCritical, 1},
		{"East of head", RiskHigh, 2},
		{"North 5km", RiskMedium, 3},
		{"South", RiskLow, 4},
	}
	for i, w := range want {
		z := zones[i]
		if z.Name != w.name || z.RiskLevel != w.level || z.Priority != w.priority {
			t.Errorf("zone %d = %s/%s/%d, want %s/%s/%d", i, z.Name, z.RiskLevel, z.Priority, w.name, w.level, w.priority)
		}
	}

	// 1 km straight ahead at 10 m/min
	if a := zones[1].EstimatedArrivalHours; a == nil || math.Abs(*a-1000.0/600) > 0.01 {
		t.Errorf("arrival = %v, want about %v", a, 1000.0/600)
	}
	// 2 km at 60° off the head is stretched by 1 + 60/90
	if a := zones[2].EstimatedArrivalHours; a == nil || math.Abs(*a-2000*(1+60.0/90)/600) > 0.02 {
		t.Errorf("flank arrival = %v, want about %v", a, 2000*(1+60.0/90)/600)
	}
	if zones[4].EstimatedArrivalHours != nil {
		t.Errorf("community behind the fire got an arrival time")
	}
}

func TestAssessWithoutSpread(t *testing.T) {
	a := Assess(fire, 0, 0, community("North", 1, 0, 0))
	if a.EstimatedArrivalHours != nil {
		t.Error("arrival estimated for a fire that does not spread")
	}
	if a.RiskLevel != RiskMedium || a.Priority != 3 {
		t.Errorf("level = %s/%d, want medium/3", a.RiskLevel, a.Priority)
	}
	if a.Population != models.DefaultPopulation {
		t.Errorf("population = %d, want %d", a.Population, models.DefaultPopulation)
	}
}

func TestPlan(t *testing.T) {
	communities := []models.Community{
		community("Vila Nova", 3, 10, 2000),
		community("Santa Rita", 12, 200, 1500),
	}

	plan := Plan("FIRE-0001", fire, 0, 20, communities)
	if plan.FireID != "FIRE-0001" || len(plan.Zones) != 2 {
		t.Fatalf("plan = %+v", plan)
	}

	for _, z := range plan.Zones {
		routes := plan.RoutesByCommunity[z.Name]
		if len(routes) != 4 {
			t.Fatalf("%s: got %d routes, want 4", z.Name, len(routes))
		}
		wantDist := []float64{10, 10, 20, 20}
		wantMinutes := []int{15, 15, 30, 30}
		for i, r := range routes {
			if r.RouteID != i+1 || r.DistanceKm != wantDist[i] || r.EstimatedMinutes != wantMinutes[i] {
				t.Errorf("%s route %d = %+v", z.Name, i, r)
			}
			if r.IsRecommended != (i == 0) {
				t.Errorf("%s route %d recommended = %v", z.Name, i, r.IsRecommended)
			}
			if r.Warning != "" {
				t.Errorf("%s route %d heads towards the fire: %s", z.Name, i, r.Warning)
			}
			if len(r.Instructions) != 3 {
				t.Errorf("%s route %d has %d instructions", z.Name, i, len(r.Instructions))
			}
		}
		if routes[0].Road != "Road "+spatial.CardinalName(spatial.DegreesToCardinal(180)) {
			t.Errorf("first route road = %s", routes[0].Road)
		}
	}

	if len(plan.Shelters) != 3 {
		t.Fatalf("got %d shelters, want 3", len(plan.Shelters))
	}
	for i, s := range plan.Shelters {
		if s.Capacity != 500*(i+1) || s.AvailableCapacity() != s.Capacity {
			t.Errorf("shelter %d capacity = %d", i, s.Capacity)
		}
		// shelters sit on the side away from a fire spreading north
		if s.Location.Lat >= fire.Lat {
			t.Errorf("shelter %d at %v is not south of the fire", i, s.Location)
		}
	}
	if d := spatial.Distance(fire, plan.Shelters[0].Location); math.Abs(d-15) > 0.01 {
		t.Errorf("first shelter is %v km away, want 15", d)
	}

	if plan.EmergencyContacts["fire_department"] != "193" {
		t.Errorf("contacts = %v", plan.EmergencyContacts)
	}
	plan.EmergencyContacts["fire_department"] = "000"
	plan.GeneralInstructions[0] = "changed"
	again := Plan("FIRE-0001", fire, 0, 20, nil)
	if again.EmergencyContacts["fire_department"] != "193" || again.GeneralInstructions[0] == "changed" {
		t.Error("plan shares contacts or instructions with package state")
	}
	if len(again.Zones) != 0 {
		t.Errorf("zones without communities = %d", len(again.Zones))
	}
}

func TestShelterAvailableCapacity(t *testing.T) {
	s := Shelter{Capacity: 100, CurrentOccupancy: 140}
	if got := s.AvailableCapacity(); got != 0 {
		t.Errorf("AvailableCapacity = %d, want 0", got)
	}
}

func TestEstimateEvacuationTime(t *testing.T) {
	tests := []struct {
		name       string
		population int
		routes     int
		rate       int
		hours      float64
		vehicles   int
		start      string
	}{
		{"two default routes", 6000, 2, 0, 2.0, 2400, "within 1 hour"},
		{"routes defaulted", 10000, 0, 0, 3.3, 4000, "immediate"},
		{"small village", 500, 4, 0, 0.1, 200, "within 1 hour"},
		{"slow roads", 3000, 1, 100, 12.0, 1200, "immediate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateEvacuationTime(tt.population, tt.routes, tt.rate)
			if got.Hours != tt.hours || got.VehiclesNeeded != tt.vehicles || got.RecommendedStart != tt.start {
				t.Errorf("got %+v, want %v h, %d vehicles, %s", got, tt.hours, tt.vehicles, tt.start)
			}
			if got.RoutesAvailable < 1 {
				t.Errorf("RoutesAvailable = %d", got.RoutesAvailable)
			}
		})
	}
}
