// Package evacuation ranks communities threatened by a spreading fire and
// synthesizes escape routes and shelters away from it.
package evacuation

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Risk levels
const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
)

const (
	// MaxRadiusKm bounds the communities considered
	MaxRadiusKm = 30.0

	evacuationSpeedKmh = 40.0
	routeWarningDeg    = 30.0
)

// AtRiskCommunity is a community ranked for evacuation
type AtRiskCommunity struct {
	Name                  string   `json:"name"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	Population            int      `json:"population"`
	DistanceKm            float64  `json:"distance_from_fire_km"`
	AngleFromSpreadDeg    float64  `json:"angle_from_spread_deg"`
	RiskFactor            float64  `json:"risk_factor"`
	EstimatedArrivalHours *float64 `json:"estimated_arrival_hours"`
	RiskLevel             string   `json:"risk_level"`
	Priority              int      `json:"evacuation_priority"` // 1 = highest
}

// Route is one synthesized escape route
type Route struct {
	RouteID          int      `json:"route_id"`
	Origin           string   `json:"origin"`
	Destination      string   `json:"destination"`
	DestinationType  string   `json:"destination_type"`
	DistanceKm       float64  `json:"distance_km"`
	EstimatedMinutes int      `json:"estimated_time_minutes"`
	Road             string   `json:"road"`
	IsRecommended    bool     `json:"is_recommended"`
	Warning          string   `json:"warning,omitempty"`
	Instructions     []string `json:"instructions"`
}

// Shelter is an emergency shelter placed away from the fire
type Shelter struct {
	Name             string        `json:"name"`
	Address          string        `json:"address"`
	Location         spatial.Point `json:"location"`
	Capacity         int           `json:"capacity"`
	CurrentOccupancy int           `json:"current_occupancy"`
	Facilities       []string      `json:"facilities"`
	ContactPhone     string        `json:"contact_phone"`
}

// AvailableCapacity returns the remaining places
func (s Shelter) AvailableCapacity() int {
	if s.Capacity < s.CurrentOccupancy {
		return 0
	}
	return s.Capacity - s.CurrentOccupancy
}

// EvacuationPlan is the full evacuation plan of one fire
type EvacuationPlan struct {
	FireID              string             `json:"fire_id"`
	FireCenter          spatial.Point      `json:"fire_center"`
	SpreadDirectionDeg  float64            `json:"spread_direction_degrees"`
	Zones               []AtRiskCommunity  `json:"evacuation_zones"`
	RoutesByCommunity   map[string][]Route `json:"routes_by_community"`
	Shelters            []Shelter          `json:"shelter_points"`
	EmergencyContacts   map[string]string  `json:"emergency_contacts"`
	GeneralInstructions []string           `json:"general_instructions"`
}

// Brazilian emergency numbers
var emergencyContacts = map[string]string{
	"fire_department": "193",
	"civil_defense":   "199",
	"military_police": "190",
	"ambulance":       "192",
}

var generalInstructions = []string{
	"Stay calm and follow the instructions of the authorities",
	"Take only essentials: documents, medication, water",
	"Turn off gas and electricity before leaving",
	"Close doors and windows (do not lock them)",
	"Avoid roads that cross the direction of the fire",
	"Drive with headlights on",
	"If caught in smoke, slow down and turn on hazard lights",
	"Go to the nearest shelter if you do not know where to go",
}

// Plan ranks the communities within MaxRadiusKm, builds routes for each of
// them and places shelters on the side away from the spread direction.
// RoutesByCommunity is keyed by name; callers pass uniquely named communities.
func Plan(fireID string, center spatial.Point, spreadDirection, spreadRateMPerMin float64, communities []models.Community) EvacuationPlan {
	zones := IdentifyAtRisk(center, spreadDirection, spreadRateMPerMin, communities, MaxRadiusKm)

	routes := make(map[string][]Route, len(zones))
	for _, z := range zones {
		routes[z.Name] = routesFor(z, spreadDirection)
	}

	contacts := make(map[string]string, len(emergencyContacts))
	for k, v := range emergencyContacts {
		contacts[k] = v
	}

	return EvacuationPlan{
		FireID:              fireID,
		FireCenter:          center,
		SpreadDirectionDeg:  spreadDirection,
		Zones:               zones,
		RoutesByCommunity:   routes,
		Shelters:            shelters(center, spreadDirection),
		EmergencyContacts:   contacts,
		GeneralInstructions: append([]string{}, generalInstructions...),
	}
}

// RiskFactor classifies the angular position of a community relative to the
// spread direction: in the path (<= 45°) 1.0, flank (<= 90°) 0.7, behind 0.3
func RiskFactor(angleDiff float64) float64 {
	switch {
	case angleDiff > 90:
		return 0.3
	case angleDiff > 45:
		return 0.7
	}
	return 1.0
}

// Assess ranks a single community against the fire
func Assess(center spatial.Point, spreadDirection, spreadRateMPerMin float64, c models.Community) AtRiskCommunity {
	distance := spatial.Distance(center, c.Point())
	bearing := spatial.Bearing(center.Lat, center.Lon, c.Latitude, c.Longitude)
	angleDiff := spatial.AngleBetween(bearing, spreadDirection)
	factor := RiskFactor(angleDiff)

	var arrival *float64
	if spreadRateMPerMin > 0 && factor > 0.5 {
		effective := distance * 1000 * (1 + angleDiff/90)
		hours := effective / spreadRateMPerMin / 60
		arrival = &hours
	}

	level, priority := RiskLow, 4
	switch {
	case arrival != nil && *arrival < 2:
		level, priority = RiskCritical, 1
	case arrival != nil && *arrival < 6:
		level, priority = RiskHigh, 2
	case factor > 0.7:
		level, priority = RiskMedium, 3
	}

	return AtRiskCommunity{
		Name:                  c.Name,
		Latitude:              c.Latitude,
		Longitude:             c.Longitude,
		Population:            c.EffectivePopulation(),
		DistanceKm:            distance,
		AngleFromSpreadDeg:    angleDiff,
		RiskFactor:            factor,
		EstimatedArrivalHours: arrival,
		RiskLevel:             level,
		Priority:              priority,
	}
}

// IdentifyAtRisk assesses the communities within maxRadiusKm, ordered by
// priority then descending population
func IdentifyAtRisk(center spatial.Point, spreadDirection, spreadRateMPerMin float64, communities []models.Community, maxRadiusKm float64) []AtRiskCommunity {
	out := make([]AtRiskCommunity, 0, len(communities))
	for _, c := range communities {
		if spatial.Distance(center, c.Point()) > maxRadiusKm {
			continue
		}
		out = append(out, Assess(center, spreadDirection, spreadRateMPerMin, c))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Population > out[j].Population
	})
	return out
}

// routesFor builds four routes: 10 and 20 km, straight away from the fire and 45° off it
func routesFor(c AtRiskCommunity, fireDirection float64) []Route {
	safe := spatial.NormalizeDegrees(fireDirection + 180)
	directions := []float64{safe, spatial.NormalizeDegrees(safe - 45)}

	var routes []Route
	id := 1
	for _, dist := range []float64{10, 20} {
		for _, dir := range directions {
			dest := spatial.DestinationPoint(c.Latitude, c.Longitude, dist, dir)
			heading := spatial.Bearing(c.Latitude, c.Longitude, dest.Lat, dest.Lon)

			route := Route{
				RouteID:          id,
				Origin:           c.Name,
				Destination:      fmt.Sprintf("Safe Point %d", id),
				DestinationType:  "safe_zone",
				DistanceKm:       dist,
				EstimatedMinutes: int(dist / evacuationSpeedKmh * 60),
				IsRecommended:    id == 1,
			}
			if spatial.AngleBetween(heading, fireDirection) < routeWarningDeg {
				route.Warning = "WARNING: this route runs close to the direction of the fire"
				route.IsRecommended = false
			}

			cardinal := spatial.CardinalName(spatial.DegreesToCardinal(dir))
			route.Road = "Road " + cardinal
			route.Instructions = []string{
				fmt.Sprintf("Leave %s heading %s", c.Name, cardinal),
				fmt.Sprintf("Follow the main road for %.0f km", dist),
				fmt.Sprintf("Reach the safe point in about %d minutes", route.EstimatedMinutes),
			}

			routes = append(routes, route)
			id++
		}
	}
	return routes
}

func shelters(center spatial.Point, fireDirection float64) []Shelter {
	safe := fireDirection + 180
	placements := []struct{ distKm, offset float64 }{{15, 0}, {20, -30}, {25, 30}}

	out := make([]Shelter, 0, len(placements))
	for i, pl := range placements {
		loc := spatial.DestinationPoint(center.Lat, center.Lon, pl.distKm, spatial.NormalizeDegrees(safe+pl.offset))
		out = append(out, Shelter{
			Name:         fmt.Sprintf("Municipal Shelter %d", i+1),
			Address:      fmt.Sprintf("Town centre, %.0f km from the risk area", pl.distKm),
			Location:     loc,
			Capacity:     500 * (i + 1),
			Facilities:   []string{"water", "restrooms", "food", "medical care"},
			ContactPhone: fmt.Sprintf("(XX) 9999-000%d", i+1),
		})
	}
	return out
}

// TimeEstimate is the clearance time of an evacuation
type TimeEstimate struct {
	Population       int     `json:"population"`
	VehiclesNeeded   int     `json:"vehicles_needed"`
	RoutesAvailable  int     `json:"routes_available"`
	Hours            float64 `json:"evacuation_time_hours"`
	RecommendedStart string  `json:"recommended_start"`
}

// EstimateEvacuationTime assumes 2.5 people per vehicle. routes <= 0 defaults to 2,
// vehiclesPerRoutePerHour <= 0 to 600.
func EstimateEvacuationTime(population, routes, vehiclesPerRoutePerHour int) TimeEstimate {
	const peoplePerVehicle = 2.5
	if routes <= 0 {
		routes = 2
	}
	if vehiclesPerRoutePerHour <= 0 {
		vehiclesPerRoutePerHour = 600
	}

	hours := float64(population) / (float64(routes) * float64(vehiclesPerRoutePerHour) * peoplePerVehicle)
	start := "within 1 hour"
	if hours > 2 {
		start = "immediate"
	}

	return TimeEstimate{
		Population:       population,
		VehiclesNeeded:   int(math.Ceil(float64(population) / peoplePerVehicle)),
		RoutesAvailable:  routes,
		Hours:            math.Round(hours*10) / 10,
		RecommendedStart: start,
	}
}
