package models

import "github.com/jengzang/firewatch-backend-go/internal/spatial"

// DefaultPopulation is assumed when a gazetteer entry has no population
const DefaultPopulation = 1000

// Community is a populated place considered for evacuation
type Community struct {
	Name       string  `json:"name" binding:"required"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int     `json:"population"`
}

// Point returns the community location
func (c Community) Point() spatial.Point {
	return spatial.Point{Lat: c.Latitude, Lon: c.Longitude}
}

// EffectivePopulation returns the population, falling back to DefaultPopulation
func (c Community) EffectivePopulation() int {
	if c.Population <= 0 {
		return DefaultPopulation
	}
	return c.Population
}
