package service

import (
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/repository"
)

// HotspotService handles business logic for stored hotspots
type HotspotService struct {
	repo *repository.HotspotRepository
}

// NewHotspotService creates a new hotspot service
func NewHotspotService(repo *repository.HotspotRepository) *HotspotService {
	return &HotspotService{repo: repo}
}

// HotspotPage is one page of stored hotspots
type HotspotPage struct {
	Hotspots []models.Hotspot
	Total    int64
	Page     int
	PageSize int
}

// List retrieves hotspots with filtering and pagination
func (s *HotspotService) List(filter models.HotspotFilter) (HotspotPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	hotspots, total, err := s.repo.List(filter)
	if err != nil {
		return HotspotPage{}, err
	}
	return HotspotPage{Hotspots: hotspots, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}
