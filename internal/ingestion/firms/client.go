package firms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// DefaultBaseURL is the FIRMS API root
const DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov/api"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 50 << 20
	minDays        = 1
	maxDays        = 10
)

// Satellite products served by FIRMS
const (
	SourceVIIRSNOAA20 = "VIIRS_NOAA20_NRT"
	SourceVIIRSNOAA21 = "VIIRS_NOAA21_NRT"
	SourceVIIRSSNPP   = "VIIRS_SNPP_NRT"
	SourceMODIS       = "MODIS_NRT"
	SourceLandsat     = "LANDSAT_NRT"
)

// BrazilBBox covers the Brazilian territory
var BrazilBBox = spatial.BBox{West: -73.98, South: -33.75, East: -34.79, North: 5.27}

// ErrMissingAPIKey is returned when no MAP_KEY is configured
var ErrMissingAPIKey = errors.New("firms: missing api key")

// IsValidSource reports whether s is a known FIRMS product
func IsValidSource(s string) bool {
	switch s {
	case SourceVIIRSNOAA20, SourceVIIRSNOAA21, SourceVIIRSSNPP, SourceMODIS, SourceLandsat:
		return true
	}
	return false
}

// Config configures a Client
type Config struct {
	APIKey  string
	BaseURL string
	Source  string
	Timeout time.Duration
}

// Client fetches hotspot CSV exports from FIRMS
type Client struct {
	apiKey     string
	baseURL    string
	source     string
	httpClient *http.Client
}

// NewClient creates a FIRMS client, filling unset fields with defaults
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !IsValidSource(cfg.Source) {
		cfg.Source = SourceVIIRSNOAA20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		source:     cfg.Source,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Source returns the product the client queries
func (c *Client) Source() string {
	return c.source
}

// AreaURL builds the bounding-box export URL
func (c *Client) AreaURL(bbox spatial.BBox, days int) string {
	return fmt.Sprintf("%s/area/csv/%s/%s/%g,%g,%g,%g/%d",
		c.baseURL, url.PathEscape(c.apiKey), c.source,
		bbox.West, bbox.South, bbox.East, bbox.North, clampDays(days))
}

// CountryURL builds the country export URL for an ISO 3166-1 alpha-3 code
func (c *Client) CountryURL(iso3 string, days int) string {
	return fmt.Sprintf("%s/country/csv/%s/%s/%s/%d",
		c.baseURL, url.PathEscape(c.apiKey), c.source, strings.ToUpper(iso3), clampDays(days))
}

// FetchArea returns the hotspots detected inside bbox during the last days
func (c *Client) FetchArea(ctx context.Context, bbox spatial.BBox, days int) ([]models.Hotspot, error) {
	log.Printf("[FIRMS] Fetching hotspots for area [%g,%g,%g,%g], days=%d",
		bbox.West, bbox.South, bbox.East, bbox.North, days)
	return c.fetch(ctx, c.AreaURL(bbox, days))
}

// FetchCountry returns the hotspots detected in a country during the last days
func (c *Client) FetchCountry(ctx context.Context, iso3 string, days int) ([]models.Hotspot, error) {
	log.Printf("[FIRMS] Fetching hotspots for country %s, days=%d", iso3, days)
	return c.fetch(ctx, c.CountryURL(iso3, days))
}

func (c *Client) fetch(ctx context.Context, target string) ([]models.Hotspot, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotspots: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from firms", resp.StatusCode)
	}

	hotspots, skipped, err := ParseCSV(io.LimitReader(resp.Body, maxBodyBytes), c.source)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("[FIRMS] Skipped %d malformed rows", skipped)
	}
	log.Printf("[FIRMS] Retrieved %d hotspots", len(hotspots))
	return hotspots, nil
}

func clampDays(days int) int {
	if days < minDays {
		return minDays
	}
	if days > maxDays {
		return maxDays
	}
	return days
}
