package impact

import (
	"context"

	"github.com/jengzang/firewatch-backend-go/internal/analysis"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/burned"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

// AnalyzerName is the registry name of the emissions analyzer
const AnalyzerName = "carbon"

// quickExpansion pads the hull for the fast area estimate used by this analyzer
const quickExpansion = 1.2

func init() {
	analysis.RegisterAnalyzer(AnalyzerName, NewCarbonAnalyzer)
}

// CarbonAnalyzer attaches biome and emission figures to each cluster of a run
type CarbonAnalyzer struct {
	*analysis.BaseAnalyzer
	lookup vegetation.Lookup
}

// NewCarbonAnalyzer creates an emissions analyzer
func NewCarbonAnalyzer(params analysis.Params) analysis.ClusterAnalyzer {
	lookup := params.Vegetation
	if lookup == nil {
		lookup = vegetation.NewStaticLookup()
	}
	return &CarbonAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(AnalyzerName),
		lookup:       lookup,
	}
}

// Analyze implements analysis.ClusterAnalyzer
func (a *CarbonAnalyzer) Analyze(ctx context.Context, c *clustering.FireCluster) (analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	area := burned.QuickAreaHectares(c.Hotspots, quickExpansion)
	return CalculateEmissions(c.ID, c.Centroid.Lat, c.Centroid.Lon, area, a.lookup), nil
}

// Apply implements analysis.Result
func (e Emissions) Apply(record *models.ClusterRecord) {
	record.Biome = e.Biome
	record.CO2Tons = e.CO2Tons
}
