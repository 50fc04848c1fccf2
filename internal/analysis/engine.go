package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

// ClusterAnalyzer is implemented by every per-cluster derivation that a
// detection run can attach to its cluster snapshots
type ClusterAnalyzer interface {
	// Analyze derives a result for one cluster. It must not mutate the cluster.
	Analyze(ctx context.Context, cluster *clustering.FireCluster) (Result, error)

	// GetName returns the registry name of the analyzer
	GetName() string
}

// Result is the output of a ClusterAnalyzer
type Result interface {
	// Apply copies the result into the persisted cluster snapshot
	Apply(record *models.ClusterRecord)
}

// Params carries the run-level settings analyzers are built with
type Params struct {
	BurnedAreaMethod string
	Vegetation       vegetation.Lookup
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Name string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(name string) *BaseAnalyzer {
	return &BaseAnalyzer{Name: name}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(params Params) ClusterAnalyzer

var (
	registryMu       sync.RWMutex
	analyzerRegistry = make(map[string]AnalyzerFactory)
)

// RegisterAnalyzer registers an analyzer factory under a name
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	analyzerRegistry[name] = factory
}

// GetAnalyzer retrieves an analyzer instance by name, nil when unknown
func GetAnalyzer(name string, params Params) ClusterAnalyzer {
	registryMu.RLock()
	factory, ok := analyzerRegistry[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory(params)
}

// AnalyzerNames lists the registered analyzers in name order
func AnalyzerNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(analyzerRegistry))
	for name := range analyzerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildAnalyzers instantiates the named analyzers
func BuildAnalyzers(names []string, params Params) ([]ClusterAnalyzer, error) {
	analyzers := make([]ClusterAnalyzer, 0, len(names))
	for _, name := range names {
		a := GetAnalyzer(name, params)
		if a == nil {
			return nil, fmt.Errorf("unknown analyzer %q (available: %s)", name, strings.Join(AnalyzerNames(), ", "))
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}
