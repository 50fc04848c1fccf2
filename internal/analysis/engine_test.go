package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

type countResult int

func (r countResult) Apply(record *models.ClusterRecord) {
	record.HotspotCount = int(r)
}

type countAnalyzer struct {
	*BaseAnalyzer
}

func (a *countAnalyzer) Analyze(ctx context.Context, c *clustering.FireCluster) (Result, error) {
	return countResult(c.HotspotCount()), nil
}

func TestRegistry(t *testing.T) {
	RegisterAnalyzer("test_count", func(Params) ClusterAnalyzer {
		return &countAnalyzer{BaseAnalyzer: NewBaseAnalyzer("test_count")}
	})

	if GetAnalyzer("missing", Params{}) != nil {
		t.Error("GetAnalyzer(missing) should be nil")
	}

	found := false
	for _, name := range AnalyzerNames() {
		if name == "test_count" {
			found = true
		}
	}
	if !found {
		t.Errorf("AnalyzerNames() = %v, missing test_count", AnalyzerNames())
	}

	analyzers, err := BuildAnalyzers([]string{"test_count"}, Params{})
	if err != nil || len(analyzers) != 1 || analyzers[0].GetName() != "test_count" {
		t.Fatalf("BuildAnalyzers() = %v, %v", analyzers, err)
	}

	_, err = BuildAnalyzers([]string{"test_count", "nope"}, Params{})
	if err == nil || !strings.Contains(err.Error(), `"nope"`) || !strings.Contains(err.Error(), "test_count") {
		t.Errorf("BuildAnalyzers(nope) error = %v", err)
	}
}

func TestMapKeepsOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	var calls int32
	out, err := Map(context.Background(), 4, items, func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		if n%10 == 0 {
			return 0, errors.New("multiple of ten")
		}
		return n * n, nil
	})
	if err != nil {
		t.Fatalf("Map() error: %v", err)
	}
	if calls != 100 || len(out) != 100 {
		t.Fatalf("calls = %d, outcomes = %d", calls, len(out))
	}
	for i, o := range out {
		if i%10 == 0 {
			if o.Err == nil {
				t.Errorf("item %d: expected error", i)
			}
			continue
		}
		if o.Err != nil || o.Value != i*i {
			t.Errorf("item %d: got %v, %v", i, o.Value, o.Err)
		}
	}
}

func TestMapEmptyAndDefaultWorkers(t *testing.T) {
	out, err := Map(context.Background(), 0, []string{}, func(ctx context.Context, s string) (int, error) {
		return len(s), nil
	})
	if err != nil || out == nil || len(out) != 0 {
		t.Errorf("Map(empty) = %v, %v", out, err)
	}

	out, err = Map(context.Background(), 0, []string{"a", "bb"}, func(ctx context.Context, s string) (int, error) {
		return len(s), nil
	})
	if err != nil || out[0].Value != 1 || out[1].Value != 2 {
		t.Errorf("Map() = %v, %v", out, err)
	}
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 1000)

	_, err := Map(ctx, 2, items, func(ctx context.Context, n int) (int, error) {
		cancel()
		<-ctx.Done()
		return n, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Map() error = %v, want context.Canceled", err)
	}
}
