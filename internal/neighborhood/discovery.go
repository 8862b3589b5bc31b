package neighborhood

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCategories is the place-type filter used to find neighborhoods.
var DefaultCategories = []string{
	"locality",
	"sublocality",
	"neighborhood",
	"administrative_area_level_1",
	"administrative_area_level_2",
	"administrative_area_level_3",
	"administrative_area_level_4",
	"administrative_area_level_5",
	"sublocality_level_4",
	"sublocality_level_3",
	"sublocality_level_2",
	"sublocality_level_1",
}

const (
	minRadius  = 1000
	maxRadius  = 20000
	radiusStep = 500
)

// DefaultRadii returns the 39 search radii, 1000m to 20000m in 500m steps.
func DefaultRadii() []int {
	out := make([]int, 0, (maxRadius-minRadius)/radiusStep+1)
	for r := minRadius; r <= maxRadius; r += radiusStep {
		out = append(out, r)
	}
	return out
}

// Discovery runs one places search per radius and merges the results by name.
type Discovery struct {
	Places     PlacesSearcher
	Radii      []int
	Categories []string
	// Concurrency bounds in-flight searches. Zero or less fires every step at once.
	Concurrency int
}

// DiscoveryResult holds the deduplicated stubs in arrival order.
type DiscoveryResult struct {
	Stubs       []Stub
	Steps       int
	FailedSteps int
}

// Discover waits for every radius step to succeed or fail. A failed step adds
// nothing. For a repeated name the first stub to arrive wins.
func (d *Discovery) Discover(ctx context.Context, at Coordinates) DiscoveryResult {
	radii := d.Radii
	if len(radii) == 0 {
		radii = DefaultRadii()
	}
	cats := d.Categories
	if len(cats) == 0 {
		cats = DefaultCategories
	}

	var (
		mu     sync.Mutex
		seen   = make(map[string]struct{})
		result = DiscoveryResult{Steps: len(radii)}
	)

	var g errgroup.Group
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}
	for _, radius := range radii {
		g.Go(func() error {
			places, err := d.Places.SearchNearby(ctx, at, radius, cats)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedSteps++
				zap.L().Warn("discovery: places search failed",
					zap.Int("radius", radius),
					zap.Error(err),
				)
				return nil
			}
			for _, p := range places {
				if p.Name == "" {
					continue
				}
				if _, dup := seen[p.Name]; dup {
					continue
				}
				seen[p.Name] = struct{}{}
				result.Stubs = append(result.Stubs, p)
			}
			return nil
		})
	}
	_ = g.Wait()
	return result
}
