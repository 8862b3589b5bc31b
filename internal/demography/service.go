// Package demography answers batch demographics lookups by zip code.
package demography

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

type Service struct {
	Source neighborhood.DemographicsSource
	// Concurrency bounds in-flight lookups. Zero or less means unbounded.
	Concurrency int
}

// Lookup fetches every zip concurrently and returns profiles in input order.
// Any failure fails the batch.
func (s *Service) Lookup(ctx context.Context, zips []string) ([]*neighborhood.Demographics, error) {
	if s.Source == nil {
		return nil, eris.New("demography: no source configured")
	}
	out := make([]*neighborhood.Demographics, len(zips))

	g, gctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i, zip := range zips {
		g.Go(func() error {
			d, err := s.Source.Demographics(gctx, zip)
			if err != nil {
				return eris.Wrapf(err, "demography: zip %s", zip)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
