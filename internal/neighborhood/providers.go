package neighborhood

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrNoResults is returned by collaborators when a lookup matched nothing.
var ErrNoResults = eris.New("no results")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, at Coordinates) (*Address, error)
}

// PlacesSearcher returns the places of the given categories within radius
// meters of at.
type PlacesSearcher interface {
	SearchNearby(ctx context.Context, at Coordinates, radius int, categories []string) ([]Stub, error)
}

// CommuteCalculator estimates travel from every neighborhood to a single
// destination in one batch. The result is keyed by neighborhood name.
type CommuteCalculator interface {
	Commutes(ctx context.Context, to Coordinates, mode string, from []Stub) (map[string]Commute, error)
}

type PriceEstimator interface {
	PriceEstimate(ctx context.Context, zip string, c PriceCriteria) (float64, error)
}

type AmenityFinder interface {
	AmenitiesNear(ctx context.Context, at Coordinates) (*AmenitiesAttractions, error)
}

// PhotoSource lists photo references for a place and resolves them to image
// URLs, preserving order.
type PhotoSource interface {
	PhotoRefs(ctx context.Context, placeID string, max int) ([]string, error)
	ResolvePhotos(ctx context.Context, refs []string) ([]string, error)
}

type DemographicsSource interface {
	Demographics(ctx context.Context, zip string) (*Demographics, error)
}

// Providers bundles the collaborators a search needs. Prices and
// Demographics may be nil, in which case those fields are never filled.
type Providers struct {
	Geocoder     Geocoder
	Places       PlacesSearcher
	Reverse      ReverseGeocoder
	Commutes     CommuteCalculator
	Prices       PriceEstimator
	Amenities    AmenityFinder
	Photos       PhotoSource
	Demographics DemographicsSource
}

func (p Providers) validate() error {
	switch {
	case p.Geocoder == nil:
		return eris.New("neighborhood: missing geocoder")
	case p.Places == nil:
		return eris.New("neighborhood: missing places searcher")
	case p.Reverse == nil:
		return eris.New("neighborhood: missing reverse geocoder")
	case p.Commutes == nil:
		return eris.New("neighborhood: missing commute calculator")
	case p.Amenities == nil:
		return eris.New("neighborhood: missing amenity finder")
	case p.Photos == nil:
		return eris.New("neighborhood: missing photo source")
	}
	return nil
}
