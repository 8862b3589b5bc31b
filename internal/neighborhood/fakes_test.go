package neighborhood

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// fakeProviders implements every collaborator with overridable funcs and
// sensible defaults.
type fakeProviders struct {
	geocode   func(ctx context.Context, address string) (Coordinates, error)
	search    func(ctx context.Context, at Coordinates, radius int, cats []string) ([]Stub, error)
	reverse   func(ctx context.Context, at Coordinates) (*Address, error)
	commutes  func(ctx context.Context, to Coordinates, mode string, from []Stub) (map[string]Commute, error)
	price     func(ctx context.Context, zip string, c PriceCriteria) (float64, error)
	amenities func(ctx context.Context, at Coordinates) (*AmenitiesAttractions, error)
	refs      func(ctx context.Context, placeID string, max int) ([]string, error)
	resolve   func(ctx context.Context, refs []string) ([]string, error)
	demo      func(ctx context.Context, zip string) (*Demographics, error)

	searchCalls atomic.Int32
	priceCalls  atomic.Int32
}

func (f *fakeProviders) providers() Providers {
	return Providers{
		Geocoder:     f,
		Places:       f,
		Reverse:      f,
		Commutes:     f,
		Prices:       f,
		Amenities:    f,
		Photos:       f,
		Demographics: f,
	}
}

func (f *fakeProviders) Geocode(ctx context.Context, address string) (Coordinates, error) {
	if f.geocode != nil {
		return f.geocode(ctx, address)
	}
	return Coordinates{Latitude: 37.77, Longitude: -122.42}, nil
}

func (f *fakeProviders) SearchNearby(ctx context.Context, at Coordinates, radius int, cats []string) ([]Stub, error) {
	f.searchCalls.Add(1)
	if f.search != nil {
		return f.search(ctx, at, radius, cats)
	}
	return nil, nil
}

func (f *fakeProviders) ReverseGeocode(ctx context.Context, at Coordinates) (*Address, error) {
	if f.reverse != nil {
		return f.reverse(ctx, at)
	}
	return &Address{
		FormattedAddress: fmt.Sprintf("%.2f,%.2f Main St, Springfield, IL 62701, USA", at.Latitude, at.Longitude),
		City:             "Springfield",
		State:            "IL",
		Country:          "USA",
		Zip:              "62701",
	}, nil
}

func (f *fakeProviders) Commutes(ctx context.Context, to Coordinates, mode string, from []Stub) (map[string]Commute, error) {
	if f.commutes != nil {
		return f.commutes(ctx, to, mode, from)
	}
	out := make(map[string]Commute, len(from))
	for i, s := range from {
		out[s.Name] = Commute{Mode: mode, Distance: "1 km", DistanceMeters: 1000 * (i + 1), Duration: "5 mins", DurationSeconds: 300}
	}
	return out, nil
}

func (f *fakeProviders) PriceEstimate(ctx context.Context, zip string, c PriceCriteria) (float64, error) {
	f.priceCalls.Add(1)
	if f.price != nil {
		return f.price(ctx, zip, c)
	}
	return 2450, nil
}

func (f *fakeProviders) AmenitiesNear(ctx context.Context, at Coordinates) (*AmenitiesAttractions, error) {
	if f.amenities != nil {
		return f.amenities(ctx, at)
	}
	return &AmenitiesAttractions{
		Amenities:   []Amenity{{Name: "Corner Market", Category: "supermarket"}},
		Attractions: []Amenity{{Name: "City Museum", Category: "museum"}},
	}, nil
}

func (f *fakeProviders) PhotoRefs(ctx context.Context, placeID string, max int) ([]string, error) {
	if f.refs != nil {
		return f.refs(ctx, placeID, max)
	}
	return []string{placeID + "-ref-1", placeID + "-ref-2"}, nil
}

func (f *fakeProviders) ResolvePhotos(ctx context.Context, refs []string) ([]string, error) {
	if f.resolve != nil {
		return f.resolve(ctx, refs)
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = "https://photos.example.com/" + r
	}
	return out, nil
}

func (f *fakeProviders) Demographics(ctx context.Context, zip string) (*Demographics, error) {
	if f.demo != nil {
		return f.demo(ctx, zip)
	}
	return &Demographics{Zip: zip, Population: 1200}, nil
}

// placesAtFirstRadius answers the smallest radius with the given stubs and
// every other radius with nothing.
func placesAtFirstRadius(stubs ...Stub) func(context.Context, Coordinates, int, []string) ([]Stub, error) {
	return func(_ context.Context, _ Coordinates, radius int, _ []string) ([]Stub, error) {
		if radius == minRadius {
			return stubs, nil
		}
		return nil, nil
	}
}

func blockUntilCancelled[T any](ctx context.Context) (T, error) {
	var zero T
	<-ctx.Done()
	return zero, ctx.Err()
}

var errProvider = eris.New("provider unavailable")
