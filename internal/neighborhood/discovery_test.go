package neighborhood

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRadii(t *testing.T) {
	radii := DefaultRadii()
	require.Len(t, radii, 39)
	assert.Equal(t, 1000, radii[0])
	assert.Equal(t, 20000, radii[len(radii)-1])
	for i := 1; i < len(radii); i++ {
		assert.Equal(t, 500, radii[i]-radii[i-1])
	}
}

func TestDiscover_DedupesByFirstArrival(t *testing.T) {
	f := &fakeProviders{
		search: func(_ context.Context, _ Coordinates, radius int, _ []string) ([]Stub, error) {
			switch radius {
			case 1000:
				return []Stub{{Name: "X", Latitude: 1, Longitude: 1, PlaceID: "first"}}, nil
			case 1500:
				return []Stub{
					{Name: "X", Latitude: 2, Longitude: 2, PlaceID: "second"},
					{Name: "Y", Latitude: 3, Longitude: 3, PlaceID: "y"},
				}, nil
			}
			return nil, nil
		},
	}
	// one step at a time makes arrival order follow the radii
	d := &Discovery{Places: f, Concurrency: 1}

	res := d.Discover(context.Background(), Coordinates{})

	require.Len(t, res.Stubs, 2)
	assert.Equal(t, "X", res.Stubs[0].Name)
	assert.Equal(t, "first", res.Stubs[0].PlaceID)
	assert.InDelta(t, 1.0, res.Stubs[0].Latitude, 0.0001)
	assert.Equal(t, "Y", res.Stubs[1].Name)
	assert.Equal(t, 39, res.Steps)
	assert.Equal(t, 0, res.FailedSteps)
}

func TestDiscover_FailedStepsStillCount(t *testing.T) {
	f := &fakeProviders{
		search: func(_ context.Context, _ Coordinates, radius int, _ []string) ([]Stub, error) {
			if radius%1000 == 0 {
				return nil, errProvider
			}
			return []Stub{{Name: "Somewhere"}}, nil
		},
	}
	d := &Discovery{Places: f}

	res := d.Discover(context.Background(), Coordinates{})

	assert.Equal(t, int32(39), f.searchCalls.Load())
	assert.Equal(t, 20, res.FailedSteps)
	require.Len(t, res.Stubs, 1)
}

func TestDiscover_AllStepsFail(t *testing.T) {
	f := &fakeProviders{
		search: func(context.Context, Coordinates, int, []string) ([]Stub, error) {
			return nil, errProvider
		},
	}
	res := (&Discovery{Places: f}).Discover(context.Background(), Coordinates{})

	assert.Empty(t, res.Stubs)
	assert.Equal(t, 39, res.FailedSteps)
}

func TestDiscover_PassesCategoriesAndCoordinates(t *testing.T) {
	var mu sync.Mutex
	var gotCats []string
	var gotAt Coordinates
	f := &fakeProviders{
		search: func(_ context.Context, at Coordinates, _ int, cats []string) ([]Stub, error) {
			mu.Lock()
			defer mu.Unlock()
			gotCats, gotAt = cats, at
			return nil, nil
		},
	}
	at := Coordinates{Latitude: 40.7, Longitude: -74}
	(&Discovery{Places: f, Radii: []int{1000}}).Discover(context.Background(), at)

	assert.Equal(t, DefaultCategories, gotCats)
	assert.Equal(t, at, gotAt)
}

func TestDiscover_ConcurrencyBound(t *testing.T) {
	var inFlight, peak atomic.Int32
	f := &fakeProviders{
		search: func(context.Context, Coordinates, int, []string) ([]Stub, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			inFlight.Add(-1)
			return nil, nil
		},
	}
	(&Discovery{Places: f, Concurrency: 3}).Discover(context.Background(), Coordinates{})

	assert.Equal(t, int32(39), f.searchCalls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestDiscover_SkipsUnnamedPlaces(t *testing.T) {
	f := &fakeProviders{search: placesAtFirstRadius(Stub{Name: ""}, Stub{Name: "Named"})}
	res := (&Discovery{Places: f}).Discover(context.Background(), Coordinates{})

	require.Len(t, res.Stubs, 1)
	assert.Equal(t, "Named", res.Stubs[0].Name)
}
