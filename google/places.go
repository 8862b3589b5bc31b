package google

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

var (
	DefaultAmenityTypes    = []string{"supermarket", "school", "park", "gym", "hospital", "transit_station"}
	DefaultAttractionTypes = []string{"tourist_attraction", "museum", "restaurant", "night_club", "shopping_mall"}
)

type placeResult struct {
	Name     string   `json:"name"`
	Geometry geometry `json:"geometry"`
	PlaceID  string   `json:"place_id"`
	Vicinity string   `json:"vicinity"`
	Rating   float64  `json:"rating"`
}

type placesResponse struct {
	apiStatus
	Results []placeResult `json:"results"`
}

// SearchNearby lists places of the given types within radius meters. No
// matches is an empty result, not an error.
func (c *Client) SearchNearby(ctx context.Context, at neighborhood.Coordinates, radius int, categories []string) ([]neighborhood.Stub, error) {
	results, err := c.nearby(ctx, "places nearby", "/place/search/json", at, radius, "types", strings.Join(categories, "|"))
	if err != nil {
		return nil, err
	}
	out := make([]neighborhood.Stub, 0, len(results))
	for _, r := range results {
		out = append(out, neighborhood.Stub{
			Name:      r.Name,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
			PlaceID:   r.PlaceID,
		})
	}
	return out, nil
}

func (c *Client) nearby(ctx context.Context, op, path string, at neighborhood.Coordinates, radius int, typeParam, types string) ([]placeResult, error) {
	var resp placesResponse
	q := url.Values{}
	q.Set("location", formatLatLng(at))
	q.Set("radius", strconv.Itoa(radius))
	q.Set(typeParam, types)
	if err := c.get(ctx, op, path, q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check(op); err != nil {
		if errors.Is(err, neighborhood.ErrNoResults) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Results, nil
}

// AmenitiesNear queries every amenity and attraction type around a point and
// keeps the first few results of each. A failing type is skipped; the call
// fails only when every type failed.
func (c *Client) AmenitiesNear(ctx context.Context, at neighborhood.Coordinates) (*neighborhood.AmenitiesAttractions, error) {
	types := append(append([]string(nil), c.amenityTypes...), c.attractionTypes...)
	found := make([][]neighborhood.Amenity, len(types))

	var (
		mu      sync.Mutex
		failed  int
		lastErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			results, err := c.nearby(gctx, "amenities", "/place/nearbysearch/json", at, c.amenityRadius, "type", t)
			if err != nil {
				mu.Lock()
				failed++
				lastErr = err
				mu.Unlock()
				zap.L().Debug("google: amenity type failed", zap.String("type", t), zap.Error(err))
				return nil
			}
			if len(results) > c.perCategory {
				results = results[:c.perCategory]
			}
			list := make([]neighborhood.Amenity, 0, len(results))
			for _, r := range results {
				list = append(list, neighborhood.Amenity{
					Name:      r.Name,
					Category:  t,
					Vicinity:  r.Vicinity,
					Rating:    r.Rating,
					Latitude:  r.Geometry.Location.Lat,
					Longitude: r.Geometry.Location.Lng,
					PlaceID:   r.PlaceID,
				})
			}
			found[i] = list
			return nil
		})
	}
	_ = g.Wait()

	if len(types) > 0 && failed == len(types) {
		return nil, eris.Wrap(lastErr, "google: amenities")
	}

	out := &neighborhood.AmenitiesAttractions{
		Amenities:   []neighborhood.Amenity{},
		Attractions: []neighborhood.Amenity{},
	}
	for i, list := range found {
		if i < len(c.amenityTypes) {
			out.Amenities = append(out.Amenities, list...)
		} else {
			out.Attractions = append(out.Attractions, list...)
		}
	}
	return out, nil
}
