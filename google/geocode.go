package google

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          geometry           `json:"geometry"`
	PlaceID           string             `json:"place_id"`
}

type geocodeResponse struct {
	apiStatus
	Results []geocodeResult `json:"results"`
}

// Geocode resolves a free-text address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (neighborhood.Coordinates, error) {
	var resp geocodeResponse
	q := url.Values{}
	q.Set("address", address)
	if err := c.get(ctx, "geocode", "/geocode/json", q, &resp); err != nil {
		return neighborhood.Coordinates{}, err
	}
	if err := resp.check("geocode"); err != nil {
		return neighborhood.Coordinates{}, err
	}
	if len(resp.Results) == 0 {
		return neighborhood.Coordinates{}, eris.Wrap(neighborhood.ErrNoResults, "google: geocode")
	}
	loc := resp.Results[0].Geometry.Location
	return neighborhood.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// ReverseGeocode returns the best street address for a point. Country is the
// last segment of the formatted address ("USA" for US results).
func (c *Client) ReverseGeocode(ctx context.Context, at neighborhood.Coordinates) (*neighborhood.Address, error) {
	var resp geocodeResponse
	q := url.Values{}
	q.Set("latlng", formatLatLng(at))
	if err := c.get(ctx, "reverse geocode", "/geocode/json", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("reverse geocode"); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, eris.Wrap(neighborhood.ErrNoResults, "google: reverse geocode")
	}
	return toAddress(resp.Results[0]), nil
}

func toAddress(r geocodeResult) *neighborhood.Address {
	a := &neighborhood.Address{
		FormattedAddress: r.FormattedAddress,
		Country:          lastSegment(r.FormattedAddress),
	}
	for _, comp := range r.AddressComponents {
		switch {
		case slices.Contains(comp.Types, "postal_code"):
			a.Zip = comp.LongName
		case slices.Contains(comp.Types, "locality"):
			a.City = comp.LongName
		case slices.Contains(comp.Types, "sublocality") && a.City == "":
			a.City = comp.LongName
		case slices.Contains(comp.Types, "administrative_area_level_1"):
			a.State = comp.ShortName
		}
	}
	return a
}

func lastSegment(formatted string) string {
	i := strings.LastIndex(formatted, ",")
	return strings.TrimSpace(formatted[i+1:])
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
