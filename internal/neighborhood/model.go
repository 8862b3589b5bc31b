package neighborhood

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Count accepts a JSON number or a numeric string ("2", "2.0") and stores an int.
// Fractions round down ("1.5" baths is 1). Empty strings and null decode as
// zero. Non-finite and negative values, and values past 1e6, are rejected.
type Count int

const maxCount = 1e6

func (c *Count) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = 0
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "neighborhood: invalid count %q", s)
	}
	if math.IsNaN(f) || f < 0 || f > maxCount {
		return eris.Errorf("neighborhood: count %q out of range", s)
	}
	*c = Count(int(f))
	return nil
}

// SearchRequest is the body of a neighborhood search. Criteria the engine does
// not read are kept in Extra.
type SearchRequest struct {
	Address   string `json:"address"`
	Bedrooms  Count  `json:"bedrooms"`
	Bathrooms Count  `json:"bathrooms"`
	BuyOrRent string `json:"buyOrRent"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *SearchRequest) UnmarshalJSON(b []byte) error {
	type known SearchRequest
	var k known
	if err := json.Unmarshal(b, &k); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, f := range []string{"address", "bedrooms", "bathrooms", "buyOrRent"} {
		delete(all, f)
	}
	*r = SearchRequest(k)
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// Criteria returns the subset of the request the price lookup is keyed by.
func (r SearchRequest) Criteria() PriceCriteria {
	return PriceCriteria{
		Bedrooms:  int(r.Bedrooms),
		Bathrooms: int(r.Bathrooms),
		BuyOrRent: r.BuyOrRent,
	}
}

// PriceCriteria narrows a price estimate.
type PriceCriteria struct {
	Bedrooms  int
	Bathrooms int
	BuyOrRent string
}

// Rental reports whether the search is for a rental.
func (c PriceCriteria) Rental() bool { return strings.EqualFold(strings.TrimSpace(c.BuyOrRent), "rent") }

// PropertyType is "apartment" for rentals and "house" otherwise.
func (c PriceCriteria) PropertyType() string {
	if c.Rental() {
		return "apartment"
	}
	return "house"
}

// Stub is a neighborhood as discovery found it. Name is its identity within a
// single search.
type Stub struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceID   string  `json:"placeId"`
}

func (s Stub) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Commute is the travel estimate from a neighborhood to the searched address.
type Commute struct {
	Mode            string `json:"mode"`
	Distance        string `json:"distance"`
	DistanceMeters  int    `json:"distanceMeters"`
	Duration        string `json:"duration"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Address is a reverse-geocode result.
type Address struct {
	FormattedAddress string `json:"formatted_address"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Country          string `json:"country,omitempty"`
	Zip              string `json:"zip,omitempty"`
}

type Amenity struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Vicinity  string  `json:"vicinity,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceID   string  `json:"placeId,omitempty"`
}

type AmenitiesAttractions struct {
	Amenities   []Amenity `json:"amenities"`
	Attractions []Amenity `json:"attractions"`
}

// Demographics is a community profile for one zip code.
type Demographics struct {
	Zip                   string  `json:"zip"`
	Population            int     `json:"population"`
	PopulationDensity     float64 `json:"populationDensity"`
	MedianAge             float64 `json:"medianAge"`
	MedianHouseholdIncome int     `json:"medianHouseholdIncome"`
	AvgHouseholdSize      float64 `json:"avgHouseholdSize"`
	OwnerOccupiedPct      float64 `json:"ownerOccupiedPct"`
	RenterOccupiedPct     float64 `json:"renterOccupiedPct"`
	CrimeIndex            int     `json:"crimeIndex"`
}

// Record accumulates enrichment for one neighborhood. Optional fields stay
// absent until their enricher succeeds. Values are published whole and never
// mutated afterwards.
type Record struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceID   string  `json:"placeId"`

	CommuteInfo *Commute `json:"commuteInfo,omitempty"`

	StreetAddress    string `json:"streetAddress,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Country          string `json:"country,omitempty"`
	Zip              string `json:"zip,omitempty"`

	PriceEstimate *float64 `json:"priceEstimate,omitempty"`
	HomeSize      *int     `json:"homeSize,omitempty"`
	PropertyType  string   `json:"propertyType,omitempty"`

	AmenitiesAttractions *AmenitiesAttractions `json:"amenities_attractions,omitempty"`
	GooglePics           []string              `json:"googlePics,omitempty"`
	Demographics         *Demographics         `json:"demographics,omitempty"`
}

func newRecord(s Stub) *Record {
	return &Record{Name: s.Name, Latitude: s.Latitude, Longitude: s.Longitude, PlaceID: s.PlaceID}
}

func (r *Record) clone() Record {
	out := *r
	if r.GooglePics != nil {
		out.GooglePics = append([]string(nil), r.GooglePics...)
	}
	return out
}
